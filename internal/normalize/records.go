package normalize

import (
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/noah-isme/uniportal/internal/models"
)

// NoticeAliases is the field table for notices.
var NoticeAliases = []Alias{
	{Canonical: "noticeId", Sources: []string{"noticeId", "notice_id", "id"}, kind: kindID},
	{Canonical: "title", Sources: []string{"title", "noticeTitle", "notice_title"}, kind: kindString},
	{Canonical: "content", Sources: []string{"content", "noticeContent", "notice_content", "body"}, kind: kindString},
	{Canonical: "writer", Sources: []string{"writer", "userName", "user_name", "author"}, kind: kindString},
	{Canonical: "views", Sources: []string{"views", "viewCount", "view_count", "hits"}, kind: kindInt},
	{Canonical: "createdAt", Sources: []string{"createdAt", "created_at", "regDate"}, kind: kindTimestamp},
	{Canonical: "updatedAt", Sources: []string{"updatedAt", "updated_at"}, kind: kindTimestamp},
}

// GradeAliases is the field table for transcript rows.
var GradeAliases = []Alias{
	{Canonical: "courseId", Sources: []string{"courseId", "course_id", "id"}, kind: kindInt},
	{Canonical: "title", Sources: []string{"title", "courseName", "course_name"}, kind: kindString},
	{Canonical: "courseType", Sources: []string{"courseType", "course_type", "type"}, kind: kindString},
	{Canonical: "credit", Sources: []string{"credit", "credits"}, kind: kindInt},
	{Canonical: "grade", Sources: []string{"grade", "gradeLetter", "grade_letter"}, kind: kindString},
	{Canonical: "gradePoint", Sources: []string{"gradePoint", "grade_point", "point", "score"}, kind: kindFloat},
	{Canonical: "year", Sources: []string{"year"}, kind: kindInt},
	{Canonical: "semester", Sources: []string{"semester"}, kind: kindInt},
}

// GPAAliases is the field table for semester averages.
var GPAAliases = []Alias{
	{Canonical: "semesterId", Sources: []string{"semesterId", "semester_id"}, kind: kindInt},
	{Canonical: "year", Sources: []string{"year"}, kind: kindInt},
	{Canonical: "semester", Sources: []string{"semester"}, kind: kindInt},
	{Canonical: "gpa", Sources: []string{"gpa", "average", "avg"}, kind: kindFloat},
	{Canonical: "totalCredit", Sources: []string{"totalCredit", "total_credit", "credits"}, kind: kindInt},
}

// DeptAliases is the field table for departments.
var DeptAliases = []Alias{
	{Canonical: "deptId", Sources: []string{"deptId", "dept_id", "id"}, kind: kindInt},
	{Canonical: "deptName", Sources: []string{"deptName", "dept_name", "name"}, kind: kindString},
	{Canonical: "headId", Sources: []string{"headId", "head_id", "userId"}, kind: kindInt},
	{Canonical: "headName", Sources: []string{"headName", "head_name", "userName"}, kind: kindString},
	{Canonical: "phone", Sources: []string{"phone", "deptPhone", "dept_phone"}, kind: kindString},
	{Canonical: "location", Sources: []string{"location", "office"}, kind: kindString},
	{Canonical: "status", Sources: []string{"status", "state"}, kind: kindString},
}

// MemberAliases is the field table for member listings.
var MemberAliases = []Alias{
	{Canonical: "userId", Sources: []string{"userId", "user_id", "id"}, kind: kindInt},
	{Canonical: "loginId", Sources: []string{"loginId", "login_id"}, kind: kindString},
	{Canonical: "userName", Sources: []string{"userName", "user_name", "name"}, kind: kindString},
	{Canonical: "userRole", Sources: []string{"userRole", "user_role", "role"}, kind: kindRole},
	{Canonical: "deptName", Sources: []string{"deptName", "dept_name"}, kind: kindString},
	{Canonical: "email", Sources: []string{"email", "userEmail"}, kind: kindString},
	{Canonical: "phone", Sources: []string{"phone", "tel", "userPhone"}, kind: kindString},
}

// PrivacyAliases is the field table for a user's contact record.
var PrivacyAliases = []Alias{
	{Canonical: "email", Sources: []string{"email", "userEmail"}, kind: kindString},
	{Canonical: "phone", Sources: []string{"phone", "tel", "userPhone"}, kind: kindString},
	{Canonical: "address", Sources: []string{"address", "addr"}, kind: kindString},
}

// Object extracts a single record from a payload, unwrapping {data: {...}} or
// {result: {...}} once.
func Object(payload interface{}) (map[string]interface{}, bool) {
	if raw, ok := payload.([]byte); ok {
		payload = Decode(raw)
	}
	obj, ok := payload.(map[string]interface{})
	if !ok {
		return nil, false
	}
	for _, key := range []string{"data", "result"} {
		if inner, ok := obj[key].(map[string]interface{}); ok {
			return inner, true
		}
	}
	return obj, true
}

// Notices normalizes a notice listing.
func Notices(payload interface{}) []models.Notice {
	rows := Rows(payload)
	out := make([]models.Notice, 0, len(rows))
	for _, row := range rows {
		out = append(out, noticeOf(Canonicalize(row, NoticeAliases)))
	}
	return out
}

// Notice normalizes a single notice. It returns false without an id.
func Notice(payload interface{}) (models.Notice, bool) {
	obj, ok := Object(payload)
	if !ok {
		return models.Notice{}, false
	}
	n := noticeOf(Canonicalize(obj, NoticeAliases))
	return n, n.NoticeID != ""
}

func noticeOf(m map[string]interface{}) models.Notice {
	views, _ := m["views"].(int64)
	return models.Notice{
		NoticeID:  str(m["noticeId"]),
		Title:     str(m["title"]),
		Content:   str(m["content"]),
		Writer:    str(m["writer"]),
		Views:     views,
		CreatedAt: nullStr(m["createdAt"]),
		UpdatedAt: nullStr(m["updatedAt"]),
	}
}

// Grades normalizes transcript rows.
func Grades(payload interface{}) []models.Grade {
	rows := Rows(payload)
	out := make([]models.Grade, 0, len(rows))
	for _, row := range rows {
		m := Canonicalize(row, GradeAliases)
		id, _ := m["courseId"].(int64)
		credit, _ := m["credit"].(int64)
		out = append(out, models.Grade{
			CourseID:   id,
			Title:      str(m["title"]),
			CourseType: str(m["courseType"]),
			Credit:     int(credit),
			Grade:      str(m["grade"]),
			GradePoint: floatOf(m["gradePoint"]),
			Year:       intOf(m["year"]),
			Semester:   intOf(m["semester"]),
		})
	}
	return out
}

// GPAs normalizes semester averages. A single object is read as one entry.
func GPAs(payload interface{}) []models.GPA {
	rows := Rows(payload)
	if len(rows) == 0 {
		if obj, ok := Object(payload); ok {
			rows = []map[string]interface{}{obj}
		}
	}
	out := make([]models.GPA, 0, len(rows))
	for _, row := range rows {
		m := Canonicalize(row, GPAAliases)
		if m["gpa"] == nil {
			continue
		}
		credit, _ := m["totalCredit"].(int64)
		out = append(out, models.GPA{
			SemesterID:  int64Of(m["semesterId"]),
			Year:        intOf(m["year"]),
			Semester:    intOf(m["semester"]),
			GPA:         floatOf(m["gpa"]),
			TotalCredit: int(credit),
		})
	}
	return out
}

// Depts normalizes a department listing.
func Depts(payload interface{}) []models.Dept {
	rows := Rows(payload)
	out := make([]models.Dept, 0, len(rows))
	for _, row := range rows {
		out = append(out, deptOf(Canonicalize(row, DeptAliases)))
	}
	return out
}

// Dept normalizes a single department record.
func Dept(payload interface{}) (models.Dept, bool) {
	obj, ok := Object(payload)
	if !ok {
		return models.Dept{}, false
	}
	d := deptOf(Canonicalize(obj, DeptAliases))
	return d, d.DeptID != 0 || d.HeadName != ""
}

func deptOf(m map[string]interface{}) models.Dept {
	id, _ := m["deptId"].(int64)
	head, _ := m["headId"].(int64)
	return models.Dept{
		DeptID:   id,
		DeptName: str(m["deptName"]),
		HeadID:   head,
		HeadName: str(m["headName"]),
		Phone:    str(m["phone"]),
		Location: str(m["location"]),
		Status:   str(m["status"]),
	}
}

// Members normalizes a member listing.
func Members(payload interface{}) []models.Member {
	rows := Rows(payload)
	out := make([]models.Member, 0, len(rows))
	for _, row := range rows {
		m := Canonicalize(row, MemberAliases)
		id, _ := m["userId"].(int64)
		role, _ := m["userRole"].(models.UserRole)
		out = append(out, models.Member{
			UserID:   id,
			LoginID:  str(m["loginId"]),
			UserName: str(m["userName"]),
			UserRole: role,
			DeptName: str(m["deptName"]),
			Email:    str(m["email"]),
			Phone:    str(m["phone"]),
		})
	}
	return out
}

// Privacy normalizes a contact record.
func Privacy(payload interface{}) (models.Privacy, bool) {
	obj, ok := Object(payload)
	if !ok {
		return models.Privacy{}, false
	}
	m := Canonicalize(obj, PrivacyAliases)
	return models.Privacy{
		Email:   str(m["email"]),
		Phone:   str(m["phone"]),
		Address: str(m["address"]),
	}, true
}

// Course normalizes a single course record.
func Course(payload interface{}) (models.Course, bool) {
	obj, ok := Object(payload)
	if !ok {
		return models.Course{}, false
	}
	courses := Courses([]interface{}{obj})
	if courses[0].CourseID == 0 {
		return models.Course{}, false
	}
	return courses[0], true
}

// Years reads the list of academic years offering courses, newest first.
// Entries may be bare numbers or objects carrying a year field.
func Years(payload interface{}) []int {
	var items []interface{}
	switch v := payload.(type) {
	case []interface{}:
		items = v
	case map[string]interface{}:
		items, _ = v["data"].([]interface{})
		if items == nil {
			items, _ = v["list"].([]interface{})
		}
	}
	seen := make(map[int]bool, len(items))
	years := make([]int, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]interface{}); ok {
			item = obj["year"]
		}
		n, ok := Int64(item)
		if !ok || n <= 0 || seen[int(n)] {
			continue
		}
		seen[int(n)] = true
		years = append(years, int(n))
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// EnrollmentID reads the enrollment id the backend returns for a course. The
// payload may be the bare id or an object carrying it.
func EnrollmentID(payload interface{}) (int64, bool) {
	if obj, ok := Object(payload); ok {
		payload = pick(obj, []string{"enrollmentId", "enrollment_id", "id", "data"})
	}
	n, ok := Int64(payload)
	if !ok || n <= 0 {
		return 0, false
	}
	return n, true
}

func floatOf(v interface{}) null.Float64 {
	f, ok := v.(float64)
	if !ok {
		return null.Float64{}
	}
	return null.Float64From(f)
}
