// Package normalize reshapes the portal backend's loosely shaped payloads into
// canonical schedule and application records. Nothing in this package returns
// an error: unusable input degrades to empty or null values.
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"github.com/volatiletech/null/v8"

	"github.com/noah-isme/uniportal/internal/models"
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindID
	kindInt
	kindDate
	kindTimestamp
	kindScheduleType
	kindStatus
	kindRole
	kindFloat
)

// Alias binds a canonical key to the source keys tried for it, in order.
type Alias struct {
	Canonical string
	Sources   []string
	kind      fieldKind
}

// ScheduleAliases is the field table for schedule windows.
var ScheduleAliases = []Alias{
	{Canonical: "scheduleId", Sources: []string{"scheduleId", "schedule_id", "id"}, kind: kindID},
	{Canonical: "semesterId", Sources: []string{"semesterId", "semester_id"}, kind: kindInt},
	{Canonical: "scheduleType", Sources: []string{"scheduleType", "schedule_type", "type"}, kind: kindScheduleType},
	{Canonical: "startDate", Sources: []string{"startDate", "start_date", "startDatetime", "start_datetime", "start"}, kind: kindDate},
	{Canonical: "endDate", Sources: []string{"endDate", "end_date", "endDatetime", "end_datetime", "end"}, kind: kindDate},
	{Canonical: "description", Sources: []string{"description", "desc", "content", "memo"}, kind: kindString},
	{Canonical: "createdAt", Sources: []string{"createdAt", "created_at"}, kind: kindTimestamp},
}

// ApplicationAliases is the field table for applications.
var ApplicationAliases = []Alias{
	{Canonical: "appId", Sources: []string{"appId", "app_id", "id"}, kind: kindID},
	{Canonical: "status", Sources: []string{"status", "state"}, kind: kindStatus},
	{Canonical: "reason", Sources: []string{"reason"}, kind: kindString},
	{Canonical: "submittedAt", Sources: []string{"submittedAt", "createdAt", "created_at"}, kind: kindTimestamp},
	{Canonical: "scheduleType", Sources: []string{"scheduleType", "schedule_type"}, kind: kindScheduleType},
	{Canonical: "scheduleStart", Sources: []string{"scheduleStart", "startDate", "start_datetime"}, kind: kindDate},
	{Canonical: "scheduleEnd", Sources: []string{"scheduleEnd", "endDate", "end_datetime"}, kind: kindDate},
	{Canonical: "year", Sources: []string{"year"}, kind: kindInt},
	{Canonical: "semester", Sources: []string{"semester"}, kind: kindInt},
}

// SessionAliases is the field table for the signed-in user returned at login.
var SessionAliases = []Alias{
	{Canonical: "userId", Sources: []string{"userId", "user_id", "id"}, kind: kindInt},
	{Canonical: "userName", Sources: []string{"userName", "user_name", "name"}, kind: kindString},
	{Canonical: "loginId", Sources: []string{"loginId", "login_id"}, kind: kindString},
	{Canonical: "userRole", Sources: []string{"userRole", "user_role", "role"}, kind: kindRole},
	{Canonical: "semesterId", Sources: []string{"semesterId", "semester_id"}, kind: kindInt},
	{Canonical: "deptName", Sources: []string{"deptName", "dept_name"}, kind: kindString},
	{Canonical: "pic", Sources: []string{"pic", "profileImage", "profile_image"}, kind: kindTimestamp},
}

// CourseAliases is the field table for course listings.
var CourseAliases = []Alias{
	{Canonical: "courseId", Sources: []string{"courseId", "course_id", "id"}, kind: kindInt},
	{Canonical: "title", Sources: []string{"title", "courseName", "course_name"}, kind: kindString},
	{Canonical: "deptName", Sources: []string{"deptName", "dept_name"}, kind: kindString},
	{Canonical: "professorName", Sources: []string{"professorName", "professor_name", "proName"}, kind: kindString},
	{Canonical: "classCode", Sources: []string{"time", "classCode", "class_code"}, kind: kindString},
	{Canonical: "credit", Sources: []string{"credit", "credits"}, kind: kindInt},
	{Canonical: "type", Sources: []string{"type", "courseType", "course_type"}, kind: kindString},
}

// Decode parses raw JSON keeping numbers exact. Invalid input yields nil.
func Decode(data []byte) interface{} {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out interface{}
	if err := dec.Decode(&out); err != nil {
		return nil
	}
	return out
}

// Rows extracts the record list from a payload. Accepted shapes, first match
// wins: a bare array, {data: [...]}, {list: [...]}, {data: {list: [...]}}.
// Elements that are not objects are skipped.
func Rows(payload interface{}) []map[string]interface{} {
	switch v := payload.(type) {
	case []byte:
		return Rows(Decode(v))
	case json.RawMessage:
		return Rows(Decode(v))
	case []map[string]interface{}:
		return v
	case []interface{}:
		return objects(v)
	case map[string]interface{}:
		if list, ok := v["data"].([]interface{}); ok {
			return objects(list)
		}
		if list, ok := v["list"].([]interface{}); ok {
			return objects(list)
		}
		if inner, ok := v["data"].(map[string]interface{}); ok {
			if list, ok := inner["list"].([]interface{}); ok {
				return objects(list)
			}
		}
	}
	return nil
}

func objects(list []interface{}) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(list))
	for _, item := range list {
		if row, ok := item.(map[string]interface{}); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// Canonicalize maps one source row through an alias table. Every canonical key
// is present in the result; absent or unusable values are nil.
func Canonicalize(row map[string]interface{}, table []Alias) map[string]interface{} {
	out := make(map[string]interface{}, len(table))
	for _, alias := range table {
		out[alias.Canonical] = convert(pick(row, alias.Sources), alias.kind)
	}
	return out
}

func pick(row map[string]interface{}, keys []string) interface{} {
	for _, key := range keys {
		if v, ok := row[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func convert(v interface{}, kind fieldKind) interface{} {
	if v == nil {
		return nil
	}
	switch kind {
	case kindString, kindID, kindTimestamp:
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil
		}
		s = strings.TrimSpace(s)
		if kind != kindString && s == "" {
			return nil
		}
		return s
	case kindInt:
		n, ok := Int64(v)
		if !ok {
			return nil
		}
		return n
	case kindDate:
		return dateOf(v)
	case kindScheduleType:
		s, err := cast.ToStringE(v)
		if err != nil || strings.TrimSpace(s) == "" {
			return nil
		}
		t, _ := models.ParseScheduleType(s)
		return t
	case kindStatus:
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil
		}
		status, ok := models.ParseApplicationStatus(s)
		if !ok {
			return nil
		}
		return status
	case kindRole:
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil
		}
		role, ok := models.ParseUserRole(s)
		if !ok {
			return nil
		}
		return role
	case kindFloat:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil
		}
		return f
	}
	return nil
}

// Int64 reads a whole number. Strings are parsed in base 10 after trimming, so
// "010" is 10 and "0x1f" is rejected.
func Int64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	case json.Number:
		i, err := strconv.ParseInt(strings.TrimSpace(n.String()), 10, 64)
		if err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil || f != float64(int64(f)) {
			return 0, false
		}
		return int64(f), true
	case nil:
		return 0, false
	}
	i, err := cast.ToInt64E(v)
	return i, err == nil
}

// dateOf keeps the first ten characters of a date or datetime string. Array
// encoded dates such as [2025, 9, 1] are formatted as well.
func dateOf(v interface{}) interface{} {
	switch d := v.(type) {
	case string:
		runes := []rune(strings.TrimSpace(d))
		if len(runes) > 10 {
			runes = runes[:10]
		}
		if len(runes) == 0 {
			return nil
		}
		return string(runes)
	case []interface{}:
		if len(d) < 3 {
			return nil
		}
		parts := make([]int, 3)
		for i := range parts {
			n, err := cast.ToIntE(d[i])
			if err != nil {
				return nil
			}
			parts[i] = n
		}
		return fmt.Sprintf("%04d-%02d-%02d", parts[0], parts[1], parts[2])
	}
	return nil
}

// Schedules normalizes a schedule payload into canonical windows.
func Schedules(payload interface{}) []models.ScheduleWindow {
	rows := Rows(payload)
	out := make([]models.ScheduleWindow, 0, len(rows))
	for _, row := range rows {
		m := Canonicalize(row, ScheduleAliases)
		out = append(out, models.ScheduleWindow{
			ScheduleID:   str(m["scheduleId"]),
			SemesterID:   int64Of(m["semesterId"]),
			ScheduleType: typeOf(m["scheduleType"]),
			StartDate:    nullStr(m["startDate"]),
			EndDate:      nullStr(m["endDate"]),
			Description:  str(m["description"]),
			CreatedAt:    nullStr(m["createdAt"]),
		})
	}
	return out
}

// Schedule normalizes a single-object payload, also accepting {data: {...}}.
// It returns false when nothing resembling a window is present.
func Schedule(payload interface{}) (models.ScheduleWindow, bool) {
	if obj, ok := payload.(map[string]interface{}); ok {
		if inner, ok := obj["data"].(map[string]interface{}); ok {
			obj = inner
		}
		windows := Schedules([]interface{}{obj})
		if len(windows) == 1 && windows[0].ScheduleID != "" {
			return windows[0], true
		}
		return models.ScheduleWindow{}, false
	}
	windows := Schedules(payload)
	if len(windows) == 0 {
		return models.ScheduleWindow{}, false
	}
	return windows[0], true
}

// Applications normalizes an application payload into canonical records.
func Applications(payload interface{}) []models.Application {
	rows := Rows(payload)
	out := make([]models.Application, 0, len(rows))
	for _, row := range rows {
		m := Canonicalize(row, ApplicationAliases)
		out = append(out, models.Application{
			AppID:         str(m["appId"]),
			Status:        statusOf(m["status"]),
			Reason:        str(m["reason"]),
			SubmittedAt:   nullStr(m["submittedAt"]),
			ScheduleType:  typeOf(m["scheduleType"]),
			ScheduleStart: nullStr(m["scheduleStart"]),
			ScheduleEnd:   nullStr(m["scheduleEnd"]),
			Year:          intOf(m["year"]),
			Semester:      intOf(m["semester"]),
		})
	}
	return out
}

// Session normalizes the user record of a login response. The record may be
// the payload itself or nested under user, data or result.
func Session(payload interface{}) (models.Session, bool) {
	obj, ok := payload.(map[string]interface{})
	if !ok {
		return models.Session{}, false
	}
	for _, key := range []string{"user", "data", "result"} {
		if inner, ok := obj[key].(map[string]interface{}); ok {
			if nested, ok := Session(inner); ok {
				return nested, true
			}
		}
	}
	m := Canonicalize(obj, SessionAliases)
	userID, ok := m["userId"].(int64)
	if !ok {
		return models.Session{}, false
	}
	role, _ := m["userRole"].(models.UserRole)
	semesterID, _ := m["semesterId"].(int64)
	return models.Session{
		UserID:     userID,
		UserName:   str(m["userName"]),
		LoginID:    str(m["loginId"]),
		UserRole:   role,
		SemesterID: semesterID,
		DeptName:   str(m["deptName"]),
		Pic:        nullStr(m["pic"]),
	}, true
}

// Courses normalizes a course listing.
func Courses(payload interface{}) []models.Course {
	rows := Rows(payload)
	out := make([]models.Course, 0, len(rows))
	for _, row := range rows {
		m := Canonicalize(row, CourseAliases)
		id, _ := m["courseId"].(int64)
		credit, _ := m["credit"].(int64)
		out = append(out, models.Course{
			CourseID:      id,
			Title:         str(m["title"]),
			DeptName:      str(m["deptName"]),
			ProfessorName: str(m["professorName"]),
			ClassCode:     str(m["classCode"]),
			Credit:        int(credit),
			Type:          str(m["type"]),
		})
	}
	return out
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}

func nullStr(v interface{}) null.String {
	s, ok := v.(string)
	if !ok {
		return null.String{}
	}
	return null.StringFrom(s)
}

func int64Of(v interface{}) null.Int64 {
	n, ok := v.(int64)
	if !ok {
		return null.Int64{}
	}
	return null.Int64From(n)
}

func intOf(v interface{}) null.Int {
	n, ok := v.(int64)
	if !ok {
		return null.Int{}
	}
	return null.IntFrom(int(n))
}

func typeOf(v interface{}) models.ScheduleType {
	t, _ := v.(models.ScheduleType)
	return t
}

func statusOf(v interface{}) models.ApplicationStatus {
	s, _ := v.(models.ApplicationStatus)
	return s
}
