package service

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/noah-isme/uniportal/internal/models"
	"github.com/noah-isme/uniportal/internal/normalize"
	appErrors "github.com/noah-isme/uniportal/pkg/errors"
)

// GeneralEducationDept is listed after every other department.
const GeneralEducationDept = "교양학부"

var (
	classDays  = map[rune]string{'A': "월", 'B': "화", 'C': "수", 'D': "목", 'E': "금"}
	classSlots = map[rune]string{
		'1': "09:00 ~ 10:20",
		'2': "10:30 ~ 11:50",
		'3': "12:00 ~ 13:20",
		'4': "13:30 ~ 14:50",
		'5': "15:00 ~ 16:20",
		'6': "16:30 ~ 17:50",
		'7': "18:00 ~ 19:20",
	}
)

// EnrollmentService drives course registration for a student.
type EnrollmentService struct {
	api    portalClient
	logger *zap.Logger
}

// NewEnrollmentService creates an enrollment service.
func NewEnrollmentService(api portalClient, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{api: api, logger: logger}
}

// Available lists the courses open for registration, marking the ones already
// present in mine.
func (s *EnrollmentService) Available(ctx context.Context, filter models.CourseFilter, mine []models.Course) ([]models.Course, error) {
	query := url.Values{}
	setPositive(query, "year", int64(filter.Year))
	setPositive(query, "semester", int64(filter.Semester))
	setPositive(query, "grade", int64(filter.Grade))
	setPositive(query, "deptId", filter.DeptID)
	setText(query, "type", filter.Type)
	setText(query, "keyword", filter.Keyword)

	payload, err := s.api.Get(ctx, "/student/enrollment", query)
	if err != nil {
		if appErrors.IsNotFound(err) {
			return []models.Course{}, nil
		}
		return nil, err
	}
	enrolled := make(map[int64]struct{}, len(mine))
	for _, c := range mine {
		enrolled[c.CourseID] = struct{}{}
	}
	courses := normalize.Courses(payload)
	for i := range courses {
		_, courses[i].Enrolled = enrolled[courses[i].CourseID]
	}
	return courses, nil
}

// Mine lists the student's registrations for a semester.
func (s *EnrollmentService) Mine(ctx context.Context, semesterID interface{}) ([]models.Course, error) {
	payload, err := s.api.Get(ctx, "/student/enrollment/current", semesterQuery(semesterID))
	if err != nil {
		if appErrors.IsNotFound(err) {
			return []models.Course{}, nil
		}
		return nil, err
	}
	courses := normalize.Courses(payload)
	for i := range courses {
		courses[i].Enrolled = true
	}
	return courses, nil
}

// Enroll registers the student for a course.
func (s *EnrollmentService) Enroll(ctx context.Context, courseID int64) error {
	if courseID <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "courseId is required")
	}
	if _, err := s.api.Post(ctx, "/student/enrollment", map[string]int64{"courseId": courseID}); err != nil {
		return err
	}
	s.logger.Info("course enrolled", zap.Int64("course_id", courseID))
	return nil
}

// Cancel drops a registration.
func (s *EnrollmentService) Cancel(ctx context.Context, courseID int64) error {
	if courseID <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "courseId is required")
	}
	_, err := s.api.Delete(ctx, "/student/enrollment/cancel/"+strconv.FormatInt(courseID, 10))
	return err
}

// ClassTime decodes a lecture code such as "A1" into "월 09:00 ~ 10:20".
// Unknown parts decode to "오류".
func ClassTime(code string) string {
	runes := []rune(strings.TrimSpace(code))
	day, slot := "오류", "오류"
	if len(runes) > 0 {
		if d, ok := classDays[runes[0]]; ok {
			day = d
		}
	}
	if len(runes) > 1 {
		if t, ok := classSlots[runes[1]]; ok {
			slot = t
		}
	}
	return day + " " + slot
}

// SortByDeptName returns a copy ordered by department in Korean collation, with
// general education last.
func SortByDeptName(courses []models.Course) []models.Course {
	out := append([]models.Course(nil), courses...)
	c := collate.New(language.Korean)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].DeptName, out[j].DeptName
		if (a == GeneralEducationDept) != (b == GeneralEducationDept) {
			return b == GeneralEducationDept
		}
		return c.CompareString(a, b) < 0
	})
	return out
}

// SortByTitle returns a copy ordered by course title.
func SortByTitle(courses []models.Course) []models.Course {
	out := append([]models.Course(nil), courses...)
	c := collate.New(language.Korean)
	sort.SliceStable(out, func(i, j int) bool {
		return c.CompareString(out[i].Title, out[j].Title) < 0
	})
	return out
}
