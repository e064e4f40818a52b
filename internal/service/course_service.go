package service

import (
	"context"
	"net/url"
	"strconv"

	"github.com/noah-isme/uniportal/internal/models"
	"github.com/noah-isme/uniportal/internal/normalize"
	appErrors "github.com/noah-isme/uniportal/pkg/errors"
)

// CourseService browses the course catalogue.
type CourseService struct {
	api portalClient
}

// NewCourseService creates a course service.
func NewCourseService(api portalClient) *CourseService {
	return &CourseService{api: api}
}

// List returns catalogue courses matching filter.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	query := url.Values{}
	setPositive(query, "year", int64(filter.Year))
	setPositive(query, "semester", int64(filter.Semester))
	setPositive(query, "grade", int64(filter.Grade))
	setPositive(query, "deptId", filter.DeptID)
	setText(query, "type", filter.Type)
	setText(query, "keyword", filter.Keyword)
	return s.courses(ctx, "/course", query)
}

// Years lists the academic years offering courses, newest first.
func (s *CourseService) Years(ctx context.Context) ([]int, error) {
	payload, err := s.api.Get(ctx, "/course/filter/year", nil)
	if err != nil {
		if appErrors.IsNotFound(err) {
			return []int{}, nil
		}
		return nil, err
	}
	return normalize.Years(payload), nil
}

// Get loads one course.
func (s *CourseService) Get(ctx context.Context, courseID int64) (*models.Course, error) {
	if courseID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "courseId is required")
	}
	payload, err := s.api.Get(ctx, "/course/"+strconv.FormatInt(courseID, 10), nil)
	if err != nil {
		return nil, err
	}
	course, ok := normalize.Course(payload)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	return &course, nil
}

// Today lists the courses the user attends today.
func (s *CourseService) Today(ctx context.Context, semesterID interface{}) ([]models.Course, error) {
	return s.courses(ctx, "/course/today", semesterQuery(semesterID))
}

// EnrollmentID returns the student's enrollment id for a course.
func (s *CourseService) EnrollmentID(ctx context.Context, courseID int64) (int64, error) {
	if courseID <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "courseId is required")
	}
	payload, err := s.api.Get(ctx, "/student/course", url.Values{"courseId": {strconv.FormatInt(courseID, 10)}})
	if err != nil {
		return 0, err
	}
	id, ok := normalize.EnrollmentID(payload)
	if !ok {
		return 0, appErrors.Clone(appErrors.ErrNotFound, "not enrolled in course")
	}
	return id, nil
}

func (s *CourseService) courses(ctx context.Context, path string, query url.Values) ([]models.Course, error) {
	payload, err := s.api.Get(ctx, path, query)
	if err != nil {
		if appErrors.IsNotFound(err) {
			return []models.Course{}, nil
		}
		return nil, err
	}
	return normalize.Courses(payload), nil
}
