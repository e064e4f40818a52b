package service

import (
	"context"
	"net/url"

	"github.com/noah-isme/uniportal/internal/models"
	"github.com/noah-isme/uniportal/internal/normalize"
	appErrors "github.com/noah-isme/uniportal/pkg/errors"
)

// GradeService reads a student's transcript.
type GradeService struct {
	api portalClient
}

// NewGradeService creates a grade service.
func NewGradeService(api portalClient) *GradeService {
	return &GradeService{api: api}
}

// Permanent lists every recorded grade, optionally narrowed to a year and
// semester.
func (s *GradeService) Permanent(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error) {
	query := url.Values{}
	setPositive(query, "year", int64(filter.Year))
	setPositive(query, "semester", int64(filter.Semester))
	return s.grades(ctx, "/student/grade/permanent", query)
}

// Current lists the grades of one semester.
func (s *GradeService) Current(ctx context.Context, semesterID interface{}) ([]models.Grade, error) {
	return s.grades(ctx, "/student/grade/current", semesterQuery(semesterID))
}

// GPA returns the grade point averages for a semester, or for every semester
// when none is given.
func (s *GradeService) GPA(ctx context.Context, semesterID interface{}) ([]models.GPA, error) {
	payload, err := s.api.Get(ctx, "/student/gpa", semesterQuery(semesterID))
	if err != nil {
		if appErrors.IsNotFound(err) {
			return []models.GPA{}, nil
		}
		return nil, err
	}
	return normalize.GPAs(payload), nil
}

func (s *GradeService) grades(ctx context.Context, path string, query url.Values) ([]models.Grade, error) {
	payload, err := s.api.Get(ctx, path, query)
	if err != nil {
		if appErrors.IsNotFound(err) {
			return []models.Grade{}, nil
		}
		return nil, err
	}
	return normalize.Grades(payload), nil
}
