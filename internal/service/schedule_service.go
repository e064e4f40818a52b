package service

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uniportal/internal/models"
	"github.com/noah-isme/uniportal/internal/normalize"
	appErrors "github.com/noah-isme/uniportal/pkg/errors"
)

// ScheduleService manages schedule windows on the portal backend.
type ScheduleService struct {
	api       portalClient
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService creates a schedule service.
func NewScheduleService(api portalClient, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{api: api, validator: validate, logger: logger}
}

// List returns the windows matching the filter. A 404 is an empty listing.
func (s *ScheduleService) List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleWindow, error) {
	query := url.Values{}
	if filter.Month != "" {
		if _, err := time.Parse("2006-01", filter.Month); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "month must be formatted YYYY-MM")
		}
		query.Set("month", filter.Month)
	}
	if filter.SemesterID.Valid {
		query.Set("semesterId", strconv.FormatInt(filter.SemesterID.Int64, 10))
	}
	if filter.ScheduleType != "" {
		query.Set("scheduleType", filter.ScheduleType.Label())
	}

	payload, err := s.api.Get(ctx, "/schedule", query)
	if err != nil {
		if appErrors.IsNotFound(err) {
			return []models.ScheduleWindow{}, nil
		}
		return nil, err
	}
	windows := normalize.Schedules(payload)
	if filter.ScheduleType != "" {
		windows = FilterWindows(windows, Criteria{SemesterID: filter.SemesterID, ScheduleType: filter.ScheduleType})
	}
	SortWindows(windows)
	return windows, nil
}

// ListByMonth lists the windows of a calendar month.
func (s *ScheduleService) ListByMonth(ctx context.Context, year int, month time.Month, semesterID interface{}) ([]models.ScheduleWindow, error) {
	return s.List(ctx, models.ScheduleFilter{
		Month:      fmt.Sprintf("%04d-%02d", year, int(month)),
		SemesterID: CoerceSemesterID(semesterID),
	})
}

// Get loads one window.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.ScheduleWindow, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "schedule id is required")
	}
	payload, err := s.api.Get(ctx, "/schedule/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	window, ok := normalize.Schedule(payload)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
	}
	return &window, nil
}

// Create registers a new window.
func (s *ScheduleService) Create(ctx context.Context, req models.SchedulePayload) error {
	if err := s.validate(req); err != nil {
		return err
	}
	if _, err := s.api.Post(ctx, "/schedule", scheduleBody(req)); err != nil {
		return err
	}
	s.logger.Info("schedule created", zap.String("schedule_type", string(req.ScheduleType)), zap.String("start", req.StartDate))
	return nil
}

// Update replaces a window.
func (s *ScheduleService) Update(ctx context.Context, id string, req models.SchedulePayload) error {
	if strings.TrimSpace(id) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "schedule id is required")
	}
	if err := s.validate(req); err != nil {
		return err
	}
	_, err := s.api.Put(ctx, "/schedule/"+url.PathEscape(id), scheduleBody(req))
	return err
}

// Delete removes a window.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "schedule id is required")
	}
	_, err := s.api.Delete(ctx, "/schedule/"+url.PathEscape(id))
	return err
}

func (s *ScheduleService) validate(req models.SchedulePayload) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	if req.StartDate > req.EndDate {
		return appErrors.Clone(appErrors.ErrValidation, "startDate must not be after endDate")
	}
	if _, ok := models.ParseScheduleType(string(req.ScheduleType)); !ok {
		return appErrors.Clone(appErrors.ErrValidation, "unknown scheduleType")
	}
	return nil
}

// scheduleBody sends the backend label for the type.
func scheduleBody(req models.SchedulePayload) map[string]interface{} {
	t, _ := models.ParseScheduleType(string(req.ScheduleType))
	return map[string]interface{}{
		"semesterId":   req.SemesterID,
		"scheduleType": t.Label(),
		"startDate":    req.StartDate,
		"endDate":      req.EndDate,
		"description":  req.Description,
	}
}

// SortWindows orders windows by start date, then by the display order of their type.
func SortWindows(windows []models.ScheduleWindow) {
	rank := make(map[models.ScheduleType]int, len(models.TypeOrder))
	for i, t := range models.TypeOrder {
		rank[t] = i
	}
	rankOf := func(t models.ScheduleType) int {
		if r, ok := rank[t]; ok {
			return r
		}
		return len(models.TypeOrder)
	}
	sort.SliceStable(windows, func(i, j int) bool {
		a, b := windows[i], windows[j]
		if a.StartDate.String != b.StartDate.String {
			if a.StartDate.Valid != b.StartDate.Valid {
				return a.StartDate.Valid
			}
			return a.StartDate.String < b.StartDate.String
		}
		return rankOf(a.ScheduleType) < rankOf(b.ScheduleType)
	})
}
