package service

import (
	"context"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uniportal/internal/models"
	"github.com/noah-isme/uniportal/internal/normalize"
	appErrors "github.com/noah-isme/uniportal/pkg/errors"
)

// ApprovalService lets staff review applications.
type ApprovalService struct {
	api       portalClient
	validator *validator.Validate
	logger    *zap.Logger
}

// NewApprovalService creates an approval service.
func NewApprovalService(api portalClient, validate *validator.Validate, logger *zap.Logger) *ApprovalService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApprovalService{api: api, validator: validate, logger: logger}
}

// List returns applications awaiting or past review for a year.
func (s *ApprovalService) List(ctx context.Context, filter models.ApprovalFilter) ([]models.Application, error) {
	if filter.Year <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "year is required")
	}
	query := url.Values{"year": {strconv.Itoa(filter.Year)}}
	if filter.Semester > 0 {
		query.Set("semester", strconv.Itoa(filter.Semester))
	}
	if filter.ScheduleType != "" {
		query.Set("scheduleType", filter.ScheduleType.Label())
	}
	payload, err := s.api.Get(ctx, "/staff/approval", query)
	if err != nil {
		if appErrors.IsNotFound(err) {
			return []models.Application{}, nil
		}
		return nil, err
	}
	return normalize.Applications(payload), nil
}

// Decide approves or rejects an application.
func (s *ApprovalService) Decide(ctx context.Context, req models.DecisionRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid decision payload")
	}
	body := map[string]interface{}{
		"appId":        req.AppID,
		"userId":       req.UserID,
		"status":       req.Status.Label(),
		"scheduleType": req.ScheduleType.Label(),
	}
	if _, err := s.api.Patch(ctx, "/staff/approval", nil, body); err != nil {
		return err
	}
	s.logger.Info("application decided",
		zap.String("app_id", req.AppID),
		zap.String("status", string(req.Status)),
	)
	return nil
}
