package service

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/noah-isme/uniportal/internal/models"
	"github.com/noah-isme/uniportal/internal/normalize"
	appErrors "github.com/noah-isme/uniportal/pkg/errors"
)

// ApplicationService submits and tracks a user's applications.
type ApplicationService struct {
	api       portalClient
	validator *validator.Validate
	logger    *zap.Logger
}

// NewApplicationService creates an application service.
func NewApplicationService(api portalClient, validate *validator.Validate, logger *zap.Logger) *ApplicationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{api: api, validator: validate, logger: logger}
}

// My lists the applications submitted by the user. Both listing routes are
// tried; a 404 from both is an empty list.
func (s *ApplicationService) My(ctx context.Context, userID int64) ([]models.Application, error) {
	if userID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "userId is required")
	}
	query := url.Values{"userId": {strconv.FormatInt(userID, 10)}}
	for _, path := range []string{"/application/my", "/application/me"} {
		payload, err := s.api.Get(ctx, path, query)
		if err != nil {
			if appErrors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		return normalize.Applications(payload), nil
	}
	return []models.Application{}, nil
}

// IsOpen asks the backend whether the window accepts applications.
func (s *ApplicationService) IsOpen(ctx context.Context, scheduleID string) (bool, error) {
	if strings.TrimSpace(scheduleID) == "" {
		return false, appErrors.Clone(appErrors.ErrValidation, "scheduleId is required")
	}
	payload, err := s.api.Get(ctx, "/application/is-open", url.Values{"scheduleId": {scheduleID}})
	if err != nil {
		return false, err
	}
	return openFlag(payload), nil
}

// Create submits an application. A window the backend reports as closed is
// rejected locally; an unknown answer defers to the backend.
func (s *ApplicationService) Create(ctx context.Context, req models.CreateApplicationRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}
	if err := s.ensureOpen(ctx, req.ScheduleID); err != nil {
		return err
	}
	body := map[string]interface{}{
		"userId":       req.UserID,
		"scheduleId":   req.ScheduleID,
		"scheduleType": req.ScheduleType.Label(),
		"reason":       req.Reason,
	}
	if req.SemesterID > 0 {
		body["semesterId"] = req.SemesterID
	}
	if _, err := s.api.Post(ctx, "/application", body); err != nil {
		return err
	}
	s.logger.Info("application submitted",
		zap.Int64("user_id", req.UserID),
		zap.String("schedule_id", req.ScheduleID),
		zap.String("schedule_type", string(req.ScheduleType)),
	)
	return nil
}

// CreateForReason submits a reason-only application such as a leave request.
func (s *ApplicationService) CreateForReason(ctx context.Context, req models.ReasonApplicationRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}
	if err := s.ensureOpen(ctx, req.ScheduleID); err != nil {
		return err
	}
	_, err := s.api.Post(ctx, "/application/reason", map[string]interface{}{
		"userId":       req.UserID,
		"scheduleId":   req.ScheduleID,
		"scheduleType": req.ScheduleType.Label(),
		"reason":       strings.TrimSpace(req.Reason),
	})
	return err
}

// Cancel withdraws a pending application owned by the user.
func (s *ApplicationService) Cancel(ctx context.Context, userID int64, appID string) error {
	if strings.TrimSpace(appID) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "appId is required")
	}
	apps, err := s.My(ctx, userID)
	if err != nil {
		return err
	}
	var target *models.Application
	for i := range apps {
		if apps[i].AppID == appID {
			target = &apps[i]
			break
		}
	}
	if target == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "application not found")
	}
	if !target.Cancellable() {
		return appErrors.Clone(appErrors.ErrAlreadyDecided, "application "+appID+" is "+target.Status.Label())
	}
	query := url.Values{"userId": {strconv.FormatInt(userID, 10)}}
	if _, err := s.api.Patch(ctx, "/application/"+url.PathEscape(appID)+"/cancel", query, nil); err != nil {
		return err
	}
	s.logger.Info("application cancelled", zap.Int64("user_id", userID), zap.String("app_id", appID))
	return nil
}

func (s *ApplicationService) ensureOpen(ctx context.Context, scheduleID string) error {
	open, err := s.IsOpen(ctx, scheduleID)
	if err != nil {
		if appErrors.IsNotFound(err) {
			return nil
		}
		return err
	}
	if !open {
		return appErrors.Clone(appErrors.ErrWindowClosed, "schedule "+scheduleID+" is not accepting applications")
	}
	return nil
}

// openFlag reads true, {"open": true}, {"isOpen": true} or {"data": true}.
func openFlag(payload interface{}) bool {
	if obj, ok := payload.(map[string]interface{}); ok {
		for _, key := range []string{"open", "isOpen", "data", "result"} {
			if v, ok := obj[key]; ok {
				return openFlag(v)
			}
		}
		return false
	}
	open, err := cast.ToBoolE(payload)
	return err == nil && open
}
