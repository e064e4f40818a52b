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

// DeptService manages academic departments for staff.
type DeptService struct {
	api       portalClient
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDeptService creates a department service.
func NewDeptService(api portalClient, validate *validator.Validate, logger *zap.Logger) *DeptService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeptService{api: api, validator: validate, logger: logger}
}

// List returns every department with its management fields.
func (s *DeptService) List(ctx context.Context) ([]models.Dept, error) {
	return s.list(ctx, "/dept")
}

// Names returns the short department list used by course filters.
func (s *DeptService) Names(ctx context.Context) ([]models.Dept, error) {
	return s.list(ctx, "/dept/list")
}

func (s *DeptService) list(ctx context.Context, path string) ([]models.Dept, error) {
	payload, err := s.api.Get(ctx, path, nil)
	if err != nil {
		if appErrors.IsNotFound(err) {
			return []models.Dept{}, nil
		}
		return nil, err
	}
	return normalize.Depts(payload), nil
}

// Head returns the head of a department. The result's DeptID is set to deptID
// when the backend omits it.
func (s *DeptService) Head(ctx context.Context, deptID int64) (*models.Dept, error) {
	if deptID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "deptId is required")
	}
	payload, err := s.api.Get(ctx, "/dept/head", url.Values{"dept_id": {strconv.FormatInt(deptID, 10)}})
	if err != nil {
		return nil, err
	}
	head, ok := normalize.Dept(payload)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "department head not found")
	}
	if head.DeptID == 0 {
		head.DeptID = deptID
	}
	return &head, nil
}

// Create opens a department.
func (s *DeptService) Create(ctx context.Context, req models.DeptPayload) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid department payload")
	}
	if _, err := s.api.Post(ctx, "/dept", req); err != nil {
		return err
	}
	s.logger.Info("department created", zap.String("dept_name", req.DeptName))
	return nil
}

// Update edits a department identified by req.DeptID.
func (s *DeptService) Update(ctx context.Context, req models.DeptPayload) error {
	if req.DeptID <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "deptId is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid department payload")
	}
	_, err := s.api.Put(ctx, "/dept", req)
	return err
}

// ToggleStatus flips a department between open and closed.
func (s *DeptService) ToggleStatus(ctx context.Context, deptID int64) error {
	if deptID <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "deptId is required")
	}
	if _, err := s.api.Patch(ctx, "/dept", url.Values{"id": {strconv.FormatInt(deptID, 10)}}, nil); err != nil {
		return err
	}
	s.logger.Info("department status toggled", zap.Int64("dept_id", deptID))
	return nil
}
