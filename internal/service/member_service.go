package service

import (
	"context"
	"net/url"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uniportal/internal/models"
	"github.com/noah-isme/uniportal/internal/normalize"
	appErrors "github.com/noah-isme/uniportal/pkg/errors"
)

// MemberService lists portal accounts and keeps the signed-in user's contact
// record.
type MemberService struct {
	api       portalClient
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMemberService creates a member service.
func NewMemberService(api portalClient, validate *validator.Validate, logger *zap.Logger) *MemberService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemberService{api: api, validator: validate, logger: logger}
}

// List returns accounts matching filter. A 404 is an empty page.
func (s *MemberService) List(ctx context.Context, filter models.MemberFilter) ([]models.Member, error) {
	query := url.Values{}
	setText(query, "role", string(filter.Role))
	setPositive(query, "deptId", filter.DeptID)
	setText(query, "keyword", filter.Keyword)
	setPositive(query, "page", int64(filter.Page))
	setPositive(query, "size", int64(filter.Size))

	payload, err := s.api.Get(ctx, "/user/list", query)
	if err != nil {
		if appErrors.IsNotFound(err) {
			return []models.Member{}, nil
		}
		return nil, err
	}
	return normalize.Members(payload), nil
}

// Privacy loads the signed-in user's contact record.
func (s *MemberService) Privacy(ctx context.Context) (*models.Privacy, error) {
	payload, err := s.api.Get(ctx, "/renewal/privacy", nil)
	if err != nil {
		return nil, err
	}
	p, ok := normalize.Privacy(payload)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "privacy record not found")
	}
	return &p, nil
}

// UpdatePrivacy replaces the signed-in user's contact record.
func (s *MemberService) UpdatePrivacy(ctx context.Context, req models.Privacy) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid privacy payload")
	}
	if _, err := s.api.Put(ctx, "/renewal/privacy", req); err != nil {
		return err
	}
	s.logger.Info("privacy updated")
	return nil
}
