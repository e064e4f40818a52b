package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uniportal/internal/models"
	"github.com/noah-isme/uniportal/internal/normalize"
	appErrors "github.com/noah-isme/uniportal/pkg/errors"
)

// NoticeService reads and manages portal announcements.
type NoticeService struct {
	api       portalClient
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNoticeService creates a notice service.
func NewNoticeService(api portalClient, validate *validator.Validate, logger *zap.Logger) *NoticeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoticeService{api: api, validator: validate, logger: logger}
}

// List searches notices. The keyword matches title and content unless
// TitleOnly is set. A 404 is an empty page.
func (s *NoticeService) List(ctx context.Context, filter models.NoticeFilter) ([]models.Notice, error) {
	query := url.Values{}
	setText(query, "keyword", filter.Keyword)
	setPositive(query, "page", int64(filter.Page))
	setPositive(query, "size", int64(filter.Size))

	path := "/notice"
	if filter.TitleOnly && query.Has("keyword") {
		path = "/notice/noticeTitle"
	}
	payload, err := s.api.Get(ctx, path, query)
	if err != nil {
		if appErrors.IsNotFound(err) {
			return []models.Notice{}, nil
		}
		return nil, err
	}
	return normalize.Notices(payload), nil
}

// Get loads one notice.
func (s *NoticeService) Get(ctx context.Context, noticeID string) (*models.Notice, error) {
	path, err := noticePath(noticeID)
	if err != nil {
		return nil, err
	}
	payload, err := s.api.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	notice, ok := normalize.Notice(payload)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "notice not found")
	}
	return &notice, nil
}

// Create posts a notice.
func (s *NoticeService) Create(ctx context.Context, req models.NoticePayload) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notice payload")
	}
	if _, err := s.api.Post(ctx, "/notice", req); err != nil {
		return err
	}
	s.logger.Info("notice posted", zap.String("title", req.Title))
	return nil
}

// Update edits a notice.
func (s *NoticeService) Update(ctx context.Context, noticeID string, req models.NoticePayload) error {
	path, err := noticePath(noticeID)
	if err != nil {
		return err
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notice payload")
	}
	_, err = s.api.Put(ctx, path, req)
	return err
}

// Delete removes a notice.
func (s *NoticeService) Delete(ctx context.Context, noticeID string) error {
	path, err := noticePath(noticeID)
	if err != nil {
		return err
	}
	if _, err := s.api.Delete(ctx, path); err != nil {
		return err
	}
	s.logger.Info("notice deleted", zap.String("notice_id", noticeID))
	return nil
}

func noticePath(noticeID string) (string, error) {
	id := strings.TrimSpace(noticeID)
	if id == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "noticeId is required")
	}
	return "/notice/" + url.PathEscape(id), nil
}
