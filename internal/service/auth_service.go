package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"github.com/noah-isme/uniportal/internal/models"
	"github.com/noah-isme/uniportal/internal/normalize"
	appErrors "github.com/noah-isme/uniportal/pkg/errors"
)

type tokenHolder interface {
	SetToken(token string)
}

type sessionStore interface {
	Snapshot() models.SessionState
	SetSignedUser(ctx context.Context, user models.Session) error
	SetUserPic(ctx context.Context, pic null.String) error
	SetChecked(ctx context.Context, checked bool) error
	SetAccessToken(ctx context.Context, token string) error
	SignOut(ctx context.Context) error
}

// AuthService signs users in and out against the portal backend and keeps the
// session store in step.
type AuthService struct {
	api       portalClient
	tokens    tokenHolder
	store     sessionStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(api portalClient, tokens tokenHolder, store sessionStore, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{api: api, tokens: tokens, store: store, validator: validate, logger: logger}
}

// Login authenticates with the backend and populates the session.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	payload, err := s.api.Post(ctx, "/user/login", map[string]string{
		"loginId":  strings.TrimSpace(req.LoginID),
		"password": req.Password,
	})
	if err != nil {
		if appErrors.IsUnauthorized(err) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid login id or password")
		}
		return nil, err
	}

	user, ok := normalize.Session(payload)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUpstream, "login response carried no user")
	}
	token := accessTokenFrom(payload)
	if token != "" {
		s.tokens.SetToken(token)
	}

	if err := s.store.SetSignedUser(ctx, user); err != nil {
		return nil, err
	}
	if err := s.store.SetAccessToken(ctx, token); err != nil {
		return nil, err
	}
	if err := s.store.SetChecked(ctx, true); err != nil {
		return nil, err
	}

	s.logger.Info("signed in", zap.Int64("user_id", user.UserID), zap.String("role", string(user.UserRole)))
	return &models.LoginResponse{AccessToken: token, User: s.store.Snapshot().SignedUser}, nil
}

// Logout tells the backend and clears the session. A failed backend call is
// logged and does not keep the session alive.
func (s *AuthService) Logout(ctx context.Context) error {
	if _, err := s.api.Post(ctx, "/user/logout", nil); err != nil {
		s.logger.Warn("backend logout failed", zap.Error(err))
	}
	s.tokens.SetToken("")
	return s.store.SignOut(ctx)
}

// Refresh reloads the profile of the signed-in user and marks the session as
// checked. A 401 here has already forced a sign-out through the transport.
func (s *AuthService) Refresh(ctx context.Context) (*models.Session, error) {
	if !s.store.Snapshot().IsSigned {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "not signed in")
	}
	payload, err := s.api.Get(ctx, "/user/profile", nil)
	if err != nil {
		return nil, err
	}
	if user, ok := normalize.Session(payload); ok {
		if err := s.store.SetSignedUser(ctx, user); err != nil {
			return nil, err
		}
	}
	if pic, ok := picFrom(payload); ok {
		if err := s.store.SetUserPic(ctx, pic); err != nil {
			return nil, err
		}
	}
	if err := s.store.SetChecked(ctx, true); err != nil {
		return nil, err
	}
	user := s.store.Snapshot().SignedUser
	return &user, nil
}

// UpdatePic uploads a new profile picture reference. An invalid pic removes it.
func (s *AuthService) UpdatePic(ctx context.Context, pic null.String) error {
	var err error
	if pic.Valid {
		_, err = s.api.Patch(ctx, "/user/profile", nil, map[string]string{"pic": pic.String})
	} else {
		_, err = s.api.Delete(ctx, "/user/profile")
	}
	if err != nil {
		return err
	}
	return s.store.SetUserPic(ctx, pic)
}

func accessTokenFrom(payload interface{}) string {
	obj, ok := payload.(map[string]interface{})
	if !ok {
		return ""
	}
	for _, key := range []string{"accessToken", "access_token", "token"} {
		if s, ok := obj[key].(string); ok && s != "" {
			return s
		}
	}
	for _, key := range []string{"data", "result"} {
		if token := accessTokenFrom(obj[key]); token != "" {
			return token
		}
	}
	return ""
}

func picFrom(payload interface{}) (null.String, bool) {
	obj, ok := payload.(map[string]interface{})
	if !ok {
		return null.String{}, false
	}
	if inner, ok := obj["data"].(map[string]interface{}); ok {
		obj = inner
	}
	v, ok := obj["pic"]
	if !ok {
		return null.String{}, false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return null.String{}, true
	}
	return null.StringFrom(s), true
}
