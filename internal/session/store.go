// Package session holds the signed-in identity for the lifetime of the
// process and mirrors every change to durable storage.
package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"github.com/noah-isme/uniportal/internal/models"
	appErrors "github.com/noah-isme/uniportal/pkg/errors"
)

// DefaultKey is the storage key of the persisted state.
const DefaultKey = "authentication"

// DefaultLoginPath is where SignOut navigates.
const DefaultLoginPath = "/login"

// Storage persists raw state under a key. Get returns nil, nil for a missing key.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Navigator performs the navigation side effect of a sign-out.
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, path string) error

// Navigate calls f.
func (f NavigatorFunc) Navigate(ctx context.Context, path string) error {
	return f(ctx, path)
}

// Options tunes a Store.
type Options struct {
	Key       string
	LoginPath string
	Navigator Navigator
	Logger    *zap.Logger
}

// Store is the session container. The SignedUser record keeps its address for
// the store's lifetime; mutations update it in place.
type Store struct {
	mu        sync.RWMutex
	user      *models.Session
	isSigned  bool
	checked   bool
	token     string
	storage   Storage
	key       string
	loginPath string
	navigator Navigator
	logger    *zap.Logger
}

// New creates a store with default state. Call Load to rehydrate it.
func New(storage Storage, opts Options) *Store {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.LoginPath == "" {
		opts.LoginPath = DefaultLoginPath
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Store{
		user:      &models.Session{},
		storage:   storage,
		key:       opts.Key,
		loginPath: opts.LoginPath,
		navigator: opts.Navigator,
		logger:    opts.Logger,
	}
}

// Load rehydrates from storage. Missing or corrupt state leaves the defaults in
// place and is not an error; only a failing storage backend is.
func (s *Store) Load(ctx context.Context) error {
	raw, err := s.storage.Get(ctx, s.key)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "load session")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	if len(raw) == 0 {
		return nil
	}
	var state models.SessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		s.logger.Warn("discarding corrupt session state", zap.String("key", s.key), zap.Error(err))
		return nil
	}
	*s.user = state.SignedUser
	s.isSigned = state.IsSigned
	s.checked = state.Checked
	s.token = state.AccessToken
	return nil
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() models.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

// SignedUser returns a copy of the signed-in record.
func (s *Store) SignedUser() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.user
}

// WithSignedUser calls fn with the live record under the read lock. The record
// keeps its address across mutations; fn must not retain or write through it.
func (s *Store) WithSignedUser(fn func(user *models.Session)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.user)
}

// IsSigned reports whether a user is signed in.
func (s *Store) IsSigned() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isSigned
}

// AccessToken returns the persisted bearer token.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetSignedUser merges the non-zero fields of user into the record and marks
// the session signed in.
func (s *Store) SetSignedUser(ctx context.Context, user models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	merge(s.user, user)
	s.isSigned = true
	return s.persistLocked(ctx)
}

// SetUserPic replaces the profile picture.
func (s *Store) SetUserPic(ctx context.Context, pic null.String) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user.Pic = pic
	return s.persistLocked(ctx)
}

// SetChecked records whether the session was confirmed with the backend.
func (s *Store) SetChecked(ctx context.Context, checked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checked = checked
	return s.persistLocked(ctx)
}

// SetAccessToken stores the bearer token alongside the identity.
func (s *Store) SetAccessToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return s.persistLocked(ctx)
}

// SignOut resets every field, persists the reset and navigates to the login
// path. A navigation failure is logged; the reset stands.
func (s *Store) SignOut(ctx context.Context) error {
	s.mu.Lock()
	s.resetLocked()
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	if s.navigator != nil {
		if navErr := s.navigator.Navigate(ctx, s.loginPath); navErr != nil {
			s.logger.Warn("navigation after sign-out failed", zap.String("path", s.loginPath), zap.Error(navErr))
		}
	}
	s.logger.Info("signed out")
	return err
}

// ExpireHook adapts SignOut to the transport's auth-expired callback.
func (s *Store) ExpireHook() func(context.Context) {
	return func(ctx context.Context) {
		if err := s.SignOut(ctx); err != nil {
			s.logger.Error("forced sign-out failed", zap.Error(err))
		}
	}
}

func (s *Store) resetLocked() {
	*s.user = models.Session{}
	s.isSigned = false
	s.checked = false
	s.token = ""
}

func (s *Store) stateLocked() models.SessionState {
	return models.SessionState{
		SignedUser:  *s.user,
		IsSigned:    s.isSigned,
		Checked:     s.checked,
		AccessToken: s.token,
	}
}

func (s *Store) persistLocked(ctx context.Context) error {
	raw, err := json.Marshal(s.stateLocked())
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode session")
	}
	if err := s.storage.Set(ctx, s.key, raw); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "persist session")
	}
	return nil
}

func merge(dst *models.Session, src models.Session) {
	if src.UserID != 0 {
		dst.UserID = src.UserID
	}
	if src.UserName != "" {
		dst.UserName = src.UserName
	}
	if src.LoginID != "" {
		dst.LoginID = src.LoginID
	}
	if src.UserRole != "" {
		dst.UserRole = src.UserRole
	}
	if src.SemesterID != 0 {
		dst.SemesterID = src.SemesterID
	}
	if src.DeptName != "" {
		dst.DeptName = src.DeptName
	}
	if src.Pic.Valid {
		dst.Pic = src.Pic
	}
}
