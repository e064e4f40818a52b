package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/noah-isme/uniportal/internal/models"
	appErrors "github.com/noah-isme/uniportal/pkg/errors"
)

type memStorage struct {
	mu     sync.Mutex
	data   map[string][]byte
	writes int
	failOn string
}

func newMemStorage() *memStorage {
	return &memStorage{data: map[string][]byte{}}
}

func (m *memStorage) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn == "get" {
		return nil, errors.New("backend down")
	}
	return m.data[key], nil
}

func (m *memStorage) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn == "set" {
		return errors.New("disk full")
	}
	m.writes++
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memStorage) state(t *testing.T, key string) models.SessionState {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	var state models.SessionState
	require.NoError(t, json.Unmarshal(m.data[key], &state))
	return state
}

type recordingNavigator struct {
	paths []string
}

func (n *recordingNavigator) Navigate(ctx context.Context, path string) error {
	n.paths = append(n.paths, path)
	return nil
}

func TestStoreLoadMissingStateUsesDefaults(t *testing.T) {
	store := New(newMemStorage(), Options{})
	require.NoError(t, store.Load(context.Background()))

	state := store.Snapshot()
	assert.False(t, state.IsSigned)
	assert.False(t, state.Checked)
	assert.Equal(t, models.Session{}, state.SignedUser)
}

func TestStoreLoadCorruptStateUsesDefaults(t *testing.T) {
	storage := newMemStorage()
	storage.data[DefaultKey] = []byte(`{"signedUser":`)

	store := New(storage, Options{})
	require.NoError(t, store.Load(context.Background()))
	assert.False(t, store.IsSigned())
}

func TestStoreLoadBackendFailure(t *testing.T) {
	storage := newMemStorage()
	storage.failOn = "get"

	err := New(storage, Options{}).Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStorage.Code, appErrors.FromError(err).Code)
}

func TestStoreRehydratesPersistedState(t *testing.T) {
	ctx := context.Background()
	storage := newMemStorage()

	first := New(storage, Options{})
	require.NoError(t, first.SetSignedUser(ctx, models.Session{UserID: 7, UserName: "Kim", UserRole: models.RoleStudent}))
	require.NoError(t, first.SetAccessToken(ctx, "tok"))

	second := New(storage, Options{})
	require.NoError(t, second.Load(ctx))
	state := second.Snapshot()
	assert.True(t, state.IsSigned)
	assert.Equal(t, int64(7), state.SignedUser.UserID)
	assert.Equal(t, models.RoleStudent, state.SignedUser.UserRole)
	assert.Equal(t, "tok", second.AccessToken())
}

func TestStoreSetSignedUserMergesInPlace(t *testing.T) {
	ctx := context.Background()
	storage := newMemStorage()
	store := New(storage, Options{})
	var record *models.Session
	store.WithSignedUser(func(u *models.Session) { record = u })

	require.NoError(t, store.SetSignedUser(ctx, models.Session{UserID: 1, UserName: "Lee", DeptName: "CS"}))
	require.NoError(t, store.SetSignedUser(ctx, models.Session{UserRole: models.RoleProfessor}))

	store.WithSignedUser(func(u *models.Session) {
		assert.Same(t, record, u)
		assert.Equal(t, "Lee", u.UserName)
	})
	assert.Equal(t, int64(1), record.UserID)
	assert.Equal(t, "Lee", record.UserName)
	assert.Equal(t, "CS", record.DeptName)
	assert.Equal(t, models.RoleProfessor, record.UserRole)
	assert.True(t, store.IsSigned())

	persisted := storage.state(t, DefaultKey)
	assert.True(t, persisted.IsSigned)
	assert.Equal(t, models.RoleProfessor, persisted.SignedUser.UserRole)
	assert.Equal(t, 2, storage.writes)
}

func TestStoreSignOutThenSignInResetsPic(t *testing.T) {
	ctx := context.Background()
	storage := newMemStorage()
	nav := &recordingNavigator{}
	store := New(storage, Options{Navigator: nav})

	require.NoError(t, store.SetSignedUser(ctx, models.Session{UserID: 1, UserName: "Lee"}))
	require.NoError(t, store.SetUserPic(ctx, null.StringFrom("lee.png")))
	require.NoError(t, store.SetChecked(ctx, true))

	require.NoError(t, store.SignOut(ctx))
	assert.False(t, store.IsSigned())
	assert.Equal(t, []string{"/login"}, nav.paths)
	persisted := storage.state(t, DefaultKey)
	assert.False(t, persisted.IsSigned)
	assert.False(t, persisted.Checked)

	require.NoError(t, store.SetSignedUser(ctx, models.Session{UserID: 2, UserName: "Park"}))
	state := store.Snapshot()
	assert.True(t, state.IsSigned)
	assert.Equal(t, int64(2), state.SignedUser.UserID)
	assert.Equal(t, "Park", state.SignedUser.UserName)
	assert.False(t, state.SignedUser.Pic.Valid)
}

func TestStoreSignOutKeepsResetWhenPersistFails(t *testing.T) {
	ctx := context.Background()
	storage := newMemStorage()
	nav := &recordingNavigator{}
	store := New(storage, Options{Navigator: nav, LoginPath: "/signin"})
	require.NoError(t, store.SetSignedUser(ctx, models.Session{UserID: 3}))

	storage.failOn = "set"
	err := store.SignOut(ctx)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStorage.Code, appErrors.FromError(err).Code)
	assert.False(t, store.IsSigned())
	assert.Equal(t, []string{"/signin"}, nav.paths)
}

func TestStoreExpireHookSignsOut(t *testing.T) {
	ctx := context.Background()
	nav := &recordingNavigator{}
	store := New(newMemStorage(), Options{Navigator: nav})
	require.NoError(t, store.SetSignedUser(ctx, models.Session{UserID: 9}))

	store.ExpireHook()(ctx)
	assert.False(t, store.IsSigned())
	assert.Equal(t, []string{"/login"}, nav.paths)
}

func TestStoreSignedUserReadsDoNotRaceWithWrites(t *testing.T) {
	ctx := context.Background()
	store := New(newMemStorage(), Options{})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = store.SetSignedUser(ctx, models.Session{UserID: int64(i + 1), UserName: fmt.Sprintf("user-%d", i)})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			store.WithSignedUser(func(u *models.Session) { _ = u.UserName })
			_ = store.SignedUser().UserName
			_ = store.Snapshot().SignedUser.UserName
		}
	}()
	wg.Wait()

	assert.Equal(t, "user-199", store.Snapshot().SignedUser.UserName)
}
