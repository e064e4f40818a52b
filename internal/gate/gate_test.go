package gate

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uniportal/internal/models"
)

type staticSession struct {
	state models.SessionState
}

func (s staticSession) Snapshot() models.SessionState { return s.state }

type countingRecorder struct {
	mu    sync.Mutex
	rules map[string]int
}

func (r *countingRecorder) RecordGateDecision(rule string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rules == nil {
		r.rules = map[string]int{}
	}
	r.rules[rule]++
}

func signedAs(role models.UserRole) models.SessionState {
	return models.SessionState{IsSigned: true, SignedUser: models.Session{UserID: 1, UserRole: role}}
}

func TestEvaluateRules(t *testing.T) {
	g := New(DefaultRules(), staticSession{}, nil, nil)

	tests := []struct {
		name     string
		target   string
		from     string
		state    models.SessionState
		expected Decision
	}{
		{
			name:     "signed in user visiting login goes to landing",
			target:   "/login",
			state:    models.SessionState{IsSigned: true},
			expected: Decision{Redirect: "/", Rule: RuleSignedInPublic},
		},
		{
			name:     "signed out user is sent to login",
			target:   "/notice",
			state:    models.SessionState{},
			expected: Decision{Redirect: "/login", Rule: RuleSignInRequired},
		},
		{
			name:     "student on professor page returns to previous path",
			target:   "/pro/attendance",
			from:     "/notice",
			state:    signedAs(models.RoleStudent),
			expected: Decision{Redirect: "/notice", Rule: RuleRoleMismatch},
		},
		{
			name:     "role mismatch without previous path lands",
			target:   "/aff/approval",
			state:    signedAs(models.RoleStudent),
			expected: Decision{Redirect: "/", Rule: RuleRoleMismatch},
		},
		{
			name:     "professor reaches professor page",
			target:   "/pro/course/management?tab=1",
			state:    signedAs(models.RoleProfessor),
			expected: Decision{Allowed: true, Rule: RuleAllow},
		},
		{
			name:     "prefix match requires a path boundary",
			target:   "/profile",
			state:    signedAs(models.RoleStudent),
			expected: Decision{Allowed: true, Rule: RuleAllow},
		},
		{
			name:     "signed out user may open public page",
			target:   "/renewal/",
			state:    models.SessionState{},
			expected: Decision{Allowed: true, Rule: RuleAllow},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, g.Evaluate(tc.target, tc.from, tc.state))
		})
	}
}

func TestRequiredRoleLongestPrefix(t *testing.T) {
	rules := DefaultRules()
	rules.RolePrefixes = append(rules.RolePrefixes, RolePrefix{Prefix: "/aff/approval/course", Role: models.RoleProfessor})
	g := New(rules, staticSession{}, nil, nil)

	role, ok := g.RequiredRole("/aff/approval/course")
	require.True(t, ok)
	assert.Equal(t, models.RoleProfessor, role)

	role, ok = g.RequiredRole("/aff/approval")
	require.True(t, ok)
	assert.Equal(t, models.RoleStaff, role)

	_, ok = g.RequiredRole("/notice")
	assert.False(t, ok)
}

func TestAuthorizeRecordsDecision(t *testing.T) {
	recorder := &countingRecorder{}
	g := New(DefaultRules(), staticSession{state: signedAs(models.RoleStaff)}, recorder, nil)

	decision, err := g.Authorize(context.Background(), "/aff/schedule", "/")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 1, recorder.rules[RuleAllow])
}

// blockingSession holds the first snapshot until released so a second
// authorization has to queue behind it.
type blockingSession struct {
	entered chan struct{}
	release chan struct{}
	active  int32
	overlap int32
	calls   int32
}

func (b *blockingSession) Snapshot() models.SessionState {
	if atomic.AddInt32(&b.active, 1) > 1 {
		atomic.StoreInt32(&b.overlap, 1)
	}
	defer atomic.AddInt32(&b.active, -1)
	if atomic.AddInt32(&b.calls, 1) == 1 {
		close(b.entered)
		<-b.release
	}
	return signedAs(models.RoleStudent)
}

func TestAuthorizeSerializesConcurrentNavigations(t *testing.T) {
	session := &blockingSession{entered: make(chan struct{}), release: make(chan struct{})}
	g := New(DefaultRules(), session, nil, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := g.Authorize(context.Background(), "/ent/enrollment", "/")
		assert.NoError(t, err)
	}()
	<-session.entered

	secondDone := make(chan struct{})
	go func() {
		defer wg.Done()
		defer close(secondDone)
		_, err := g.Authorize(context.Background(), "/notice", "/")
		assert.NoError(t, err)
	}()

	select {
	case <-secondDone:
		t.Fatal("second authorization finished while the first was in flight")
	case <-time.After(50 * time.Millisecond):
	}
	close(session.release)
	wg.Wait()

	assert.Equal(t, int32(0), atomic.LoadInt32(&session.overlap))
	assert.Equal(t, int32(2), atomic.LoadInt32(&session.calls))
}

func TestAuthorizeWaitingCallerHonorsContext(t *testing.T) {
	session := &blockingSession{entered: make(chan struct{}), release: make(chan struct{})}
	g := New(DefaultRules(), session, nil, nil)

	go func() {
		_, _ = g.Authorize(context.Background(), "/notice", "/")
	}()
	<-session.entered
	defer close(session.release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := g.Authorize(ctx, "/notice", "/")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCleanPath(t *testing.T) {
	assert.Equal(t, "/", CleanPath(""))
	assert.Equal(t, "/", CleanPath("/"))
	assert.Equal(t, "/notice", CleanPath("notice/"))
	assert.Equal(t, "/pro/attendance", CleanPath("/pro/attendance?week=2#top"))
}
