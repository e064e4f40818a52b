// Package gate decides whether a navigation target may be entered with the
// current session, and where to go instead when it may not.
package gate

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/noah-isme/uniportal/internal/models"
)

// Rule names carried by decisions and metrics.
const (
	RuleSignedInPublic = "signed_in_public"
	RuleSignInRequired = "sign_in_required"
	RuleRoleMismatch   = "role_mismatch"
	RuleAllow          = "allow"
)

// RolePrefix restricts every path under Prefix to Role.
type RolePrefix struct {
	Prefix string
	Role   models.UserRole
}

// Rules is the static routing table the gate evaluates.
type Rules struct {
	PublicPaths  []string
	RolePrefixes []RolePrefix
	LandingPath  string
	LoginPath    string
}

// DefaultRules mirrors the portal's route layout.
func DefaultRules() Rules {
	return Rules{
		PublicPaths: []string{"/login", "/id", "/renewal"},
		RolePrefixes: []RolePrefix{
			{Prefix: "/pro", Role: models.RoleProfessor},
			{Prefix: "/ent", Role: models.RoleStudent},
			{Prefix: "/aff", Role: models.RoleStaff},
		},
		LandingPath: "/",
		LoginPath:   "/login",
	}
}

// Decision is the outcome of one authorization. Redirect is empty when allowed.
type Decision struct {
	Allowed  bool   `json:"allowed"`
	Redirect string `json:"redirect,omitempty"`
	Rule     string `json:"rule"`
}

// SessionReader exposes the session snapshot the gate decides on.
type SessionReader interface {
	Snapshot() models.SessionState
}

type decisionRecorder interface {
	RecordGateDecision(rule string)
}

// Gate serializes authorizations so each one reads the session only after the
// previous decision has settled.
type Gate struct {
	rules   Rules
	public  map[string]struct{}
	session SessionReader
	sem     *semaphore.Weighted
	metrics decisionRecorder
	logger  *zap.Logger
}

// New builds a gate over the rules. Empty landing and login paths fall back to
// the defaults.
func New(rules Rules, session SessionReader, metrics decisionRecorder, logger *zap.Logger) *Gate {
	defaults := DefaultRules()
	if rules.LandingPath == "" {
		rules.LandingPath = defaults.LandingPath
	}
	if rules.LoginPath == "" {
		rules.LoginPath = defaults.LoginPath
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	public := make(map[string]struct{}, len(rules.PublicPaths))
	for _, p := range rules.PublicPaths {
		public[CleanPath(p)] = struct{}{}
	}
	return &Gate{
		rules:   rules,
		public:  public,
		session: session,
		sem:     semaphore.NewWeighted(1),
		metrics: metrics,
		logger:  logger,
	}
}

// Authorize decides navigation from "from" to "target". A caller arriving while
// another authorization is in flight waits for it; a cancelled context while
// waiting returns the context error.
func (g *Gate) Authorize(ctx context.Context, target, from string) (Decision, error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return Decision{}, err
	}
	defer g.sem.Release(1)

	decision := g.Evaluate(target, from, g.session.Snapshot())
	if g.metrics != nil {
		g.metrics.RecordGateDecision(decision.Rule)
	}
	g.logger.Debug("navigation decided",
		zap.String("target", target),
		zap.String("rule", decision.Rule),
		zap.String("redirect", decision.Redirect),
	)
	return decision, nil
}

// Evaluate applies the rules in order against a session snapshot; the first
// matching rule decides.
func (g *Gate) Evaluate(target, from string, state models.SessionState) Decision {
	path := CleanPath(target)
	_, public := g.public[path]

	switch {
	case public && state.IsSigned:
		return Decision{Redirect: g.rules.LandingPath, Rule: RuleSignedInPublic}
	case !public && !state.IsSigned:
		return Decision{Redirect: g.rules.LoginPath, Rule: RuleSignInRequired}
	}

	if required, ok := g.RequiredRole(path); ok && state.SignedUser.UserRole != required {
		back := CleanPath(from)
		if strings.TrimSpace(from) == "" || back == path {
			back = g.rules.LandingPath
		}
		return Decision{Redirect: back, Rule: RuleRoleMismatch}
	}
	return Decision{Allowed: true, Rule: RuleAllow}
}

// RequiredRole returns the role a path is restricted to. The longest matching
// prefix wins; a prefix matches itself and anything below it.
func (g *Gate) RequiredRole(path string) (models.UserRole, bool) {
	path = CleanPath(path)
	var (
		role models.UserRole
		best = -1
	)
	for _, rp := range g.rules.RolePrefixes {
		prefix := CleanPath(rp.Prefix)
		if path != prefix && !strings.HasPrefix(path, strings.TrimSuffix(prefix, "/")+"/") {
			continue
		}
		if len(prefix) > best {
			role, best = rp.Role, len(prefix)
		}
	}
	return role, best >= 0
}

// CleanPath drops the query and fragment and any trailing slash.
func CleanPath(p string) string {
	p = strings.TrimSpace(p)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = "/"
		}
	}
	return p
}
