package apiclient

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are the fields read from an access token without verifying it.
// The portal backend owns the signing key; the client only inspects expiry
// and subject for display and proactive reissue.
type TokenClaims struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

// InspectToken parses a JWT without verifying its signature. ok is false when
// the token is empty or not a JWT.
func InspectToken(token string) (TokenClaims, bool) {
	if token == "" {
		return TokenClaims{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenClaims{}, false
	}

	out := TokenClaims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	for _, key := range []string{"role", "userRole", "auth"} {
		if role, ok := claims[key].(string); ok {
			out.Role = role
			break
		}
	}
	return out, true
}

// TokenExpired reports whether a JWT carries an expiry at or before now.
// Opaque or expiry-less tokens are never considered expired.
func TokenExpired(token string, now time.Time) bool {
	claims, ok := InspectToken(token)
	if !ok || claims.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(claims.ExpiresAt)
}
