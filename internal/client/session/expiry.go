package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// nowFn is a test seam for the clock.
var nowFn = time.Now

// IsExpired reports whether the token's exp claim is in the past. The token
// is decoded without signature verification; only the client cares about
// expiry here, the server still validates every token it receives.
//
// Undecodable tokens and tokens without an exp claim are reported as not
// expired: the server is the authority, and a spurious refresh for every
// opaque token would be worse than one extra 401.
func IsExpired(token string) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !nowFn().Before(claims.ExpiresAt.Time)
}
