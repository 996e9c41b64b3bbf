package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenWellFormed reports whether a persisted credential is structurally a
// JWT whose claims decode and are not already expired. The signature is not
// verified: the client never holds the signing secret, and the backend
// rejects forged tokens with a 401 anyway. This only filters out garbage
// left in storage so a restore never produces a half-trusted session.
func tokenWellFormed(token string) bool {
	parser := jwt.NewParser()
	claims := &jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return false
	}
	return true
}
