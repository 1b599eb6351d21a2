package service

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

const resetTokenBytes = 32

// NewResetToken returns 256 bits of cryptographically secure randomness in
// URL-safe base64 without padding, so the token can sit in a link verbatim.
func NewResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// TokenExpired reports whether a token with the given expiry is stale at now.
// Expiry is strict: a token is still valid at the exact expiry instant.
func TokenExpired(expiry, now time.Time) bool {
	return now.After(expiry)
}
