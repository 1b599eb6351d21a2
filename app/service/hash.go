package service

import (
	"crypto/subtle"
	"encoding/base64"

	"golang.org/x/crypto/sha3"
)

// HashPassword produces the stored digest for a plaintext password:
// SHA3-256 over the UTF-8 bytes, base64-encoded so it fits a text column.
// The transform is deterministic; verification re-hashes and compares.
func HashPassword(plaintext string) string {
	digest := sha3.Sum256([]byte(plaintext))
	return base64.StdEncoding.EncodeToString(digest[:])
}

// VerifyPassword reports whether plaintext hashes to the stored digest.
// The comparison is constant-time.
func VerifyPassword(plaintext, digest string) bool {
	computed := HashPassword(plaintext)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}
