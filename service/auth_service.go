package service

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// AuthGate checks a caller-presented secret against the configured shared secret.
// Both values are hashed to fixed-length digests before a constant-time compare,
// so neither a shared prefix nor the length of the secret is observable through timing.
type AuthGate struct {
	digest [blake2b.Size256]byte
}

// NewAuthGate refuses an empty or blank secret.
func NewAuthGate(secret string) (*AuthGate, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}
	return &AuthGate{digest: blake2b.Sum256([]byte(secret))}, nil
}

// Authorize reports whether presented equals the configured secret. It has no side effects.
func (g *AuthGate) Authorize(presented string) bool {
	if g == nil || presented == "" {
		return false
	}
	sum := blake2b.Sum256([]byte(presented))
	return subtle.ConstantTimeCompare(sum[:], g.digest[:]) == 1
}
