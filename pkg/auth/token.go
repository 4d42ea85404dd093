// Package auth implements the shared-secret bearer authentication used
// between the desktop application and the local backend services.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
)

var ErrInvalidToken = errors.New("invalid bearer token")

// Verifier holds the shared secret and performs constant-time comparison
// against presented tokens.
type Verifier struct {
	secret    []byte
	generated bool
}

// NewVerifier builds a Verifier from a configured secret. When the secret is
// empty a random one is generated; Generated reports that so the caller can
// log it (the desktop app reads the token from the startup log in that mode).
func NewVerifier(secret string) (*Verifier, error) {
	if secret != "" {
		return &Verifier{secret: []byte(secret)}, nil
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generating shared secret: %w", err)
	}
	return &Verifier{
		secret:    []byte(base64.RawURLEncoding.EncodeToString(buf)),
		generated: true,
	}, nil
}

// Generated reports whether the secret was generated at startup rather than
// configured through the environment.
func (v *Verifier) Generated() bool {
	return v.generated
}

// Secret returns the active token. Only intended for startup logging when
// the token was generated.
func (v *Verifier) Secret() string {
	return string(v.secret)
}

// Verify compares a presented token against the shared secret in constant
// time.
func (v *Verifier) Verify(token string) error {
	if subtle.ConstantTimeCompare([]byte(token), v.secret) != 1 {
		return ErrInvalidToken
	}
	return nil
}
