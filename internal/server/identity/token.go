package identity

import (
	"errors"

	"github.com/dmitrijs2005/filehub/internal/shared"
)

// DefaultTokenBytes is the entropy of a session token. The hex form is
// twice as long.
const DefaultTokenBytes = 64

// maxTokenAttempts bounds the collision-retry loop. The token space vastly
// exceeds any realistic in-use set, so hitting the bound means the entropy
// source is broken.
const maxTokenAttempts = 100

// TokenSource produces session tokens.
type TokenSource interface {
	// NewToken returns a token for which inUse reports false. inUse may be
	// nil when no uniqueness check is needed.
	NewToken(inUse func(string) bool) (string, error)
}

// RandomTokenSource draws tokens from crypto/rand and retries against the
// in-use set, guaranteeing uniqueness at the moment of issuance.
type RandomTokenSource struct {
	// Bytes of entropy per token; DefaultTokenBytes when zero.
	Bytes int
}

func (s *RandomTokenSource) NewToken(inUse func(string) bool) (string, error) {
	n := s.Bytes
	if n <= 0 {
		n = DefaultTokenBytes
	}

	for i := 0; i < maxTokenAttempts; i++ {
		token, err := shared.MakeRandHexString(n)
		if err != nil {
			return "", err
		}
		if inUse == nil || !inUse(token) {
			return token, nil
		}
	}

	return "", errors.New("token generation: retry limit exceeded")
}
