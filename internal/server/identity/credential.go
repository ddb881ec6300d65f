package identity

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/dmitrijs2005/filehub/internal/shared"
)

// Verifier turns a plaintext credential into its stored form and checks a
// candidate against a stored credential.
//
// An empty stored credential means "no password set": only an empty
// candidate matches it, for every implementation.
type Verifier interface {
	Hash(plain string) (string, error)
	Verify(stored, candidate string) bool
}

// PlainVerifier stores credentials verbatim and compares them in constant
// time. Matches the historical on-disk format.
type PlainVerifier struct{}

func (PlainVerifier) Hash(plain string) (string, error) {
	return plain, nil
}

func (PlainVerifier) Verify(stored, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

// Argon2id parameters.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

// Argon2Verifier stores credentials as salted Argon2id digests in PHC-like
// form: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<digest>, base64 without
// padding. An empty plaintext hashes to the empty string, keeping the
// "no password set" convention intact.
type Argon2Verifier struct{}

func (Argon2Verifier) Hash(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}

	saltHex, err := shared.MakeRandHexString(argonSaltLen)
	if err != nil {
		return "", err
	}
	salt := []byte(saltHex)

	key := argon2.IDKey([]byte(plain), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	enc := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		argonMemory, argonTime, argonThreads,
		enc.EncodeToString(salt), enc.EncodeToString(key)), nil
}

func (Argon2Verifier) Verify(stored, candidate string) bool {
	if stored == "" {
		return candidate == ""
	}

	parts := strings.Split(stored, "$")
	// ["", "argon2id", "v=19", "m=...,t=...,p=...", salt, digest]
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}

	var m uint32
	var t uint32
	var p uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &m, &t, &p); err != nil {
		return false
	}

	enc := base64.RawStdEncoding
	salt, err := enc.DecodeString(parts[4])
	if err != nil {
		return false
	}
	digest, err := enc.DecodeString(parts[5])
	if err != nil {
		return false
	}

	key := argon2.IDKey([]byte(candidate), salt, t, m, p, uint32(len(digest)))
	return subtle.ConstantTimeCompare(key, digest) == 1
}
