package identity

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomTokenSource_DefaultShape(t *testing.T) {
	src := &RandomTokenSource{}

	token, err := src.NewToken(nil)
	require.NoError(t, err)
	assert.Len(t, token, DefaultTokenBytes*2)

	_, err = hex.DecodeString(token)
	assert.NoError(t, err, "token must be hex")
}

func TestRandomTokenSource_AvoidsInUseTokens(t *testing.T) {
	src := &RandomTokenSource{}

	// Reject the first three candidates regardless of value; the source
	// must keep drawing until one is accepted.
	rejected := 0
	token, err := src.NewToken(func(string) bool {
		if rejected < 3 {
			rejected++
			return true
		}
		return false
	})

	require.NoError(t, err)
	assert.Equal(t, 3, rejected)
	assert.NotEmpty(t, token)
}

func TestRandomTokenSource_RetryLimit(t *testing.T) {
	src := &RandomTokenSource{}

	// An in-use set that claims every token forces the bound to trip
	// instead of looping forever.
	_, err := src.NewToken(func(string) bool { return true })
	assert.Error(t, err)
}

func TestRandomTokenSource_IndependentDraws(t *testing.T) {
	src := &RandomTokenSource{Bytes: 16}

	a, err := src.NewToken(nil)
	require.NoError(t, err)
	b, err := src.NewToken(nil)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, a, 32)
}
