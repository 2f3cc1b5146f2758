package apikey

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	Cost = bcrypt.MinCost
}

func TestGenerate(t *testing.T) {
	k, err := Generate()
	require.NoError(t, err)

	assert.Len(t, k.Prefix, PrefixLen)
	assert.Len(t, k.Secret, SecretLen)
	assert.True(t, strings.HasPrefix(k.String(), "pm_"+k.Prefix+"_"))

	other, err := Generate()
	require.NoError(t, err)
	assert.NotEqual(t, k, other, "two generated keys should differ")
}

func TestParseRoundTrip(t *testing.T) {
	k, err := Generate()
	require.NoError(t, err)

	parsed, err := Parse(k.String())
	require.NoError(t, err)
	assert.Equal(t, k, parsed)
}

func TestParseMalformed(t *testing.T) {
	valid, err := Generate()
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"wrong scheme", "sk_" + valid.Prefix + "_" + valid.Secret},
		{"missing secret", "pm_" + valid.Prefix},
		{"extra part", valid.String() + "_x"},
		{"short prefix", "pm_abc_" + valid.Secret},
		{"short secret", "pm_" + valid.Prefix + "_abc"},
		{"non alphanumeric", "pm_" + valid.Prefix + "_" + strings.Repeat("-", SecretLen)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.token)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestHashVerify(t *testing.T) {
	k, err := Generate()
	require.NoError(t, err)

	hash, err := k.Hash()
	require.NoError(t, err)
	assert.NotContains(t, hash, k.Secret)
	assert.True(t, k.Verify(hash))

	other, err := Generate()
	require.NoError(t, err)
	assert.False(t, other.Verify(hash))
	assert.False(t, k.Verify("not-a-hash"))
}
