package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func TestIdentityTokenRoundTrip(t *testing.T) {
	tok, err := NewIdentityToken(testSecret, 42, 0)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)
	assert.True(t, tok.Exp.IsZero(), "default tokens carry no expiry")

	uid, err := ParseUserToken(testSecret, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), uid)
}

func TestIdentityTokenWithTTL(t *testing.T) {
	tok, err := NewIdentityToken(testSecret, 7, 30)
	require.NoError(t, err)
	assert.False(t, tok.Exp.IsZero())
	assert.WithinDuration(t, time.Now().UTC().Add(30*time.Minute), tok.Exp, 5*time.Second)

	uid, err := ParseUserToken(testSecret, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), uid)
}

func TestParseUserTokenWrongSecret(t *testing.T) {
	tok, err := NewIdentityToken(testSecret, 42, 0)
	require.NoError(t, err)

	_, err = ParseUserToken("a-different-secret", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseUserTokenGarbage(t *testing.T) {
	for _, raw := range []string{"", "garbage", "a.b.c"} {
		_, err := ParseUserToken(testSecret, raw)
		assert.ErrorIs(t, err, ErrInvalidToken, raw)
	}
}

func TestParseUserTokenExpired(t *testing.T) {
	claims := jwt.MapClaims{
		"sub": 42,
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ParseUserToken(testSecret, signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseUserTokenRejectsUnsignedAlg(t *testing.T) {
	// alg=none must never verify, whatever the payload says.
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": 42}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseUserToken(testSecret, unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseUserTokenMissingSubject(t *testing.T) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"iat": time.Now().Unix()}).
		SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ParseUserToken(testSecret, signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
