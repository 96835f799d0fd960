package utils // package utils provides helpers for token creation and hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by ParseUserToken whenever the token cannot
// be verified: bad signature, wrong algorithm, malformed payload or an
// expired exp claim. Callers that also look the subject up should keep
// "unknown subject" as a distinct condition.
var ErrInvalidToken = errors.New("invalid token")

// IdentityToken is a signed HS256 JWT binding a user id to a session.
// Exp is the zero time when the token carries no expiry claim, which is
// the default: session lifetime is unbounded unless a TTL is configured.
type IdentityToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // UTC expiration, zero when the token never expires
}

// NewIdentityToken builds and signs a token for a user. Claims are the
// subject (sub) and issued-at (iat); an exp claim is added only when
// ttlMin is positive.
func NewIdentityToken(secret string, userID uint64, ttlMin int) (IdentityToken, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
	}
	var exp time.Time
	if ttlMin > 0 {
		exp = now.Add(time.Duration(ttlMin) * time.Minute)
		claims["exp"] = exp.Unix()
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return IdentityToken{}, err
	}
	return IdentityToken{Token: signed, Exp: exp}, nil
}

// ParseUserToken verifies the signature and returns the subject user id.
// The signing method is pinned to HMAC; a token signed any other way is
// rejected. The jwt library enforces exp when the claim is present.
func ParseUserToken(secret, raw string) (uint64, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return 0, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	switch sub := claims["sub"].(type) {
	case float64:
		// JSON numbers decode as float64.
		if sub <= 0 {
			return 0, ErrInvalidToken
		}
		return uint64(sub), nil
	default:
		return 0, ErrInvalidToken
	}
}
