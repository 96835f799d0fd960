package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getapet/adoption-api/internal/model"
	"github.com/getapet/adoption-api/internal/repository/memory"
	"github.com/getapet/adoption-api/internal/utils"
)

const jwtTestSecret = "middleware-test-secret"

func runJWT(t *testing.T, users *memory.UserStore, auth string) (*httptest.ResponseRecorder, uint64) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen uint64
	next := func(c echo.Context) error {
		seen, _ = c.Get("user_id").(uint64)
		return c.NoContent(http.StatusOK)
	}
	require.NoError(t, JWTAuth(jwtTestSecret, users)(next)(c))
	return rec, seen
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	users := memory.NewUserStore()
	u := model.User{Name: "Ana", Email: "ana@example.com", Phone: "555-0100"}
	require.NoError(t, users.Create(context.Background(), &u))

	tok, err := utils.NewIdentityToken(jwtTestSecret, u.ID, 0)
	require.NoError(t, err)

	rec, seen := runJWT(t, users, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, u.ID, seen)
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec, _ := runJWT(t, memory.NewUserStore(), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing bearer token")

	// A non-bearer scheme counts as missing too.
	rec, _ = runJWT(t, memory.NewUserStore(), "Basic dXNlcjpwYXNz")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing bearer token")
}

func TestJWTAuthInvalidToken(t *testing.T) {
	rec, _ := runJWT(t, memory.NewUserStore(), "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token")
}

func TestJWTAuthUnknownSubject(t *testing.T) {
	// Verifiable token for a user the directory does not know.
	tok, err := utils.NewIdentityToken(jwtTestSecret, 777, 0)
	require.NoError(t, err)

	rec, _ := runJWT(t, memory.NewUserStore(), "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown subject")
}
