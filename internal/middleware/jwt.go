package middleware // middleware contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/getapet/adoption-api/internal/repository"
	"github.com/getapet/adoption-api/internal/utils"
)

// JWTAuth returns an Echo middleware that resolves the caller's identity
// from a Bearer token and injects it into the request context. Handlers
// behind it read the id via c.Get("user_id").(uint64).
//
// Three failures are kept distinct, all answered with 401:
//   - no usable Authorization header at all ("missing bearer token")
//   - a token that fails signature or payload checks ("invalid token")
//   - a valid token whose subject no longer exists ("unknown subject")
//
// The directory lookup runs on every protected request so a token issued
// for a since-removed user stops working immediately.
func JWTAuth(secret string, users repository.UserStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			uid, err := utils.ParseUserToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			if _, err := users.GetByID(c.Request().Context(), uid); err != nil {
				if err == repository.ErrUserNotFound {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown subject"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
			}

			c.Set("user_id", uid)
			return next(c)
		}
	}
}
