package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/getapet/adoption-api/internal/config"
)

// cachedResponse is the stored form of a cacheable response. Only 200
// responses are cached; the content type is kept so a HIT is served
// byte-for-byte like the original.
type cachedResponse struct {
	ContentType string `json:"ct"`
	Body        []byte `json:"b"`
}

// bodyCapture duplicates the response body up to a size limit while
// forwarding everything to the client.
type bodyCapture struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	limit  int
}

func (w *bodyCapture) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	if w.limit <= 0 || w.buf.Len() < w.limit {
		w.buf.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

// ResponseCache returns a middleware that caches responses of the
// configured methods in Redis. It is applied to the public pet browsing
// routes, which are read-heavy and tolerate the configured TTL of
// staleness. With caching disabled or no Redis client it passes through.
func ResponseCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}
			ctx := c.Request().Context()
			key := cacheKey(cfg.Prefix, c)

			if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
				var cached cachedResponse
				if json.Unmarshal(raw, &cached) == nil {
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(http.StatusOK, cached.ContentType, cached.Body)
				}
			}

			rec := &bodyCapture{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			c.Response().Writer = rec
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if rec.status == http.StatusOK && (cfg.MaxBodyBytes <= 0 || rec.buf.Len() <= cfg.MaxBodyBytes) {
				payload, err := json.Marshal(cachedResponse{
					ContentType: c.Response().Header().Get(echo.HeaderContentType),
					Body:        rec.buf.Bytes(),
				})
				if err == nil {
					// Detached context: the request may be done but the
					// cache write should still happen.
					_ = rdb.SetEx(context.Background(), key, payload, cfg.TTL).Err()
				}
			}
			return nil
		}
	}
}

// cacheKey hashes the concrete request path + query so keys stay short
// and uniform. The path, not the route pattern: /v1/pets/1 and
// /v1/pets/2 must not share an entry.
func cacheKey(prefix string, c echo.Context) string {
	sum := sha1.Sum([]byte(c.Request().URL.Path + "?" + c.Request().URL.RawQuery))
	return fmt.Sprintf("%s:%x", prefix, sum)
}
