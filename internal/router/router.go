package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/getapet/adoption-api/internal/config"
	"github.com/getapet/adoption-api/internal/handler"
	"github.com/getapet/adoption-api/internal/middleware"
	"github.com/getapet/adoption-api/internal/repository"
)

// Deps carries everything the route table needs. Redis is optional; when
// it is nil the cache and rate-limit middleware are simply not mounted.
type Deps struct {
	Cfg       config.Config
	Users     repository.UserStore
	Auth      *handler.AuthHandler
	Pets      *handler.PetHandler
	Adoptions *handler.AdoptionHandler
	Redis     *redis.Client
}

// RegisterRoutes mounts the whole route table on the provided Echo
// instance. Unauthenticated operations live under /v1/auth and the
// public browse endpoints under /v1; everything that acts on behalf of
// a user goes through the JWT middleware.
func RegisterRoutes(e *echo.Echo, d Deps) {
	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	// Uploaded pet images and avatars are served straight from disk.
	e.Static("/images", d.Cfg.UploadDir)

	if d.Redis != nil {
		e.Use(middleware.RateLimit(config.LoadRateLimitConfig(), d.Redis))
	}

	// Registration and login; both issue an identity token.
	auth := e.Group("/v1/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)

	// Public directory and browse endpoints. The session probe sits here
	// because it must answer 200 even without an Authorization header; its
	// response depends on that header, so it stays uncached.
	pub := e.Group("/v1")
	pub.GET("/users/check", d.Auth.CheckCaller)
	pub.GET("/users/:id", d.Auth.GetUser)
	if d.Redis != nil {
		cache := middleware.ResponseCache(config.LoadCacheConfig(), d.Redis)
		pub.GET("/pets", d.Pets.ListAll, cache)
		pub.GET("/pets/:id", d.Pets.Get, cache)
	} else {
		pub.GET("/pets", d.Pets.ListAll)
		pub.GET("/pets/:id", d.Pets.Get)
	}

	// Everything below requires a resolvable identity token.
	priv := e.Group("/v1")
	priv.Use(middleware.JWTAuth(d.Cfg.JWTSecret, d.Users))
	priv.PATCH("/users/me", d.Auth.EditSelf)

	priv.POST("/pets", d.Pets.Create)
	priv.GET("/pets/mine", d.Pets.ListMine)
	priv.GET("/pets/adoptions", d.Pets.ListAdoptions)
	priv.PUT("/pets/:id", d.Pets.Update)
	priv.DELETE("/pets/:id", d.Pets.Delete)

	priv.PATCH("/pets/:id/schedule", d.Adoptions.Schedule)
	priv.PATCH("/pets/:id/conclude", d.Adoptions.Conclude)
}
