package main // Entry point package

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/getapet/adoption-api/internal/config"
	"github.com/getapet/adoption-api/internal/database"
	"github.com/getapet/adoption-api/internal/handler"
	applog "github.com/getapet/adoption-api/internal/logger"
	"github.com/getapet/adoption-api/internal/queue"
	"github.com/getapet/adoption-api/internal/repository"
	"github.com/getapet/adoption-api/internal/router"
	queue_publisher "github.com/getapet/adoption-api/internal/service"
	"github.com/getapet/adoption-api/internal/storage"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use the environment

	cfg := config.Load()

	log, err := applog.New(cfg.Env, "adoption-api")
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	files, err := storage.NewLocalFileStore(cfg.UploadDir)
	if err != nil {
		log.Fatal("init file store", zap.Error(err))
	}

	users := repository.NewUserRepo(db)
	pets := repository.NewPetRepo(db)

	// Redis is optional infrastructure: without it the API runs with
	// caching and rate limiting disabled.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable, cache and rate limiting disabled")
	}

	events := queue_publisher.NewAMQPPublisher(log)
	go queue.StartAdoptionConsumer(log.Named("consumer"))

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())

	router.RegisterRoutes(e, router.Deps{
		Cfg:       cfg,
		Users:     users,
		Auth:      handler.NewAuthHandler(cfg, users, files),
		Pets:      handler.NewPetHandler(users, pets, files),
		Adoptions: handler.NewAdoptionHandler(users, pets, events),
		Redis:     rdb,
	})

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil {
			log.Info("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}
