package main

import (
	"context"
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"

	_ "github.com/ostapkoval/photostream-api/api/swagger"
	"github.com/ostapkoval/photostream-api/internal/handler"
	"github.com/ostapkoval/photostream-api/internal/repository"
	"github.com/ostapkoval/photostream-api/internal/router"
	"github.com/ostapkoval/photostream-api/internal/service"
	"github.com/ostapkoval/photostream-api/pkg/cache"
	"github.com/ostapkoval/photostream-api/pkg/config"
	"github.com/ostapkoval/photostream-api/pkg/database"
	"github.com/ostapkoval/photostream-api/pkg/logger"
	"github.com/ostapkoval/photostream-api/pkg/storage"
)

// @title Photostream API
// @version 1.0.0
// @description Photo sharing REST API with JWT authentication
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metrics := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Feed.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, feed cache disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Feed.CacheTTL, logr, true)
		}
	}

	media, err := newMediaStore(context.Background(), cfg)
	if err != nil {
		logr.Sugar().Fatalw("failed to init media store", "error", err)
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	photoRepo := repository.NewPhotoRepository(db)

	tokenSvc := service.NewTokenService(cfg.JWT, nil)
	authSvc := service.NewAuthService(userRepo, tokenSvc, validate, logr)
	photoSvc := service.NewPhotoService(photoRepo, userRepo, media, cacheSvc, metrics, validate, logr, cfg.Uploads, cfg.Feed.CacheTTL)
	userSvc := service.NewUserService(userRepo, media, validate, logr, cfg.Uploads)

	photoH := handler.NewPhotoHandler(photoSvc)
	userH := handler.NewUserHandler(userSvc, photoSvc)
	authH := handler.NewAuthHandler(authSvc)

	r := router.New(router.Deps{
		Config:  cfg,
		Logger:  logr,
		Auth:    authSvc,
		Metrics: metrics,
		Photos:  photoH,
		Users:   userH,
		AuthH:   authH,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func newMediaStore(ctx context.Context, cfg *config.Config) (storage.MediaStore, error) {
	switch cfg.Media.Driver {
	case "s3":
		return storage.NewS3Store(ctx, cfg.Media)
	default:
		return storage.NewLocalStore(cfg.Media.LocalDir, cfg.Media.BaseURL)
	}
}
