package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/identium/auth-system/internal/api"
	"github.com/identium/auth-system/internal/core/service"
	"github.com/identium/auth-system/internal/infrastructure/config"
	mongodb "github.com/identium/auth-system/internal/infrastructure/db/mongo"
	redisdb "github.com/identium/auth-system/internal/infrastructure/db/redis"
	"github.com/identium/auth-system/internal/infrastructure/queue"
	"github.com/identium/auth-system/internal/infrastructure/security/jwt"
	"github.com/identium/auth-system/internal/infrastructure/security/password"
	"github.com/identium/auth-system/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		l := logger.Init(logger.Options{})
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()

	userRepo := mongodb.NewUserRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("mongo index creation failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close failed")
		}
	}()

	// --- Core services ---
	hasher := password.NewHasher(cfg.Auth.MinPasswordLength)
	tokens := jwt.NewService(jwt.Config{
		Secret:     cfg.JWT.Secret,
		AccessTTL:  cfg.JWT.AccessTTL(),
		RefreshTTL: cfg.JWT.RefreshTTL(),
	})
	authService := service.NewAuthService(userRepo, hasher, tokens)
	userService := service.NewUserService(userRepo, hasher)

	// --- Security event pipeline ---
	eventRepo := redisdb.NewEventRepository(rdb)
	eventService := service.NewEventService(eventRepo, log.With().Str("component", "events").Logger())
	dispatcher := queue.NewDispatcher(0, eventService, log.With().Str("component", "dispatcher").Logger())
	dispatcher.Start(ctx)

	throttle := redisdb.NewLoginThrottle(rdb, cfg.Auth.MaxLoginFailures, cfg.Auth.LoginWindow)

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Auth:       authService,
		Users:      userService,
		Tokens:     tokens,
		Throttle:   throttle,
		Dispatcher: dispatcher,
		Mongo:      db,
		Redis:      rdb,
		Log:        log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}
}
