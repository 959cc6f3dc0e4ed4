package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/carbon-footprint-tracker/internal/carbon"
	"github.com/iliyamo/carbon-footprint-tracker/internal/config"
	"github.com/iliyamo/carbon-footprint-tracker/internal/database"
	"github.com/iliyamo/carbon-footprint-tracker/internal/handler"
	"github.com/iliyamo/carbon-footprint-tracker/internal/logging"
	"github.com/iliyamo/carbon-footprint-tracker/internal/middleware"
	"github.com/iliyamo/carbon-footprint-tracker/internal/queue"
	"github.com/iliyamo/carbon-footprint-tracker/internal/router"
	"github.com/iliyamo/carbon-footprint-tracker/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "carbon-tracker:", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := database.Connect(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return fmt.Errorf("connect store: %w", err)
	}
	defer func() {
		if err := stores.Close(context.Background()); err != nil {
			log.Error("close store", "error", err)
		}
	}()
	log.Info("store ready", "backend", stores.Backend)

	var publisher service.Publisher = service.NopPublisher{}
	if cfg.AMQPURL != "" {
		p := service.NewAMQPPublisher(cfg.AMQPURL, log)
		defer func() { _ = p.Close() }()
		publisher = p
	} else {
		log.Info("event publishing disabled")
	}

	cacheCfg := config.LoadCacheConfig()
	var (
		rdb   *redis.Client
		cache echo.MiddlewareFunc
		inv   queue.Invalidator
	)
	if cacheCfg.Enabled {
		rdb, err = config.NewRedisClient(ctx)
		if err != nil {
			log.Warn("leaderboard cache disabled", "error", err)
		} else {
			defer func() { _ = rdb.Close() }()
			cache = middleware.NewRedisCache(cacheCfg, rdb, log)
			inv = middleware.NewCacheInvalidator(rdb, cacheCfg.Prefix)
		}
	}

	consumerDone := make(chan struct{})
	// Local writes invalidate directly; the consumer covers writes made by
	// other instances.
	if inv != nil && cfg.AMQPURL != "" {
		go func() {
			defer close(consumerDone)
			if err := queue.StartLeaderboardConsumer(ctx, cfg.AMQPURL, inv, log); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("leaderboard consumer stopped", "error", err)
			}
		}()
	} else {
		close(consumerDone)
	}

	auth, err := service.NewAuthService(stores.Users, cfg.JWTSecret, cfg.BcryptCost, log,
		service.WithTokenTTL(cfg.AccessTTL),
		service.WithPublisher(publisher),
		service.WithCacheInvalidator(inv),
	)
	if err != nil {
		return err
	}
	acts := service.NewActivityService(stores.Users, stores.Activities, carbon.Default(), publisher, log,
		service.WithLeaderboardCache(inv))

	e := router.New(router.Deps{
		Auth:       handler.NewAuthHandler(auth, log),
		Activities: handler.NewActivityHandler(acts, log),
		Verifier:   auth,
		Health:     stores,
		Cache:      cache,
		Log:        log,
	})

	srvErr := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Addr(), "env", cfg.Env)
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
		close(srvErr)
	}()

	select {
	case err := <-srvErr:
		if err != nil {
			stop()
			<-consumerDone
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "error", err)
	}
	stop()
	<-consumerDone
	return nil
}
