// Package main is the entry point for the salesledger API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"salesledger/internal/app"
	"salesledger/internal/domain/auth"
	"salesledger/internal/infrastructure/config"
	v1 "salesledger/internal/infrastructure/http/v1"
	"salesledger/internal/infrastructure/http/v1/handlers"
	"salesledger/internal/infrastructure/lock"
	"salesledger/internal/infrastructure/observability"
	"salesledger/internal/infrastructure/storage/postgres"
	"salesledger/pkg/logger"
)

const version = "0.1.0"

// devSecret signs tokens when no JWT_SECRET is set outside production.
const devSecret = "salesledger-dev-secret"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.LogDevelopment,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	logger.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infow("starting salesledger server", "version", version, "env", cfg.AppEnv, "storage", cfg.StorageDriver)

	// --- Storage ---
	var st *app.Storage
	switch cfg.StorageDriver {
	case config.DriverMemory:
		st = app.NewMemoryStorage(app.DemoDataset())
		log.Warn("using in-memory storage seeded with the demo organization; data is lost on exit")
	default:
		poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
		poolCfg.MaxConns = cfg.DBMaxConns
		poolCfg.MinConns = cfg.DBMinConns
		st, err = app.NewPostgresStorage(ctx, poolCfg)
		if err != nil {
			log.Fatalw("failed to connect to database", "error", err)
		}
		log.Info("connected to database")
	}
	defer st.Close()

	health := map[string]handlers.Pinger{}
	if st.Ping != nil {
		health["database"] = st.Ping
	}

	// --- Numbering lock ---
	var locker lock.Locker = lock.NewLocal()
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalw("invalid REDIS_URL", "error", err)
		}
		client := redis.NewClient(opts)
		defer func() { _ = client.Close() }()

		rl, err := lock.NewRedis(client, "salesledger:numbering:", cfg.NumberingLockTTL)
		if err != nil {
			log.Fatalw("failed to create redis lock", "error", err)
		}
		locker = rl
		health["redis"] = redisPinger{client}
		log.Infow("numbering lock backed by redis", "ttl", cfg.NumberingLockTTL)
	}

	// --- Services ---
	metrics := observability.NewMetrics()
	services, err := app.NewServices(st, locker, metrics)
	if err != nil {
		log.Fatalw("failed to build services", "error", err)
	}

	// --- JWT Service ---
	secret := cfg.JWTSecret
	if secret == "" {
		secret = devSecret
		log.Warn("JWT_SECRET not set, using the development secret")
	}
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(secret))

	if cfg.StorageDriver == config.DriverMemory && !cfg.IsProduction() {
		token, expires, err := jwtService.GenerateAccessToken(app.DemoDataset().Caller())
		if err != nil {
			log.Warnw("failed to issue demo token", "error", err)
		} else {
			log.Infow("demo token issued", "token", token, "expires", expires)
		}
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Services:  services,
		Logger:    log,
		Validator: jwtService,
		Metrics:   metrics,
		Health:    health,
		Version:   version,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infow("server starting", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	if st.Pool != nil {
		g.Go(func() error {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					postgres.LogPoolStats(gctx, st.Pool)
				}
			}
		})
	}

	// --- Graceful shutdown ---
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Errorw("server stopped with error", "error", err)
		st.Close()
		os.Exit(1)
	}
	log.Info("server stopped")
}

// redisPinger adapts a redis client to the readiness probe.
type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
