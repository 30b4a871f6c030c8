// Package main applies the embedded database migrations.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"salesledger/internal/infrastructure/config"
	"salesledger/internal/infrastructure/storage/postgres"
	"salesledger/internal/infrastructure/storage/postgres/migrations"
	"salesledger/pkg/logger"
)

func main() {
	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|redo|reset|validate")
	flag.Parse()

	if *cmd == "validate" {
		if err := postgres.ValidateMigrations(migrations.FS); err != nil {
			fmt.Fprintf(os.Stderr, "migration validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("migration validation passed")
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.StorageDriver != config.DriverPostgres {
		fmt.Fprintf(os.Stderr, "migrations need STORAGE_DRIVER=%s, got %q\n", config.DriverPostgres, cfg.StorageDriver)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Development: cfg.LogDevelopment})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	logger.SetDefault(log)

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Infow("running migrations", "cmd", *cmd)
	if err := postgres.Migrate(ctx, pool, *cmd, flag.Args()...); err != nil {
		log.Errorw("migration failed", "cmd", *cmd, "error", err)
		pool.Close()
		os.Exit(1)
	}
	log.Infow("migrations completed", "cmd", *cmd)
}
