// Package main seeds the database with the demo organization.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"salesledger/internal/app"
	"salesledger/internal/domain/auth"
	"salesledger/internal/infrastructure/config"
	"salesledger/internal/infrastructure/storage/postgres"
	"salesledger/pkg/logger"
)

func main() {
	printToken := flag.Bool("token", true, "print a bearer token for the demo clerk")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	if cfg.StorageDriver != config.DriverPostgres {
		log.Fatalw("seeding needs the postgres driver", "storage", cfg.StorageDriver)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	ds := app.DemoDataset()
	if err := app.SeedPostgres(ctx, postgres.NewTxManager(pool), ds); err != nil {
		log.Errorw("failed to seed demo data", "error", err)
		pool.Close()
		os.Exit(1)
	}
	log.Infow("demo organization seeded",
		"organization_id", ds.Organization.ID.String(),
		"counterparties", len(ds.Counterparties),
		"items", len(ds.Items),
	)

	if *printToken {
		if cfg.JWTSecret == "" {
			log.Warn("JWT_SECRET not set, skipping demo token")
			return
		}
		jwtService := auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret))
		token, expires, err := jwtService.GenerateAccessToken(ds.Caller())
		if err != nil {
			log.Fatalw("failed to issue demo token", "error", err)
		}
		fmt.Printf("Authorization: Bearer %s\n(expires %s)\n", token, expires.Format("2006-01-02 15:04:05 MST"))
	}

	log.Info("seeding completed successfully")
}
