package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"shelter-finder-service/internal/adapters/catalog"
	"shelter-finder-service/internal/adapters/repositories"
	"shelter-finder-service/internal/config"
	"shelter-finder-service/internal/domain"
	"shelter-finder-service/internal/platform/db"
	"shelter-finder-service/internal/platform/logging"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// dbtool creates the schema and loads SEED_PATH into every persistent
// catalog listed in CATALOG.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := seedAll(ctx, cfg, logger); err != nil {
		logger.Error("seeding failed", zap.Error(err))
		os.Exit(1)
	}
}

func seedAll(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	shelters, err := catalog.LoadFile(cfg.SeedPath)
	if errors.Is(err, os.ErrNotExist) {
		logger.Info("seed file not found, using built-in shelters", zap.String("path", cfg.SeedPath))
		shelters, err = catalog.IncheonShelters(), nil
	}
	if err != nil {
		return err
	}

	seeded := 0
	for _, name := range cfg.Catalogs {
		switch name {
		case config.CatalogSQLite:
			conn, err := db.OpenSQLite(cfg.DBPath)
			if err != nil {
				return err
			}
			err = initAndSeed(ctx, conn, repositories.SQLite, shelters, logger)
			_ = conn.Close()
			if err != nil {
				return fmt.Errorf("sqlite %s: %w", cfg.DBPath, err)
			}

		case config.CatalogPostgres:
			conn, err := db.Open(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			err = initAndSeed(ctx, conn, repositories.Postgres, shelters, logger)
			_ = conn.Close()
			if err != nil {
				return fmt.Errorf("postgres: %w", err)
			}

		case config.CatalogRedis:
			client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
			err := catalog.NewRedisGeoCatalog(client, cfg.RedisKeyPrefix).ReplaceAll(ctx, shelters)
			_ = client.Close()
			if err != nil {
				return fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
			}

		default:
			logger.Debug("catalog has no persistent store", zap.String("catalog", name))
			continue
		}

		seeded++
		logger.Info("catalog seeded", zap.String("catalog", name), zap.Int("shelters", len(shelters)))
	}

	if seeded == 0 {
		logger.Warn("nothing to seed: CATALOG lists no sqlite, postgres or redis store")
	}
	return nil
}

func initAndSeed(
	ctx context.Context,
	conn *sql.DB,
	dialect repositories.Dialect,
	shelters []domain.Shelter,
	logger *zap.Logger,
) error {
	logger.Info("initializing database schema", zap.String("dialect", string(dialect)))
	if err := repositories.InitSchema(ctx, conn, dialect); err != nil {
		return err
	}

	logger.Info("seeding shelters", zap.Int("count", len(shelters)))
	return repositories.SeedShelters(ctx, conn, dialect, shelters)
}
