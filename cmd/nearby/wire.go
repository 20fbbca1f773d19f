package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"shelter-finder-service/internal/adapters/cache"
	"shelter-finder-service/internal/adapters/catalog"
	"shelter-finder-service/internal/adapters/repositories"
	"shelter-finder-service/internal/adapters/search"
	"shelter-finder-service/internal/config"
	"shelter-finder-service/internal/domain"
	"shelter-finder-service/internal/platform/db"
	"shelter-finder-service/internal/ports"
	"shelter-finder-service/internal/services"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// app is the composition root: concrete adapters wired behind ports.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	finder  *services.ShelterFinder
	closers []func() error

	sqlite   *sql.DB
	postgres *sql.DB
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	cat, err := a.buildCatalog(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	searcher, err := a.buildSearcher(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.finder = services.NewShelterFinder(cat, searcher, logger)
	return a, nil
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *app) buildCatalog(ctx context.Context) (ports.ShelterCatalog, error) {
	members := make([]ports.ShelterCatalog, 0, len(a.cfg.Catalogs))
	for _, name := range a.cfg.Catalogs {
		c, err := a.openCatalog(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("open %s catalog: %w", name, err)
		}
		members = append(members, c)
	}

	if len(members) == 1 {
		return members[0], nil
	}
	return catalog.NewMultiCatalog(members...)
}

func (a *app) openCatalog(ctx context.Context, name string) (ports.ShelterCatalog, error) {
	switch name {
	case config.CatalogStatic:
		shelters, err := a.seedShelters()
		if err != nil {
			return nil, err
		}
		return catalog.NewIndexedCatalog(shelters)

	case config.CatalogSQLite:
		conn, err := a.sqliteDB(ctx)
		if err != nil {
			return nil, err
		}
		return repositories.NewSqliteShelterRepository(conn), nil

	case config.CatalogPostgres:
		conn, err := a.postgresDB()
		if err != nil {
			return nil, err
		}
		return repositories.NewSQLShelterRepository(conn), nil

	case config.CatalogRedis:
		client := redis.NewClient(&redis.Options{Addr: a.cfg.RedisAddr})
		a.closers = append(a.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("ping redis %s: %w", a.cfg.RedisAddr, err)
		}
		return catalog.NewRedisGeoCatalog(client, a.cfg.RedisKeyPrefix), nil

	default:
		return nil, fmt.Errorf("unknown catalog %q", name)
	}
}

// seedShelters reads SEED_PATH, falling back to the built-in Incheon list
// when the file does not exist.
func (a *app) seedShelters() ([]domain.Shelter, error) {
	shelters, err := catalog.LoadFile(a.cfg.SeedPath)
	if errors.Is(err, os.ErrNotExist) {
		a.logger.Info("seed file not found, using built-in shelters", zap.String("path", a.cfg.SeedPath))
		return catalog.IncheonShelters(), nil
	}
	return shelters, err
}

func (a *app) sqliteDB(ctx context.Context) (*sql.DB, error) {
	if a.sqlite != nil {
		return a.sqlite, nil
	}

	conn, err := db.OpenSQLite(a.cfg.DBPath)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, conn.Close)

	if err := repositories.InitSchema(ctx, conn, repositories.SQLite); err != nil {
		return nil, err
	}

	a.sqlite = conn
	return conn, nil
}

func (a *app) postgresDB() (*sql.DB, error) {
	if a.postgres != nil {
		return a.postgres, nil
	}

	conn, err := db.Open(a.cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, conn.Close)

	a.postgres = conn
	return conn, nil
}

func (a *app) buildSearcher(ctx context.Context) (ports.PlaceSearcher, error) {
	provider := a.cfg.SearchProvider
	if provider == config.SearchAuto {
		switch {
		case a.cfg.GoogleMapsAPIKey != "":
			provider = config.SearchGoogle
		case a.cfg.ORSAPIKey != "":
			provider = config.SearchORS
		default:
			provider = config.SearchNone
		}
	}

	var remote ports.PlaceSearcher
	switch provider {
	case config.SearchNone:
		a.logger.Info("place search disabled: no map API key configured")
		return nil, nil
	case config.SearchStatic:
		return search.NewStaticPlaceSearcher(search.IncheonLandmarks()), nil
	case config.SearchGoogle:
		g, err := search.NewGooglePlaceSearcher(a.cfg.GoogleMapsAPIKey, a.cfg.SearchCountry)
		if err != nil {
			return nil, err
		}
		remote = g
	case config.SearchORS:
		o, err := search.NewORSPlaceSearcher(a.cfg.ORSAPIKey, a.cfg.SearchCountry)
		if err != nil {
			return nil, err
		}
		remote = o
	default:
		return nil, fmt.Errorf("unknown search provider %q", provider)
	}

	if !a.cfg.PlaceCache {
		return remote, nil
	}

	placeCache, err := a.placeCache(ctx)
	if err != nil {
		return nil, fmt.Errorf("open place cache: %w", err)
	}
	return search.NewCachedPlaceSearcher(remote, placeCache, a.logger), nil
}

// Cache in Postgres when it is the configured store, otherwise in SQLite.
func (a *app) placeCache(ctx context.Context) (ports.PlaceCache, error) {
	if a.postgres != nil {
		if err := repositories.InitSchema(ctx, a.postgres, repositories.Postgres); err != nil {
			return nil, err
		}
		return cache.NewSQLPlaceCache(a.postgres), nil
	}

	conn, err := a.sqliteDB(ctx)
	if err != nil {
		return nil, err
	}
	return cache.NewSqlitePlaceCache(conn), nil
}
