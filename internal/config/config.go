package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Place search backends selectable through SEARCH_PROVIDER. "auto" picks
// Google, then ORS, by which API key is set, and disables search otherwise.
const (
	SearchAuto   = "auto"
	SearchGoogle = "google"
	SearchORS    = "ors"
	SearchStatic = "static"
	SearchNone   = "none"
)

// Catalog backends selectable through CATALOG.
const (
	CatalogStatic   = "static"
	CatalogSQLite   = "sqlite"
	CatalogPostgres = "postgres"
	CatalogRedis    = "redis"
)

type Config struct {
	AppEnv   string
	LogLevel string

	Catalogs []string
	SeedPath string

	DBPath      string
	DatabaseURL string

	RedisAddr      string
	RedisKeyPrefix string

	SearchProvider   string
	GoogleMapsAPIKey string
	ORSAPIKey        string
	SearchCountry    string
	PlaceCache       bool

	GPSPort string
	GPSBaud int

	NearbyRadiusMeters float64
	NearbyLimit        int
}

// Get returns the trimmed environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load reads the given .env files (default ".env") without overriding variables
// already set, then builds the Config from the environment.
// Missing .env files are not an error.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load config: read %q: %w", f, err)
		}
	}

	cfg := Config{
		AppEnv:           Get("APP_ENV", "development"),
		LogLevel:         Get("LOG_LEVEL", "info"),
		SeedPath:         Get("SEED_PATH", "data/seeds/shelters.json"),
		DBPath:           Get("DB_PATH", "data/app.db"),
		DatabaseURL:      Get("DATABASE_URL", ""),
		RedisAddr:        Get("REDIS_ADDR", "localhost:6379"),
		RedisKeyPrefix:   Get("REDIS_KEY_PREFIX", "shelters"),
		SearchProvider:   strings.ToLower(Get("SEARCH_PROVIDER", SearchAuto)),
		GoogleMapsAPIKey: Get("GOOGLE_MAPS_API_KEY", ""),
		ORSAPIKey:        Get("ORS_API_KEY", ""),
		SearchCountry:    Get("SEARCH_COUNTRY", "KR"),
		GPSPort:          Get("GPS_PORT", ""),
	}

	var err error
	if cfg.Catalogs, err = parseCatalogs(Get("CATALOG", CatalogStatic)); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if cfg.PlaceCache, err = strconv.ParseBool(Get("PLACE_CACHE", "true")); err != nil {
		return Config{}, fmt.Errorf("load config: PLACE_CACHE: %w", err)
	}
	if cfg.GPSBaud, err = strconv.Atoi(Get("GPS_BAUD", "9600")); err != nil || cfg.GPSBaud <= 0 {
		return Config{}, fmt.Errorf("load config: GPS_BAUD must be a positive integer, got %q", os.Getenv("GPS_BAUD"))
	}
	if cfg.NearbyRadiusMeters, err = strconv.ParseFloat(Get("NEARBY_RADIUS_METERS", "10000"), 64); err != nil || !(cfg.NearbyRadiusMeters > 0) {
		return Config{}, fmt.Errorf("load config: NEARBY_RADIUS_METERS must be a positive number, got %q", os.Getenv("NEARBY_RADIUS_METERS"))
	}
	if cfg.NearbyLimit, err = strconv.Atoi(Get("NEARBY_LIMIT", "10")); err != nil || cfg.NearbyLimit < 0 {
		return Config{}, fmt.Errorf("load config: NEARBY_LIMIT must be zero or a positive integer, got %q", os.Getenv("NEARBY_LIMIT"))
	}

	switch cfg.SearchProvider {
	case SearchAuto, SearchStatic, SearchNone:
	case SearchGoogle:
		if cfg.GoogleMapsAPIKey == "" {
			return Config{}, errors.New("load config: GOOGLE_MAPS_API_KEY is required for the google search provider")
		}
	case SearchORS:
		if cfg.ORSAPIKey == "" {
			return Config{}, errors.New("load config: ORS_API_KEY is required for the ors search provider")
		}
	default:
		return Config{}, fmt.Errorf("load config: SEARCH_PROVIDER: unknown provider %q", cfg.SearchProvider)
	}

	for _, c := range cfg.Catalogs {
		if c == CatalogPostgres && cfg.DatabaseURL == "" {
			return Config{}, errors.New("load config: DATABASE_URL is required for the postgres catalog")
		}
	}

	return cfg, nil
}

func parseCatalogs(raw string) ([]string, error) {
	seen := make(map[string]struct{})
	out := make([]string, 0, 4)
	for _, part := range strings.Split(raw, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		switch name {
		case CatalogStatic, CatalogSQLite, CatalogPostgres, CatalogRedis:
		default:
			return nil, fmt.Errorf("CATALOG: unknown catalog %q", name)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	if len(out) == 0 {
		return nil, errors.New("CATALOG: at least one catalog is required")
	}
	return out, nil
}
