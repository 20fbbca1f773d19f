package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"APP_ENV", "LOG_LEVEL", "CATALOG", "SEED_PATH", "DB_PATH", "DATABASE_URL",
	"REDIS_ADDR", "REDIS_KEY_PREFIX", "SEARCH_PROVIDER", "GOOGLE_MAPS_API_KEY", "ORS_API_KEY",
	"SEARCH_COUNTRY", "PLACE_CACHE", "GPS_PORT", "GPS_BAUD",
	"NEARBY_RADIUS_METERS", "NEARBY_LIMIT",
}

// clearEnv blanks every key for the test; blank values read as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func missingFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(missingFile(t))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{CatalogStatic}, cfg.Catalogs)
	assert.Equal(t, "data/seeds/shelters.json", cfg.SeedPath)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, SearchAuto, cfg.SearchProvider)
	assert.Equal(t, "KR", cfg.SearchCountry)
	assert.True(t, cfg.PlaceCache)
	assert.Equal(t, 9600, cfg.GPSBaud)
	assert.Equal(t, 10000.0, cfg.NearbyRadiusMeters)
	assert.Equal(t, 10, cfg.NearbyLimit)
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("CATALOG", " SQLite, redis ,sqlite")
	t.Setenv("PLACE_CACHE", "false")
	t.Setenv("NEARBY_RADIUS_METERS", "2500.5")
	t.Setenv("NEARBY_LIMIT", "0")

	cfg, err := Load(missingFile(t))
	require.NoError(t, err)

	assert.Equal(t, []string{CatalogSQLite, CatalogRedis}, cfg.Catalogs)
	assert.False(t, cfg.PlaceCache)
	assert.Equal(t, 2500.5, cfg.NearbyRadiusMeters)
	assert.Equal(t, 0, cfg.NearbyLimit)
}

func TestLoadDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	// godotenv only fills variables that are absent, so unset these two.
	require.NoError(t, os.Unsetenv("ORS_API_KEY"))
	require.NoError(t, os.Unsetenv("LOG_LEVEL"))
	t.Cleanup(func() {
		_ = os.Unsetenv("ORS_API_KEY")
		_ = os.Unsetenv("LOG_LEVEL")
	})
	t.Setenv("APP_ENV", "production")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ORS_API_KEY=from-file\nAPP_ENV=staging\nLOG_LEVEL=debug\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.ORSAPIKey)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "production", cfg.AppEnv)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown catalog":       {"CATALOG": "mongo"},
		"empty catalog list":    {"CATALOG": " , "},
		"postgres without dsn":  {"CATALOG": "postgres"},
		"non-numeric radius":    {"NEARBY_RADIUS_METERS": "far"},
		"zero radius":           {"NEARBY_RADIUS_METERS": "0"},
		"negative limit":        {"NEARBY_LIMIT": "-3"},
		"bad place cache flag":  {"PLACE_CACHE": "sometimes"},
		"non-positive gps baud": {"GPS_BAUD": "0"},
		"unknown search":        {"SEARCH_PROVIDER": "bing"},
		"google without key":    {"SEARCH_PROVIDER": "google"},
		"ors without key":       {"SEARCH_PROVIDER": "ORS"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load(missingFile(t))
			assert.Error(t, err)
		})
	}
}

func TestGet(t *testing.T) {
	t.Setenv("SHELTER_TEST_KEY", "  value ")
	assert.Equal(t, "value", Get("SHELTER_TEST_KEY", "fallback"))

	t.Setenv("SHELTER_TEST_KEY", "   ")
	assert.Equal(t, "fallback", Get("SHELTER_TEST_KEY", "fallback"))
}
