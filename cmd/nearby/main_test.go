package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"shelter-finder-service/internal/adapters/catalog"
	"shelter-finder-service/internal/adapters/repositories"
	"shelter-finder-service/internal/platform/db"
	"shelter-finder-service/internal/services"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	base := map[string]string{
		"APP_ENV":              "production",
		"LOG_LEVEL":            "error",
		"CATALOG":              "static",
		"SEED_PATH":            filepath.Join(t.TempDir(), "absent.json"),
		"DB_PATH":              filepath.Join(t.TempDir(), "app.db"),
		"DATABASE_URL":         "",
		"SEARCH_PROVIDER":      "static",
		"GOOGLE_MAPS_API_KEY":  "",
		"ORS_API_KEY":          "",
		"PLACE_CACHE":          "false",
		"GPS_PORT":             "",
		"NEARBY_RADIUS_METERS": "",
		"NEARBY_LIMIT":         "",
	}
	for k, v := range env {
		base[k] = v
	}
	for k, v := range base {
		t.Setenv(k, v)
	}
}

func execute(t *testing.T, args ...string) (result, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--json"))

	if err := cmd.Execute(); err != nil {
		return result{}, err
	}

	var res result
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	return res, nil
}

func names(res result) []string {
	out := make([]string, 0, len(res.Shelters))
	for _, s := range res.Shelters {
		out = append(out, s.Name)
	}
	return out
}

func TestNearbyByCoordinates(t *testing.T) {
	setEnv(t, nil)

	res, err := execute(t, "--lat", "37.456257", "--lng", "126.705208", "--radius", "2000")
	require.NoError(t, err)
	assert.Equal(t, []string{"관교공원", "인천남부초등학교"}, names(res))
	assert.Equal(t, "1.3km", res.Shelters[0].Distance)
	assert.InDelta(t, 1251.86, res.Shelters[0].DistanceMeters, 0.05)
}

func TestNearbyDefaultsFromConfig(t *testing.T) {
	setEnv(t, map[string]string{"NEARBY_LIMIT": "3"})

	res, err := execute(t, "--lat", "37.456257", "--lng", "126.705208")
	require.NoError(t, err)
	assert.Equal(t, []string{"관교공원", "인천남부초등학교", "수봉공원"}, names(res))
}

func TestNearbyByQuery(t *testing.T) {
	setEnv(t, nil)

	res, err := execute(t, "--query", "인천광역시청", "-n", "1", "--type", "park")
	require.NoError(t, err)
	require.NotNil(t, res.Place)
	assert.Equal(t, "인천광역시청", res.Place.Name)
	assert.Equal(t, []string{"관교공원"}, names(res))
}

func TestNearbySearchUnavailable(t *testing.T) {
	setEnv(t, map[string]string{"SEARCH_PROVIDER": "none"})

	_, err := execute(t, "--query", "인천광역시청")
	assert.ErrorIs(t, err, services.ErrSearchUnavailable)
	assert.ErrorContains(t, err, "--query needs SEARCH_PROVIDER")
}

func TestNearbyFromNMEAFile(t *testing.T) {
	setEnv(t, nil)

	path := filepath.Join(t.TempDir(), "fix.nmea")
	sentence := "$GPGGA,123520,3727.3754,N,12642.3125,E,1,08,0.9,12.0,M,18.0,M,,*7C\n"
	require.NoError(t, os.WriteFile(path, []byte(sentence), 0o600))

	res, err := execute(t, "--nmea", path, "--unbounded", "-n", "0")
	require.NoError(t, err)
	assert.Len(t, res.Shelters, 5)
	assert.Equal(t, "관교공원", res.Shelters[0].Name)
}

func TestNearbyMergesSQLiteCatalog(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "app.db")
	setEnv(t, map[string]string{"CATALOG": "static,sqlite", "DB_PATH": dbPath})

	conn, err := db.OpenSQLite(dbPath)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, repositories.InitSchema(ctx, conn, repositories.SQLite))
	extra := catalog.IncheonShelters()[:1]
	extra[0].ID = "incheon-city-hall-plaza"
	extra[0].Name = "인천시청 광장"
	extra[0].Coordinate.Latitude, extra[0].Coordinate.Longitude = 37.4563, 126.7052
	require.NoError(t, repositories.SeedShelters(ctx, conn, repositories.SQLite, extra))
	require.NoError(t, conn.Close())

	res, err := execute(t, "--lat", "37.456257", "--lng", "126.705208", "-n", "2")
	require.NoError(t, err)
	assert.Equal(t, []string{"인천시청 광장", "관교공원"}, names(res))
}

func TestNearbyFlagErrors(t *testing.T) {
	setEnv(t, nil)

	cases := map[string][]string{
		"no reference":     {},
		"lat without lng":  {"--lat", "37.4"},
		"two references":   {"--lat", "37.4", "--lng", "126.7", "--query", "x"},
		"negative limit":   {"--lat", "37.4", "--lng", "126.7", "--limit", "-1"},
		"zero radius":      {"--lat", "37.4", "--lng", "126.7", "--radius", "0"},
		"invalid latitude": {"--lat", "97", "--lng", "126.7"},
		"gps without port": {"--gps"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := execute(t, args...)
			assert.Error(t, err)
		})
	}
}

func TestWriteTable(t *testing.T) {
	setEnv(t, nil)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--lat", "37.456257", "--lng", "126.705208", "--radius", "2000"})
	require.NoError(t, cmd.Execute())

	text := out.String()
	assert.Contains(t, text, "관교공원")
	assert.Contains(t, text, "1.4km")
	assert.Contains(t, text, "danger")
	assert.NotContains(t, text, "수봉공원")
}
