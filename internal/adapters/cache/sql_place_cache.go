package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"shelter-finder-service/internal/domain"
	"shelter-finder-service/internal/platform/obs"
	"strings"
)

// SQLPlaceCache is a Postgres-backed cache mapping keywords to places.
type SQLPlaceCache struct {
	DB *sql.DB
}

func NewSQLPlaceCache(db *sql.DB) *SQLPlaceCache {
	return &SQLPlaceCache{DB: db}
}

func (s *SQLPlaceCache) GetPlaces(ctx context.Context, keyword string) (_ []domain.Place, _ bool, err error) {
	defer obs.Time(ctx, "place.cache.GetPlaces")(&err)

	if s.DB == nil {
		return nil, false, errors.New("place cache: db is nil")
	}

	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, false, nil
	}

	var raw string
	err = s.DB.QueryRowContext(ctx, `
	SELECT places
	FROM place_cache
	WHERE keyword = $1;
	`, keyword).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get place cache: query place_cache table: %w", err)
	}

	places, err := decodePlaces(raw)
	if err != nil {
		return nil, false, fmt.Errorf("get place cache keyword=%q: %w", keyword, err)
	}
	return places, true, nil
}

func (s *SQLPlaceCache) PutPlaces(ctx context.Context, keyword string, places []domain.Place) (err error) {
	defer obs.Time(ctx, "place.cache.PutPlaces")(&err)

	if s.DB == nil {
		return errors.New("place cache: db is nil")
	}

	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return fmt.Errorf("insert place cache: empty keyword")
	}

	raw, err := encodePlaces(places)
	if err != nil {
		return fmt.Errorf("insert place cache keyword=%q: %w", keyword, err)
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT INTO place_cache (keyword, places)
	VALUES ($1, $2)
	ON CONFLICT (keyword) DO UPDATE
	SET places = EXCLUDED.places;
	`, keyword, raw)
	if err != nil {
		return fmt.Errorf("insert place cache keyword=%q: %w", keyword, err)
	}

	return nil
}
