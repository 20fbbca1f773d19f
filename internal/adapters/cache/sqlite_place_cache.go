package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"shelter-finder-service/internal/domain"
	"strings"
)

// SQLite backed cache mapping search keywords to the places they returned.
// An empty result is cached too, so a miss is reported only for unseen keywords.
type SqlitePlaceCache struct {
	DB *sql.DB
}

func NewSqlitePlaceCache(db *sql.DB) *SqlitePlaceCache {
	return &SqlitePlaceCache{DB: db}
}

// Fetch the cached places for keyword.
func (s *SqlitePlaceCache) GetPlaces(ctx context.Context, keyword string) ([]domain.Place, bool, error) {
	if s.DB == nil {
		return nil, false, errors.New("place cache: db is nil")
	}

	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, false, nil
	}

	var raw string
	err := s.DB.QueryRowContext(ctx, `
	SELECT places
	FROM place_cache
	WHERE keyword = ?;
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

// Store the places found for keyword, replacing any previous entry.
func (s *SqlitePlaceCache) PutPlaces(ctx context.Context, keyword string, places []domain.Place) error {
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
	INSERT OR REPLACE INTO place_cache (
		keyword,
		places
	)
	VALUES (?, ?);
	`, keyword, raw)
	if err != nil {
		return fmt.Errorf("insert place cache keyword=%q: %w", keyword, err)
	}

	return nil
}
