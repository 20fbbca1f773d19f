package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"shelter-finder-service/internal/domain"
)

// SQLite-backed implementation of the ShelterCatalog and RadiusCatalog ports.
type SqliteShelterRepository struct{ DB *sql.DB }

func NewSqliteShelterRepository(db *sql.DB) *SqliteShelterRepository {
	return &SqliteShelterRepository{DB: db}
}

// Return all shelters in catalog order.
func (s *SqliteShelterRepository) ListShelters(ctx context.Context) ([]domain.Shelter, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite shelter repository: DB is nil")
	}

	query := `
	SELECT ` + shelterColumns + `
	FROM shelters
	ORDER BY seq, id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list shelters: query shelters table: %w", err)
	}
	defer rows.Close()

	shelters, err := scanShelters(rows)
	if err != nil {
		return nil, fmt.Errorf("list shelters: %w", err)
	}
	return shelters, nil
}

// Return the shelters inside the bounding box of the radius, in catalog order.
func (s *SqliteShelterRepository) ListWithin(
	ctx context.Context,
	center domain.Coordinate,
	radiusMeters float64,
) ([]domain.Shelter, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite shelter repository: DB is nil")
	}
	if err := center.Validate(); err != nil {
		return nil, fmt.Errorf("list shelters within radius: %w", err)
	}
	if math.IsNaN(radiusMeters) || radiusMeters < 0 {
		return nil, fmt.Errorf("list shelters within radius: invalid radius %v", radiusMeters)
	}

	box, ok := domain.BoundsAround(center, radiusMeters)
	if !ok {
		return s.ListShelters(ctx)
	}

	query := `
	SELECT ` + shelterColumns + `
	FROM shelters
	WHERE lat BETWEEN ? AND ?
		AND lng BETWEEN ? AND ?
	ORDER BY seq, id;
	`
	rows, err := s.DB.QueryContext(ctx, query, box.MinLat, box.MaxLat, box.MinLng, box.MaxLng)
	if err != nil {
		return nil, fmt.Errorf("list shelters within radius: query shelters table: %w", err)
	}
	defer rows.Close()

	shelters, err := scanShelters(rows)
	if err != nil {
		return nil, fmt.Errorf("list shelters within radius: %w", err)
	}
	return shelters, nil
}
