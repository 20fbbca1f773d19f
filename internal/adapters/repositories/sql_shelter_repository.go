package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"shelter-finder-service/internal/domain"
	"shelter-finder-service/internal/platform/obs"
)

// SQLShelterRepository reads shelters from Postgres through database/sql.
type SQLShelterRepository struct {
	DB *sql.DB
}

func NewSQLShelterRepository(db *sql.DB) *SQLShelterRepository {
	return &SQLShelterRepository{DB: db}
}

func (s *SQLShelterRepository) ListShelters(ctx context.Context) (_ []domain.Shelter, err error) {
	defer obs.Time(ctx, "shelters.sql.ListShelters")(&err)

	if s.DB == nil {
		return nil, errors.New("sql shelter repository: db is nil")
	}

	q := `
	SELECT ` + shelterColumns + `
	FROM shelters
	ORDER BY seq, id;
	`
	rows, err := s.DB.QueryContext(ctx, q)
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

// ListWithin narrows the scan to the bounding box of the radius.
func (s *SQLShelterRepository) ListWithin(
	ctx context.Context,
	center domain.Coordinate,
	radiusMeters float64,
) (_ []domain.Shelter, err error) {
	defer obs.Time(ctx, "shelters.sql.ListWithin")(&err)

	if s.DB == nil {
		return nil, errors.New("sql shelter repository: db is nil")
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

	q := `
	SELECT ` + shelterColumns + `
	FROM shelters
	WHERE lat BETWEEN $1 AND $2
		AND lng BETWEEN $3 AND $4
	ORDER BY seq, id;
	`
	rows, err := s.DB.QueryContext(ctx, q, box.MinLat, box.MaxLat, box.MinLng, box.MaxLng)
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
