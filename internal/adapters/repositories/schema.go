package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"shelter-finder-service/internal/adapters/catalog"
	"shelter-finder-service/internal/domain"
)

// Dialect selects the SQL flavor for schema and seed statements.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

func (d Dialect) valid() error {
	switch d {
	case SQLite, Postgres:
		return nil
	default:
		return fmt.Errorf("unknown sql dialect %q", string(d))
	}
}

// Initialize the shelter and place cache tables.
func InitSchema(ctx context.Context, db *sql.DB, dialect Dialect) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}
	if err := dialect.valid(); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	realType := "REAL"
	if dialect == Postgres {
		realType = "DOUBLE PRECISION"
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createSheltersQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS shelters (
		id TEXT PRIMARY KEY,
		seq INTEGER NOT NULL,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		lat %[1]s NOT NULL,
		lng %[1]s NOT NULL,
		capacity INTEGER NOT NULL DEFAULT 0,
		facility_type TEXT NOT NULL DEFAULT '',
		contact TEXT NOT NULL DEFAULT '',
		safety TEXT NOT NULL DEFAULT ''
	);
	`, realType)

	createPlaceCacheQuery := `
	CREATE TABLE IF NOT EXISTS place_cache (
		keyword TEXT PRIMARY KEY,
		places TEXT NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_shelters_lat_lng
	ON shelters(lat, lng);
	`

	statements := []string{
		createSheltersQuery,
		createPlaceCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Populate the shelters table from a JSON or YAML seed file.
// Rows are upserted by id; the file order becomes the catalog order.
func SeedFromFile(ctx context.Context, db *sql.DB, dialect Dialect, path string) error {
	shelters, err := catalog.LoadFile(path)
	if err != nil {
		return fmt.Errorf("seed shelters: %w", err)
	}
	return SeedShelters(ctx, db, dialect, shelters)
}

func SeedShelters(ctx context.Context, db *sql.DB, dialect Dialect, shelters []domain.Shelter) error {
	if db == nil {
		return errors.New("seed shelters: DB is nil")
	}
	if err := dialect.valid(); err != nil {
		return fmt.Errorf("seed shelters: %w", err)
	}
	if err := catalog.Validate(shelters); err != nil {
		return fmt.Errorf("seed shelters: %w", err)
	}

	query := `
	INSERT OR REPLACE INTO shelters (
		id, seq, name, address, lat, lng, capacity, facility_type, contact, safety
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`
	if dialect == Postgres {
		query = `
		INSERT INTO shelters (
			id, seq, name, address, lat, lng, capacity, facility_type, contact, safety
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE
		SET seq = EXCLUDED.seq,
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			capacity = EXCLUDED.capacity,
			facility_type = EXCLUDED.facility_type,
			contact = EXCLUDED.contact,
			safety = EXCLUDED.safety;
		`
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed shelters: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("seed shelters: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, s := range shelters {
		_, err := stmt.ExecContext(ctx,
			s.ID, i, s.Name, s.Address,
			s.Coordinate.Latitude, s.Coordinate.Longitude,
			s.Capacity, s.FacilityType, s.Contact, string(s.Safety),
		)
		if err != nil {
			return fmt.Errorf("seed shelters: insert id=%q: %w", s.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed shelters: commit tx: %w", err)
	}

	return nil
}
