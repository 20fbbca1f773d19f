package repositories

import (
	"database/sql"
	"fmt"
	"shelter-finder-service/internal/domain"
)

const shelterColumns = `id, name, address, lat, lng, capacity, facility_type, contact, safety`

func scanShelters(rows *sql.Rows) ([]domain.Shelter, error) {
	shelters := make([]domain.Shelter, 0, 64)
	for rows.Next() {
		var s domain.Shelter
		var safety string
		err := rows.Scan(
			&s.ID, &s.Name, &s.Address,
			&s.Coordinate.Latitude, &s.Coordinate.Longitude,
			&s.Capacity, &s.FacilityType, &s.Contact, &safety,
		)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		s.Safety = domain.SafetyLevel(safety)
		shelters = append(shelters, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}

	return shelters, nil
}
