package ports

import (
	"context"
	"shelter-finder-service/internal/domain"
)

// Port: a boundary for retrieving Shelter entities from a data source.
type ShelterCatalog interface {
	// Return every shelter the catalog knows, in a stable order.
	ListShelters(ctx context.Context) ([]domain.Shelter, error)
}

// Optional extension of ShelterCatalog that can narrow candidates spatially.
//
// Results must be a superset of the shelters within radiusMeters of center.
// Callers re-check the exact distance, so a coarse index is acceptable.
type RadiusCatalog interface {
	ShelterCatalog
	ListWithin(ctx context.Context, center domain.Coordinate, radiusMeters float64) ([]domain.Shelter, error)
}
