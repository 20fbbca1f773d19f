package ports

import (
	"context"
	"shelter-finder-service/internal/domain"
)

// Contract for resolving a free-text keyword into candidate places.
type PlaceSearcher interface {
	// Return matching places, best match first. No match is an empty slice, not an error.
	SearchPlaces(ctx context.Context, keyword string) ([]domain.Place, error)
}
