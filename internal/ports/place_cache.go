package ports

import (
	"context"
	"shelter-finder-service/internal/domain"
)

// PlaceCache stores keyword search results.
// Keys are expected to be normalized by the caller.
type PlaceCache interface {
	GetPlaces(ctx context.Context, keyword string) (places []domain.Place, found bool, err error)
	PutPlaces(ctx context.Context, keyword string, places []domain.Place) error
}
