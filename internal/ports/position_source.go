package ports

import (
	"context"
	"shelter-finder-service/internal/domain"
)

// PositionSource reports where the user currently is.
type PositionSource interface {
	CurrentPosition(ctx context.Context) (domain.Coordinate, error)
}
