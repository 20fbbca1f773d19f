package services

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"shelter-finder-service/internal/domain"
	"slices"
)

// Mean Earth radius in meters. The sphere model is accurate to well under a
// kilometer at city scale.
const EarthRadiusMeters = 6371000.0

var (
	ErrInvalidLimit  = errors.New("limit must be zero (unlimited) or positive")
	ErrInvalidRadius = errors.New("max distance must be a non-negative number")
)

// NoMaxDistance disables the radius filter in RankByProximity.
var NoMaxDistance = math.Inf(1)

// Locatable is anything carrying a coordinate the ranker can measure.
type Locatable interface {
	Location() domain.Coordinate
}

// Ranked pairs an entity with its distance from the reference point.
type Ranked[T any] struct {
	Item           T
	DistanceMeters float64
}

// Distance returns the great-circle distance in meters between a and b using
// the haversine formula on a sphere of radius EarthRadiusMeters.
func Distance(a, b domain.Coordinate) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}

	return haversine(a, b), nil
}

// haversine assumes both coordinates are valid.
func haversine(a, b domain.Coordinate) float64 {
	phi1, lambda1 := a.Radians()
	phi2, lambda2 := b.Radians()
	dPhi := phi2 - phi1
	dLambda := lambda2 - lambda1

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	h := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	// Rounding can push h a hair above 1 for antipodal points.
	h = math.Min(h, 1)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMeters * c
}

// RankByProximity returns the entities closest to reference, nearest first.
//
// Entities farther than maxDistanceMeters are dropped; an entity exactly at the
// radius is kept. Pass NoMaxDistance to rank without a radius. limit caps the
// result size, zero meaning unlimited. Equal distances keep their input order.
//
// The batch fails as a whole on the first invalid coordinate: malformed catalog
// data is an upstream bug and no partial ranking is returned.
func RankByProximity[T Locatable](
	reference domain.Coordinate,
	entities []T,
	limit int,
	maxDistanceMeters float64,
) ([]Ranked[T], error) {
	if limit < 0 {
		return nil, fmt.Errorf("rank by proximity: limit %d: %w", limit, ErrInvalidLimit)
	}
	if math.IsNaN(maxDistanceMeters) || maxDistanceMeters < 0 {
		return nil, fmt.Errorf("rank by proximity: max distance %v: %w", maxDistanceMeters, ErrInvalidRadius)
	}
	if err := reference.Validate(); err != nil {
		return nil, fmt.Errorf("rank by proximity: reference: %w", err)
	}

	ranked := make([]Ranked[T], 0, len(entities))
	for i, e := range entities {
		loc := e.Location()
		if err := loc.Validate(); err != nil {
			return nil, fmt.Errorf("rank by proximity: entity %d: %w", i, err)
		}

		d := haversine(reference, loc)
		if d > maxDistanceMeters {
			continue
		}
		ranked = append(ranked, Ranked[T]{Item: e, DistanceMeters: d})
	}

	slices.SortStableFunc(ranked, func(a, b Ranked[T]) int {
		return cmp.Compare(a.DistanceMeters, b.DistanceMeters)
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return ranked, nil
}

// FormatDistance renders meters for display: "1.2km" from 1000 m up, "567m" below.
func FormatDistance(meters float64) string {
	if meters >= 1000 {
		return fmt.Sprintf("%.1fkm", meters/1000)
	}
	return fmt.Sprintf("%dm", int(math.Round(meters)))
}
