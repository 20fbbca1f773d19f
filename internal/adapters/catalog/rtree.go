package catalog

import (
	"context"
	"fmt"
	"math"
	"shelter-finder-service/internal/domain"
	"slices"

	"github.com/dhconnelly/rtreego"
)

// Points are stored as tiny rectangles; rtreego rejects zero-length sides.
const pointTolerance = 1e-9

type indexedShelter struct {
	rect    rtreego.Rect
	seq     int
	shelter domain.Shelter
}

func (s *indexedShelter) Bounds() rtreego.Rect {
	return s.rect
}

// IndexedCatalog keeps shelters in an R-tree keyed by (longitude, latitude)
// so radius queries only touch the bounding box around the center.
//
// The tree is built once and only read afterwards, so the catalog is safe for
// concurrent use.
type IndexedCatalog struct {
	tree     *rtreego.Rtree
	shelters []domain.Shelter
}

func NewIndexedCatalog(shelters []domain.Shelter) (*IndexedCatalog, error) {
	tree := rtreego.NewTree(2, 25, 50)
	for i, s := range shelters {
		if err := s.Coordinate.Validate(); err != nil {
			return nil, fmt.Errorf("index shelters: shelter %q: %w", s.ID, err)
		}

		rect, err := rtreego.NewRect(
			rtreego.Point{s.Coordinate.Longitude, s.Coordinate.Latitude},
			[]float64{pointTolerance, pointTolerance},
		)
		if err != nil {
			return nil, fmt.Errorf("index shelters: shelter %q: %w", s.ID, err)
		}
		tree.Insert(&indexedShelter{rect: rect, seq: i, shelter: s})
	}

	return &IndexedCatalog{
		tree:     tree,
		shelters: append([]domain.Shelter(nil), shelters...),
	}, nil
}

func (c *IndexedCatalog) ListShelters(ctx context.Context) ([]domain.Shelter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]domain.Shelter(nil), c.shelters...), nil
}

// ListWithin returns every shelter inside the bounding box of the spherical cap
// around center, in catalog order. Boxes touching a pole or the antimeridian
// fall back to the full list.
func (c *IndexedCatalog) ListWithin(
	ctx context.Context,
	center domain.Coordinate,
	radiusMeters float64,
) ([]domain.Shelter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := center.Validate(); err != nil {
		return nil, fmt.Errorf("list shelters within radius: %w", err)
	}
	if math.IsNaN(radiusMeters) || radiusMeters < 0 {
		return nil, fmt.Errorf("list shelters within radius: invalid radius %v", radiusMeters)
	}

	bounds, ok := domain.BoundsAround(center, radiusMeters)
	if !ok {
		return c.ListShelters(ctx)
	}

	box, err := rtreego.NewRect(
		rtreego.Point{bounds.MinLng, bounds.MinLat},
		[]float64{bounds.MaxLng - bounds.MinLng, bounds.MaxLat - bounds.MinLat},
	)
	if err != nil {
		return nil, fmt.Errorf("list shelters within radius: build search box: %w", err)
	}

	hits := c.tree.SearchIntersect(box)
	found := make([]*indexedShelter, 0, len(hits))
	for _, h := range hits {
		found = append(found, h.(*indexedShelter))
	}

	// Catalog order keeps equal-distance ties deterministic downstream.
	slices.SortFunc(found, func(a, b *indexedShelter) int { return a.seq - b.seq })

	out := make([]domain.Shelter, 0, len(found))
	for _, f := range found {
		out = append(out, f.shelter)
	}
	return out, nil
}
