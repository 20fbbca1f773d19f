package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"shelter-finder-service/internal/domain"
	"shelter-finder-service/internal/ports"

	"golang.org/x/sync/errgroup"
)

var ErrNoCatalog = errors.New("no shelter catalog configured")

// MultiCatalog queries several catalogs concurrently and merges the results.
// Shelters keep the order of the member catalogs; a shelter ID seen in an
// earlier catalog hides later duplicates on every query path.
type MultiCatalog struct {
	members []ports.ShelterCatalog
}

func NewMultiCatalog(members ...ports.ShelterCatalog) (*MultiCatalog, error) {
	kept := make([]ports.ShelterCatalog, 0, len(members))
	for _, m := range members {
		if m != nil {
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		return nil, ErrNoCatalog
	}
	return &MultiCatalog{members: kept}, nil
}

func (m *MultiCatalog) ListShelters(ctx context.Context) ([]domain.Shelter, error) {
	return m.collect(ctx, func(ctx context.Context, c ports.ShelterCatalog) ([]domain.Shelter, error) {
		return c.ListShelters(ctx)
	})
}

// ListWithin returns the merged shelters inside the bounding box of the
// spherical cap around center, in member order.
//
// Duplicates are resolved on the full member lists before the box is applied,
// so an ID always maps to the same record as in ListShelters. Members are
// therefore listed in full.
func (m *MultiCatalog) ListWithin(
	ctx context.Context,
	center domain.Coordinate,
	radiusMeters float64,
) ([]domain.Shelter, error) {
	if err := center.Validate(); err != nil {
		return nil, fmt.Errorf("list shelters within radius: %w", err)
	}
	if math.IsNaN(radiusMeters) || radiusMeters < 0 {
		return nil, fmt.Errorf("list shelters within radius: invalid radius %v", radiusMeters)
	}

	merged, err := m.ListShelters(ctx)
	if err != nil {
		return nil, err
	}

	box, ok := domain.BoundsAround(center, radiusMeters)
	if !ok {
		return merged, nil
	}

	out := make([]domain.Shelter, 0, len(merged))
	for _, s := range merged {
		if box.Contains(s.Coordinate) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MultiCatalog) collect(
	ctx context.Context,
	list func(context.Context, ports.ShelterCatalog) ([]domain.Shelter, error),
) ([]domain.Shelter, error) {
	results := make([][]domain.Shelter, len(m.members))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range m.members {
		g.Go(func() error {
			shelters, err := list(gctx, c)
			if err != nil {
				return fmt.Errorf("catalog %d: %w", i, err)
			}
			results[i] = shelters
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("merge catalogs: %w", err)
	}

	seen := make(map[string]struct{})
	out := make([]domain.Shelter, 0)
	for _, shelters := range results {
		for _, s := range shelters {
			if _, dup := seen[s.ID]; dup {
				continue
			}
			seen[s.ID] = struct{}{}
			out = append(out, s)
		}
	}
	return out, nil
}
