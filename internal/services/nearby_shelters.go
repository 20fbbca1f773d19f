package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"shelter-finder-service/internal/domain"
	"shelter-finder-service/internal/platform/obs"
	"shelter-finder-service/internal/ports"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultRadiusMeters is the search radius used when a request leaves it unset.
const DefaultRadiusMeters = 10000.0

var (
	ErrSearchUnavailable = errors.New("place search is not available")
	ErrEmptyQuery        = errors.New("search keyword is empty")
	ErrNoPlaceFound      = errors.New("no place matches the keyword")
	ErrNoPositionSource  = errors.New("no position source configured")
)

// SearchFilters narrow the candidate shelters before ranking.
type SearchFilters struct {
	// Zero means DefaultRadiusMeters; NoMaxDistance disables the radius.
	MaxDistanceMeters float64
	// Case-insensitive; empty accepts every type.
	FacilityTypes []string
	// Shelters with unknown (zero) capacity never satisfy a positive minimum.
	MinCapacity int
}

func (f SearchFilters) radius() float64 {
	if f.MaxDistanceMeters == 0 {
		return DefaultRadiusMeters
	}
	return f.MaxDistanceMeters
}

func (f SearchFilters) accepts(s domain.Shelter) bool {
	if f.MinCapacity > 0 && s.Capacity < f.MinCapacity {
		return false
	}
	if len(f.FacilityTypes) == 0 {
		return true
	}
	for _, t := range f.FacilityTypes {
		if strings.EqualFold(strings.TrimSpace(t), s.FacilityType) {
			return true
		}
	}
	return false
}

type NearbyRequest struct {
	Reference domain.Coordinate
	// Zero means unlimited.
	Limit   int
	Filters SearchFilters
}

// PlaceNearby is the answer to a keyword lookup: the place the keyword
// resolved to and the shelters ranked around it.
type PlaceNearby struct {
	Place    domain.Place
	Shelters []Ranked[domain.Shelter]
}

// ShelterFinder answers "which shelters are closest to here" on top of a
// catalog, an optional place searcher and the proximity ranker.
type ShelterFinder struct {
	catalog  ports.ShelterCatalog
	searcher ports.PlaceSearcher
	logger   *zap.Logger
}

// NewShelterFinder wires the finder. searcher may be nil, in which case
// keyword lookups fail with ErrSearchUnavailable.
func NewShelterFinder(catalog ports.ShelterCatalog, searcher ports.PlaceSearcher, logger *zap.Logger) *ShelterFinder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShelterFinder{catalog: catalog, searcher: searcher, logger: logger}
}

// SearchAvailable reports whether keyword lookups can be served.
func (f *ShelterFinder) SearchAvailable() bool {
	return f.searcher != nil
}

// Nearby ranks the catalog's shelters around req.Reference.
func (f *ShelterFinder) Nearby(ctx context.Context, req NearbyRequest) (_ []Ranked[domain.Shelter], err error) {
	if obs.QueryID(ctx) == "" {
		ctx = obs.WithQueryID(ctx, uuid.NewString())
	}
	defer obs.Time(ctx, "finder.Nearby")(&err)

	radius := req.Filters.radius()
	if req.Limit < 0 {
		return nil, fmt.Errorf("nearby shelters: limit %d: %w", req.Limit, ErrInvalidLimit)
	}
	if math.IsNaN(radius) || radius < 0 {
		return nil, fmt.Errorf("nearby shelters: max distance %v: %w", radius, ErrInvalidRadius)
	}
	if err := req.Reference.Validate(); err != nil {
		return nil, fmt.Errorf("nearby shelters: reference: %w", err)
	}

	candidates, err := f.candidates(ctx, req.Reference, radius)
	if err != nil {
		return nil, fmt.Errorf("nearby shelters: %w", err)
	}

	filtered := make([]domain.Shelter, 0, len(candidates))
	for i, s := range candidates {
		// Filters must not hide malformed rows from the ranker's validation.
		if err := s.Coordinate.Validate(); err != nil {
			return nil, fmt.Errorf("nearby shelters: shelter %d (%q): %w", i, s.ID, err)
		}
		if req.Filters.accepts(s) {
			filtered = append(filtered, s)
		}
	}

	ranked, err := RankByProximity(req.Reference, filtered, req.Limit, radius)
	if err != nil {
		return nil, fmt.Errorf("nearby shelters: %w", err)
	}

	f.logger.Debug("nearby shelters ranked",
		zap.String("query_id", obs.QueryID(ctx)),
		zap.Stringer("reference", req.Reference),
		zap.Float64("radius_m", radius),
		zap.Int("candidates", len(candidates)),
		zap.Int("filtered", len(filtered)),
		zap.Int("ranked", len(ranked)),
	)

	return ranked, nil
}

// Prefer the catalog's radius query when supported to avoid loading every shelter.
func (f *ShelterFinder) candidates(ctx context.Context, center domain.Coordinate, radius float64) ([]domain.Shelter, error) {
	if f.catalog == nil {
		return nil, errors.New("shelter catalog is nil")
	}

	if rc, ok := f.catalog.(ports.RadiusCatalog); ok && !math.IsInf(radius, 1) {
		shelters, err := rc.ListWithin(ctx, center, radius)
		if err != nil {
			return nil, fmt.Errorf("list shelters within %.0fm: %w", radius, err)
		}
		return shelters, nil
	}

	shelters, err := f.catalog.ListShelters(ctx)
	if err != nil {
		return nil, fmt.Errorf("list shelters: %w", err)
	}
	return shelters, nil
}

// Search resolves keyword to candidate places.
func (f *ShelterFinder) Search(ctx context.Context, keyword string) ([]domain.Place, error) {
	if f.searcher == nil {
		return nil, ErrSearchUnavailable
	}

	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, ErrEmptyQuery
	}

	places, err := f.searcher.SearchPlaces(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("search places %q: %w", keyword, err)
	}
	if len(places) == 0 {
		return nil, fmt.Errorf("search places %q: %w", keyword, ErrNoPlaceFound)
	}

	return places, nil
}

// NearbyPlace ranks shelters around the first place keyword resolves to.
func (f *ShelterFinder) NearbyPlace(
	ctx context.Context,
	keyword string,
	limit int,
	filters SearchFilters,
) (PlaceNearby, error) {
	places, err := f.Search(ctx, keyword)
	if err != nil {
		return PlaceNearby{}, err
	}

	place := places[0]
	ranked, err := f.Nearby(ctx, NearbyRequest{Reference: place.Coordinate, Limit: limit, Filters: filters})
	if err != nil {
		return PlaceNearby{}, fmt.Errorf("shelters near %q: %w", place.Name, err)
	}

	return PlaceNearby{Place: place, Shelters: ranked}, nil
}

// NearbyPosition ranks shelters around the position reported by source.
func (f *ShelterFinder) NearbyPosition(
	ctx context.Context,
	source ports.PositionSource,
	limit int,
	filters SearchFilters,
) (domain.Coordinate, []Ranked[domain.Shelter], error) {
	if source == nil {
		return domain.Coordinate{}, nil, ErrNoPositionSource
	}

	here, err := source.CurrentPosition(ctx)
	if err != nil {
		return domain.Coordinate{}, nil, fmt.Errorf("current position: %w", err)
	}

	ranked, err := f.Nearby(ctx, NearbyRequest{Reference: here, Limit: limit, Filters: filters})
	if err != nil {
		return here, nil, err
	}

	return here, ranked, nil
}
