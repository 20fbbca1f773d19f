package search

import (
	"context"
	"shelter-finder-service/internal/domain"
	"strings"
)

// StaticPlaceSearcher matches keywords against a fixed place list by
// case-insensitive substring of the name or address. Used offline and in tests.
type StaticPlaceSearcher struct {
	places []domain.Place
}

func NewStaticPlaceSearcher(places []domain.Place) *StaticPlaceSearcher {
	return &StaticPlaceSearcher{places: append([]domain.Place(nil), places...)}
}

func (s *StaticPlaceSearcher) SearchPlaces(ctx context.Context, keyword string) ([]domain.Place, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	needle := strings.ToLower(normalize(keyword))
	out := make([]domain.Place, 0)
	if needle == "" {
		return out, nil
	}

	for _, p := range s.places {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Address), needle) {
			out = append(out, p)
		}
	}
	return out, nil
}

// IncheonLandmarks is the offline place list used when no map API key is set.
func IncheonLandmarks() []domain.Place {
	return []domain.Place{
		{
			Name:       "인천광역시청",
			Address:    "인천광역시 남동구 정각로 29",
			Coordinate: domain.Coordinate{Latitude: 37.456257, Longitude: 126.705208},
			Category:   "government",
		},
		{
			Name:       "주안역",
			Address:    "인천광역시 미추홀구 주안로 95-19",
			Coordinate: domain.Coordinate{Latitude: 37.464902, Longitude: 126.680598},
			Category:   "station",
		},
		{
			Name:       "인하대학교",
			Address:    "인천광역시 미추홀구 인하로 100",
			Coordinate: domain.Coordinate{Latitude: 37.450354, Longitude: 126.653342},
			Category:   "university",
		},
		{
			Name:       "문학경기장역",
			Address:    "인천광역시 미추홀구 매소홀로 지하 606",
			Coordinate: domain.Coordinate{Latitude: 37.436458, Longitude: 126.693237},
			Category:   "station",
		},
	}
}
