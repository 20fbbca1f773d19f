package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"shelter-finder-service/internal/domain"
	"strings"

	"gopkg.in/yaml.v3"
)

// StaticCatalog serves a fixed, in-memory shelter list.
// It is safe for concurrent use; callers receive copies.
type StaticCatalog struct {
	shelters []domain.Shelter
}

func NewStaticCatalog(shelters []domain.Shelter) *StaticCatalog {
	return &StaticCatalog{shelters: append([]domain.Shelter(nil), shelters...)}
}

func (s *StaticCatalog) ListShelters(ctx context.Context) ([]domain.Shelter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]domain.Shelter(nil), s.shelters...), nil
}

// IncheonShelters returns the built-in Michuhol-gu dataset used when no seed file is configured.
func IncheonShelters() []domain.Shelter {
	return []domain.Shelter{
		{
			ID:           "incheon-munhak-stadium",
			Name:         "문학경기장",
			Address:      "인천광역시 미추홀구 매소홀로 618",
			Coordinate:   domain.Coordinate{Latitude: 37.434984, Longitude: 126.690699},
			FacilityType: "stadium",
			Safety:       domain.SafetySafe,
		},
		{
			ID:           "incheon-gwangyo-park",
			Name:         "관교공원",
			Address:      "인천광역시 미추홀구 관교동",
			Coordinate:   domain.Coordinate{Latitude: 37.445, Longitude: 126.705},
			FacilityType: "park",
			Safety:       domain.SafetySafe,
		},
		{
			ID:           "incheon-seunghak-sports-park",
			Name:         "승학체육공원",
			Address:      "인천광역시 미추홀구 학익동",
			Coordinate:   domain.Coordinate{Latitude: 37.430, Longitude: 126.670},
			FacilityType: "park",
			Safety:       domain.SafetyCaution,
		},
		{
			ID:           "incheon-subong-park",
			Name:         "수봉공원",
			Address:      "인천광역시 미추홀구 수봉안길 84",
			Coordinate:   domain.Coordinate{Latitude: 37.458, Longitude: 126.680},
			FacilityType: "park",
			Safety:       domain.SafetySafe,
		},
		{
			ID:           "incheon-nambu-elementary",
			Name:         "인천남부초등학교",
			Address:      "인천광역시 미추홀구 주안동",
			Coordinate:   domain.Coordinate{Latitude: 37.460, Longitude: 126.690},
			FacilityType: "school",
			Safety:       domain.SafetyDanger,
		},
	}
}

// LoadFile reads shelters from a JSON or YAML file, chosen by extension.
//
// Every record needs an id and a name, ids must be unique, and coordinates
// must be valid. The first offending record fails the load.
func LoadFile(path string) ([]domain.Shelter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load shelters: read %q: %w", path, err)
	}

	var shelters []domain.Shelter
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &shelters)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &shelters)
	default:
		return nil, fmt.Errorf("load shelters: unsupported file extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("load shelters: parse %q: %w", path, err)
	}

	if err := Validate(shelters); err != nil {
		return nil, fmt.Errorf("load shelters: %w", err)
	}

	return shelters, nil
}

// Validate checks the rules every catalog relies on.
// Positions are 1-based in error messages to match seed file records.
func Validate(shelters []domain.Shelter) error {
	seen := make(map[string]struct{}, len(shelters))
	for i, s := range shelters {
		id := strings.TrimSpace(s.ID)
		if id == "" {
			return fmt.Errorf("shelter at index %d: id cannot be empty", i+1)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("shelter at index %d: duplicate id %q", i+1, id)
		}
		seen[id] = struct{}{}

		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("shelter %q: name cannot be empty", id)
		}
		if s.Capacity < 0 {
			return fmt.Errorf("shelter %q: capacity cannot be negative", id)
		}
		if _, err := domain.ParseSafetyLevel(string(s.Safety)); err != nil {
			return fmt.Errorf("shelter %q: %w", id, err)
		}
		if err := s.Coordinate.Validate(); err != nil {
			return fmt.Errorf("shelter %q: %w", id, err)
		}
	}
	return nil
}
