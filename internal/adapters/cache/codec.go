package cache

import (
	"encoding/json"
	"fmt"
	"shelter-finder-service/internal/domain"
)

func encodePlaces(places []domain.Place) (string, error) {
	if places == nil {
		places = []domain.Place{}
	}
	b, err := json.Marshal(places)
	if err != nil {
		return "", fmt.Errorf("encode places: %w", err)
	}
	return string(b), nil
}

func decodePlaces(raw string) ([]domain.Place, error) {
	var places []domain.Place
	if err := json.Unmarshal([]byte(raw), &places); err != nil {
		return nil, fmt.Errorf("decode places: %w", err)
	}
	return places, nil
}
