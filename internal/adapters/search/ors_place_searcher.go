package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"shelter-finder-service/internal/domain"
	"shelter-finder-service/internal/platform/obs"
	"strings"
	"time"
)

const orsMaxResults = 10

type orsSearchResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Name  string `json:"name"`
			Label string `json:"label"`
			Layer string `json:"layer"`
		} `json:"properties"`
	} `json:"features"`
}

// ORSPlaceSearcher resolves keywords with the OpenRouteService geocoder
// (/geocode/search). It is safe for concurrent use.
type ORSPlaceSearcher struct {
	session *http.Client
	apiKey  string
	baseURL string
	country string
	backoff time.Duration
}

func NewORSPlaceSearcher(apiKey, country string) (*ORSPlaceSearcher, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	return &ORSPlaceSearcher{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: "https://api.openrouteservice.org",
		country: strings.ToUpper(strings.TrimSpace(country)),
		backoff: 200 * time.Millisecond,
	}, nil
}

// normalize collapses whitespace so equal queries hit the same cache key.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (o *ORSPlaceSearcher) SearchPlaces(ctx context.Context, keyword string) (_ []domain.Place, err error) {
	defer obs.Time(ctx, "ors.SearchPlaces")(&err)

	text := normalize(keyword)
	if text == "" {
		return nil, errors.New("search ORS places: keyword must be non-empty")
	}

	resp, err := o.geocode(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("search ORS places: %w", err)
	}
	defer resp.Body.Close()

	var decoded orsSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("search ORS places: decode response: %w", err)
	}

	places := make([]domain.Place, 0, len(decoded.Features))
	for _, f := range decoded.Features {
		coords := f.Geometry.Coordinates
		if len(coords) != 2 {
			continue
		}

		// GeoJSON order is [lon, lat].
		c := domain.Coordinate{Latitude: coords[1], Longitude: coords[0]}
		if c.Validate() != nil {
			continue
		}

		places = append(places, domain.Place{
			Name:       f.Properties.Name,
			Address:    f.Properties.Label,
			Coordinate: c,
			Category:   f.Properties.Layer,
		})
	}

	return places, nil
}
