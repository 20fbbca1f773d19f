package search

import (
	"context"
	"errors"
	"fmt"
	"shelter-finder-service/internal/domain"
	"shelter-finder-service/internal/platform/obs"
	"strings"

	"googlemaps.github.io/maps"
)

// GooglePlaceSearcher resolves keywords with the Google Places text search.
type GooglePlaceSearcher struct {
	client   *maps.Client
	region   string
	language string
}

// NewGooglePlaceSearcher builds a searcher biased to region (ccTLD, e.g. "kr").
// Extra client options are appended after the API key.
func NewGooglePlaceSearcher(apiKey, region string, opts ...maps.ClientOption) (*GooglePlaceSearcher, error) {
	if apiKey == "" {
		return nil, errors.New("google maps api key is empty")
	}

	c, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create google maps client: %w", err)
	}

	region = strings.ToLower(strings.TrimSpace(region))
	language := ""
	if region == "kr" {
		language = "ko"
	}

	return &GooglePlaceSearcher{
		client:   c,
		region:   region,
		language: language,
	}, nil
}

func (g *GooglePlaceSearcher) SearchPlaces(ctx context.Context, keyword string) (_ []domain.Place, err error) {
	defer obs.Time(ctx, "google.SearchPlaces")(&err)

	query := normalize(keyword)
	if query == "" {
		return nil, errors.New("search google places: keyword must be non-empty")
	}

	resp, err := g.client.TextSearch(ctx, &maps.TextSearchRequest{
		Query:    query,
		Region:   g.region,
		Language: g.language,
	})
	if err != nil {
		return nil, fmt.Errorf("search google places: %w", err)
	}

	places := make([]domain.Place, 0, len(resp.Results))
	for _, r := range resp.Results {
		c := domain.Coordinate{
			Latitude:  r.Geometry.Location.Lat,
			Longitude: r.Geometry.Location.Lng,
		}
		if c.Validate() != nil {
			continue
		}

		category := ""
		if len(r.Types) > 0 {
			category = r.Types[0]
		}

		places = append(places, domain.Place{
			Name:       r.Name,
			Address:    r.FormattedAddress,
			Coordinate: c,
			Category:   category,
		})
	}

	return places, nil
}
