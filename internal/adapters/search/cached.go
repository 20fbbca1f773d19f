package search

import (
	"context"
	"shelter-finder-service/internal/domain"
	"shelter-finder-service/internal/ports"

	"go.uber.org/zap"
)

// CachedPlaceSearcher answers repeated keywords from a persistent cache and
// only calls the wrapped searcher on a miss. Cache failures are logged and
// never fail the search.
type CachedPlaceSearcher struct {
	next   ports.PlaceSearcher
	cache  ports.PlaceCache
	logger *zap.Logger
}

func NewCachedPlaceSearcher(next ports.PlaceSearcher, cache ports.PlaceCache, logger *zap.Logger) *CachedPlaceSearcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedPlaceSearcher{next: next, cache: cache, logger: logger}
}

func (c *CachedPlaceSearcher) SearchPlaces(ctx context.Context, keyword string) ([]domain.Place, error) {
	key := normalize(keyword)

	if key != "" {
		places, found, err := c.cache.GetPlaces(ctx, key)
		switch {
		case err != nil:
			c.logger.Warn("place cache read failed", zap.String("keyword", key), zap.Error(err))
		case found:
			c.logger.Debug("place cache hit", zap.String("keyword", key), zap.Int("places", len(places)))
			return places, nil
		}
	}

	places, err := c.next.SearchPlaces(ctx, keyword)
	if err != nil {
		return nil, err
	}

	if key != "" {
		if err := c.cache.PutPlaces(ctx, key, places); err != nil {
			c.logger.Warn("place cache write failed", zap.String("keyword", key), zap.Error(err))
		}
	}

	return places, nil
}
