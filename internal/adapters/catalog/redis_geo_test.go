package catalog

import (
	"context"
	"shelter-finder-service/internal/domain"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisCatalog(t *testing.T) (*RedisGeoCatalog, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisGeoCatalog(client, "test"), mr
}

func TestRedisGeoCatalogRoundTrip(t *testing.T) {
	c, mr := newRedisCatalog(t)
	ctx := context.Background()

	require.NoError(t, c.ReplaceAll(ctx, IncheonShelters()))
	assert.True(t, mr.Exists("test:geo"))
	assert.True(t, mr.Exists("test:data"))

	got, err := c.ListShelters(ctx)
	require.NoError(t, err)
	assert.Equal(t, IncheonShelters(), got)
}

func TestRedisGeoCatalogListWithin(t *testing.T) {
	c, _ := newRedisCatalog(t)
	ctx := context.Background()
	require.NoError(t, c.ReplaceAll(ctx, IncheonShelters()))

	got, err := c.ListWithin(ctx, incheonCityHall, 2000)
	require.NoError(t, err)
	assert.Equal(t, []string{"incheon-gwangyo-park", "incheon-nambu-elementary"}, shelterIDs(got))

	got, err = c.ListWithin(ctx, incheonCityHall, 10000)
	require.NoError(t, err)
	assert.Equal(t, shelterIDs(IncheonShelters()), shelterIDs(got))

	far := domain.Coordinate{Latitude: 35.1796, Longitude: 129.0756}
	got, err = c.ListWithin(ctx, far, 1000)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisGeoCatalogReplaceDropsOldData(t *testing.T) {
	c, _ := newRedisCatalog(t)
	ctx := context.Background()
	require.NoError(t, c.ReplaceAll(ctx, IncheonShelters()))

	only := IncheonShelters()[:1]
	require.NoError(t, c.ReplaceAll(ctx, only))

	got, err := c.ListWithin(ctx, incheonCityHall, 10000)
	require.NoError(t, err)
	assert.Equal(t, []string{"incheon-munhak-stadium"}, shelterIDs(got))

	require.NoError(t, c.ReplaceAll(ctx, nil))
	got, err = c.ListShelters(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisGeoCatalogRejectsBadInput(t *testing.T) {
	c, _ := newRedisCatalog(t)
	ctx := context.Background()

	polar := []domain.Shelter{{ID: "polar", Name: "polar", Coordinate: domain.Coordinate{Latitude: 88}}}
	assert.Error(t, c.ReplaceAll(ctx, polar))

	dup := append(IncheonShelters(), IncheonShelters()[0])
	assert.Error(t, c.ReplaceAll(ctx, dup))

	_, err := c.ListWithin(ctx, domain.Coordinate{Latitude: -100}, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidCoordinate)
}

func TestRedisGeoCatalogUnreachable(t *testing.T) {
	c, mr := newRedisCatalog(t)
	mr.Close()

	_, err := c.ListShelters(context.Background())
	assert.Error(t, err)
}
