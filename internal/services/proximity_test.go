package services

import (
	"errors"
	"math"
	"math/rand/v2"
	"shelter-finder-service/internal/adapters/catalog"
	"shelter-finder-service/internal/domain"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	hv "github.com/umahmood/haversine"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	// The Google Maps client starts an opencensus worker at init.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

type point struct {
	name string
	at   domain.Coordinate
}

func (p point) Location() domain.Coordinate { return p.at }

var (
	seoulCityHall   = domain.Coordinate{Latitude: 37.5665, Longitude: 126.9780}
	gangnamStation  = domain.Coordinate{Latitude: 37.4979, Longitude: 127.0276}
	incheonCityHall = domain.Coordinate{Latitude: 37.456257, Longitude: 126.705208}
)

func randomCoordinate(r *rand.Rand) domain.Coordinate {
	return domain.Coordinate{
		Latitude:  r.Float64()*180 - 90,
		Longitude: r.Float64()*360 - 180,
	}
}

func TestDistanceKnownValues(t *testing.T) {
	d, err := Distance(seoulCityHall, gangnamStation)
	require.NoError(t, err)
	assert.InDelta(t, 8792.9, d, 1.0)

	// One degree of longitude on the equator.
	d, err = Distance(domain.Coordinate{}, domain.Coordinate{Longitude: 1})
	require.NoError(t, err)
	assert.InDelta(t, 111194.93, d, 0.01)

	// Crossing the antimeridian takes the short way round.
	d, err = Distance(domain.Coordinate{Longitude: 179.5}, domain.Coordinate{Longitude: -179.5})
	require.NoError(t, err)
	assert.InDelta(t, 111194.93, d, 0.01)

	// Antipodal points are half the circumference apart.
	d, err = Distance(domain.Coordinate{Latitude: 90}, domain.Coordinate{Latitude: -90})
	require.NoError(t, err)
	assert.InDelta(t, math.Pi*EarthRadiusMeters, d, 1e-6)
}

func TestDistanceMatchesReferenceImplementation(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 500; i++ {
		a, b := randomCoordinate(r), randomCoordinate(r)

		got, err := Distance(a, b)
		require.NoError(t, err)

		_, km := hv.Distance(
			hv.Coord{Lat: a.Latitude, Lon: a.Longitude},
			hv.Coord{Lat: b.Latitude, Lon: b.Longitude},
		)
		assert.InDelta(t, km*1000, got, 1e-3, "a=%v b=%v", a, b)
	}
}

func TestDistanceProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 1000; i++ {
		a, b, c := randomCoordinate(r), randomCoordinate(r), randomCoordinate(r)

		self, err := Distance(a, a)
		require.NoError(t, err)
		assert.Zero(t, self, "distance(a, a) for %v", a)

		ab, err := Distance(a, b)
		require.NoError(t, err)
		ba, err := Distance(b, a)
		require.NoError(t, err)
		assert.InDelta(t, ab, ba, 1e-6, "symmetry for %v %v", a, b)

		bc, err := Distance(b, c)
		require.NoError(t, err)
		ac, err := Distance(a, c)
		require.NoError(t, err)
		assert.LessOrEqual(t, ac, ab+bc+1e-6, "triangle inequality for %v %v %v", a, b, c)
	}
}

func TestDistanceInvalidCoordinate(t *testing.T) {
	bad := []domain.Coordinate{
		{Latitude: 91},
		{Latitude: -91},
		{Longitude: 181},
		{Latitude: math.NaN()},
		{Longitude: math.Inf(1)},
	}

	for _, c := range bad {
		_, err := Distance(seoulCityHall, c)
		var ice *domain.InvalidCoordinateError
		assert.ErrorAs(t, err, &ice, "second argument %v", c)

		_, err = Distance(c, seoulCityHall)
		assert.ErrorIs(t, err, domain.ErrInvalidCoordinate, "first argument %v", c)
	}
}

func TestRankByProximityIncheonScenario(t *testing.T) {
	shelters := catalog.IncheonShelters()
	require.Len(t, shelters, 5)

	ranked, err := RankByProximity(incheonCityHall, shelters, 0, 10000)
	require.NoError(t, err)

	names := make([]string, 0, len(ranked))
	for _, r := range ranked {
		names = append(names, r.Item.Name)
	}
	want := []string{"관교공원", "인천남부초등학교", "수봉공원", "문학경기장", "승학체육공원"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("ranking mismatch (-want +got):\n%s", diff)
	}

	wantMeters := []float64{1251.86, 1405.40, 2233.47, 2689.98, 4264.49}
	for i, r := range ranked {
		assert.InDelta(t, wantMeters[i], r.DistanceMeters, 0.05, r.Item.Name)
	}

	within2km, err := RankByProximity(incheonCityHall, shelters, 0, 2000)
	require.NoError(t, err)
	require.Len(t, within2km, 2)
	assert.Equal(t, "관교공원", within2km[0].Item.Name)
	assert.Equal(t, "인천남부초등학교", within2km[1].Item.Name)
}

func TestRankByProximityLimit(t *testing.T) {
	shelters := catalog.IncheonShelters()

	top3, err := RankByProximity(incheonCityHall, shelters, 3, NoMaxDistance)
	require.NoError(t, err)
	require.Len(t, top3, 3)
	assert.Equal(t, "수봉공원", top3[2].Item.Name)

	all, err := RankByProximity(incheonCityHall, shelters, 50, NoMaxDistance)
	require.NoError(t, err)
	assert.Len(t, all, len(shelters))

	_, err = RankByProximity(incheonCityHall, shelters, -1, NoMaxDistance)
	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func TestRankByProximityInvalidRadius(t *testing.T) {
	for _, radius := range []float64{-1, math.NaN()} {
		_, err := RankByProximity(incheonCityHall, catalog.IncheonShelters(), 0, radius)
		assert.ErrorIs(t, err, ErrInvalidRadius)
	}
}

func TestRankByProximityInclusiveBoundary(t *testing.T) {
	ref := domain.Coordinate{}
	edge := point{name: "edge", at: domain.Coordinate{Longitude: 1}}
	radius, err := Distance(ref, edge.at)
	require.NoError(t, err)

	ranked, err := RankByProximity(ref, []point{edge}, 0, radius)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, radius, ranked[0].DistanceMeters)

	ranked, err = RankByProximity(ref, []point{edge}, 0, math.Nextafter(radius, 0))
	require.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestRankByProximityStableTies(t *testing.T) {
	ref := domain.Coordinate{Latitude: 10, Longitude: 10}
	same := domain.Coordinate{Latitude: 10.01, Longitude: 10}
	points := []point{
		{name: "far", at: domain.Coordinate{Latitude: 11, Longitude: 10}},
		{name: "first", at: same},
		{name: "second", at: same},
		{name: "third", at: same},
	}

	ranked, err := RankByProximity(ref, points, 0, NoMaxDistance)
	require.NoError(t, err)

	got := make([]string, 0, len(ranked))
	for _, r := range ranked {
		got = append(got, r.Item.name)
	}
	assert.Equal(t, []string{"first", "second", "third", "far"}, got)
}

func TestRankByProximityEmpty(t *testing.T) {
	ranked, err := RankByProximity[point](incheonCityHall, nil, 10, 10000)
	require.NoError(t, err)
	assert.NotNil(t, ranked)
	assert.Empty(t, ranked)

	// Nothing inside the radius is not an error either.
	shelters, err := RankByProximity(seoulCityHall, catalog.IncheonShelters(), 10, 1000)
	require.NoError(t, err)
	assert.NotNil(t, shelters)
	assert.Empty(t, shelters)
}

func TestRankByProximityFailsFast(t *testing.T) {
	points := []point{
		{name: "ok", at: incheonCityHall},
		{name: "broken", at: domain.Coordinate{Latitude: 91, Longitude: 126}},
	}

	ranked, err := RankByProximity(incheonCityHall, points, 0, NoMaxDistance)
	assert.Nil(t, ranked)
	var ice *domain.InvalidCoordinateError
	require.ErrorAs(t, err, &ice)
	assert.Equal(t, "latitude", ice.Field)
	assert.Contains(t, err.Error(), "entity 1")

	// An invalid entity outside any radius still fails the batch.
	_, err = RankByProximity(incheonCityHall, points, 0, 10)
	assert.True(t, errors.Is(err, domain.ErrInvalidCoordinate))

	_, err = RankByProximity(domain.Coordinate{Latitude: 91}, points[:1], 0, NoMaxDistance)
	assert.ErrorIs(t, err, domain.ErrInvalidCoordinate)
}

func TestRankByProximityProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	for i := 0; i < 200; i++ {
		ref := randomCoordinate(r)
		points := make([]point, 50)
		for j := range points {
			points[j] = point{at: randomCoordinate(r)}
		}
		limit := r.IntN(10)
		radius := r.Float64() * 10000000

		within := 0
		for _, p := range points {
			d, err := Distance(ref, p.at)
			require.NoError(t, err)
			if d <= radius {
				within++
			}
		}

		ranked, err := RankByProximity(ref, points, limit, radius)
		require.NoError(t, err)

		if limit > 0 {
			assert.LessOrEqual(t, len(ranked), limit)
		}
		assert.LessOrEqual(t, len(ranked), within)
		if limit == 0 || within < limit {
			assert.Len(t, ranked, within)
		}
		for j := 1; j < len(ranked); j++ {
			assert.LessOrEqual(t, ranked[j-1].DistanceMeters, ranked[j].DistanceMeters)
		}
	}
}

func TestRankByProximityConcurrentCallers(t *testing.T) {
	shelters := catalog.IncheonShelters()
	want, err := RankByProximity(incheonCityHall, shelters, 3, 10000)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]Ranked[domain.Shelter], 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = RankByProximity(incheonCityHall, shelters, 3, 10000)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestFormatDistance(t *testing.T) {
	cases := map[float64]string{
		0:       "0m",
		567:     "567m",
		567.6:   "568m",
		1000:    "1.0km",
		1234:    "1.2km",
		10000:   "10.0km",
		8792.89: "8.8km",
	}
	for meters, want := range cases {
		assert.Equal(t, want, FormatDistance(meters), "meters=%v", meters)
	}
}
