package domain

import "math"

// Sphere radius used to convert meters to degrees when building search boxes.
const boundsEarthRadiusMeters = 6371000.0

// Widening applied so float rounding never drops a point on the box edge.
const boundsSlackDegrees = 1e-7

// BoundingBox is an axis-aligned latitude/longitude rectangle in degrees.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// BoundsAround returns the smallest box containing every point within
// radiusMeters of center. ok is false when that box would reach a pole or wrap
// the antimeridian; callers then have to scan without a box.
func BoundsAround(center Coordinate, radiusMeters float64) (box BoundingBox, ok bool) {
	delta := radiusMeters / boundsEarthRadiusMeters
	if math.IsNaN(delta) || delta >= math.Pi/2 {
		return BoundingBox{}, false
	}

	phi := center.Latitude * math.Pi / 180
	dLat := delta*180/math.Pi + boundsSlackDegrees
	if math.Abs(center.Latitude)+dLat >= 90 {
		return BoundingBox{}, false
	}

	// Widest longitude span of a spherical cap that excludes both poles.
	dLng := math.Asin(math.Min(1, math.Sin(delta)/math.Cos(phi)))*180/math.Pi + boundsSlackDegrees
	if center.Longitude-dLng < -180 || center.Longitude+dLng > 180 {
		return BoundingBox{}, false
	}

	return BoundingBox{
		MinLat: center.Latitude - dLat,
		MaxLat: center.Latitude + dLat,
		MinLng: center.Longitude - dLng,
		MaxLng: center.Longitude + dLng,
	}, true
}

func (b BoundingBox) Contains(c Coordinate) bool {
	return c.Latitude >= b.MinLat && c.Latitude <= b.MaxLat &&
		c.Longitude >= b.MinLng && c.Longitude <= b.MaxLng
}
