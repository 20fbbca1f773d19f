package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCoordinate matches every InvalidCoordinateError via errors.Is.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Immutable geographic coordinate in decimal degrees (WGS84).
type Coordinate struct {
	Latitude  float64 `json:"lat" yaml:"lat"`
	Longitude float64 `json:"lng" yaml:"lng"`
}

// InvalidCoordinateError reports a latitude or longitude that is out of range or not finite.
type InvalidCoordinateError struct {
	Field string
	Value float64
}

func (e *InvalidCoordinateError) Error() string {
	switch e.Field {
	case "latitude":
		return fmt.Sprintf("invalid coordinate: latitude %v outside [-90, 90]", e.Value)
	case "longitude":
		return fmt.Sprintf("invalid coordinate: longitude %v outside [-180, 180]", e.Value)
	}
	return fmt.Sprintf("invalid coordinate: %s %v", e.Field, e.Value)
}

func (e *InvalidCoordinateError) Is(target error) bool {
	return target == ErrInvalidCoordinate
}

// Validate returns an *InvalidCoordinateError when c is not a usable position.
// NaN and infinities fail the range checks.
func (c Coordinate) Validate() error {
	if !(c.Latitude >= -90 && c.Latitude <= 90) {
		return &InvalidCoordinateError{Field: "latitude", Value: c.Latitude}
	}
	if !(c.Longitude >= -180 && c.Longitude <= 180) {
		return &InvalidCoordinateError{Field: "longitude", Value: c.Longitude}
	}
	return nil
}

// Radians returns (latitude, longitude) converted to radians.
func (c Coordinate) Radians() (float64, float64) {
	return c.Latitude * math.Pi / 180, c.Longitude * math.Pi / 180
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", c.Latitude, c.Longitude)
}
