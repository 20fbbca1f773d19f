package domain

import (
	"fmt"
	"strings"
)

// Safety level published for a shelter.
type SafetyLevel string

const (
	SafetySafe    SafetyLevel = "safe"
	SafetyCaution SafetyLevel = "caution"
	SafetyDanger  SafetyLevel = "danger"
)

// ParseSafetyLevel accepts the published levels case-insensitively.
// An empty string is treated as unknown and returns "".
func ParseSafetyLevel(s string) (SafetyLevel, error) {
	switch lvl := SafetyLevel(strings.ToLower(strings.TrimSpace(s))); lvl {
	case "", SafetySafe, SafetyCaution, SafetyDanger:
		return lvl, nil
	default:
		return "", fmt.Errorf("parse safety level: unknown level %q", s)
	}
}

// Represents an evacuation shelter.
// Capacity is the maximum number of occupants; zero means unknown.
type Shelter struct {
	ID           string      `json:"id" yaml:"id"`
	Name         string      `json:"name" yaml:"name"`
	Address      string      `json:"address" yaml:"address"`
	Coordinate   Coordinate  `json:"coordinates" yaml:"coordinates"`
	Capacity     int         `json:"capacity,omitempty" yaml:"capacity,omitempty"`
	FacilityType string      `json:"facility_type,omitempty" yaml:"facility_type,omitempty"`
	Contact      string      `json:"contact,omitempty" yaml:"contact,omitempty"`
	Safety       SafetyLevel `json:"safety,omitempty" yaml:"safety,omitempty"`
}

func (s Shelter) Location() Coordinate { return s.Coordinate }
