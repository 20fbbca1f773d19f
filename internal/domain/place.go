package domain

// Place is a keyword search hit: something a user typed resolved to a position.
type Place struct {
	Name       string     `json:"name"`
	Address    string     `json:"address"`
	Coordinate Coordinate `json:"coordinates"`
	Category   string     `json:"category,omitempty"`
}

func (p Place) Location() Coordinate { return p.Coordinate }
