package main

import (
	"encoding/json"
	"fmt"
	"io"
	"shelter-finder-service/internal/domain"
	"shelter-finder-service/internal/services"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)

	safetyColors = map[domain.SafetyLevel]lipgloss.Color{
		domain.SafetySafe:    lipgloss.Color("42"),
		domain.SafetyCaution: lipgloss.Color("214"),
		domain.SafetyDanger:  lipgloss.Color("196"),
	}
)

type result struct {
	Reference domain.Coordinate `json:"reference"`
	Place     *domain.Place     `json:"place,omitempty"`
	Shelters  []shelterResult   `json:"shelters"`
}

type shelterResult struct {
	domain.Shelter
	DistanceMeters float64 `json:"distance_meters"`
	Distance       string  `json:"distance"`
}

func newResult(ref domain.Coordinate, place *domain.Place, ranked []services.Ranked[domain.Shelter]) result {
	out := result{Reference: ref, Place: place, Shelters: make([]shelterResult, 0, len(ranked))}
	for _, r := range ranked {
		out.Shelters = append(out.Shelters, shelterResult{
			Shelter:        r.Item,
			DistanceMeters: r.DistanceMeters,
			Distance:       services.FormatDistance(r.DistanceMeters),
		})
	}
	return out
}

func writeJSON(w io.Writer, res result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func writeTable(w io.Writer, res result) error {
	if res.Place != nil {
		fmt.Fprintf(w, "%s (%s)\n", res.Place.Name, res.Place.Address)
	}
	fmt.Fprintf(w, "Shelters near %s\n", res.Reference)

	if len(res.Shelters) == 0 {
		_, err := fmt.Fprintln(w, "No shelters found within the search radius.")
		return err
	}

	rows := make([][]string, 0, len(res.Shelters))
	for i, s := range res.Shelters {
		capacity := "-"
		if s.Capacity > 0 {
			capacity = strconv.Itoa(s.Capacity)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			s.Name,
			s.Distance,
			s.FacilityType,
			capacity,
			string(s.Safety),
			s.Address,
		})
	}

	const safetyCol = 5
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "Name", "Distance", "Type", "Capacity", "Safety", "Address").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == safetyCol && row >= 0 && row < len(res.Shelters) {
				if c, ok := safetyColors[res.Shelters[row].Safety]; ok {
					return cellStyle.Foreground(c)
				}
			}
			return cellStyle
		})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}
