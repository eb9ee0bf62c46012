// Package search resolves free-text queries to known locations.
package search

import (
	"context"
	"strings"
	"time"

	"github.com/lox/airwatch/internal/models"
)

// MinQueryLength is the shortest trimmed query that is looked up.
const MinQueryLength = 2

// Locations are the places the mock geocoder knows about.
var Locations = []models.Location{
	{Name: "Hồ Chí Minh, Việt Nam", Lat: 10.8231, Lon: 106.6297},
	{Name: "Hà Nội, Việt Nam", Lat: 21.0285, Lon: 105.8542},
	{Name: "New York, NY, USA", Lat: 40.7128, Lon: -74.0060},
	{Name: "Paris, France", Lat: 48.8566, Lon: 2.3522},
}

type Geocoder interface {
	Search(ctx context.Context, query string) ([]models.Location, error)
}

// Mock matches queries against Locations after an optional delay.
type Mock struct {
	Latency time.Duration
}

func (m Mock) Search(ctx context.Context, query string) ([]models.Location, error) {
	if m.Latency > 0 {
		t := time.NewTimer(m.Latency)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	return Match(query), nil
}

// Match returns the locations whose name contains query, ignoring case.
func Match(query string) []models.Location {
	q := strings.ToLower(strings.TrimSpace(query))
	if len([]rune(q)) < MinQueryLength {
		return nil
	}
	var out []models.Location
	for _, loc := range Locations {
		if strings.Contains(strings.ToLower(loc.Name), q) {
			out = append(out, loc)
		}
	}
	return out
}

// Find returns the known location with exactly this name.
func Find(name string) (models.Location, bool) {
	for _, loc := range Locations {
		if loc.Name == name {
			return loc, true
		}
	}
	return models.Location{}, false
}
