package api

import (
	"github.com/lox/airwatch/internal/advice"
	"github.com/lox/airwatch/internal/models"
	"github.com/lox/airwatch/internal/settings"
)

// IndexData is everything the dashboard page renders.
type IndexData struct {
	Status    string
	Query     string
	Location  *models.Location
	Reading   *models.Reading
	Color     string
	Layers    []LayerReading
	Advice    *advice.Advice
	Alerts    []models.Alert
	Events    []models.AlertEvent
	Locations []models.Location
	Settings  settings.Settings
	Persona   string
}

// LayerReading pairs a map layer with the value shown for it.
type LayerReading struct {
	Layer    models.Layer
	Value    float64
	Selected bool
}

func layerReadings(c *models.CurrentAirQuality, selected map[models.Pollutant]bool) []LayerReading {
	out := make([]LayerReading, 0, len(models.Layers))
	for _, l := range models.Layers {
		m, _ := models.LayerValue(c, l.ID)
		out = append(out, LayerReading{Layer: l, Value: m.Value, Selected: selected[l.ID]})
	}
	return out
}

// HealthStatus is the /health response.
type HealthStatus struct {
	Status           string `json:"status"`
	MigrationVersion int    `json:"migrationVersion"`
	Source           string `json:"source"`
	LastMonitorRun   *Run   `json:"lastMonitorRun,omitempty"`
}

type Run struct {
	Location    string `json:"location"`
	StartedAt   string `json:"startedAt"`
	Success     bool   `json:"success"`
	EventsFired int    `json:"eventsFired"`
	Error       string `json:"error,omitempty"`
}

type noLocation struct {
	Status string `json:"status"`
}

type newAlertRequest struct {
	Pollutant models.Pollutant `json:"pollutant"`
	Threshold int              `json:"threshold"`
}
