package models

import "time"

type Location struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type Measurement struct {
	Parameter Pollutant `json:"parameter"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
}

type CurrentAirQuality struct {
	AQI              int           `json:"aqi"`
	PrimaryPollutant Pollutant     `json:"primaryPollutant"`
	Category         string        `json:"category"`
	Summary          string        `json:"summary"`
	Measurements     []Measurement `json:"measurements"`
}

// Measurement returns the measurement for p, if present.
func (c *CurrentAirQuality) Measurement(p Pollutant) (Measurement, bool) {
	for _, m := range c.Measurements {
		if m.Parameter == p {
			return m, true
		}
	}
	return Measurement{}, false
}

type Weather struct {
	Temperature   float64 `json:"temperature"`
	FeelsLike     float64 `json:"feelsLike"`
	WindSpeed     float64 `json:"windSpeed"`
	WindDirection string  `json:"windDirection"`
}

// Reading is the current-conditions result for one location.
type Reading struct {
	Location Location          `json:"location"`
	Air      CurrentAirQuality `json:"air"`
	Weather  Weather           `json:"weather"`
}

type HourlyPoint struct {
	Time   string                `json:"time"`
	Values map[Pollutant]float64 `json:"values"`
}

type DailyPoint struct {
	Day    string                `json:"day"`
	Values map[Pollutant]float64 `json:"values"`
}

type MonthlyPoint struct {
	Month  string                `json:"month"`
	Values map[Pollutant]float64 `json:"values"`
}

type ForecastSeries struct {
	Hourly []HourlyPoint `json:"hourly"`
	Daily  []DailyPoint  `json:"daily"`
}

type Alert struct {
	ID        int64     `json:"id"`
	Pollutant Pollutant `json:"pollutant"`
	Threshold int       `json:"threshold"`
	Active    bool      `json:"active"`
}

// AlertEvent records an alert that fired for a location.
type AlertEvent struct {
	ID        string    `json:"id"`
	AlertID   int64     `json:"alertId"`
	Location  string    `json:"location"`
	Pollutant Pollutant `json:"pollutant"`
	Value     int       `json:"value"`
	Threshold int       `json:"threshold"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	FiredAt   time.Time `json:"firedAt"`
}
