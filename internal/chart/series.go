package chart

import (
	"github.com/lox/airwatch/internal/models"
)

var charted = []models.Pollutant{models.PM25, models.O3}

// Trends renders a year of monthly averages as grouped bars.
func Trends(location string, points []models.MonthlyPoint) ([]byte, error) {
	labels := make([]string, len(points))
	values := make([]map[models.Pollutant]float64, len(points))
	for i, p := range points {
		labels[i] = p.Month
		values[i] = p.Values
	}
	return Bars("Monthly averages: "+location, labels, toSeries(values))
}

// Forecast renders the next 24 hours as lines.
func Forecast(location string, points []models.HourlyPoint) ([]byte, error) {
	labels := make([]string, len(points))
	values := make([]map[models.Pollutant]float64, len(points))
	for i, p := range points {
		labels[i] = p.Time
		values[i] = p.Values
	}
	return Lines("24h forecast: "+location, labels, toSeries(values))
}

func toSeries(values []map[models.Pollutant]float64) []Series {
	series := make([]Series, 0, len(charted))
	for _, p := range charted {
		s := Series{Name: string(p), Color: Colors[p], Values: make([]float64, len(values))}
		for i, v := range values {
			s.Values[i] = v[p]
		}
		series = append(series, s)
	}
	return series
}
