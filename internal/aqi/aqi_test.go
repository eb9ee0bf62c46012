package aqi

import (
	"testing"

	"github.com/lox/airwatch/internal/models"
)

func TestCategorize_Boundaries(t *testing.T) {
	tests := []struct {
		index int
		want  Category
		label string
	}{
		{0, CategoryGood, "Good"},
		{50, CategoryGood, "Good"},
		{51, CategoryModerate, "Moderate"},
		{100, CategoryModerate, "Moderate"},
		{101, CategoryUnhealthySensitive, "Unhealthy for Sensitive Groups"},
		{150, CategoryUnhealthySensitive, "Unhealthy for Sensitive Groups"},
		{151, CategoryUnhealthy, "Unhealthy"},
		{200, CategoryUnhealthy, "Unhealthy"},
		{201, CategoryVeryUnhealthy, "Very Unhealthy"},
		{300, CategoryVeryUnhealthy, "Very Unhealthy"},
		{301, CategoryHazardous, "Hazardous"},
		{500, CategoryHazardous, "Hazardous"},
		{10000, CategoryHazardous, "Hazardous"},
	}

	for _, tt := range tests {
		if got := Categorize(tt.index); got != tt.want {
			t.Errorf("Categorize(%d) = %q, want %q", tt.index, got, tt.want)
		}
		if got := Label(tt.index); got != tt.label {
			t.Errorf("Label(%d) = %q, want %q", tt.index, got, tt.label)
		}
		if Summary(tt.index) == "" {
			t.Errorf("Summary(%d) is empty", tt.index)
		}
	}
}

func TestSubIndex(t *testing.T) {
	tests := []struct {
		name string
		p    models.Pollutant
		c    float64
		want int
	}{
		{"pm25 zero", models.PM25, 0, 0},
		{"pm25 negative", models.PM25, -3, 0},
		{"pm25 top of good", models.PM25, 9.0, 50},
		{"pm25 bottom of moderate", models.PM25, 9.1, 51},
		{"pm25 truncates before lookup", models.PM25, 9.09, 50},
		{"pm25 top of moderate", models.PM25, 35.4, 100},
		{"pm25 33", models.PM25, 33, 96},
		{"pm25 off the table", models.PM25, 400, MaxIndex},
		{"o3 top of good", models.O3, 54, 50},
		{"o3 bottom of moderate", models.O3, 55, 51},
		{"o3 43", models.O3, 43, 40},
		{"no2 top of moderate", models.NO2, 100, 100},
		{"unsupported", models.CH2O, 12, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SubIndex(tt.p, tt.c); got != tt.want {
				t.Errorf("SubIndex(%s, %v) = %d, want %d", tt.p, tt.c, got, tt.want)
			}
		})
	}
}

func TestAggregate(t *testing.T) {
	ms := []models.Measurement{
		{Parameter: models.PM25, Value: 12},
		{Parameter: models.O3, Value: 80},
		{Parameter: models.NO2, Value: 20},
		{Parameter: models.AQI, Value: 999},
	}
	index, primary := Aggregate(ms)
	if primary != models.O3 {
		t.Errorf("primary = %s, want O3", primary)
	}
	if want := SubIndex(models.O3, 80); index != want {
		t.Errorf("index = %d, want %d", index, want)
	}

	if index, _ := Aggregate(nil); index != 0 {
		t.Errorf("Aggregate(nil) = %d, want 0", index)
	}
}
