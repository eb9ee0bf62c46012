package alerts

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/lox/airwatch/internal/aqi"
	"github.com/lox/airwatch/internal/models"
	"github.com/lox/airwatch/internal/synth"
)

func reading(pm, o3, no2 float64) models.CurrentAirQuality {
	return models.CurrentAirQuality{
		Measurements: []models.Measurement{
			{Parameter: models.PM25, Value: pm},
			{Parameter: models.O3, Value: o3},
			{Parameter: models.NO2, Value: no2},
		},
	}
}

func TestEvaluate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		current models.CurrentAirQuality
		alerts  []models.Alert
		want    []int64
	}{
		{
			name:    "clean air fires nothing",
			current: reading(5, 20, 10),
			alerts:  Defaults(),
			want:    nil,
		},
		{
			name:    "pm2.5 above threshold fires",
			current: reading(60, 20, 10), // sub-index 154
			alerts:  Defaults(),
			want:    []int64{1},
		},
		{
			name:    "threshold is exclusive",
			current: reading(35.4, 20, 10), // sub-index exactly 100
			alerts:  Defaults(),
			want:    nil,
		},
		{
			name:    "inactive alert never fires",
			current: reading(5, 20, 100), // NO2 sub-index 100 > 80 but alert 3 is off
			alerts:  Defaults(),
			want:    nil,
		},
		{
			name:    "missing pollutant never fires",
			current: reading(5, 20, 10),
			alerts:  []models.Alert{{ID: 9, Pollutant: models.SO2, Threshold: 1, Active: true}},
			want:    nil,
		},
		{
			name:    "several alerts fire in order",
			current: reading(60, 95, 10),
			alerts:  Defaults(),
			want:    []int64{1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := Evaluate("Test City", tt.current, tt.alerts, now)
			var got []int64
			for _, e := range events {
				got = append(got, e.AlertID)
				if e.ID == "" {
					t.Error("event has no id")
				}
				if !e.FiredAt.Equal(now) {
					t.Errorf("FiredAt = %v, want %v", e.FiredAt, now)
				}
				if e.Value <= e.Threshold {
					t.Errorf("event value %d not above threshold %d", e.Value, e.Threshold)
				}
			}
			if len(got) != len(tt.want) {
				t.Fatalf("fired %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("fired %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestEvaluate_Message(t *testing.T) {
	events := Evaluate("Hà Nội", reading(60, 20, 10), Defaults(), time.Now())
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	e := events[0]
	if e.Message != "[Unhealthy] PM2.5 level is 154." {
		t.Errorf("Message = %q", e.Message)
	}
	if e.Category != "Unhealthy" {
		t.Errorf("Category = %q", e.Category)
	}
	if e.Location != "Hà Nội" {
		t.Errorf("Location = %q", e.Location)
	}
}

func TestToggle(t *testing.T) {
	list := Defaults()
	out, ok := Toggle(list, 3)
	if !ok {
		t.Fatal("alert 3 not found")
	}
	if !out[2].Active {
		t.Error("alert 3 should now be active")
	}
	if list[2].Active {
		t.Error("Toggle modified its input")
	}

	if _, ok := Toggle(list, 42); ok {
		t.Error("toggling a missing alert reported success")
	}
}

func TestValidateNew(t *testing.T) {
	if err := ValidateNew(models.NO2, 120); err != nil {
		t.Errorf("NO2/120: %v", err)
	}
	if err := ValidateNew(models.SO2, 120); !errors.Is(err, ErrNotAlertable) {
		t.Errorf("SO2 err = %v, want ErrNotAlertable", err)
	}
	if err := ValidateNew(models.CH2O, 120); !errors.Is(err, ErrNotAlertable) {
		t.Errorf("CH2O err = %v, want ErrNotAlertable", err)
	}
	if err := ValidateNew(models.PM25, 0); !errors.Is(err, ErrInvalidThreshold) {
		t.Errorf("zero threshold err = %v, want ErrInvalidThreshold", err)
	}
}

// An alertable pollutant that no reading measures would store an alert
// that can never fire.
func TestAlertableArePresentInEveryReading(t *testing.T) {
	for _, name := range []string{"", "Paris, France", "Hà Nội, Việt Nam", "New York, NY, USA"} {
		current := synth.CurrentAir(name)
		for _, p := range models.Alertable {
			if _, ok := current.Measurement(p); !ok {
				t.Errorf("%q: reading has no %s measurement", name, p)
			}
			if !aqi.Supported(p) {
				t.Errorf("%s has no sub-index table", p)
			}
		}
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(log.New(&buf, "", 0))
	event := models.AlertEvent{Location: "Paris, France", Message: "[Moderate] O3 level is 60.", Threshold: 50}
	if err := n.Notify(context.Background(), event); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if !strings.Contains(buf.String(), "Paris, France [Moderate] O3 level is 60.") {
		t.Errorf("log output = %q", buf.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := n.Notify(ctx, event); err == nil {
		t.Error("expected error on cancelled context")
	}
}
