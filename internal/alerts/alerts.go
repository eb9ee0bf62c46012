package alerts

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/lox/airwatch/internal/aqi"
	"github.com/lox/airwatch/internal/metrics"
	"github.com/lox/airwatch/internal/models"
)

var (
	ErrNotAlertable     = errors.New("pollutant cannot be alerted on")
	ErrInvalidThreshold = errors.New("threshold must be positive")
)

// Defaults are the alerts a fresh installation starts with.
func Defaults() []models.Alert {
	return []models.Alert{
		{ID: 1, Pollutant: models.PM25, Threshold: 100, Active: true},
		{ID: 2, Pollutant: models.O3, Threshold: 150, Active: true},
		{ID: 3, Pollutant: models.NO2, Threshold: 80, Active: false},
	}
}

// ValidateNew checks a user-submitted alert before it is stored.
func ValidateNew(p models.Pollutant, threshold int) error {
	if !models.IsAlertable(p) {
		return fmt.Errorf("%w: %s", ErrNotAlertable, p)
	}
	if threshold <= 0 {
		return ErrInvalidThreshold
	}
	return nil
}

// Toggle flips the alert with the given id and reports whether it was found.
// The input slice is not modified.
func Toggle(list []models.Alert, id int64) ([]models.Alert, bool) {
	out := make([]models.Alert, len(list))
	copy(out, list)
	for i := range out {
		if out[i].ID == id {
			out[i].Active = !out[i].Active
			return out, true
		}
	}
	return out, false
}

// Evaluate returns an event for every active alert whose pollutant sub-index
// is above its threshold. Pollutants absent from the reading never fire.
func Evaluate(location string, current models.CurrentAirQuality, list []models.Alert, now time.Time) []models.AlertEvent {
	var events []models.AlertEvent
	for _, a := range list {
		if !a.Active {
			continue
		}
		m, ok := current.Measurement(a.Pollutant)
		if !ok {
			continue
		}
		index := aqi.SubIndex(a.Pollutant, m.Value)
		if index < 0 || index <= a.Threshold {
			continue
		}
		label := aqi.Label(index)
		events = append(events, models.AlertEvent{
			ID:        uuid.NewString(),
			AlertID:   a.ID,
			Location:  location,
			Pollutant: a.Pollutant,
			Value:     index,
			Threshold: a.Threshold,
			Category:  label,
			Message:   fmt.Sprintf("[%s] %s level is %d.", label, a.Pollutant, index),
			FiredAt:   now,
		})
	}
	return events
}

// Notifier delivers alert events to the user.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, event models.AlertEvent) error
}

// LogNotifier "delivers" by writing to the process log.
type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Name() string {
	return "log"
}

func (n *LogNotifier) Notify(ctx context.Context, event models.AlertEvent) error {
	if err := ctx.Err(); err != nil {
		metrics.NotificationsSent.WithLabelValues(n.Name(), "error").Inc()
		return err
	}
	n.logger.Printf("alerts: %s %s (threshold %d)", event.Location, event.Message, event.Threshold)
	metrics.NotificationsSent.WithLabelValues(n.Name(), "ok").Inc()
	return nil
}
