// Package monitor periodically evaluates alert rules against the
// current reading for the configured location.
package monitor

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/lox/airwatch/internal/alerts"
	"github.com/lox/airwatch/internal/aqi"
	"github.com/lox/airwatch/internal/metrics"
	"github.com/lox/airwatch/internal/models"
	"github.com/lox/airwatch/internal/search"
	"github.com/lox/airwatch/internal/source"
	"github.com/lox/airwatch/internal/store"
)

const (
	DefaultInterval = 5 * time.Minute
	DefaultCooldown = time.Hour
)

type Monitor struct {
	store     *store.Store
	source    source.Source
	notifiers []alerts.Notifier
	interval  time.Duration
	cooldown  time.Duration
	now       func() time.Time
}

func New(st *store.Store, src source.Source, notifiers ...alerts.Notifier) *Monitor {
	return &Monitor{
		store:     st,
		source:    src,
		notifiers: notifiers,
		interval:  DefaultInterval,
		cooldown:  DefaultCooldown,
		now:       time.Now,
	}
}

// SetInterval changes how often Run evaluates alerts.
func (m *Monitor) SetInterval(d time.Duration) {
	if d > 0 {
		m.interval = d
	}
}

// SetCooldown sets how long an alert stays quiet for a location after firing.
func (m *Monitor) SetCooldown(d time.Duration) {
	m.cooldown = d
}

func (m *Monitor) Run(ctx context.Context) {
	m.runLogged(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("monitor: shutting down")
			return
		case <-ticker.C:
			m.runLogged(ctx)
		}
	}
}

func (m *Monitor) runLogged(ctx context.Context) {
	events, err := m.RunOnce(ctx)
	if err != nil {
		log.Printf("monitor: run failed: %v", err)
		return
	}
	if len(events) > 0 {
		log.Printf("monitor: %d alert(s) fired", len(events))
	}
}

// RunOnce evaluates every alert once, stores and delivers the events that
// fired, and returns them.
func (m *Monitor) RunOnce(ctx context.Context) ([]models.AlertEvent, error) {
	st, err := m.store.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if st.Location == "" {
		return nil, nil
	}
	loc, ok := search.Find(st.Location)
	if !ok {
		loc = models.Location{Name: st.Location}
	}

	run, err := m.store.StartMonitorRun(loc.Name)
	if err != nil {
		log.Printf("monitor: failed to record run: %v", err)
	}
	events, evaluated, err := m.evaluate(ctx, loc)
	if run != nil {
		run.AlertsEvaluated = evaluated
		run.EventsFired = len(events)
		run.Success = err == nil
		if err != nil {
			run.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
		}
		if cerr := m.store.CompleteMonitorRun(run); cerr != nil {
			log.Printf("monitor: failed to complete run: %v", cerr)
		}
	}
	return events, err
}

func (m *Monitor) evaluate(ctx context.Context, loc models.Location) ([]models.AlertEvent, int, error) {
	reading, err := m.source.Current(ctx, loc)
	if err != nil {
		return nil, 0, fmt.Errorf("current reading: %w", err)
	}
	list, err := m.store.ListAlerts()
	if err != nil {
		return nil, 0, fmt.Errorf("list alerts: %w", err)
	}

	now := m.now()
	var fired []models.AlertEvent
	var errs error
	for _, e := range alerts.Evaluate(loc.Name, reading.Air, list, now) {
		last, err := m.store.LastFired(e.AlertID, e.Location)
		if err != nil {
			return fired, len(list), fmt.Errorf("last fired: %w", err)
		}
		if !last.IsZero() && now.Sub(last) < m.cooldown {
			continue
		}
		if err := m.store.InsertAlertEvent(e); err != nil {
			return fired, len(list), fmt.Errorf("store event: %w", err)
		}
		fired = append(fired, e)
		metrics.AlertsFired.WithLabelValues(string(e.Pollutant), string(aqi.Categorize(e.Value))).Inc()

		for _, n := range m.notifiers {
			if err := n.Notify(ctx, e); err != nil {
				errs = multierror.Append(errs, fmt.Errorf("notify %s via %s: %w", e.ID, n.Name(), err))
			}
		}
	}
	return fired, len(list), errs
}
