// Package session owns the dashboard's root state: the active view, the
// selected location and its loaded data, and the map layer choices.
package session

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"

	"github.com/lox/airwatch/internal/metrics"
	"github.com/lox/airwatch/internal/models"
	"github.com/lox/airwatch/internal/source"
)

type View string

const (
	ViewMap      View = "map"
	ViewForecast View = "forecast"
	ViewAlerts   View = "alerts"
	ViewTrends   View = "trends"
	ViewSettings View = "settings"
)

var Views = []View{ViewMap, ViewForecast, ViewAlerts, ViewTrends, ViewSettings}

type DataSource string

const (
	DataSourceSatellite DataSource = "satellite"
	DataSourceGround    DataSource = "ground"
)

type Status string

const (
	StatusNoLocation Status = "no_location"
	StatusLoading    Status = "loading"
	StatusReady      Status = "ready"
)

// Snapshot is an immutable copy of the controller state.
type Snapshot struct {
	View       View                   `json:"view"`
	Status     Status                 `json:"status"`
	Location   *models.Location       `json:"location,omitempty"`
	Current    *models.Reading        `json:"current,omitempty"`
	Forecast   *models.ForecastSeries `json:"forecast,omitempty"`
	Trends     []models.MonthlyPoint  `json:"trends,omitempty"`
	Pollutants []models.Pollutant     `json:"pollutants"`
	DataSource DataSource             `json:"dataSource"`
	Error      string                 `json:"error,omitempty"`
	Version    uint64                 `json:"version"`
}

type Controller struct {
	src    source.Source
	notify func(Snapshot)

	mu         sync.Mutex
	view       View
	location   *models.Location
	status     Status
	current    *models.Reading
	forecast   *models.ForecastSeries
	trends     []models.MonthlyPoint
	pollutants []models.Pollutant
	dataSource DataSource
	lastErr    string
	generation uint64
	version    uint64
	cancel     context.CancelFunc
	wg         sync.WaitGroup

	emitMu  sync.Mutex
	emitted uint64
}

type Option func(*Controller)

// WithNotify registers a callback invoked with new snapshots in version
// order. A snapshot older than one already delivered is skipped. The
// callback must not call methods that change the controller.
func WithNotify(fn func(Snapshot)) Option {
	return func(c *Controller) { c.notify = fn }
}

func New(src source.Source, opts ...Option) *Controller {
	c := &Controller{
		src:        src,
		view:       ViewMap,
		status:     StatusNoLocation,
		pollutants: []models.Pollutant{models.PM25},
		dataSource: DataSourceSatellite,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		View:       c.view,
		Status:     c.status,
		Trends:     slices.Clone(c.trends),
		Pollutants: slices.Clone(c.pollutants),
		DataSource: c.dataSource,
		Error:      c.lastErr,
		Version:    c.version,
	}
	if c.location != nil {
		loc := *c.location
		snap.Location = &loc
	}
	if c.current != nil {
		r := *c.current
		r.Air.Measurements = slices.Clone(r.Air.Measurements)
		snap.Current = &r
	}
	if c.forecast != nil {
		f := models.ForecastSeries{
			Hourly: slices.Clone(c.forecast.Hourly),
			Daily:  slices.Clone(c.forecast.Daily),
		}
		snap.Forecast = &f
	}
	if snap.Pollutants == nil {
		snap.Pollutants = []models.Pollutant{}
	}
	return snap
}

// changedLocked bumps the version and snapshots the new state.
func (c *Controller) changedLocked() Snapshot {
	c.version++
	return c.snapshotLocked()
}

func (c *Controller) Navigate(v View) error {
	if !slices.Contains(Views, v) {
		return fmt.Errorf("unknown view %q", v)
	}
	c.update(func() { c.view = v })
	return nil
}

// TogglePollutant adds or removes a map layer from the selection.
func (c *Controller) TogglePollutant(p models.Pollutant) {
	c.update(func() {
		if i := slices.Index(c.pollutants, p); i >= 0 {
			c.pollutants = slices.Delete(slices.Clone(c.pollutants), i, i+1)
			return
		}
		c.pollutants = append(slices.Clone(c.pollutants), p)
	})
}

func (c *Controller) SetDataSource(ds DataSource) error {
	if ds != DataSourceSatellite && ds != DataSourceGround {
		return fmt.Errorf("unknown data source %q", ds)
	}
	c.update(func() { c.dataSource = ds })
	return nil
}

// SelectLocation switches to the map view and starts loading data for loc.
// A lookup still running for an earlier location is cancelled and its
// result discarded.
func (c *Controller) SelectLocation(ctx context.Context, loc models.Location) {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	if c.cancel != nil {
		c.cancel()
	}
	lctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	l := loc
	c.location = &l
	c.view = ViewMap
	c.status = StatusLoading
	c.current = nil
	c.forecast = nil
	c.trends = nil
	c.lastErr = ""
	snap := c.changedLocked()
	c.wg.Add(1)
	c.mu.Unlock()
	c.emit(snap)

	go func() {
		defer c.wg.Done()
		defer cancel()
		c.load(lctx, gen, loc)
	}()
}

func (c *Controller) load(ctx context.Context, gen uint64, loc models.Location) {
	current, err := c.src.Current(ctx, loc)
	var forecast models.ForecastSeries
	var trends []models.MonthlyPoint
	if err == nil {
		forecast, err = c.src.Forecast(ctx, loc)
	}
	if err == nil {
		trends, err = c.src.History(ctx, loc)
	}

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		metrics.StaleLookupsDropped.Inc()
		return
	}
	c.cancel = nil
	c.status = StatusReady
	if err != nil {
		log.Printf("session: loading %s failed: %v", loc.Name, err)
		c.lastErr = err.Error()
	} else {
		c.current = &current
		c.forecast = &forecast
		c.trends = trends
	}
	snap := c.changedLocked()
	c.mu.Unlock()
	c.emit(snap)
}

// ClearLocation drops the selection and cancels any pending lookup.
func (c *Controller) ClearLocation() {
	c.mu.Lock()
	c.generation++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.location = nil
	c.current = nil
	c.forecast = nil
	c.trends = nil
	c.lastErr = ""
	c.status = StatusNoLocation
	snap := c.changedLocked()
	c.mu.Unlock()
	c.emit(snap)
}

// Wait blocks until every started lookup has finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) update(fn func()) {
	c.mu.Lock()
	fn()
	snap := c.changedLocked()
	c.mu.Unlock()
	c.emit(snap)
}

func (c *Controller) emit(snap Snapshot) {
	if c.notify == nil {
		return
	}
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	if snap.Version <= c.emitted {
		return
	}
	c.emitted = snap.Version
	c.notify(snap)
}
