package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lox/airwatch/internal/models"
	"github.com/lox/airwatch/internal/source"
	"github.com/lox/airwatch/internal/synth"
)

var (
	paris   = models.Location{Name: "Paris, France", Lat: 48.8566, Lon: 2.3522}
	newYork = models.Location{Name: "New York, NY, USA", Lat: 40.7128, Lon: -74.0060}
)

func TestController_Defaults(t *testing.T) {
	c := New(source.NewSynthetic(nil, 0))
	snap := c.Snapshot()
	if snap.View != ViewMap {
		t.Errorf("View = %s, want map", snap.View)
	}
	if snap.Status != StatusNoLocation {
		t.Errorf("Status = %s, want no_location", snap.Status)
	}
	if len(snap.Pollutants) != 1 || snap.Pollutants[0] != models.PM25 {
		t.Errorf("Pollutants = %v, want [PM2.5]", snap.Pollutants)
	}
	if snap.DataSource != DataSourceSatellite {
		t.Errorf("DataSource = %s", snap.DataSource)
	}
	if snap.Current != nil || snap.Location != nil {
		t.Error("no data expected before a location is selected")
	}
}

func TestController_SelectLocation(t *testing.T) {
	c := New(source.NewSynthetic(synth.New(synth.WithJitter(func() float64 { return 0.5 })), 0))
	if err := c.Navigate(ViewTrends); err != nil {
		t.Fatal(err)
	}

	c.SelectLocation(context.Background(), newYork)
	if got := c.Snapshot().View; got != ViewMap {
		t.Errorf("View after select = %s, want map", got)
	}
	c.Wait()

	snap := c.Snapshot()
	if snap.Status != StatusReady {
		t.Fatalf("Status = %s, want ready (err %q)", snap.Status, snap.Error)
	}
	if snap.Current == nil || snap.Current.Air.AQI != 96 {
		t.Errorf("Current = %+v", snap.Current)
	}
	if snap.Forecast == nil || len(snap.Forecast.Hourly) != 24 || len(snap.Forecast.Daily) != 7 {
		t.Errorf("Forecast = %+v", snap.Forecast)
	}
	if len(snap.Trends) != 12 {
		t.Errorf("len(Trends) = %d, want 12", len(snap.Trends))
	}

	c.ClearLocation()
	snap = c.Snapshot()
	if snap.Status != StatusNoLocation || snap.Current != nil || snap.Location != nil {
		t.Errorf("after clear = %+v", snap)
	}
}

// gatedSource blocks lookups for one location until released.
type gatedSource struct {
	source.Source
	block string
	gate  chan struct{}
}

func (g *gatedSource) Current(ctx context.Context, loc models.Location) (models.Reading, error) {
	if loc.Name == g.block {
		select {
		case <-g.gate:
		case <-ctx.Done():
			return models.Reading{}, ctx.Err()
		}
	}
	return g.Source.Current(ctx, loc)
}

func TestController_StaleLookupDiscarded(t *testing.T) {
	src := &gatedSource{Source: source.NewSynthetic(nil, 0), block: paris.Name, gate: make(chan struct{})}
	c := New(src)

	c.SelectLocation(context.Background(), paris)
	c.SelectLocation(context.Background(), newYork)
	close(src.gate)
	c.Wait()

	snap := c.Snapshot()
	if snap.Location == nil || snap.Location.Name != newYork.Name {
		t.Fatalf("Location = %+v, want New York", snap.Location)
	}
	if snap.Current == nil || snap.Current.Location.Name != newYork.Name {
		t.Errorf("Current belongs to %+v, want New York", snap.Current)
	}
	if snap.Error != "" {
		t.Errorf("Error = %q", snap.Error)
	}
}

func TestController_ClearCancelsPending(t *testing.T) {
	src := &gatedSource{Source: source.NewSynthetic(nil, 0), block: paris.Name, gate: make(chan struct{})}
	var mu sync.Mutex
	var statuses []Status
	c := New(src, WithNotify(func(s Snapshot) {
		mu.Lock()
		statuses = append(statuses, s.Status)
		mu.Unlock()
	}))

	c.SelectLocation(context.Background(), paris)
	c.ClearLocation()

	done := make(chan struct{})
	go func() { c.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pending lookup was not cancelled")
	}

	if got := c.Snapshot().Status; got != StatusNoLocation {
		t.Errorf("Status = %s, want no_location", got)
	}
	mu.Lock()
	defer mu.Unlock()
	want := []Status{StatusLoading, StatusNoLocation}
	if len(statuses) != len(want) || statuses[0] != want[0] || statuses[1] != want[1] {
		t.Errorf("statuses = %v, want %v", statuses, want)
	}
}

type failingSource struct{ source.Source }

func (failingSource) Current(context.Context, models.Location) (models.Reading, error) {
	return models.Reading{}, errors.New("upstream down")
}

func TestController_LoadError(t *testing.T) {
	c := New(failingSource{source.NewSynthetic(nil, 0)})
	c.SelectLocation(context.Background(), paris)
	c.Wait()

	snap := c.Snapshot()
	if snap.Status != StatusReady || snap.Error != "upstream down" || snap.Current != nil {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestController_TogglePollutant(t *testing.T) {
	c := New(source.NewSynthetic(nil, 0))
	c.TogglePollutant(models.O3)
	c.TogglePollutant(models.PM25)
	c.TogglePollutant(models.NO2)

	got := c.Snapshot().Pollutants
	want := []models.Pollutant{models.O3, models.NO2}
	if len(got) != len(want) {
		t.Fatalf("Pollutants = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("Pollutants = %v, want %v", got, want)
		}
	}

	c.TogglePollutant(models.O3)
	c.TogglePollutant(models.NO2)
	if got := c.Snapshot().Pollutants; got == nil || len(got) != 0 {
		t.Errorf("empty selection = %#v, want empty non-nil slice", got)
	}
}

func TestController_Validation(t *testing.T) {
	c := New(source.NewSynthetic(nil, 0))
	if err := c.Navigate("profile"); err == nil {
		t.Error("unknown view accepted")
	}
	if err := c.SetDataSource("radar"); err == nil {
		t.Error("unknown data source accepted")
	}
	if err := c.SetDataSource(DataSourceGround); err != nil {
		t.Fatal(err)
	}
	if got := c.Snapshot().DataSource; got != DataSourceGround {
		t.Errorf("DataSource = %s", got)
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	c := New(source.NewSynthetic(nil, 0))
	snap := c.Snapshot()
	snap.Pollutants[0] = models.SO2
	if got := c.Snapshot().Pollutants[0]; got != models.PM25 {
		t.Errorf("controller state mutated through snapshot: %s", got)
	}
}

func TestNotify_DeliversInVersionOrder(t *testing.T) {
	var mu sync.Mutex
	var versions []uint64
	c := New(source.NewSynthetic(nil, 0), WithNotify(func(s Snapshot) {
		mu.Lock()
		versions = append(versions, s.Version)
		mu.Unlock()
	}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				switch (i + j) % 4 {
				case 0:
					c.SelectLocation(context.Background(), paris)
				case 1:
					c.SelectLocation(context.Background(), newYork)
				case 2:
					c.TogglePollutant(models.O3)
				default:
					c.Navigate(ViewForecast)
				}
			}
		}(i)
	}
	wg.Wait()
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(versions) == 0 {
		t.Fatal("no snapshots delivered")
	}
	for i := 1; i < len(versions); i++ {
		if versions[i] <= versions[i-1] {
			t.Fatalf("version %d delivered after %d", versions[i], versions[i-1])
		}
	}
	if last, final := versions[len(versions)-1], c.Snapshot().Version; last != final {
		t.Errorf("last delivered version = %d, want %d", last, final)
	}
}
