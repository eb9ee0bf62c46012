package source

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/lox/airwatch/internal/metrics"
	"github.com/lox/airwatch/internal/models"
	"github.com/lox/airwatch/internal/synth"
)

// Source supplies air quality data for a location.
type Source interface {
	Name() string
	Current(ctx context.Context, loc models.Location) (models.Reading, error)
	Forecast(ctx context.Context, loc models.Location) (models.ForecastSeries, error)
	History(ctx context.Context, loc models.Location) ([]models.MonthlyPoint, error)
}

// Synthetic serves generated data after an optional artificial delay that
// mimics a network round trip. The delay is cancellable through ctx.
type Synthetic struct {
	gen     *synth.Generator
	latency time.Duration
}

func NewSynthetic(gen *synth.Generator, latency time.Duration) *Synthetic {
	if gen == nil {
		gen = synth.New()
	}
	return &Synthetic{gen: gen, latency: latency}
}

func (s *Synthetic) Name() string {
	return "synthetic"
}

func (s *Synthetic) Current(ctx context.Context, loc models.Location) (models.Reading, error) {
	defer observe(s.Name(), "current", time.Now())
	if err := s.wait(ctx); err != nil {
		count(s.Name(), "current", err)
		return models.Reading{}, err
	}
	count(s.Name(), "current", nil)
	return synth.Current(loc), nil
}

func (s *Synthetic) Forecast(ctx context.Context, loc models.Location) (models.ForecastSeries, error) {
	defer observe(s.Name(), "forecast", time.Now())
	if err := s.wait(ctx); err != nil {
		count(s.Name(), "forecast", err)
		return models.ForecastSeries{}, err
	}
	count(s.Name(), "forecast", nil)
	return s.gen.Forecast(loc.Name), nil
}

func (s *Synthetic) History(ctx context.Context, loc models.Location) ([]models.MonthlyPoint, error) {
	defer observe(s.Name(), "history", time.Now())
	if err := s.wait(ctx); err != nil {
		count(s.Name(), "history", err)
		return nil, err
	}
	count(s.Name(), "history", nil)
	return synth.Monthly(loc.Name), nil
}

func (s *Synthetic) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func observe(source, kind string, start time.Time) {
	metrics.SynthesisLatency.WithLabelValues(source, kind).Observe(time.Since(start).Seconds())
}

func count(source, kind string, err error) {
	status := "ok"
	if err != nil {
		status = "canceled"
	}
	metrics.SynthesisTotal.WithLabelValues(source, kind, status).Inc()
}

// RateLimited wraps a Source with a token bucket limiter.
type RateLimited struct {
	source  Source
	limiter *rate.Limiter
	name    string
}

// NewRateLimited allows rps requests per second with the given burst.
func NewRateLimited(src Source, rps float64, burst int) *RateLimited {
	return &RateLimited{
		source:  src,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		name:    fmt.Sprintf("%s [rate limited]", src.Name()),
	}
}

func (r *RateLimited) Name() string {
	return r.name
}

func (r *RateLimited) Current(ctx context.Context, loc models.Location) (models.Reading, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return models.Reading{}, fmt.Errorf("rate limit wait: %w", err)
	}
	return r.source.Current(ctx, loc)
}

func (r *RateLimited) Forecast(ctx context.Context, loc models.Location) (models.ForecastSeries, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return models.ForecastSeries{}, fmt.Errorf("rate limit wait: %w", err)
	}
	return r.source.Forecast(ctx, loc)
}

func (r *RateLimited) History(ctx context.Context, loc models.Location) ([]models.MonthlyPoint, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return r.source.History(ctx, loc)
}

var (
	_ Source = (*Synthetic)(nil)
	_ Source = (*RateLimited)(nil)
)
