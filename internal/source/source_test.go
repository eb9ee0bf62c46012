package source

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/lox/airwatch/internal/models"
	"github.com/lox/airwatch/internal/synth"
)

var paris = models.Location{Name: "Paris, France", Lat: 48.8566, Lon: 2.3522}

func TestSynthetic_ZeroLatency(t *testing.T) {
	s := NewSynthetic(synth.New(synth.WithJitter(func() float64 { return 0.5 })), 0)

	reading, err := s.Current(context.Background(), paris)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if !reflect.DeepEqual(reading, synth.Current(paris)) {
		t.Error("Current does not match the generator")
	}
	if reading.Location != paris {
		t.Errorf("Location = %+v, want %+v", reading.Location, paris)
	}

	fc, err := s.Forecast(context.Background(), paris)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if len(fc.Hourly) != 24 || len(fc.Daily) != 7 {
		t.Errorf("forecast sizes = %d/%d, want 24/7", len(fc.Hourly), len(fc.Daily))
	}

	hist, err := s.History(context.Background(), paris)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 12 {
		t.Errorf("len(history) = %d, want 12", len(hist))
	}
}

func TestSynthetic_LatencyIsCancellable(t *testing.T) {
	s := NewSynthetic(nil, time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := s.Current(ctx, paris)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if time.Since(start) > time.Second {
		t.Error("cancellation did not interrupt the delay")
	}
}

func TestSynthetic_LatencyDelays(t *testing.T) {
	s := NewSynthetic(nil, 20*time.Millisecond)
	start := time.Now()
	if _, err := s.History(context.Background(), paris); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("returned after %v, want at least 20ms", elapsed)
	}
}

func TestRateLimited(t *testing.T) {
	r := NewRateLimited(NewSynthetic(nil, 0), 1, 1)
	if r.Name() != "synthetic [rate limited]" {
		t.Errorf("Name = %q", r.Name())
	}

	if _, err := r.Current(context.Background(), paris); err != nil {
		t.Fatalf("first call: %v", err)
	}

	// The bucket is empty; a short deadline cannot wait for the next token.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	if _, err := r.Forecast(ctx, paris); err == nil {
		t.Error("expected rate limit error")
	}
}
