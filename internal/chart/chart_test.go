package chart

import (
	"bytes"
	"errors"
	"image/png"
	"testing"
	"time"

	"github.com/lox/airwatch/internal/models"
	"github.com/lox/airwatch/internal/synth"
)

func TestTrends(t *testing.T) {
	data, err := Trends("Paris, France", synth.Monthly("Paris, France"))
	if err != nil {
		t.Fatalf("Trends: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != Width || b.Dy() != Height {
		t.Errorf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), Width, Height)
	}

	want := Colors[models.PM25]
	found := false
	b := img.Bounds()
	for y := b.Min.Y + marginTop; y < b.Max.Y-marginBottom && !found; y++ {
		for x := b.Min.X + marginLeft; x < b.Max.X-marginRight; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if uint8(r>>8) == want.R && uint8(g>>8) == want.G && uint8(bl>>8) == want.B {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("no PM2.5 bar pixels in plot area")
	}
}

func TestForecast(t *testing.T) {
	gen := synth.New(synth.WithJitter(func() float64 { return 0.5 }))
	data, err := Forecast("New York, NY, USA", gen.Hourly("New York, NY, USA"))
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestEmpty(t *testing.T) {
	if _, err := Bars("x", nil, nil); !errors.Is(err, errEmpty) {
		t.Errorf("err = %v, want errEmpty", err)
	}
	if _, err := Trends("x", nil); !errors.Is(err, errEmpty) {
		t.Errorf("err = %v, want errEmpty", err)
	}
}

func TestNiceStep(t *testing.T) {
	tests := []struct {
		max  float64
		want float64
	}{
		{0, 10},
		{50, 10},
		{73, 20},
		{120, 50},
		{180, 50},
		{400, 100},
	}
	for _, tt := range tests {
		if got := niceStep(tt.max); got != tt.want {
			t.Errorf("niceStep(%v) = %v, want %v", tt.max, got, tt.want)
		}
	}
}

func TestCache(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCache(time.Minute)
	c.now = func() time.Time { return now }

	if _, ok := c.Get("paris"); ok {
		t.Fatal("empty cache hit")
	}
	c.Set("paris", []byte("png"))
	if got, ok := c.Get("paris"); !ok || string(got) != "png" {
		t.Errorf("Get = %q, %v", got, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("paris"); ok {
		t.Error("expired entry returned")
	}
}
