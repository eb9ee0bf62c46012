package search

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lox/airwatch/internal/models"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"", nil},
		{"p", nil},
		{"  p  ", nil},
		{"pa", []string{"Paris, France"}},
		{"PARIS", []string{"Paris, France"}},
		{"việt", []string{"Hồ Chí Minh, Việt Nam", "Hà Nội, Việt Nam"}},
		{" ny ", []string{"New York, NY, USA"}},
		{"london", nil},
	}
	for _, tt := range tests {
		got := Match(tt.query)
		if len(got) != len(tt.want) {
			t.Errorf("Match(%q) = %v, want %v", tt.query, got, tt.want)
			continue
		}
		for i := range got {
			if got[i].Name != tt.want[i] {
				t.Errorf("Match(%q)[%d] = %q, want %q", tt.query, i, got[i].Name, tt.want[i])
			}
		}
	}
}

func TestFind(t *testing.T) {
	loc, ok := Find("Paris, France")
	if !ok || loc.Lat != 48.8566 {
		t.Errorf("Find(Paris) = %+v, %v", loc, ok)
	}
	if _, ok := Find("paris"); ok {
		t.Error("Find should be exact")
	}
}

func TestMock_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (Mock{Latency: time.Second}).Search(ctx, "paris"); err == nil {
		t.Error("expected context error")
	}
}

type countingGeocoder struct {
	calls atomic.Int32
	last  atomic.Value
}

func (c *countingGeocoder) Search(ctx context.Context, q string) ([]models.Location, error) {
	c.calls.Add(1)
	c.last.Store(q)
	return Match(q), nil
}

func waitFor(t *testing.T, ch <-chan Snapshot, state State) Snapshot {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case snap := <-ch:
			if snap.State == state {
				return snap
			}
		case <-timeout:
			t.Fatalf("timed out waiting for state %s", state)
		}
	}
}

func TestSearcher_Debounces(t *testing.T) {
	g := &countingGeocoder{}
	ch := make(chan Snapshot, 64)
	s := NewSearcher(g, WithDebounce(20*time.Millisecond), WithNotify(func(s Snapshot) { ch <- s }))
	defer s.Close()

	s.Type("P")
	if got := s.Snapshot().State; got != StateIdle {
		t.Errorf("short query state = %s, want idle", got)
	}
	s.Type("Pa")
	s.Type("Par")
	s.Type("Pari")

	snap := waitFor(t, ch, StateShowingResults)
	if len(snap.Results) != 1 || snap.Results[0].Name != "Paris, France" {
		t.Errorf("results = %v", snap.Results)
	}
	if n := g.calls.Load(); n != 1 {
		t.Errorf("geocoder calls = %d, want 1", n)
	}
	if q := g.last.Load().(string); q != "Pari" {
		t.Errorf("searched %q, want Pari", q)
	}
}

func TestSearcher_SelectClearsResults(t *testing.T) {
	ch := make(chan Snapshot, 64)
	s := NewSearcher(Mock{}, WithDebounce(time.Millisecond), WithNotify(func(s Snapshot) { ch <- s }))
	defer s.Close()

	s.Type("nội")
	snap := waitFor(t, ch, StateShowingResults)
	if len(snap.Results) != 1 {
		t.Fatalf("results = %v", snap.Results)
	}

	s.Select(snap.Results[0])
	got := s.Snapshot()
	if got.Query != "Hà Nội, Việt Nam" || len(got.Results) != 0 || got.State != StateIdle {
		t.Errorf("after select = %+v", got)
	}
}

func TestSearcher_DismissAndClose(t *testing.T) {
	g := &countingGeocoder{}
	s := NewSearcher(g, WithDebounce(50*time.Millisecond))

	s.Type("paris")
	s.Dismiss()
	if got := s.Snapshot().State; got != StateDismissed {
		t.Errorf("state = %s, want dismissed", got)
	}

	s.Type("new")
	s.Close()
	time.Sleep(100 * time.Millisecond)
	if n := g.calls.Load(); n != 0 {
		t.Errorf("geocoder called %d times after dismiss/close", n)
	}

	s.Type("paris")
	if got := s.Snapshot().Query; got != "new" {
		t.Errorf("Type after Close changed query to %q", got)
	}
}

func TestTransitions(t *testing.T) {
	if canTransition(StateIdle, StateShowingResults) {
		t.Error("idle must not jump to showing_results")
	}
	if canTransition(StateIdle, StateDismissed) {
		t.Error("idle cannot be dismissed")
	}
	if !canTransition(StateSearching, StateShowingResults) {
		t.Error("searching should reach showing_results")
	}
}
