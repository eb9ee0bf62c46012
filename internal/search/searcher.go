package search

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/lox/airwatch/internal/models"
)

const DefaultDebounce = 300 * time.Millisecond

type State string

const (
	StateIdle           State = "idle"
	StateTyping         State = "typing"
	StateSearching      State = "searching"
	StateShowingResults State = "showing_results"
	StateDismissed      State = "dismissed"
)

var transitions = map[State][]State{
	StateIdle:           {StateTyping, StateIdle},
	StateTyping:         {StateTyping, StateSearching, StateIdle, StateDismissed},
	StateSearching:      {StateShowingResults, StateTyping, StateIdle, StateDismissed},
	StateShowingResults: {StateTyping, StateIdle, StateDismissed},
	StateDismissed:      {StateTyping, StateIdle},
}

func canTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Snapshot is a point-in-time copy of a Searcher's state.
type Snapshot struct {
	State   State
	Query   string
	Results []models.Location
	Err     error
}

// Searcher debounces keystrokes into geocoder lookups.
type Searcher struct {
	geocoder Geocoder
	debounce time.Duration
	notify   func(Snapshot)

	mu      sync.Mutex
	state   State
	query   string
	results []models.Location
	err     error
	timer   *time.Timer
	cancel  context.CancelFunc
	seq     uint64
	closed  bool
}

type Option func(*Searcher)

func WithDebounce(d time.Duration) Option {
	return func(s *Searcher) { s.debounce = d }
}

// WithNotify registers a callback invoked after every state change.
func WithNotify(fn func(Snapshot)) Option {
	return func(s *Searcher) { s.notify = fn }
}

func NewSearcher(g Geocoder, opts ...Option) *Searcher {
	s := &Searcher{
		geocoder: g,
		debounce: DefaultDebounce,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Searcher) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Searcher) snapshotLocked() Snapshot {
	return Snapshot{
		State:   s.state,
		Query:   s.query,
		Results: append([]models.Location(nil), s.results...),
		Err:     s.err,
	}
}

// Type records a new query. Short queries clear results immediately;
// anything else schedules a lookup after the debounce interval.
func (s *Searcher) Type(query string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.stopLocked()
	s.query = query
	s.err = nil

	if len([]rune(strings.TrimSpace(query))) < MinQueryLength {
		s.results = nil
		s.setLocked(StateIdle)
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.emit(snap)
		return
	}

	s.setLocked(StateTyping)
	seq := s.seq
	s.timer = time.AfterFunc(s.debounce, func() { s.fire(seq, query) })
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.emit(snap)
}

func (s *Searcher) fire(seq uint64, query string) {
	s.mu.Lock()
	if s.closed || seq != s.seq || !s.setLocked(StateSearching) {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.emit(snap)

	results, err := s.geocoder.Search(ctx, query)
	cancel()

	s.mu.Lock()
	if s.closed || seq != s.seq {
		s.mu.Unlock()
		return
	}
	s.cancel = nil
	if err != nil {
		log.Printf("search: lookup %q failed: %v", query, err)
		s.err = err
		results = nil
	}
	s.results = results
	s.setLocked(StateShowingResults)
	snap = s.snapshotLocked()
	s.mu.Unlock()
	s.emit(snap)
}

// Select accepts a result: the query becomes its name and results are cleared.
func (s *Searcher) Select(loc models.Location) models.Location {
	s.mu.Lock()
	s.stopLocked()
	s.query = loc.Name
	s.results = nil
	s.err = nil
	s.setLocked(StateIdle)
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.emit(snap)
	return loc
}

// Dismiss hides results, as when focus leaves the search box.
func (s *Searcher) Dismiss() {
	s.mu.Lock()
	s.stopLocked()
	s.results = nil
	changed := s.setLocked(StateDismissed)
	snap := s.snapshotLocked()
	s.mu.Unlock()
	if changed {
		s.emit(snap)
	}
}

// Close cancels any pending or in-flight lookup. Later calls are ignored.
func (s *Searcher) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.closed = true
}

// stopLocked invalidates the pending timer and any running lookup.
func (s *Searcher) stopLocked() {
	s.seq++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Searcher) setLocked(to State) bool {
	if !canTransition(s.state, to) {
		return false
	}
	s.state = to
	return true
}

func (s *Searcher) emit(snap Snapshot) {
	if s.notify != nil {
		s.notify(snap)
	}
}
