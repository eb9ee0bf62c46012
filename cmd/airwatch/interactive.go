package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/lox/airwatch/internal/search"
)

// interactiveSearch treats each input line as the current contents of a
// search box. Lookups are debounced; a line holding a result number
// selects that result and ends the session.
func interactiveSearch(ctx context.Context, in io.Reader, out io.Writer, g search.Geocoder) error {
	var mu sync.Mutex
	s := search.NewSearcher(g, search.WithNotify(func(snap search.Snapshot) {
		if snap.State != search.StateShowingResults {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if len(snap.Results) == 0 {
			fmt.Fprintf(out, "no matches for %q\n", snap.Query)
			return
		}
		for i, l := range snap.Results {
			fmt.Fprintf(out, "%d) %s\n", i+1, l.Name)
		}
	}))
	defer s.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if n, err := strconv.Atoi(strings.TrimSpace(line)); err == nil {
				results := s.Snapshot().Results
				if n >= 1 && n <= len(results) {
					loc := s.Select(results[n-1])
					mu.Lock()
					fmt.Fprintf(out, "selected %s (%.4f, %.4f)\n", loc.Name, loc.Lat, loc.Lon)
					mu.Unlock()
					return nil
				}
			}
			s.Type(line)
		}
	}
}
