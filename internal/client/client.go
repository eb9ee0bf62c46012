// Package client talks to a remote airwatch server.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/lox/airwatch/internal/httputil"
	"github.com/lox/airwatch/internal/models"
	"github.com/lox/airwatch/internal/source"
)

type Client struct {
	baseURL    string
	http       *http.Client
	maxElapsed time.Duration
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       httputil.NewClient(httputil.RequestTimeout),
		maxElapsed: httputil.RetryBudget,
	}
}

func (c *Client) Name() string {
	return "remote"
}

func (c *Client) Current(ctx context.Context, loc models.Location) (models.Reading, error) {
	var r models.Reading
	err := c.get(ctx, "/api/current", url.Values{"location": {loc.Name}}, &r)
	return r, err
}

func (c *Client) Forecast(ctx context.Context, loc models.Location) (models.ForecastSeries, error) {
	var f models.ForecastSeries
	err := c.get(ctx, "/api/forecast", url.Values{"location": {loc.Name}}, &f)
	return f, err
}

func (c *Client) History(ctx context.Context, loc models.Location) ([]models.MonthlyPoint, error) {
	var points []models.MonthlyPoint
	err := c.get(ctx, "/api/trends", url.Values{"location": {loc.Name}}, &points)
	return points, err
}

func (c *Client) Locations(ctx context.Context, query string) ([]models.Location, error) {
	var locs []models.Location
	err := c.get(ctx, "/api/locations", url.Values{"q": {query}}, &locs)
	return locs, err
}

// AlertHistory returns the most recent alert events, newest first.
func (c *Client) AlertHistory(ctx context.Context, limit int) ([]models.AlertEvent, error) {
	var events []models.AlertEvent
	err := c.get(ctx, "/api/alerts/history", url.Values{"limit": {strconv.Itoa(limit)}}, &events)
	return events, err
}

// get fetches path and decodes the JSON body into out, retrying
// transient failures with exponential backoff.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("get %s: %w", path, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("get %s: status %d", path, resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			return backoff.Permanent(fmt.Errorf("get %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(b))))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("read body: %w", err))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = c.maxElapsed
	notify := func(err error, wait time.Duration) {
		log.Printf("client: %v, retrying in %s", err, wait.Round(time.Millisecond))
	}
	if err := backoff.RetryNotify(operation, backoff.WithContext(bo, ctx), notify); err != nil {
		return err
	}

	if err := noLocation(body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return nil
}

// ErrNoLocation is returned when the server had no location to report on.
var ErrNoLocation = errors.New("server reported no location")

func noLocation(body []byte) error {
	var status struct {
		Status string `json:"status"`
	}
	if json.Unmarshal(body, &status) == nil && status.Status == "no_location" {
		return ErrNoLocation
	}
	return nil
}

var _ source.Source = (*Client)(nil)
