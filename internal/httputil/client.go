package httputil

import (
	"net/http"
	"time"
)

// RequestTimeout bounds one attempt against a remote airwatch server.
// RetryBudget bounds all attempts of one call together.
const (
	RequestTimeout = 10 * time.Second
	RetryBudget    = time.Minute
)

// NewClient returns an HTTP client that gives up on a single attempt after
// timeout, or RequestTimeout when timeout is zero.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = RequestTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
