// Package googlemaps implements the geocoder and the waypoint optimizer on
// top of the Google Maps Geocoding and Directions web services.
//
// Requests are rate limited per client and transient failures (network
// errors, HTTP 429 and 5xx) are retried with exponential backoff while the
// context allows it. A client without an API key answers every call with
// ports.ErrNotConfigured so the core can degrade gracefully.
package googlemaps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lastmile/internal/core/ports"
	"lastmile/internal/metrics"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://maps.googleapis.com/maps/api"

	maxAttempts    = 4
	initialBackoff = 200 * time.Millisecond
)

// Config configures a Client. Zero values fall back to defaults.
type Config struct {
	APIKey  string
	BaseURL string
	// Components restricts geocoding, e.g. "country:ES|locality:Algeciras".
	Components string
	// RequestsPerSecond bounds outbound calls. Zero disables the limiter.
	RequestsPerSecond float64
	Timeout           time.Duration
	HTTPClient        *http.Client
}

// Client talks to the Google Maps web services. It is safe for concurrent use.
type Client struct {
	session    *http.Client
	apiKey     string
	baseURL    string
	components string
	limiter    *rate.Limiter
	backoff    time.Duration
	logger     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	session := cfg.HTTPClient
	if session == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		session = &http.Client{Timeout: timeout}
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		session:    session,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    baseURL,
		components: cfg.Components,
		limiter:    limiter,
		backoff:    initialBackoff,
		logger:     logger.With("component", "googlemaps"),
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("google maps: status %d: %s", e.Code, e.Body)
}

// apiStatusError is a 200 response whose body status is not OK.
type apiStatusError struct {
	Status  string
	Message string
}

func (e *apiStatusError) Error() string {
	if e.Message == "" {
		return "google maps: " + e.Status
	}
	return fmt.Sprintf("google maps: %s: %s", e.Status, e.Message)
}

func (c *Client) newRequest(ctx context.Context, path string, query url.Values) (*http.Request, error) {
	query.Set("key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// get performs a rate limited GET with retries and returns the response of
// the first successful attempt. The caller closes the body.
func (c *Client) get(ctx context.Context, service, path string, query url.Values) (*http.Response, error) {
	if !c.Configured() {
		metrics.ExternalRequests.WithLabelValues(service, "not_configured").Inc()
		return nil, ports.ErrNotConfigured
	}

	started := time.Now()
	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, path, query)
	})
	if err != nil {
		metrics.ExternalRequests.WithLabelValues(service, "error").Inc()
		c.logger.WarnContext(ctx, "request failed", "service", service, "error", err, "duration", time.Since(started))
		return nil, err
	}

	metrics.ExternalRequests.WithLabelValues(service, "ok").Inc()
	c.logger.DebugContext(ctx, "request done", "service", service, "duration", time.Since(started))
	return resp, nil
}

// doWithRetry retries transient failures (network errors, 429 and 5xx
// responses) using exponential backoff while respecting context cancellation.
func (c *Client) doWithRetry(ctx context.Context, makeReq func() (*http.Request, error)) (*http.Response, error) {
	backoff := c.backoff
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !retryable(err) || attempt == maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var he *httpStatusError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
