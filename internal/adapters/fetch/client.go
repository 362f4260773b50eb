// Package fetch retrieves raw score snapshots from the recognition
// backend over HTTP.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pumptrack/pumptrack/internal/domain/model"
	"github.com/pumptrack/pumptrack/pkg/logger"
	"github.com/pumptrack/pumptrack/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultTimeout = 2 * time.Minute

	highscoresPath = "/results/highscores"
)

// Client fetches raw snapshots from the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New constructs a Client for the given backend base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves one complete raw snapshot. A 200 response whose body
// carries a backend error string is still a failed fetch.
func (c *Client) Fetch(ctx context.Context) (*model.RawData, error) {
	start := time.Now()
	metrics.RecordFetch()

	data, err := c.fetch(ctx)
	metrics.RecordFetchDuration(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordFetchError()
		if c.logger != nil {
			c.logger.Error(ctx, "snapshot fetch failed", logger.Error(err))
		}
		return nil, err
	}

	if c.logger != nil {
		c.logger.Info(ctx, "snapshot fetched",
			logger.Int("players", len(data.Players)),
			logger.Int("charts", len(data.SharedCharts)),
			logger.Int("results", len(data.Results)),
			logger.Duration("elapsed", time.Since(start)),
		)
	}
	return data, nil
}

func (c *Client) fetch(ctx context.Context) (*model.RawData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+highscoresPath, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}

	var data model.RawData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if data.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrBackend, data.Error)
	}
	return &data, nil
}
