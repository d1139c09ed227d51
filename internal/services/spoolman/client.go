package spoolman

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"spoolcheck/internal/services"
)

const (
	defaultHTTPTimeout    = 5 * time.Second
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = 250 * time.Millisecond
	defaultRetryMaxDelay  = 2 * time.Second
	maxErrorBody          = 512
)

// Vendor is the filament manufacturer.
type Vendor struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Filament is the filament type a spool belongs to.
type Filament struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Material string   `json:"material"`
	Vendor   *Vendor  `json:"vendor,omitempty"`
	Density  float64  `json:"density"`
	Diameter float64  `json:"diameter"`
	Weight   *float64 `json:"weight,omitempty"`
	ColorHex string   `json:"color_hex,omitempty"`
}

// Spool is a physical spool as reported by GET /api/v1/spool/{id}.
type Spool struct {
	ID              int64    `json:"id"`
	Filament        Filament `json:"filament"`
	RemainingWeight *float64 `json:"remaining_weight,omitempty"`
	InitialWeight   *float64 `json:"initial_weight,omitempty"`
	UsedWeight      float64  `json:"used_weight"`
	Location        string   `json:"location,omitempty"`
	LotNr           string   `json:"lot_nr,omitempty"`
	Archived        bool     `json:"archived"`
}

// VendorName returns the vendor name or an empty string.
func (s Spool) VendorName() string {
	if s.Filament.Vendor == nil {
		return ""
	}
	return s.Filament.Vendor.Name
}

// Client talks to one Spoolman instance.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	retryAttempts int
	retryBase     time.Duration
	retryMax      time.Duration
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithRetryAttempts sets how many retries follow the first attempt.
func WithRetryAttempts(attempts int) Option {
	return func(c *Client) {
		if attempts >= 0 {
			c.retryAttempts = attempts
		}
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBase = baseDelay
		c.retryMax = maxDelay
	}
}

// NewClient constructs a Spoolman client for baseURL (e.g. http://host:7912).
func NewClient(baseURL string, opts ...Option) *Client {
	client := &Client{
		baseURL:       strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient:    &http.Client{Timeout: defaultHTTPTimeout},
		retryAttempts: defaultRetryAttempts,
		retryBase:     defaultRetryBaseDelay,
		retryMax:      defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// GetSpool fetches a spool by ID.
func (c *Client) GetSpool(ctx context.Context, id int64) (Spool, error) {
	var spool Spool
	path := "/api/v1/spool/" + strconv.FormatInt(id, 10)
	if err := c.getJSON(ctx, "get spool", path, &spool); err != nil {
		return Spool{}, err
	}
	return spool, nil
}

// Health probes GET /api/v1/health.
func (c *Client) Health(ctx context.Context) error {
	var payload struct {
		Status string `json:"status"`
	}
	if err := c.getJSON(ctx, "health", "/api/v1/health", &payload); err != nil {
		return err
	}
	if !strings.EqualFold(payload.Status, "healthy") {
		return services.Wrap(services.ErrExternalService, "spoolman", "health", fmt.Sprintf("status %q", payload.Status), nil)
	}
	return nil
}

// BaseURL returns the configured endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) getJSON(ctx context.Context, operation, path string, target any) error {
	if c.baseURL == "" {
		return services.Wrap(services.ErrConfiguration, "spoolman", operation, "spoolman.url is not set", nil)
	}
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryBase
	policy.MaxInterval = c.retryMax

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := c.doJSON(ctx, operation, path, target)
		if err != nil && !services.Retryable(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}, backoff.WithBackOff(policy), backoff.WithMaxTries(uint(c.retryAttempts)+1))
	return err
}

func (c *Client) doJSON(ctx context.Context, operation, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "spoolman", operation, "build request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(classifyTransportError(err), "spoolman", operation, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return services.Wrap(services.ErrNotFound, "spoolman", operation, path+" returned 404", nil)
	case resp.StatusCode >= http.StatusInternalServerError:
		return services.Wrap(services.ErrTransient, "spoolman", operation, statusDetail(resp), nil)
	case resp.StatusCode >= http.StatusBadRequest:
		return services.Wrap(services.ErrValidation, "spoolman", operation, statusDetail(resp), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return services.Wrap(services.ErrValidation, "spoolman", operation, "decode response", err)
	}
	return nil
}

func statusDetail(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	detail := fmt.Sprintf("http %d", resp.StatusCode)
	if text := strings.TrimSpace(string(body)); text != "" {
		detail += ": " + text
	}
	return detail
}

func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return services.ErrTimeout
	}
	return services.ErrExternalService
}
