package moonraker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"spoolcheck/internal/services"
)

const (
	defaultHTTPTimeout = 5 * time.Second
	maxErrorBody       = 512
)

// Client talks to one Moonraker instance.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
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

// WithAPIKey sends X-Api-Key with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
	}
}

// NewClient constructs a Moonraker client for baseURL (e.g. http://127.0.0.1:7125).
func NewClient(baseURL string, opts ...Option) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// BaseURL returns the configured endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ActiveSpoolID returns the spool selected in Moonraker's Spoolman
// integration. ok is false when no spool is set.
func (c *Client) ActiveSpoolID(ctx context.Context) (id int64, ok bool, err error) {
	var result struct {
		SpoolID *int64 `json:"spool_id"`
	}
	if err := c.call(ctx, http.MethodGet, "active spool", "/server/spoolman/spool_id", nil, nil, &result); err != nil {
		return 0, false, err
	}
	if result.SpoolID == nil || *result.SpoolID <= 0 {
		return 0, false, nil
	}
	return *result.SpoolID, true, nil
}

// PrintStats is the subset of the print_stats printer object spoolcheck reads.
type PrintStats struct {
	Filename string `json:"filename"`
	State    string `json:"state"`
}

// PrintStats queries the print_stats printer object.
func (c *Client) PrintStats(ctx context.Context) (PrintStats, error) {
	var result struct {
		Status struct {
			PrintStats PrintStats `json:"print_stats"`
		} `json:"status"`
	}
	query := url.Values{"print_stats": {"filename,state"}}
	if err := c.call(ctx, http.MethodGet, "print stats", "/printer/objects/query", query, nil, &result); err != nil {
		return PrintStats{}, err
	}
	return result.Status.PrintStats, nil
}

// CurrentFilename returns the file Klipper is printing or about to print.
// An empty string means no file is loaded.
func (c *Client) CurrentFilename(ctx context.Context) (string, error) {
	stats, err := c.PrintStats(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(stats.Filename), nil
}

// ToolList holds one value per extruder. Moonraker reports these as a
// ';'-separated string, a JSON array, or a string holding an encoded JSON
// array (the super_metadata extension stores filament names that way).
type ToolList []string

// UnmarshalJSON accepts a string, an array of strings, or null.
func (l *ToolList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = nil
		return nil
	}
	if trimmed[0] == '[' {
		var items []string
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*l = compact(items)
		return nil
	}
	var joined string
	if err := json.Unmarshal(trimmed, &joined); err != nil {
		return err
	}
	if text := strings.TrimSpace(joined); strings.HasPrefix(text, "[") {
		var items []string
		if err := json.Unmarshal([]byte(text), &items); err == nil {
			*l = compact(items)
			return nil
		}
	}
	*l = compact(strings.Split(joined, ";"))
	return nil
}

// First returns tool 0's value or "".
func (l ToolList) First() string {
	if len(l) == 0 {
		return ""
	}
	return l[0]
}

func compact(items []string) ToolList {
	out := make(ToolList, 0, len(items))
	for _, item := range items {
		if item = strings.Trim(strings.TrimSpace(item), `"`); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// FileMetadata is the slicer metadata Moonraker extracted from a gcode file.
type FileMetadata struct {
	Filename            string    `json:"filename"`
	Slicer              string    `json:"slicer"`
	SlicerVersion       string    `json:"slicer_version"`
	FilamentType        ToolList  `json:"filament_type"`
	FilamentName        ToolList  `json:"filament_name"`
	FilamentWeights     []float64 `json:"filament_weights"`
	FilamentWeightTotal *float64  `json:"filament_weight_total"`
	FilamentTotal       *float64  `json:"filament_total"`
	EstimatedTime       float64   `json:"estimated_time"`
}

// RequiredWeight returns tool 0's weight in grams, falling back to the
// job total. Nil means the slicer reported neither.
func (m FileMetadata) RequiredWeight() *float64 {
	if len(m.FilamentWeights) > 0 {
		weight := m.FilamentWeights[0]
		return &weight
	}
	if m.FilamentWeightTotal != nil {
		weight := *m.FilamentWeightTotal
		return &weight
	}
	return nil
}

// FileMetadata returns the metadata Moonraker holds for filename, relative to
// the gcodes root.
func (c *Client) FileMetadata(ctx context.Context, filename string) (FileMetadata, error) {
	var result FileMetadata
	query := url.Values{"filename": {filename}}
	if err := c.call(ctx, http.MethodGet, "file metadata", "/server/files/metadata", query, nil, &result); err != nil {
		return FileMetadata{}, err
	}
	if result.Filename == "" {
		result.Filename = filename
	}
	return result, nil
}

// RunGcode executes a gcode script, e.g. an M118 console message.
func (c *Client) RunGcode(ctx context.Context, script string) error {
	body := map[string]string{"script": script}
	return c.call(ctx, http.MethodPost, "run gcode", "/printer/gcode/script", nil, body, nil)
}

// PausePrint pauses the active print job.
func (c *Client) PausePrint(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "pause print", "/printer/print/pause", nil, nil, nil)
}

// ServerInfo is the subset of /server/info used for readiness.
type ServerInfo struct {
	KlippyConnected  bool     `json:"klippy_connected"`
	KlippyState      string   `json:"klippy_state"`
	MoonrakerVersion string   `json:"moonraker_version"`
	Components       []string `json:"components"`
}

// HasComponent reports whether a Moonraker component is loaded.
func (s ServerInfo) HasComponent(name string) bool {
	for _, component := range s.Components {
		if component == name {
			return true
		}
	}
	return false
}

// ServerInfo returns Moonraker's server status.
func (c *Client) ServerInfo(ctx context.Context) (ServerInfo, error) {
	var result ServerInfo
	if err := c.call(ctx, http.MethodGet, "server info", "/server/info", nil, nil, &result); err != nil {
		return ServerInfo{}, err
	}
	return result, nil
}

type envelope struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *Client) call(ctx context.Context, method, operation, path string, query url.Values, body any, target any) error {
	if c.baseURL == "" {
		return services.Wrap(services.ErrConfiguration, "moonraker", operation, "moonraker.url is not set", nil)
	}
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return services.Wrap(services.ErrValidation, "moonraker", operation, "encode request", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "moonraker", operation, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(classifyTransportError(err), "moonraker", operation, "request failed", err)
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&env)
	if resp.StatusCode >= http.StatusBadRequest {
		detail := fmt.Sprintf("http %d", resp.StatusCode)
		if decodeErr == nil && env.Error != nil && env.Error.Message != "" {
			detail += ": " + env.Error.Message
		}
		marker := services.ErrExternalService
		switch {
		case resp.StatusCode == http.StatusNotFound:
			marker = services.ErrNotFound
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			marker = services.ErrConfiguration
		}
		return services.Wrap(marker, "moonraker", operation, detail, nil)
	}
	if decodeErr != nil {
		return services.Wrap(services.ErrValidation, "moonraker", operation, "decode response", decodeErr)
	}
	if target == nil {
		return nil
	}
	if len(env.Result) == 0 || string(env.Result) == "null" {
		return services.Wrap(services.ErrValidation, "moonraker", operation, "response has no result", nil)
	}
	if err := json.Unmarshal(env.Result, target); err != nil {
		return services.Wrap(services.ErrValidation, "moonraker", operation, "decode result", err)
	}
	return nil
}

func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return services.ErrTimeout
	}
	return services.ErrExternalService
}
