package swarmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// StateFetcher defines the read side of the swarmd API.
// This interface is implemented by *Client and can be used for testing.
type StateFetcher interface {
	FetchState(ctx context.Context) (*SimState, error)
	ListScenarios(ctx context.Context, query ScenarioQuery) ([]Scenario, error)
}

// Mutator defines the write side of the swarmd API.
type Mutator interface {
	PatchJob(ctx context.Context, id int64, patch JobPatch) (*Job, error)
	Pause(ctx context.Context) error
	Restart(ctx context.Context) error
	CreateScenario(ctx context.Context, spec ScenarioSpec, idempotencyKey string) (*ScenarioCreated, error)
}

// Ensure Client implements both API sides at compile time.
var (
	_ StateFetcher = (*Client)(nil)
	_ Mutator      = (*Client)(nil)
)

// Client talks to the swarmd HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultAPIBind   = "127.0.0.1:8470"
	defaultUserAgent = "swarmview/0.1"
	requestTimeout   = 5 * time.Second

	idempotencyHeader = "Idempotency-Key"
)

// APIError reports a non-2xx response from swarmd.
type APIError struct {
	Status int
	Path   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Status)
}

// NewClient builds a Client using the provided serverURL host:port value.
func NewClient(serverURL string) (*Client, error) {
	base, err := parseBaseURL(serverURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// FetchState retrieves the full current simulation state.
func (c *Client) FetchState(ctx context.Context) (*SimState, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload SimState
	if err := c.do(ctx, http.MethodGet, "/state", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ListScenarios retrieves the scenario catalogue for the selection UI.
func (c *Client) ListScenarios(ctx context.Context, query ScenarioQuery) ([]Scenario, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	if visibility := strings.TrimSpace(query.Visibility); visibility != "" {
		values.Set("visibility", visibility)
	}
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(query.Limit))
	}
	if sort := strings.TrimSpace(query.Sort); sort != "" {
		values.Set("sort", sort)
	}
	rel := &url.URL{Path: "/scenarios", RawQuery: values.Encode()}
	var payload struct {
		Scenarios []Scenario `json:"scenarios"`
	}
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload, nil); err != nil {
		return nil, err
	}
	return payload.Scenarios, nil
}

// PatchJob updates the mutable fields of one job.
func (c *Client) PatchJob(ctx context.Context, id int64, patch JobPatch) (*Job, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if id <= 0 {
		return nil, fmt.Errorf("job id required")
	}
	path := "/api/jobs/" + strconv.FormatInt(id, 10)
	var payload Job
	if err := c.do(ctx, http.MethodPatch, path, patch, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Pause toggles the simulation's global play/pause state.
func (c *Client) Pause(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.do(ctx, http.MethodPost, "/pause", nil, nil)
}

// Restart restarts the running simulation from its initial conditions.
func (c *Client) Restart(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.do(ctx, http.MethodPost, "/restart", nil, nil)
}

// CreateScenario creates a new scenario. The idempotency key must be stable
// across retries of the same logical attempt so swarmd can deduplicate.
func (c *Client) CreateScenario(ctx context.Context, spec ScenarioSpec, idempotencyKey string) (*ScenarioCreated, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(idempotencyKey) == "" {
		return nil, fmt.Errorf("idempotency key required")
	}
	rel := &url.URL{Path: "/scenarios"}
	headers := http.Header{}
	headers.Set(idempotencyHeader, idempotencyKey)
	var payload ScenarioCreated
	if err := c.doURL(ctx, http.MethodPost, rel, spec, &payload, headers); err != nil {
		return nil, err
	}
	return &payload, nil
}

// StreamURL returns the absolute URL of the push state stream.
func (c *Client) StreamURL() string {
	rel := &url.URL{Path: "/stream/state"}
	return c.baseURL.ResolveReference(rel).String()
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	return c.doURL(ctx, method, rel, body, dest, nil)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body, dest any, headers http.Header) error {
	reqURL := c.baseURL.ResolveReference(rel)

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return &APIError{Status: resp.StatusCode, Path: rel.Path}
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(serverURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(serverURL)
	if trimmed == "" {
		trimmed = defaultAPIBind
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse server url %q: %w", serverURL, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
