package swarmd

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" {
		t.Fatalf("scheme = %q, want http", u.Scheme)
	}
	if u.Host != defaultAPIBind {
		t.Fatalf("host = %q, want %q", u.Host, defaultAPIBind)
	}

	u, err = parseBaseURL("http://example.com:1234/path?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func TestClient_FetchStateAndListScenarios(t *testing.T) {
	t.Parallel()

	var gotScenarioQuery url.Values
	var gotUserAgent string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/state":
			_ = json.NewEncoder(w).Encode(SimState{Tick: 42, Running: true, Scenario: "alpha"})
		case "/scenarios":
			gotScenarioQuery = r.URL.Query()
			_ = json.NewEncoder(w).Encode(map[string]any{
				"scenarios": []Scenario{{ID: "s-1", Name: "Harbor Sweep"}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	state, err := c.FetchState(ctx)
	if err != nil {
		t.Fatalf("FetchState returned error: %v", err)
	}
	if state.Tick != 42 || !state.Running || state.Scenario != "alpha" {
		t.Fatalf("FetchState payload = %#v, want tick=42 running scenario=alpha", state)
	}

	scenarios, err := c.ListScenarios(ctx, ScenarioQuery{
		Visibility: "public",
		Limit:      25,
		Sort:       "-created_at",
	})
	if err != nil {
		t.Fatalf("ListScenarios returned error: %v", err)
	}
	if len(scenarios) != 1 || scenarios[0].ID != "s-1" {
		t.Fatalf("ListScenarios = %#v, want 1 scenario id=s-1", scenarios)
	}
	if gotScenarioQuery.Get("visibility") != "public" ||
		gotScenarioQuery.Get("limit") != "25" ||
		gotScenarioQuery.Get("sort") != "-created_at" {
		t.Fatalf("ListScenarios query = %v, want params encoded", gotScenarioQuery)
	}

	if gotUserAgent == "" || !strings.HasPrefix(gotUserAgent, "swarmview/") {
		t.Fatalf("User-Agent = %q, want swarmview/*", gotUserAgent)
	}
}

func TestClient_PatchJobSendsPartialBody(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotBody map[string]json.RawMessage

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			http.Error(w, "method", http.StatusMethodNotAllowed)
			return
		}
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Job{ID: 7, IsActive: true, DroneCount: 12})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	active := true
	count := 12
	job, err := c.PatchJob(context.Background(), 7, JobPatch{IsActive: &active, DroneCount: &count})
	if err != nil {
		t.Fatalf("PatchJob returned error: %v", err)
	}
	if job.ID != 7 || !job.IsActive || job.DroneCount != 12 {
		t.Fatalf("PatchJob payload = %#v, want id=7 active count=12", job)
	}
	if gotPath != "/api/jobs/7" {
		t.Fatalf("path = %q, want /api/jobs/7", gotPath)
	}
	if _, ok := gotBody["target"]; ok {
		t.Fatalf("body = %v, nil target must be omitted", gotBody)
	}
	if _, ok := gotBody["is_active"]; !ok {
		t.Fatalf("body = %v, want is_active present", gotBody)
	}
}

func TestClient_PatchJobRequiresID(t *testing.T) {
	c, err := NewClient("127.0.0.1:1")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := c.PatchJob(context.Background(), 0, JobPatch{}); err == nil {
		t.Fatalf("PatchJob returned nil error, want error")
	}
}

func TestClient_CreateScenarioSendsIdempotencyKey(t *testing.T) {
	t.Parallel()

	var gotKey string
	var gotBody string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Idempotency-Key")
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ScenarioCreated{ID: "s-9"})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	spec := ScenarioSpec{
		Name:       "Harbor Sweep",
		Visibility: "private",
		Bounds:     [4]Coord{59.1, 10.2, 59.9, 11.05},
	}
	created, err := c.CreateScenario(context.Background(), spec, "scenario-1-abc")
	if err != nil {
		t.Fatalf("CreateScenario returned error: %v", err)
	}
	if created.ID != "s-9" {
		t.Fatalf("CreateScenario id = %q, want s-9", created.ID)
	}
	if gotKey != "scenario-1-abc" {
		t.Fatalf("Idempotency-Key = %q, want scenario-1-abc", gotKey)
	}
	if !strings.Contains(gotBody, "59.100000000") {
		t.Fatalf("body = %q, want canonical 9-decimal bounds", gotBody)
	}
}

func TestClient_CreateScenarioRequiresKey(t *testing.T) {
	c, err := NewClient("127.0.0.1:1")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := c.CreateScenario(context.Background(), ScenarioSpec{}, "  "); err == nil {
		t.Fatalf("CreateScenario returned nil error, want error")
	}
}

func TestClient_ControlEndpointsAndAPIError(t *testing.T) {
	t.Parallel()

	var gotPaths []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPaths = append(gotPaths, r.Method+" "+r.URL.Path)
		switch r.URL.Path {
		case "/pause":
			w.WriteHeader(http.StatusNoContent)
		case "/restart":
			http.Error(w, "busy", http.StatusConflict)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	if err := c.Pause(context.Background()); err != nil {
		t.Fatalf("Pause returned error: %v", err)
	}

	err = c.Restart(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Restart error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusConflict || apiErr.Path != "/restart" {
		t.Fatalf("APIError = %#v, want 409 /restart", apiErr)
	}

	if len(gotPaths) != 2 || gotPaths[0] != "POST /pause" || gotPaths[1] != "POST /restart" {
		t.Fatalf("paths = %v, want POST /pause then POST /restart", gotPaths)
	}
}

func TestClient_DecodeError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("{not-json"))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.FetchState(context.Background())
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("FetchState error = %v, want decode response error", err)
	}
}
