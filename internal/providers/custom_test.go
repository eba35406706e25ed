package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/guardai/guardai/internal/scan"
)

// customServerConfig turns an httptest server URL into the host/port pair the
// custom provider is configured with.
func customServerConfig(t *testing.T, srvURL string) Config {
	t.Helper()
	u, err := url.Parse(srvURL)
	if err != nil {
		t.Fatalf("parsing server URL: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parsing server port: %v", err)
	}
	return Config{Host: u.Scheme + "://" + u.Hostname(), Port: port}
}

func TestCustom_Analyze(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`[{"severity":"high","description":"SQL injection"}]`))
	}))
	defer srv.Close()

	cfg := customServerConfig(t, srv.URL)
	cfg.Token = "secret-token"
	c, err := NewCustom(cfg)
	if err != nil {
		t.Fatalf("NewCustom error: %v", err)
	}

	findings, err := c.Analyze(context.Background(), scan.AnalysisRequest{Path: "db.go", Content: "query code"})
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	if gotPath != "/api/v1/scan" {
		t.Errorf("path = %q, want /api/v1/scan", gotPath)
	}
	if gotAuth != "Bearer secret-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBody["content"] != "query code" {
		t.Errorf("request content = %q", gotBody["content"])
	}

	if len(findings) != 1 {
		t.Fatalf("findings count = %d, want 1", len(findings))
	}
	f := findings[0]
	if f.Severity != scan.SeverityHigh {
		t.Errorf("Severity = %s, want high", f.Severity)
	}
	if f.Description != "SQL injection" {
		t.Errorf("Description = %q", f.Description)
	}
	if f.File != "db.go" {
		t.Errorf("File = %q, want db.go", f.File)
	}
	if f.ID == "" {
		t.Error("ID should be set")
	}
}

func TestCustom_NormalizesUnknownSeverity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"severity":"bananas","description":"odd label"},{"severity":"crit","description":"alias"}]`))
	}))
	defer srv.Close()

	c, err := NewCustom(customServerConfig(t, srv.URL))
	if err != nil {
		t.Fatalf("NewCustom error: %v", err)
	}

	findings, err := c.Analyze(context.Background(), scan.AnalysisRequest{Path: "a.go", Content: "code"})
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if len(findings) != 2 {
		t.Fatalf("findings count = %d, want 2", len(findings))
	}
	if findings[0].Severity != scan.SeverityLow {
		t.Errorf("unknown severity should normalize to low, got %s", findings[0].Severity)
	}
	if findings[1].Severity != scan.SeverityCritical {
		t.Errorf("crit should normalize to critical, got %s", findings[1].Severity)
	}
}

func TestCustom_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"}`))
	}))
	defer srv.Close()

	c, err := NewCustom(customServerConfig(t, srv.URL))
	if err != nil {
		t.Fatalf("NewCustom error: %v", err)
	}

	_, err = c.Analyze(context.Background(), scan.AnalysisRequest{Path: "a.go", Content: "code"})
	if err == nil {
		t.Fatal("expected parse error")
	}
	if IsAuthError(err) || IsTransient(err) {
		t.Errorf("parse error should be plain, got %v", err)
	}
}

func TestCustom_EmptyDescriptionSkipped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"severity":"high","description":"  "},{"severity":"low","description":"real"}]`))
	}))
	defer srv.Close()

	c, err := NewCustom(customServerConfig(t, srv.URL))
	if err != nil {
		t.Fatalf("NewCustom error: %v", err)
	}

	findings, err := c.Analyze(context.Background(), scan.AnalysisRequest{Path: "a.go", Content: "code"})
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if len(findings) != 1 || findings[0].Description != "real" {
		t.Errorf("unexpected findings: %v", findings)
	}
}

func TestCustom_ServerErrorRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	cfg := customServerConfig(t, srv.URL)
	cfg.MaxRetries = 2
	c, err := NewCustom(cfg)
	if err != nil {
		t.Fatalf("NewCustom error: %v", err)
	}
	c.backoff = time.Millisecond

	findings, err := c.Analyze(context.Background(), scan.AnalysisRequest{Path: "a.go", Content: "code"})
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("findings count = %d, want 0", len(findings))
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestNewCustom_Validation(t *testing.T) {
	if _, err := NewCustom(Config{Port: 8080}); err == nil {
		t.Error("expected error for missing host")
	}
	if _, err := NewCustom(Config{Host: "localhost"}); err == nil {
		t.Error("expected error for missing port")
	}
}

func TestNewCustom_URLNormalization(t *testing.T) {
	c, err := NewCustom(Config{Host: "localhost", Port: 9000, Endpoint: "analyze"})
	if err != nil {
		t.Fatalf("NewCustom error: %v", err)
	}
	if c.baseURL != "http://localhost:9000/analyze" {
		t.Errorf("baseURL = %q", c.baseURL)
	}
}
