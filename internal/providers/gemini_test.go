package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/guardai/guardai/internal/scan"
)

func TestGemini_Analyze(t *testing.T) {
	var gotPath, gotKey string
	var gotReq geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		resp := geminiResponse{Candidates: []geminiCandidate{
			{Content: geminiContent{Parts: []geminiPart{{Text: "Severity: medium\n"}, {Text: "Description: Weak TLS configuration\n"}}}},
		}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	g, err := NewGemini(Config{APIKey: "gem-key", Model: "gemini-2.0-flash", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewGemini error: %v", err)
	}
	g.backoff = time.Millisecond

	findings, err := g.Analyze(context.Background(), scan.AnalysisRequest{Path: "tls.go", Content: "code"})
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	if !strings.Contains(gotPath, "gemini-2.0-flash:generateContent") {
		t.Errorf("URL path = %q", gotPath)
	}
	if gotKey != "gem-key" {
		t.Errorf("key = %q", gotKey)
	}
	if len(gotReq.Contents) != 1 || len(gotReq.Contents[0].Parts) != 1 {
		t.Errorf("expected single combined prompt, got %v", gotReq.Contents)
	}
	if !strings.Contains(gotReq.Contents[0].Parts[0].Text, "tls.go") {
		t.Error("prompt should include the file path")
	}

	// Candidate parts are concatenated before extraction
	if len(findings) != 1 {
		t.Fatalf("findings count = %d, want 1", len(findings))
	}
	if findings[0].Severity != scan.SeverityMedium {
		t.Errorf("Severity = %s, want medium", findings[0].Severity)
	}
}

func TestGemini_RateLimitRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(geminiResponse{})
	}))
	defer srv.Close()

	g, err := NewGemini(Config{APIKey: "gem-key", Model: "gemini-2.0-flash", BaseURL: srv.URL, MaxRetries: 2})
	if err != nil {
		t.Fatalf("NewGemini error: %v", err)
	}
	g.backoff = time.Millisecond

	if _, err := g.Analyze(context.Background(), scan.AnalysisRequest{Path: "a.go", Content: "code"}); err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestNewGemini_RequiresKey(t *testing.T) {
	if _, err := NewGemini(Config{Model: "gemini-2.0-flash"}); err == nil {
		t.Error("expected error for missing API key")
	}
}
