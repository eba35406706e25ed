package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/guardai/guardai/internal/scan"
)

func TestGroq_Analyze(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		chatReply(w, modelReply)
	}))
	defer srv.Close()

	g, err := NewGroq(Config{APIKey: "gsk-test", Model: "llama-3.1-8b-instant", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewGroq error: %v", err)
	}

	findings, err := g.Analyze(context.Background(), scan.AnalysisRequest{Path: "db.go", Content: "code"})
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	if gotAuth != "Bearer gsk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotReq.Model != "llama-3.1-8b-instant" {
		t.Errorf("Model = %q", gotReq.Model)
	}
	if len(findings) != 1 || findings[0].Severity != scan.SeverityHigh {
		t.Errorf("unexpected findings: %v", findings)
	}
}

func TestNewGroq_RequiresKey(t *testing.T) {
	if _, err := NewGroq(Config{Model: "llama-3.1-8b-instant"}); err == nil {
		t.Error("expected error for missing API key")
	}
}
