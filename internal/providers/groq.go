package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/guardai/guardai/internal/scan"
)

const defaultGroqURL = "https://api.groq.com/openai/v1/chat/completions"

// Groq implements the Analyzer interface for Groq's OpenAI-compatible API.
type Groq struct {
	apiKey     string
	model      string
	baseURL    string
	maxRetries int
	backoff    time.Duration
	client     *http.Client
}

// NewGroq creates a new Groq analyzer from explicit configuration.
func NewGroq(cfg Config) (*Groq, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("groq: API key is not set (export GROQ_API_KEY)")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGroqURL
	}
	return &Groq{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    baseURL,
		maxRetries: cfg.retries(),
		backoff:    defaultBackoff,
		client:     &http.Client{Timeout: cfg.timeout()},
	}, nil
}

func (g *Groq) Name() string { return "groq" }

func (g *Groq) Analyze(ctx context.Context, req scan.AnalysisRequest) ([]scan.Finding, error) {
	body := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: hostedInstruction},
			{Role: "user", Content: userContent(req)},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	content, err := postChat(ctx, g.client, g.baseURL, g.apiKey, payload, g.maxRetries, g.backoff)
	if err != nil {
		return nil, err
	}
	return ExtractFindings(content, req.Path), nil
}
