package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/guardai/guardai/internal/logging"
	"github.com/guardai/guardai/internal/scan"
)

const defaultOpenAIURL = "https://api.openai.com/v1/chat/completions"

// OpenAI implements the Analyzer interface for OpenAI's chat API.
type OpenAI struct {
	apiKey     string
	model      string
	baseURL    string
	maxRetries int
	backoff    time.Duration
	client     *http.Client
}

// NewOpenAI creates a new OpenAI analyzer from explicit configuration.
func NewOpenAI(cfg Config) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is not set (export OPENAI_API_KEY)")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIURL
	}
	return &OpenAI{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    baseURL,
		maxRetries: cfg.retries(),
		backoff:    defaultBackoff,
		client:     &http.Client{Timeout: cfg.timeout()},
	}, nil
}

func (o *OpenAI) Name() string { return "openai" }

// Analyze sends the file as a chat request with a fixed system instruction
// and normalizes the model's reply into findings.
func (o *OpenAI) Analyze(ctx context.Context, req scan.AnalysisRequest) ([]scan.Finding, error) {
	body := chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: hostedInstruction},
			{Role: "user", Content: userContent(req)},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	content, err := postChat(ctx, o.client, o.baseURL, o.apiKey, payload, o.maxRetries, o.backoff)
	if err != nil {
		return nil, err
	}

	findings := ExtractFindings(content, req.Path)
	if len(findings) == 0 && content == "" {
		logging.L().Warnw("empty model response", "provider", o.Name(), "file", req.Path)
	}
	return findings, nil
}

// postChat performs one OpenAI-compatible chat round trip with retries and
// returns the assistant message content. Shared with the Groq variant.
func postChat(ctx context.Context, client *http.Client, url, apiKey string, payload []byte, maxRetries int, backoff time.Duration) (string, error) {
	var content string
	err := retryWithBackoff(ctx, maxRetries, backoff, func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+apiKey)

		httpResp, err := client.Do(httpReq)
		if err != nil {
			return &transportError{err: err}
		}
		defer httpResp.Body.Close()

		respBody, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return &transportError{err: err}
		}

		if err := classifyStatus(httpResp.StatusCode, respBody); err != nil {
			return err
		}

		var result chatResponse
		if err := json.Unmarshal(respBody, &result); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
		if len(result.Choices) == 0 {
			content = ""
			return nil
		}
		content = result.Choices[0].Message.Content
		return nil
	})
	return content, err
}

// classifyStatus maps an HTTP status onto the error taxonomy. A nil return
// means status 200.
func classifyStatus(status int, body []byte) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusTooManyRequests:
		return &rateLimitError{}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &authError{message: string(body)}
	case status >= 500:
		return &serverError{statusCode: status, body: string(body)}
	default:
		return fmt.Errorf("API error (status %d): %s", status, string(body))
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}
