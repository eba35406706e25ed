package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/guardai/guardai/internal/scan"
)

const defaultCustomEndpoint = "/api/v1/scan"

// Custom implements the Analyzer interface for a self-hosted inference
// server. The server receives the raw file content as JSON and responds
// with a near-normalized JSON array of findings.
type Custom struct {
	baseURL    string
	token      string
	maxRetries int
	backoff    time.Duration
	client     *http.Client
}

// NewCustom creates a new custom-server analyzer. Host and port are
// required; the token is optional.
func NewCustom(cfg Config) (*Custom, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("custom provider requires a host (e.g. http://localhost)")
	}
	if cfg.Port <= 0 {
		return nil, fmt.Errorf("custom provider requires a port")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultCustomEndpoint
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	host := strings.TrimRight(cfg.Host, "/")
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	return &Custom{
		baseURL:    fmt.Sprintf("%s:%d%s", host, cfg.Port, endpoint),
		token:      cfg.Token,
		maxRetries: cfg.retries(),
		backoff:    defaultBackoff,
		client:     &http.Client{Timeout: cfg.timeout()},
	}, nil
}

func (c *Custom) Name() string { return "custom" }

// customFinding is the near-normalized shape the custom server returns.
type customFinding struct {
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Line        int    `json:"line,omitempty"`
	Excerpt     string `json:"excerpt,omitempty"`
}

func (c *Custom) Analyze(ctx context.Context, req scan.AnalysisRequest) ([]scan.Finding, error) {
	payload, err := json.Marshal(map[string]string{"content": req.Content})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	var raw []customFinding
	err = retryWithBackoff(ctx, c.maxRetries, c.backoff, func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if c.token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+c.token)
		}

		httpResp, err := c.client.Do(httpReq)
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

		raw = raw[:0]
		if err := json.Unmarshal(respBody, &raw); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	findings := make([]scan.Finding, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r.Description) == "" {
			continue
		}
		f := scan.Finding{
			Severity:    scan.NormalizeSeverity(r.Severity),
			Description: r.Description,
			File:        req.Path,
			Line:        r.Line,
			Excerpt:     r.Excerpt,
		}
		f.ID = scan.FindingID(f)
		findings = append(findings, f)
	}
	return findings, nil
}
