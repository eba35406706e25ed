package scan

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/guardai/guardai/internal/logging"
	"github.com/guardai/guardai/internal/redact"
)

// Analyzer is the provider abstraction consumed by the scan engine. Analyze
// returns normalized findings for one request, or an error. Errors carrying
// a Fatal() bool method abort the scan; anything else is a per-file failure.
type Analyzer interface {
	Analyze(ctx context.Context, req AnalysisRequest) ([]Finding, error)
	Name() string
}

// Options controls engine behavior for a single run.
type Options struct {
	Target      Target
	Redact      bool
	RedactPaths []string
	CollectMs   int64
	// Progress is called after each file is resolved. Optional.
	Progress func(done, total int, path string)
}

// Run dispatches each request to the analyzer in submission order. One file
// is fully resolved (success, retried failure, or fatal abort) before the
// next begins. Transient failures are counted and the scan continues; a
// fatal error aborts immediately and no further files are dispatched.
func Run(ctx context.Context, requests []AnalysisRequest, analyzer Analyzer, opts Options) (*Report, error) {
	start := time.Now()
	log := logging.L()

	report := &Report{
		Tool:     "guardai",
		Version:  "1.0",
		RunID:    generateRunID(),
		Provider: analyzer.Name(),
		Target:   opts.Target,
		Findings: []Finding{},
	}

	var providerMs int64
	for i, req := range requests {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if strings.TrimSpace(req.Content) == "" {
			report.FilesScanned++
			progress(opts, i+1, len(requests), req.Path)
			continue
		}

		if opts.Redact {
			req.Content = redact.Content(req.Content, req.Path, opts.RedactPaths)
		}

		callStart := time.Now()
		findings, err := analyzer.Analyze(ctx, req)
		providerMs += time.Since(callStart).Milliseconds()

		if err != nil {
			if isFatal(err) {
				return nil, err
			}
			log.Warnw("file scan failed", "file", req.Path, "error", err)
			report.FilesFailed++
			progress(opts, i+1, len(requests), req.Path)
			continue
		}

		for _, f := range findings {
			if f.File == "" {
				f.File = req.Path
			}
			if f.ID == "" {
				f.ID = FindingID(f)
			}
			report.Findings = append(report.Findings, f)
		}
		report.FilesScanned++
		progress(opts, i+1, len(requests), req.Path)
	}

	report.Summary = ComputeSummary(report.Findings)
	report.Timing = Timing{
		CollectMs:  opts.CollectMs,
		ProviderMs: providerMs,
		TotalMs:    opts.CollectMs + time.Since(start).Milliseconds(),
	}
	return report, nil
}

func progress(opts Options, done, total int, path string) {
	if opts.Progress != nil {
		opts.Progress(done, total, path)
	}
}

// isFatal reports whether an error invalidates the whole scan run.
func isFatal(err error) bool {
	var fe interface{ Fatal() bool }
	return errors.As(err, &fe) && fe.Fatal()
}
