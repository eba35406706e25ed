package scan

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeAnalyzer scripts per-path results and records dispatch order.
type fakeAnalyzer struct {
	results map[string][]Finding
	errs    map[string]error
	calls   []string
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, req AnalysisRequest) ([]Finding, error) {
	f.calls = append(f.calls, req.Path)
	if err, ok := f.errs[req.Path]; ok {
		return nil, err
	}
	return f.results[req.Path], nil
}

func (f *fakeAnalyzer) Name() string { return "fake" }

type fatalErr struct{ msg string }

func (e *fatalErr) Error() string { return e.msg }
func (e *fatalErr) Fatal() bool   { return true }

func TestRun_OrderPreserved(t *testing.T) {
	analyzer := &fakeAnalyzer{
		results: map[string][]Finding{
			"a.go": {{Severity: SeverityLow, Description: "a finding"}},
			"b.go": {{Severity: SeverityHigh, Description: "b finding"}},
			"c.go": {{Severity: SeverityMedium, Description: "c finding"}},
		},
	}
	requests := []AnalysisRequest{
		{Path: "a.go", Content: "x"},
		{Path: "b.go", Content: "x"},
		{Path: "c.go", Content: "x"},
	}

	report, err := Run(context.Background(), requests, analyzer, Options{Target: Target{Mode: "dir"}})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(report.Findings) != 3 {
		t.Fatalf("findings count = %d, want 3", len(report.Findings))
	}
	for i, want := range []string{"a finding", "b finding", "c finding"} {
		if report.Findings[i].Description != want {
			t.Errorf("finding %d = %q, want %q (submission order)", i, report.Findings[i].Description, want)
		}
	}
	if report.FilesScanned != 3 {
		t.Errorf("FilesScanned = %d, want 3", report.FilesScanned)
	}
	if report.Provider != "fake" {
		t.Errorf("Provider = %q, want fake", report.Provider)
	}
}

func TestRun_EmptyContentSkipsDispatch(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	requests := []AnalysisRequest{
		{Path: "empty.go", Content: "   \n\t"},
		{Path: "real.go", Content: "code"},
	}

	report, err := Run(context.Background(), requests, analyzer, Options{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(analyzer.calls) != 1 || analyzer.calls[0] != "real.go" {
		t.Errorf("dispatched calls = %v, want just real.go", analyzer.calls)
	}
	if report.FilesScanned != 2 {
		t.Errorf("FilesScanned = %d, want 2 (empty file still counts)", report.FilesScanned)
	}
}

func TestRun_TransientFailureContinues(t *testing.T) {
	analyzer := &fakeAnalyzer{
		results: map[string][]Finding{
			"ok.go": {{Severity: SeverityLow, Description: "fine"}},
		},
		errs: map[string]error{
			"bad.go": errors.New("server error: overloaded"),
		},
	}
	requests := []AnalysisRequest{
		{Path: "bad.go", Content: "x"},
		{Path: "ok.go", Content: "x"},
	}

	report, err := Run(context.Background(), requests, analyzer, Options{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if report.FilesFailed != 1 {
		t.Errorf("FilesFailed = %d, want 1", report.FilesFailed)
	}
	if report.FilesScanned != 1 {
		t.Errorf("FilesScanned = %d, want 1", report.FilesScanned)
	}
	if len(report.Findings) != 1 {
		t.Errorf("findings count = %d, want 1 (scan continues past failures)", len(report.Findings))
	}
}

func TestRun_FatalAbortsScan(t *testing.T) {
	analyzer := &fakeAnalyzer{
		errs: map[string]error{
			"first.go": &fatalErr{msg: "authentication error: bad key"},
		},
	}
	requests := []AnalysisRequest{
		{Path: "first.go", Content: "x"},
		{Path: "second.go", Content: "x"},
	}

	report, err := Run(context.Background(), requests, analyzer, Options{})
	if err == nil {
		t.Fatal("expected fatal error")
	}
	if report != nil {
		t.Error("no report should be produced on fatal abort")
	}
	if len(analyzer.calls) != 1 {
		t.Errorf("calls = %v, want only first.go (abort stops dispatch)", analyzer.calls)
	}
}

func TestRun_FillsFileAndID(t *testing.T) {
	analyzer := &fakeAnalyzer{
		results: map[string][]Finding{
			"a.go": {{Severity: SeverityHigh, Description: "missing file field"}},
		},
	}

	report, err := Run(context.Background(), []AnalysisRequest{{Path: "a.go", Content: "x"}}, analyzer, Options{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	f := report.Findings[0]
	if f.File != "a.go" {
		t.Errorf("File = %q, want a.go", f.File)
	}
	if f.ID == "" {
		t.Error("ID should be filled in")
	}
}

func TestRun_RedactsBeforeDispatch(t *testing.T) {
	var seen string
	analyzer := &recordingAnalyzer{onAnalyze: func(req AnalysisRequest) {
		seen = req.Content
	}}

	content := `api_key = "sk-abcdefghijklmnopqrstuvwxyz123456"`
	_, err := Run(context.Background(), []AnalysisRequest{{Path: "cfg.go", Content: content}}, analyzer, Options{Redact: true})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if strings.Contains(seen, "sk-abcdefghijklmnopqrstuvwxyz123456") {
		t.Error("secret should have been redacted before dispatch")
	}
}

func TestRun_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	analyzer := &fakeAnalyzer{}
	_, err := Run(ctx, []AnalysisRequest{{Path: "a.go", Content: "x"}}, analyzer, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(analyzer.calls) != 0 {
		t.Error("no dispatch should happen after cancellation")
	}
}

func TestRun_ProgressCallback(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	var done []int
	opts := Options{Progress: func(d, total int, path string) {
		done = append(done, d)
		if total != 2 {
			t.Errorf("total = %d, want 2", total)
		}
	}}

	_, err := Run(context.Background(), []AnalysisRequest{
		{Path: "a.go", Content: "x"},
		{Path: "b.go", Content: "x"},
	}, analyzer, opts)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(done) != 2 || done[0] != 1 || done[1] != 2 {
		t.Errorf("progress calls = %v, want [1 2]", done)
	}
}

type recordingAnalyzer struct {
	onAnalyze func(AnalysisRequest)
}

func (r *recordingAnalyzer) Analyze(ctx context.Context, req AnalysisRequest) ([]Finding, error) {
	r.onAnalyze(req)
	return nil, nil
}

func (r *recordingAnalyzer) Name() string { return "recording" }
