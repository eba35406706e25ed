package scan

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"
)

// Severity represents the severity level of a finding.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// SeverityRank returns a numeric rank for sorting (higher = more severe).
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// NormalizeSeverity maps free-form severity strings from provider responses
// onto the closed severity set. Unknown values normalize to low.
func NormalizeSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical", "crit":
		return SeverityCritical
	case "high":
		return SeverityHigh
	case "medium", "moderate", "med":
		return SeverityMedium
	case "low", "info", "informational":
		return SeverityLow
	default:
		return SeverityLow
	}
}

// MeetsThreshold returns true if severity is at or above the threshold.
func MeetsThreshold(s Severity, threshold string) bool {
	if threshold == "none" || threshold == "" {
		return false
	}
	return SeverityRank(s) >= SeverityRank(Severity(threshold))
}

// Finding is a single normalized vulnerability report.
type Finding struct {
	ID          string   `json:"id"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	File        string   `json:"file"`
	Line        int      `json:"line,omitempty"`
	Excerpt     string   `json:"excerpt,omitempty"`
}

// AnalysisRequest holds one file's worth of content to analyze.
type AnalysisRequest struct {
	Path    string
	Content string
}

// SeverityCounts holds counts by severity level.
type SeverityCounts struct {
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	High     int `json:"high"`
	Critical int `json:"critical"`
}

// Summary provides an overview of findings.
type Summary struct {
	Counts          SeverityCounts `json:"counts"`
	HighestSeverity Severity       `json:"highestSeverity"`
}

// Target describes what was scanned.
type Target struct {
	Mode string `json:"mode"`
	Path string `json:"path,omitempty"`
	Ref  string `json:"ref,omitempty"`
}

// Timing contains per-run timing metrics.
type Timing struct {
	CollectMs  int64 `json:"collectMs"`
	ProviderMs int64 `json:"providerMs"`
	TotalMs    int64 `json:"totalMs"`
}

// Report is the top-level scan output: findings in file submission order
// plus a count of files that failed to scan.
type Report struct {
	Tool         string    `json:"tool"`
	Version      string    `json:"version"`
	RunID        string    `json:"runId"`
	Provider     string    `json:"provider"`
	Target       Target    `json:"target"`
	Summary      Summary   `json:"summary"`
	Findings     []Finding `json:"findings"`
	FilesScanned int       `json:"filesScanned"`
	FilesFailed  int       `json:"filesFailed"`
	Timing       Timing    `json:"timing"`
}

// ComputeSummary calculates the summary from findings.
func ComputeSummary(findings []Finding) Summary {
	var s Summary
	for _, f := range findings {
		switch f.Severity {
		case SeverityLow:
			s.Counts.Low++
		case SeverityMedium:
			s.Counts.Medium++
		case SeverityHigh:
			s.Counts.High++
		case SeverityCritical:
			s.Counts.Critical++
		}
		if SeverityRank(f.Severity) > SeverityRank(s.HighestSeverity) {
			s.HighestSeverity = f.Severity
		}
	}
	return s
}

// FindingID creates a stable ID from a finding's path, description, and line.
func FindingID(f Finding) string {
	data := fmt.Sprintf("%s:%s:%d", f.File, f.Description, f.Line)
	h := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", h[:8])
}

func generateRunID() string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%d", time.Now().UnixNano())))
	return fmt.Sprintf("%x", h[:16])
}
