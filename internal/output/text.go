package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/guardai/guardai/internal/scan"
)

// TextWriter outputs a human-readable text report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, report *scan.Report) error {
	ew := &errWriter{w: w}

	total := totalFindings(report)
	ew.printf("GuardAI Security Scan — %s mode\n", report.Target.Mode)
	if report.Target.Ref != "" {
		ew.printf("Ref: %s\n", report.Target.Ref)
	}
	ew.printf("Provider: %s\n", report.Provider)
	ew.println(strings.Repeat("─", 60))
	ew.printf("Files scanned: %d", report.FilesScanned)
	if report.FilesFailed > 0 {
		ew.printf(" (%d failed)", report.FilesFailed)
	}
	ew.println("")
	ew.printf("Findings: %d total", total)
	if total > 0 {
		ew.printf(" (%d critical, %d high, %d medium, %d low)",
			report.Summary.Counts.Critical,
			report.Summary.Counts.High,
			report.Summary.Counts.Medium,
			report.Summary.Counts.Low,
		)
	}
	ew.println("")
	ew.println(strings.Repeat("─", 60))

	if total == 0 {
		ew.println("\nNo security issues found.")
		return ew.err
	}

	grouped := groupBySeverity(report.Findings)
	for _, sev := range severityOrder {
		findings := grouped[sev]
		if len(findings) == 0 {
			continue
		}

		label := severityColor(sev).Sprint(strings.ToUpper(string(sev)))
		ew.printf("\n%s %s\n", severityIcon(sev), label)
		ew.println(strings.Repeat("─", 40))

		// Sort by file path within severity
		sort.SliceStable(findings, func(i, j int) bool {
			return findings[i].File < findings[j].File
		})

		for _, f := range findings {
			ew.printf("\n  %s\n", formatLocation(f))
			for _, line := range wrapText(f.Description, 70) {
				ew.printf("    %s\n", line)
			}
			if f.Excerpt != "" {
				ew.printf("    > %s\n", f.Excerpt)
			}
		}
	}

	ew.printf("\n%s\n", strings.Repeat("─", 60))
	ew.printf("Completed in %dms (collect: %dms, provider: %dms)\n",
		report.Timing.TotalMs, report.Timing.CollectMs, report.Timing.ProviderMs)

	return ew.err
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func formatLocation(f scan.Finding) string {
	if f.Line > 0 {
		return fmt.Sprintf("%s:%d", f.File, f.Line)
	}
	return f.File
}

func severityColor(s scan.Severity) *color.Color {
	switch s {
	case scan.SeverityCritical:
		return color.New(color.FgRed, color.Bold)
	case scan.SeverityHigh:
		return color.New(color.FgRed)
	case scan.SeverityMedium:
		return color.New(color.FgYellow)
	case scan.SeverityLow:
		return color.New(color.FgCyan)
	default:
		return color.New(color.FgWhite)
	}
}

func severityIcon(s scan.Severity) string {
	switch s {
	case scan.SeverityCritical:
		return "[!!!]"
	case scan.SeverityHigh:
		return "[!!]"
	case scan.SeverityMedium:
		return "[!]"
	case scan.SeverityLow:
		return "[-]"
	default:
		return "[?]"
	}
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
