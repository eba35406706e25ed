// Package output renders scan reports in text, json, markdown, and sarif
// formats.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/guardai/guardai/internal/scan"
)

// Writer writes a report in a specific format.
type Writer interface {
	Write(w io.Writer, report *scan.Report) error
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "text":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "markdown":
		return &MarkdownWriter{}, nil
	case "sarif":
		return &SARIFWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteReport writes the report to the specified output (file path or stdout).
func WriteReport(report *scan.Report, format, outPath string) error {
	writer, err := GetWriter(format)
	if err != nil {
		return err
	}

	var w io.Writer
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
	}

	return writer.Write(w, report)
}

// severityOrder lists severities for grouped output, most severe first.
var severityOrder = []scan.Severity{
	scan.SeverityCritical,
	scan.SeverityHigh,
	scan.SeverityMedium,
	scan.SeverityLow,
}

func groupBySeverity(findings []scan.Finding) map[scan.Severity][]scan.Finding {
	m := make(map[scan.Severity][]scan.Finding)
	for _, f := range findings {
		m[f.Severity] = append(m[f.Severity], f)
	}
	return m
}

func totalFindings(report *scan.Report) int {
	c := report.Summary.Counts
	return c.Critical + c.High + c.Medium + c.Low
}
