package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/guardai/guardai/internal/scan"
)

// MarkdownWriter outputs a PR-comment-friendly markdown report.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *scan.Report) error {
	total := totalFindings(report)

	fmt.Fprintf(w, "## GuardAI Security Scan\n\n")

	// Summary table
	fmt.Fprintf(w, "| Severity | Count |\n")
	fmt.Fprintf(w, "|----------|-------|\n")
	fmt.Fprintf(w, "| Critical | %d    |\n", report.Summary.Counts.Critical)
	fmt.Fprintf(w, "| High     | %d    |\n", report.Summary.Counts.High)
	fmt.Fprintf(w, "| Medium   | %d    |\n", report.Summary.Counts.Medium)
	fmt.Fprintf(w, "| Low      | %d    |\n", report.Summary.Counts.Low)
	fmt.Fprintf(w, "| **Total** | **%d** |\n\n", total)

	if report.FilesFailed > 0 {
		fmt.Fprintf(w, "%d of %d file(s) could not be scanned.\n\n",
			report.FilesFailed, report.FilesScanned+report.FilesFailed)
	}

	if total == 0 {
		fmt.Fprintln(w, "No security issues found. :white_check_mark:")
		return nil
	}

	// Collapsible sections by severity
	grouped := groupBySeverity(report.Findings)
	for _, sev := range severityOrder {
		findings := grouped[sev]
		if len(findings) == 0 {
			continue
		}

		icon := mdSeverityIcon(sev)
		label := strings.ToUpper(string(sev))

		fmt.Fprintf(w, "<details>\n<summary>%s %s (%d)</summary>\n\n", icon, label, len(findings))

		sort.SliceStable(findings, func(i, j int) bool {
			return findings[i].File < findings[j].File
		})

		for _, f := range findings {
			fmt.Fprintf(w, "**`%s`**\n\n", formatLocation(f))
			fmt.Fprintf(w, "%s\n\n", f.Description)

			if f.Excerpt != "" {
				lang := inferLang(f.File)
				fmt.Fprintf(w, "```%s\n%s\n```\n\n", lang, f.Excerpt)
			}

			fmt.Fprintf(w, "---\n\n")
		}

		fmt.Fprintf(w, "</details>\n\n")
	}

	// Timing footer
	fmt.Fprintf(w, "*Scanned %d file(s) in %dms (collect: %dms, provider: %dms)*\n",
		report.FilesScanned, report.Timing.TotalMs, report.Timing.CollectMs, report.Timing.ProviderMs)

	return nil
}

func mdSeverityIcon(s scan.Severity) string {
	switch s {
	case scan.SeverityCritical:
		return ":no_entry:"
	case scan.SeverityHigh:
		return ":red_circle:"
	case scan.SeverityMedium:
		return ":orange_circle:"
	case scan.SeverityLow:
		return ":yellow_circle:"
	default:
		return ":white_circle:"
	}
}

func inferLang(path string) string {
	langMap := map[string]string{
		".go":   "go",
		".py":   "python",
		".js":   "javascript",
		".ts":   "typescript",
		".tsx":  "tsx",
		".jsx":  "jsx",
		".rs":   "rust",
		".java": "java",
		".rb":   "ruby",
		".cpp":  "cpp",
		".c":    "c",
		".cs":   "csharp",
		".php":  "php",
		".sh":   "bash",
		".sql":  "sql",
		".yaml": "yaml",
		".yml":  "yaml",
		".json": "json",
		".tf":   "hcl",
	}
	for ext, lang := range langMap {
		if strings.HasSuffix(path, ext) {
			return lang
		}
	}
	return ""
}
