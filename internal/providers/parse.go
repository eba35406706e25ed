package providers

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/guardai/guardai/internal/scan"
)

// Expected response patterns, kept as data so they can track model output
// drift without touching dispatch control flow. Each hosted variant's
// free-text reply is scanned for severity blocks; anything that does not
// match yields zero findings rather than an error.
var (
	severityPattern    = regexp.MustCompile(`(?im)^\s*(?:[-*]\s*)?(?:\*\*)?severity(?:\*\*)?:\s*(?:\*\*)?(low|medium|high|critical)`)
	linePattern        = regexp.MustCompile(`(?im)^\s*(?:[-*]\s*)?(?:\*\*)?line(?:\*\*)?:\s*(\d+)`)
	descriptionPattern = regexp.MustCompile(`(?im)^\s*(?:[-*]\s*)?(?:\*\*)?description(?:\*\*)?:\s*(\S.*)$`)
	excerptPattern     = regexp.MustCompile(`(?im)^\s*(?:[-*]\s*)?(?:\*\*)?excerpt(?:\*\*)?:\s*(\S.*)$`)
)

// ExtractFindings parses a hosted model's semi-structured reply into
// normalized findings for the given file path. A reply without any
// recognizable severity block produces an empty slice.
func ExtractFindings(content, path string) []scan.Finding {
	matches := severityPattern.FindAllStringSubmatchIndex(content, -1)
	findings := make([]scan.Finding, 0, len(matches))
	for i, m := range matches {
		blockEnd := len(content)
		if i+1 < len(matches) {
			blockEnd = matches[i+1][0]
		}
		block := content[m[0]:blockEnd]

		desc := firstGroup(descriptionPattern, block)
		if desc == "" {
			continue
		}

		f := scan.Finding{
			Severity:    scan.NormalizeSeverity(content[m[2]:m[3]]),
			Description: strings.TrimSpace(strings.Trim(desc, "*")),
			File:        path,
			Excerpt:     strings.Trim(firstGroup(excerptPattern, block), "`"),
		}
		if n := firstGroup(linePattern, block); n != "" {
			f.Line, _ = strconv.Atoi(n)
		}
		f.ID = scan.FindingID(f)
		findings = append(findings, f)
	}
	return findings
}

func firstGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}
