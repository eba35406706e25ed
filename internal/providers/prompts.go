package providers

import (
	"fmt"

	"github.com/guardai/guardai/internal/scan"
)

// hostedInstruction is the analysis instruction sent to hosted models. The
// block format it requests is the contract parsed by ExtractFindings; keep
// the two in sync when changing either.
const hostedInstruction = `You are an expert in application security analysis, adept at identifying and explaining potential vulnerabilities in source code. You will be given the complete content of a single file. Identify every security weakness that could compromise the confidentiality, integrity, or availability of the application.

Report each vulnerability as a block with exactly these fields, one per line:

Severity: low|medium|high|critical
Line: <line number where the issue occurs, if known>
Description: <one-sentence summary of the issue and its impact>
Excerpt: <the offending code fragment, if short>

Separate blocks with a blank line. Do not add commentary outside the blocks. If the file has no security issues, respond with exactly: No issues found.`

// userContent formats one file for the model.
func userContent(req scan.AnalysisRequest) string {
	return fmt.Sprintf("File: %s\n\n%s", req.Path, req.Content)
}

// combinedPrompt folds the instruction and file into a single prompt string
// for providers without a separate system role.
func combinedPrompt(req scan.AnalysisRequest) string {
	return hostedInstruction + "\n\n" + userContent(req)
}
