package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/guardai/guardai/internal/collect"
	"github.com/guardai/guardai/internal/config"
	"github.com/guardai/guardai/internal/github"
	"github.com/guardai/guardai/internal/output"
	"github.com/guardai/guardai/internal/providers"
	"github.com/guardai/guardai/internal/scan"
)

// Shared scan flags
var (
	flagProvider     string
	flagModel        string
	flagFormat       string
	flagOut          string
	flagFailOn       string
	flagTimeout      int
	flagRetries      int
	flagHost         string
	flagPort         int
	flagToken        string
	flagEndpoint     string
	flagExclude      string
	flagMaxFileBytes int
	flagNoRedact     bool
)

func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagProvider, "provider", "", "AI provider (openai, gemini, groq, custom)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown, sarif)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&flagFailOn, "fail-on", "", "Fail on severity threshold (none, low, medium, high, critical)")
	cmd.Flags().IntVar(&flagTimeout, "timeout", 0, "Per-request timeout in seconds")
	cmd.Flags().IntVar(&flagRetries, "retries", -1, "Retries for transient provider failures")
	cmd.Flags().StringVar(&flagHost, "host", "", "Custom provider host (e.g. http://localhost)")
	cmd.Flags().IntVar(&flagPort, "port", 0, "Custom provider port")
	cmd.Flags().StringVar(&flagToken, "token", "", "Custom provider bearer token")
	cmd.Flags().StringVar(&flagEndpoint, "endpoint", "", "Custom provider endpoint path")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "Exclude file path globs (comma-separated)")
	cmd.Flags().IntVar(&flagMaxFileBytes, "max-file-bytes", 0, "Skip files larger than this many bytes")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagFailOn != "" {
		m["fail_on"] = flagFailOn
	}
	if flagTimeout > 0 {
		m["timeout_seconds"] = strconv.Itoa(flagTimeout)
	}
	if flagRetries >= 0 {
		m["max_retries"] = strconv.Itoa(flagRetries)
	}
	if flagHost != "" {
		m["custom.host"] = flagHost
	}
	if flagPort > 0 {
		m["custom.port"] = strconv.Itoa(flagPort)
	}
	if flagEndpoint != "" {
		m["custom.endpoint"] = flagEndpoint
	}
	if flagExclude != "" {
		m["exclude"] = flagExclude
	}
	if flagMaxFileBytes > 0 {
		m["max_file_bytes"] = strconv.Itoa(flagMaxFileBytes)
	}
	return m
}

// buildProviderConfig resolves credentials from the environment and merges
// them with the effective config. API keys never live in the config file.
func buildProviderConfig(cfg config.Config) providers.Config {
	pc := providers.Config{
		Provider:   cfg.Provider,
		Model:      cfg.Model,
		Host:       cfg.Custom.Host,
		Port:       cfg.Custom.Port,
		Endpoint:   cfg.Custom.Endpoint,
		Timeout:    time.Duration(cfg.TimeoutSeconds) * time.Second,
		MaxRetries: cfg.MaxRetries,
	}
	if pc.Model == "" {
		pc.Model = providers.DefaultModel(cfg.Provider)
	}
	switch cfg.Provider {
	case "openai":
		pc.APIKey = os.Getenv("OPENAI_API_KEY")
	case "gemini", "google":
		pc.APIKey = os.Getenv("GEMINI_API_KEY")
		if pc.APIKey == "" {
			pc.APIKey = os.Getenv("GOOGLE_API_KEY")
		}
	case "groq":
		pc.APIKey = os.Getenv("GROQ_API_KEY")
	case "custom":
		pc.Token = flagToken
		if pc.Token == "" {
			pc.Token = os.Getenv("GUARDAI_CUSTOM_TOKEN")
		}
	}
	return pc
}

func collectOptions(cfg config.Config) collect.Options {
	return collect.Options{
		Exclude:      cfg.Exclude,
		MaxFileBytes: cfg.MaxFileBytes,
	}
}

// runScan drives the engine over the collected files and maps the outcome to
// an exit code. collectMs is how long file collection took.
func runScan(files []collect.File, cfg config.Config, target scan.Target, collectMs int64) *scan.Report {
	if flagNoRedact {
		cfg.Privacy.RedactSecrets = false
		fmt.Fprintln(os.Stderr, "WARNING: secret redaction is disabled")
	}

	if len(files) == 0 {
		fmt.Fprintln(os.Stdout, "No files to scan.")
		return nil
	}

	analyzer, err := providers.New(buildProviderConfig(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitAuthError
		return nil
	}

	requests := make([]scan.AnalysisRequest, len(files))
	for i, f := range files {
		requests[i] = scan.AnalysisRequest{Path: f.Path, Content: f.Content}
	}

	opts := scan.Options{
		Target:      target,
		Redact:      cfg.Privacy.RedactSecrets,
		RedactPaths: cfg.Privacy.RedactPaths,
		CollectMs:   collectMs,
	}

	var spin *spinner.Spinner
	if !flagVerbose {
		spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		spin.Suffix = fmt.Sprintf(" scanning 0/%d files", len(requests))
		spin.Start()
		opts.Progress = func(done, total int, path string) {
			spin.Suffix = fmt.Sprintf(" scanning %d/%d files (%s)", done, total, path)
		}
	}

	report, err := scan.Run(context.Background(), requests, analyzer, opts)
	if spin != nil {
		spin.Stop()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if providers.IsAuthError(err) {
			exitCode = ExitAuthError
		} else {
			exitCode = ExitRuntimeError
		}
		return nil
	}

	if err := output.WriteReport(report, cfg.Format, flagOut); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		exitCode = ExitRuntimeError
		return nil
	}

	applyFailOn(report, cfg.FailOn)
	return report
}

// applyFailOn sets the findings exit code when any finding meets the
// configured severity threshold.
func applyFailOn(report *scan.Report, failOn string) {
	if failOn == "none" || failOn == "" {
		return
	}
	for _, f := range report.Findings {
		if scan.MeetsThreshold(f.Severity, failOn) {
			exitCode = ExitFindings
			return
		}
	}
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan source files for security issues",
	Long:  "Scan source files for security issues using an AI provider. Use subcommands to select what to scan.",
}

var scanDirCmd = &cobra.Command{
	Use:   "dir [path]",
	Short: "Scan a directory tree (or a single file)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		start := time.Now()
		files, err := collect.Walk(dir, collectOptions(cfg))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		runScan(files, cfg, scan.Target{Mode: "dir", Path: dir}, time.Since(start).Milliseconds())
		return nil
	},
}

var scanChangesCmd = &cobra.Command{
	Use:   "changes [path]",
	Short: "Scan files changed in the git working tree",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		start := time.Now()
		files, err := collect.Changed(dir, collectOptions(cfg))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		runScan(files, cfg, scan.Target{Mode: "changes", Path: dir}, time.Since(start).Milliseconds())
		return nil
	},
}

var (
	flagPROwner   string
	flagPRRepo    string
	flagPRComment bool
)

var scanPRCmd = &cobra.Command{
	Use:   "pr <pr-number>",
	Short: "Scan the files changed in a GitHub pull request",
	Long:  "Fetch the changed file list from GitHub, scan the local copies, and optionally post findings as a PR review.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prNumber, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid PR number %q\n", args[0])
			exitCode = ExitUsageError
			return nil
		}

		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}

		owner, repo := flagPROwner, flagPRRepo
		if owner == "" || repo == "" {
			detectedOwner, detectedRepo, err := github.DetectRepo()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\nUse --owner and --repo flags to specify manually.\n", err)
				exitCode = ExitRuntimeError
				return nil
			}
			if owner == "" {
				owner = detectedOwner
			}
			if repo == "" {
				repo = detectedRepo
			}
		}

		ghClient, err := github.NewClient(os.Getenv("GITHUB_TOKEN"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitAuthError
			return nil
		}

		ctx := context.Background()

		fmt.Fprintf(os.Stderr, "Fetching PR #%d from %s/%s...\n", prNumber, owner, repo)
		start := time.Now()
		prFiles, err := ghClient.GetPRFiles(ctx, owner, repo, prNumber)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		if len(prFiles) == 0 {
			fmt.Fprintln(os.Stdout, "PR has no changed files — nothing to scan.")
			return nil
		}

		files := collect.LoadPaths(".", prFiles, collectOptions(cfg))
		collectMs := time.Since(start).Milliseconds()

		target := scan.Target{Mode: "pr", Ref: fmt.Sprintf("%s/%s#%d", owner, repo, prNumber)}
		report := runScan(files, cfg, target, collectMs)
		if report == nil {
			return nil
		}

		if flagPRComment {
			prFileSet := make(map[string]bool, len(prFiles))
			for _, f := range prFiles {
				prFileSet[f] = true
			}

			review := github.BuildReview(report, prFileSet)
			fmt.Fprintf(os.Stderr, "Posting review (%d inline comments)...\n", len(review.Comments))

			if err := ghClient.PostReview(ctx, owner, repo, prNumber, review); err != nil {
				fmt.Fprintf(os.Stderr, "Error posting review: %v\n", err)
				exitCode = ExitRuntimeError
				return nil
			}
			fmt.Fprintf(os.Stderr, "Review posted to PR #%d.\n", prNumber)
		}

		return nil
	},
}

func init() {
	scanCmd.AddCommand(scanDirCmd)
	scanCmd.AddCommand(scanChangesCmd)
	scanCmd.AddCommand(scanPRCmd)

	for _, cmd := range []*cobra.Command{scanDirCmd, scanChangesCmd, scanPRCmd} {
		addScanFlags(cmd)
	}

	scanPRCmd.Flags().StringVar(&flagPROwner, "owner", "", "GitHub repository owner (auto-detected if omitted)")
	scanPRCmd.Flags().StringVar(&flagPRRepo, "repo", "", "GitHub repository name (auto-detected if omitted)")
	scanPRCmd.Flags().BoolVar(&flagPRComment, "comment", false, "Post findings to the PR as a review")
}
