package collect

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/guardai/guardai/internal/logging"
)

// File is one collected file ready for analysis.
type File struct {
	Path    string
	Content string
}

// Options controls which files are collected.
type Options struct {
	Exclude      []string
	MaxFileBytes int
}

// Walk gathers every readable text file under dir, in lexical order.
// Binary files, files larger than MaxFileBytes, and paths matching an
// exclude glob are skipped with a debug log, never an error.
func Walk(dir string, opts Options) ([]File, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("scan target: %w", err)
	}
	if !info.IsDir() {
		f, ok := load(dir, filepath.Base(dir), opts)
		if !ok {
			return nil, fmt.Errorf("scan target %s is not a readable text file", dir)
		}
		return []File{f}, nil
	}

	var files []File
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if d.Name() == ".git" || excluded(rel, opts.Exclude) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || excluded(rel, opts.Exclude) {
			return nil
		}
		if f, ok := load(path, rel, opts); ok {
			files = append(files, f)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	return files, nil
}

// Changed returns the files reported modified by git in the repository at
// dir, loaded from the working tree.
func Changed(dir string, opts Options) ([]File, error) {
	if !isGitRepo(dir) {
		return nil, fmt.Errorf("%s is not a git repository", dir)
	}
	out, err := gitOutput(dir, "diff", "--name-only")
	if err != nil {
		return nil, fmt.Errorf("git diff --name-only: %w", err)
	}
	names := splitLines(out)
	if len(names) == 0 {
		return nil, nil
	}
	return LoadPaths(dir, names, opts), nil
}

// LoadPaths reads the named files relative to dir, preserving the given
// order. Missing, binary, oversized, or excluded files are skipped.
func LoadPaths(dir string, names []string, opts Options) []File {
	var files []File
	for _, name := range names {
		rel := filepath.ToSlash(name)
		if excluded(rel, opts.Exclude) {
			continue
		}
		if f, ok := load(filepath.Join(dir, name), rel, opts); ok {
			files = append(files, f)
		}
	}
	return files
}

func load(path, rel string, opts Options) (File, bool) {
	log := logging.L()
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		log.Debugw("skipping non-regular file", "file", rel)
		return File{}, false
	}
	if opts.MaxFileBytes > 0 && info.Size() > int64(opts.MaxFileBytes) {
		log.Debugw("skipping oversized file", "file", rel, "bytes", info.Size())
		return File{}, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warnw("skipping unreadable file", "file", rel, "error", err)
		return File{}, false
	}
	if !isText(data) {
		log.Debugw("skipping binary file", "file", rel)
		return File{}, false
	}
	return File{Path: rel, Content: string(data)}, true
}

// isText is a cheap binary sniff: valid UTF-8 and no NUL bytes.
func isText(data []byte) bool {
	return utf8.Valid(data) && !bytes.ContainsRune(data, 0)
}

func excluded(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, err := filepath.Match(pattern, rel); err == nil && matched {
			return true
		}
		base := strings.TrimPrefix(pattern, "**/")
		if base != pattern {
			if matched, err := filepath.Match(base, filepath.Base(rel)); err == nil && matched {
				return true
			}
		}
	}
	return false
}

func isGitRepo(dir string) bool {
	_, err := gitOutput(dir, "rev-parse", "--is-inside-work-tree")
	return err == nil
}

func gitOutput(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return "", fmt.Errorf("%s", strings.TrimSpace(string(ee.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}

func splitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
