package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ErrNotARepository is returned when the project root is not inside a
// git working tree. The caller reports it as a query-level failure;
// nothing about the session itself is broken.
var ErrNotARepository = errors.New("not a git repository")

const defaultTimeout = 30 * time.Second

// Client resolves working-tree change sets by shelling out to the git
// binary. State between invocations lives entirely in the repository;
// the client itself is stateless and safe to reuse.
type Client struct {
	dir     string // directory the commands run in
	timeout time.Duration
}

func NewClient(dir string) *Client {
	return &Client{dir: dir, timeout: defaultTimeout}
}

// ChangedFiles returns the source files modified relative to HEAD:
// staged, unstaged and untracked entries from `git status --porcelain`,
// filtered to .go files, deduplicated, as absolute slash-normalized
// paths. For renames only the new side is returned; the old side no
// longer exists on disk and has nothing to check.
func (c *Client) ChangedFiles(ctx context.Context) ([]string, error) {
	top, err := c.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		if isNotRepo(err) {
			return nil, ErrNotARepository
		}
		return nil, err
	}

	out, err := c.run(ctx, "status", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("git status: %w", err)
	}
	return parsePorcelain(out, top), nil
}

func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("git %s: timeout after %v", args[0], c.timeout)
		}
		return "", &gitError{args: args, err: err, stderr: stderr.String()}
	}
	return strings.TrimSpace(stdout.String()), nil
}

type gitError struct {
	args   []string
	err    error
	stderr string
}

func (e *gitError) Error() string {
	msg := strings.TrimSpace(e.stderr)
	if msg == "" {
		return fmt.Sprintf("git %s: %v", strings.Join(e.args, " "), e.err)
	}
	return fmt.Sprintf("git %s: %s", strings.Join(e.args, " "), msg)
}

func (e *gitError) Unwrap() error { return e.err }

// isNotRepo matches the "fatal: not a git repository" failure mode of
// rev-parse. Git exits 128 and prints the fatal line to stderr.
func isNotRepo(err error) bool {
	var ge *gitError
	if !errors.As(err, &ge) {
		return false
	}
	var exitErr *exec.ExitError
	if !errors.As(ge.err, &exitErr) {
		// Binary missing entirely counts too: without git there is no
		// repository to speak of.
		return true
	}
	return strings.Contains(ge.stderr, "not a git repository")
}

// parsePorcelain extracts the checkable paths from porcelain v1 output.
// Lines look like "XY path" or, for renames/copies, "XY old -> new".
// Paths with special characters arrive C-quoted.
func parsePorcelain(out, repoRoot string) []string {
	seen := make(map[string]bool)
	var files []string
	for _, line := range strings.SplitAfter(out, "\n") {
		line = strings.TrimRight(line, "\n")
		if len(line) < 4 {
			continue
		}
		entry := line[3:]
		if i := strings.Index(entry, " -> "); i >= 0 {
			entry = entry[i+4:]
		}
		entry = unquotePath(entry)
		if !strings.HasSuffix(entry, ".go") {
			continue
		}
		abs := filepath.ToSlash(filepath.Join(repoRoot, filepath.FromSlash(entry)))
		if !seen[abs] {
			seen[abs] = true
			files = append(files, abs)
		}
	}
	return files
}

func unquotePath(s string) string {
	if len(s) >= 2 && s[0] == '"' {
		if unquoted, err := strconv.Unquote(s); err == nil {
			return unquoted
		}
	}
	return s
}
