package checker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"typewatch/internal/diag"
	"typewatch/internal/observ"
	"typewatch/internal/session"
)

// ErrFileNotFound is returned by CheckFile for a path that does not
// exist on disk.
var ErrFileNotFound = errors.New("file not found")

// ErrOutOfScope is returned by CheckFile for a path outside the
// project: not under the root, excluded, or not a checkable source
// file.
var ErrOutOfScope = errors.New("file is outside the project scope")

// Resolver produces the set of files a changed-files query should
// consider. The git client is the production implementation.
type Resolver interface {
	ChangedFiles(ctx context.Context) ([]string, error)
}

// Options configures a Checker.
type Options struct {
	// Metrics attaches the timing/count block to every result.
	Metrics bool
	// NoWarnings drops warning-severity diagnostics from results.
	NoWarnings bool
}

// Checker runs the three query modes against one session. Queries are
// strictly sequential; the Checker shares the session's single-worker
// discipline and holds no locks.
type Checker struct {
	host       *session.Host
	resolver   Resolver
	metrics    bool
	noWarnings bool
}

func New(host *session.Host, resolver Resolver, opts Options) *Checker {
	return &Checker{
		host:       host,
		resolver:   resolver,
		metrics:    opts.Metrics,
		noWarnings: opts.NoWarnings,
	}
}

// CheckFile checks a single file: refresh its snapshot, (re)check its
// package, report the diagnostics attributed to the file itself.
func (c *Checker) CheckFile(path string) (*Result, error) {
	start := time.Now()
	timer := observ.NewTimer()

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if !c.host.Manifest().Owns(abs) {
		return nil, fmt.Errorf("%w: %s", ErrOutOfScope, path)
	}

	ph := timer.Begin("refresh")
	c.host.RefreshFile(abs)
	timer.End(ph, "")

	ph = timer.Begin("check")
	diags, err := c.host.Program().FileDiagnostics(abs)
	timer.End(ph, "1 file")
	if err != nil {
		return nil, err
	}

	return c.finish(diags, 1, start, timer), nil
}

// CheckChanged checks every source file the resolver reports as
// modified. Files that vanished from disk or fall outside the project
// are skipped silently: a deleted file has nothing left to check.
func (c *Checker) CheckChanged(ctx context.Context) (*Result, error) {
	start := time.Now()
	timer := observ.NewTimer()

	ph := timer.Begin("resolve")
	changed, err := c.resolver.ChangedFiles(ctx)
	timer.End(ph, fmt.Sprintf("%d candidates", len(changed)))
	if err != nil {
		return nil, err
	}

	return c.checkSet(changed, start, timer)
}

// CheckSet checks an explicit set of paths with the same skip rules as
// CheckChanged. The watch reactor uses it to flush a pending batch.
func (c *Checker) CheckSet(paths []string) (*Result, error) {
	return c.checkSet(paths, time.Now(), observ.NewTimer())
}

func (c *Checker) checkSet(paths []string, start time.Time, timer *observ.Timer) (*Result, error) {
	m := c.host.Manifest()

	var checkable []string
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		if _, err := os.Stat(abs); err != nil {
			continue
		}
		if !m.Owns(abs) {
			continue
		}
		checkable = append(checkable, abs)
	}

	ph := timer.Begin("refresh")
	for _, p := range checkable {
		c.host.RefreshFile(p)
	}
	timer.End(ph, "")

	ph = timer.Begin("check")
	var diags []diag.Diagnostic
	for _, p := range checkable {
		fileDiags, err := c.host.Program().FileDiagnostics(p)
		if err != nil {
			timer.End(ph, "")
			return nil, err
		}
		diags = append(diags, fileDiags...)
	}
	timer.End(ph, fmt.Sprintf("%d files", len(checkable)))

	return c.finish(diags, len(checkable), start, timer), nil
}

// CheckAll checks the entire project. Snapshots of vanished files are
// pruned first so a long session does not accumulate ghosts.
func (c *Checker) CheckAll() (*Result, error) {
	start := time.Now()
	timer := observ.NewTimer()

	ph := timer.Begin("rebuild")
	c.host.Rebuild()
	timer.End(ph, "")

	roots, err := c.host.Roots()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate sources: %w", err)
	}

	ph = timer.Begin("check")
	diags, err := c.host.Program().ProjectDiagnostics()
	timer.End(ph, fmt.Sprintf("%d files", len(roots)))
	if err != nil {
		return nil, err
	}

	return c.finish(diags, len(roots), start, timer), nil
}

// finish converts diagnostics to the external shape: grouped by file
// in first-seen order with the compiler's emission order preserved
// within each file, capped by the manifest's diagnostic limit.
func (c *Checker) finish(diags []diag.Diagnostic, filesChecked int, start time.Time, timer *observ.Timer) *Result {
	m := c.host.Manifest()
	bag := diag.NewBag(m.Config.Check.MaxDiagnostics)
	for _, d := range groupByFile(diags) {
		if !bag.Add(d) {
			break
		}
	}
	if c.noWarnings {
		bag.Filter(func(d *diag.Diagnostic) bool { return d.Severity >= diag.SevError })
	}

	res := &Result{Errors: make([]Record, 0, bag.Len())}
	for _, d := range bag.Items() {
		res.Errors = append(res.Errors, toRecord(m, d))
	}

	if c.metrics {
		res.Metrics = &Metrics{
			CheckTime:    float64(time.Since(start)) / float64(time.Millisecond),
			FilesChecked: filesChecked,
			TotalErrors:  res.errorCount(),
			Phases:       timer.Report().Phases,
		}
	}
	return res
}

// groupByFile reorders diagnostics so all entries of one file are
// contiguous, files in first-seen order. The compiler interleaves
// files within a package (package-level declarations across every file
// first, function bodies after); the external shape promises per-file
// grouping with emission order kept inside each file.
func groupByFile(diags []diag.Diagnostic) []diag.Diagnostic {
	if len(diags) < 2 {
		return diags
	}
	var order []string
	byFile := make(map[string][]diag.Diagnostic)
	for _, d := range diags {
		if _, seen := byFile[d.Path]; !seen {
			order = append(order, d.Path)
		}
		byFile[d.Path] = append(byFile[d.Path], d)
	}
	out := make([]diag.Diagnostic, 0, len(diags))
	for _, p := range order {
		out = append(out, byFile[p]...)
	}
	return out
}
