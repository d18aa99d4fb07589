package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"typewatch/internal/checker"
)

// PrettyOpts configures human-readable output.
type PrettyOpts struct {
	Color bool
	// Root resolves record-relative paths when loading source context.
	// Empty disables the context line.
	Root  string
	Quiet bool // suppress the summary line
}

// WritePretty renders diagnostics for a terminal:
//
//	<path>:<line>:<col>: <severity> <CODE>: <message>
//	    <source line>
//	    ^
//
// followed by a summary and, when present, the metrics block.
func WritePretty(w io.Writer, res *checker.Result, opts PrettyOpts) {
	errColor := color.New(color.FgRed, color.Bold)
	warnColor := color.New(color.FgYellow, color.Bold)
	codeColor := color.New(color.FgCyan)
	dimColor := color.New(color.Faint)
	if !opts.Color {
		for _, c := range []*color.Color{errColor, warnColor, codeColor, dimColor} {
			c.DisableColor()
		}
	}

	for _, rec := range res.Errors {
		sev := errColor.Sprint(rec.Severity)
		if rec.Severity == "warning" {
			sev = warnColor.Sprint(rec.Severity)
		}
		fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
			rec.File, rec.Line, rec.Column, sev, codeColor.Sprint(rec.Code), rec.Message)

		if opts.Root != "" {
			if src, caret, ok := contextLine(opts.Root, rec); ok {
				fmt.Fprintf(w, "    %s\n", src)
				fmt.Fprintf(w, "    %s\n", dimColor.Sprint(caret))
			}
		}
	}

	if !opts.Quiet {
		writeSummary(w, res, errColor, warnColor)
	}
	if res.Metrics != nil {
		writeMetrics(w, res.Metrics, dimColor)
	}
}

func writeSummary(w io.Writer, res *checker.Result, errColor, warnColor *color.Color) {
	errs, warns := 0, 0
	for _, rec := range res.Errors {
		if rec.Severity == "error" {
			errs++
		} else {
			warns++
		}
	}
	switch {
	case errs == 0 && warns == 0:
		fmt.Fprintln(w, "no issues found")
	case warns == 0:
		fmt.Fprintf(w, "%s\n", errColor.Sprintf("%d error(s)", errs))
	case errs == 0:
		fmt.Fprintf(w, "%s\n", warnColor.Sprintf("%d warning(s)", warns))
	default:
		fmt.Fprintf(w, "%s, %s\n",
			errColor.Sprintf("%d error(s)", errs), warnColor.Sprintf("%d warning(s)", warns))
	}
}

func writeMetrics(w io.Writer, m *checker.Metrics, dim *color.Color) {
	fmt.Fprintln(w, dim.Sprint("--"))
	fmt.Fprintf(w, "checked %d file(s) in %.2f ms, %d error(s)\n",
		m.FilesChecked, m.CheckTime, m.TotalErrors)
	for _, p := range m.Phases {
		line := fmt.Sprintf("  %-10s %7.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			line += "  " + p.Note
		}
		fmt.Fprintln(w, dim.Sprint(line))
	}
}

// contextLine loads the offending source line and builds a caret line
// aligned under the reported column. Tabs and wide runes are measured
// with their display width so the caret lands where the terminal shows
// the character.
func contextLine(root string, rec checker.Record) (src, caret string, ok bool) {
	path := rec.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, filepath.FromSlash(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", false
	}
	lines := strings.Split(string(data), "\n")
	if rec.Line == 0 || int(rec.Line) > len(lines) {
		return "", "", false
	}
	raw := strings.TrimRight(lines[rec.Line-1], "\r")

	col := int(rec.Column)
	if col < 1 {
		col = 1
	}
	if col > len(raw)+1 {
		col = len(raw) + 1
	}

	const tabWidth = 4
	expand := func(s string) string {
		return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
	}
	src = expand(raw)
	pad := runewidth.StringWidth(expand(raw[:col-1]))
	caret = strings.Repeat(" ", pad) + "^"
	return src, caret, true
}
