package render

import (
	"fmt"
	"io"
	"strings"

	"typewatch/internal/checker"
)

// WriteMarkdown renders the result as one table per file, in the order
// files first appear in the diagnostic stream.
func WriteMarkdown(w io.Writer, res *checker.Result) {
	if len(res.Errors) == 0 {
		fmt.Fprintln(w, "No issues found.")
	}

	var files []string
	byFile := make(map[string][]checker.Record)
	for _, rec := range res.Errors {
		if _, seen := byFile[rec.File]; !seen {
			files = append(files, rec.File)
		}
		byFile[rec.File] = append(byFile[rec.File], rec)
	}

	for _, file := range files {
		fmt.Fprintf(w, "## %s\n\n", file)
		fmt.Fprintln(w, "| Line | Col | Severity | Code | Message |")
		fmt.Fprintln(w, "|-----:|----:|----------|------|---------|")
		for _, rec := range byFile[file] {
			fmt.Fprintf(w, "| %d | %d | %s | %s | %s |\n",
				rec.Line, rec.Column, rec.Severity, rec.Code, escapeCell(rec.Message))
		}
		fmt.Fprintln(w)
	}

	if res.Metrics != nil {
		fmt.Fprintf(w, "_checked %d file(s) in %.2f ms, %d error(s)_\n",
			res.Metrics.FilesChecked, res.Metrics.CheckTime, res.Metrics.TotalErrors)
	}
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
