package render

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"typewatch/internal/checker"
)

func sampleResult() *checker.Result {
	return &checker.Result{
		Errors: []checker.Record{
			{File: "main.go", Line: 4, Column: 6, Code: "TYP3001",
				Message: "cannot use \"hello\" (untyped string constant) as int value", Severity: "error"},
			{File: "util/u.go", Line: 2, Column: 1, Code: "TYP3007",
				Message: "declared and not used: x", Severity: "warning"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"json", FormatJSON, true},
		{"pretty", FormatPretty, true},
		{"text", FormatPretty, true},
		{"markdown", FormatMarkdown, true},
		{"md", FormatMarkdown, true},
		{"yaml", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseFormat(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("ParseFormat(%q) = %v, %v", tc.in, got, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("ParseFormat(%q): expected error", tc.in)
		}
	}
}

func TestWriteJSONShape(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleResult()); err != nil {
		t.Fatal(err)
	}

	var decoded struct {
		Errors []struct {
			File     string `json:"file"`
			Line     uint32 `json:"line"`
			Column   uint32 `json:"column"`
			Code     string `json:"code"`
			Message  string `json:"message"`
			Severity string `json:"severity"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(decoded.Errors))
	}
	if decoded.Errors[0].File != "main.go" || decoded.Errors[0].Line != 4 {
		t.Errorf("unexpected first record %+v", decoded.Errors[0])
	}

	if strings.Contains(buf.String(), "metrics") {
		t.Error("metrics must be omitted when not requested")
	}
}

func TestWriteJSONEmptyErrorsIsArray(t *testing.T) {
	var buf bytes.Buffer
	WriteJSON(&buf, &checker.Result{Errors: []checker.Record{}})
	if !strings.Contains(buf.String(), "\"errors\": []") {
		t.Errorf("empty result must serialize errors as [], got %s", buf.String())
	}
}

func TestWritePretty(t *testing.T) {
	var buf bytes.Buffer
	WritePretty(&buf, sampleResult(), PrettyOpts{})
	out := buf.String()

	if !strings.Contains(out, "main.go:4:6: error TYP3001:") {
		t.Errorf("missing header line in %q", out)
	}
	if !strings.Contains(out, "1 error(s), 1 warning(s)") {
		t.Errorf("missing summary in %q", out)
	}
}

func TestWritePrettyClean(t *testing.T) {
	var buf bytes.Buffer
	WritePretty(&buf, &checker.Result{}, PrettyOpts{})
	if !strings.Contains(buf.String(), "no issues found") {
		t.Errorf("expected clean summary, got %q", buf.String())
	}
}

func TestWritePrettyQuiet(t *testing.T) {
	var buf bytes.Buffer
	WritePretty(&buf, &checker.Result{}, PrettyOpts{Quiet: true})
	if buf.Len() != 0 {
		t.Errorf("quiet clean run must print nothing, got %q", buf.String())
	}
}

func TestWritePrettyContextCaret(t *testing.T) {
	root := t.TempDir()
	src := "package main\n\nfunc main() {\n\tvar x int = \"hello\"\n}\n"
	if err := os.WriteFile(filepath.Join(root, "main.go"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	res := &checker.Result{Errors: []checker.Record{
		{File: "main.go", Line: 4, Column: 6, Code: "TYP3001", Message: "cannot use", Severity: "error"},
	}}
	var buf bytes.Buffer
	WritePretty(&buf, res, PrettyOpts{Root: root})
	out := buf.String()

	if !strings.Contains(out, "var x int = \"hello\"") {
		t.Errorf("missing source context in %q", out)
	}
	// Column 6 is 'x': tab expands to 4 spaces, so the caret sits
	// under display column 9.
	if !strings.Contains(out, "\n            ^") {
		t.Errorf("caret misaligned in %q", out)
	}
}

func TestWriteMarkdown(t *testing.T) {
	res := sampleResult()
	res.Metrics = &checker.Metrics{CheckTime: 1.5, FilesChecked: 2, TotalErrors: 1}

	var buf bytes.Buffer
	WriteMarkdown(&buf, res)
	out := buf.String()

	if !strings.Contains(out, "## main.go") || !strings.Contains(out, "## util/u.go") {
		t.Errorf("missing per-file sections in %q", out)
	}
	if !strings.Contains(out, "| 4 | 6 | error | TYP3001 |") {
		t.Errorf("missing table row in %q", out)
	}
	if !strings.Contains(out, "checked 2 file(s)") {
		t.Errorf("missing metrics footer in %q", out)
	}
}

func TestMarkdownEscapesPipes(t *testing.T) {
	res := &checker.Result{Errors: []checker.Record{
		{File: "a.go", Line: 1, Column: 1, Code: "TYP3000", Message: "a | b", Severity: "error"},
	}}
	var buf bytes.Buffer
	WriteMarkdown(&buf, res)
	if !strings.Contains(buf.String(), "a \\| b") {
		t.Errorf("pipe not escaped in %q", buf.String())
	}
}
