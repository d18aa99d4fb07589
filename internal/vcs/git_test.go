package vcs

import (
	"errors"
	"os/exec"
	"reflect"
	"testing"
)

func TestParsePorcelainBasic(t *testing.T) {
	out := " M internal/a.go\n" +
		"A  cmd/b.go\n" +
		"?? untracked.go\n"
	got := parsePorcelain(out, "/repo")
	want := []string{"/repo/internal/a.go", "/repo/cmd/b.go", "/repo/untracked.go"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parsePorcelain = %v, want %v", got, want)
	}
}

func TestParsePorcelainFiltersNonGo(t *testing.T) {
	out := " M README.md\n" +
		" M Makefile\n" +
		" M main.go\n"
	got := parsePorcelain(out, "/repo")
	want := []string{"/repo/main.go"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parsePorcelain = %v, want %v", got, want)
	}
}

// A file both staged and modified shows up once per path in porcelain
// already, but a rename plus an untracked copy must still dedupe.
func TestParsePorcelainDedupes(t *testing.T) {
	out := "MM dup.go\n" +
		"?? dup.go\n"
	got := parsePorcelain(out, "/repo")
	if len(got) != 1 {
		t.Errorf("expected 1 entry, got %v", got)
	}
}

func TestParsePorcelainRenameKeepsNewSide(t *testing.T) {
	out := "R  old_name.go -> new_name.go\n"
	got := parsePorcelain(out, "/repo")
	want := []string{"/repo/new_name.go"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parsePorcelain = %v, want %v", got, want)
	}
}

func TestParsePorcelainQuotedPath(t *testing.T) {
	out := "?? \"weird name.go\"\n"
	got := parsePorcelain(out, "/repo")
	want := []string{"/repo/weird name.go"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parsePorcelain = %v, want %v", got, want)
	}
}

func TestParsePorcelainEmpty(t *testing.T) {
	if got := parsePorcelain("", "/repo"); got != nil {
		t.Errorf("expected nil for clean tree, got %v", got)
	}
}

func TestIsNotRepo(t *testing.T) {
	ge := &gitError{
		args:   []string{"rev-parse", "--show-toplevel"},
		err:    &exec.ExitError{},
		stderr: "fatal: not a git repository (or any of the parent directories): .git\n",
	}
	if !isNotRepo(ge) {
		t.Error("expected fatal rev-parse failure to classify as not-a-repo")
	}

	other := &gitError{
		args:   []string{"status"},
		err:    &exec.ExitError{},
		stderr: "fatal: unable to read tree\n",
	}
	if isNotRepo(other) {
		t.Error("unrelated git failure must not classify as not-a-repo")
	}

	if isNotRepo(errors.New("plain")) {
		t.Error("non-git errors must not classify as not-a-repo")
	}
}
