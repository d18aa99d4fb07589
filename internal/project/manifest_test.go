package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), "[project]\nname = \"demo\"\n")
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	m, err := Load(sub)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Root != root {
		t.Errorf("Root = %q, want %q", m.Root, root)
	}
	if m.Config.Project.Name != "demo" {
		t.Errorf("Name = %q, want demo", m.Config.Project.Name)
	}
}

func TestLoadDefaults(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), "")

	m, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m.Config.Project.Src) != 1 || m.Config.Project.Src[0] != "." {
		t.Errorf("Src default = %v, want [.]", m.Config.Project.Src)
	}
	if m.Config.Check.MaxDiagnostics != 100 {
		t.Errorf("MaxDiagnostics default = %d, want 100", m.Config.Check.MaxDiagnostics)
	}
	if m.Config.Watch.DebounceMs != 50 {
		t.Errorf("DebounceMs default = %d, want 50", m.Config.Watch.DebounceMs)
	}
}

func TestLoadNoManifest(t *testing.T) {
	_, err := Load(t.TempDir())
	if !errors.Is(err, ErrNoManifest) {
		t.Errorf("expected ErrNoManifest, got %v", err)
	}
}

func TestLoadBadTOML(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), "[project\nname=")
	if _, err := Load(root); err == nil {
		t.Error("expected decode error for malformed manifest")
	}
}

func TestSourceFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), "")
	writeFile(t, filepath.Join(root, "main.go"), "package main")
	writeFile(t, filepath.Join(root, "pkg", "util.go"), "package pkg")
	writeFile(t, filepath.Join(root, "pkg", "util_test.go"), "package pkg")
	writeFile(t, filepath.Join(root, "vendor", "dep", "dep.go"), "package dep")
	writeFile(t, filepath.Join(root, "testdata", "fixture.go"), "package fixture")
	writeFile(t, filepath.Join(root, ".hidden", "h.go"), "package h")
	writeFile(t, filepath.Join(root, "notes.txt"), "not source")

	m, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	files, err := m.SourceFiles()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 source files, got %d: %v", len(files), files)
	}
	for _, f := range files {
		base := filepath.Base(f)
		if base != "main.go" && base != "util.go" {
			t.Errorf("unexpected file enumerated: %s", f)
		}
	}
}

func TestOwns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), "[project]\nexclude = [\"gen\"]\n")
	m, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		path string
		want bool
	}{
		{filepath.Join(root, "a.go"), true},
		{filepath.Join(root, "sub", "b.go"), true},
		{filepath.Join(root, "sub", "b_test.go"), false},
		{filepath.Join(root, "vendor", "v.go"), false},
		{filepath.Join(root, "gen", "g.go"), false},
		{filepath.Join(root, "a.txt"), false},
		{filepath.Join(os.TempDir(), "outside.go"), false},
	}
	for _, tc := range cases {
		if got := m.Owns(tc.path); got != tc.want {
			t.Errorf("Owns(%s) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), "")
	writeFile(t, filepath.Join(root, "pkg", "util.go"), "package pkg")
	writeFile(t, filepath.Join(root, "vendor", "dep", "dep.go"), "package dep")

	m, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	dirs, err := m.Dirs()
	if err != nil {
		t.Fatal(err)
	}
	if len(dirs) != 2 {
		t.Fatalf("expected root and pkg, got %v", dirs)
	}
	for _, d := range dirs {
		if filepath.Base(d) == "vendor" || filepath.Base(d) == "dep" {
			t.Errorf("excluded dir enumerated: %s", d)
		}
	}
}

func TestRel(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), "")
	m, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if got := m.Rel(filepath.Join(root, "pkg", "a.go")); got != "pkg/a.go" {
		t.Errorf("Rel = %q, want pkg/a.go", got)
	}
}
