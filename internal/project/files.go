package project

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// builtinExcluded are directory names never considered part of the
// project, regardless of manifest configuration. Files under them are
// dependency/library material: they may appear inside the compiled
// program, but they are never counted or reported as checked user files.
var builtinExcluded = map[string]bool{
	"vendor":       true,
	"testdata":     true,
	"node_modules": true,
}

// SourceFiles enumerates the project-owned .go files under the
// manifest's src directories, as absolute slash-normalized paths in
// walk order. _test.go files are excluded: they belong to the test
// harness universe, not the checked program.
func (m *Manifest) SourceFiles() ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, src := range m.Config.Project.Src {
		dir := filepath.Join(m.Root, src)
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // unreadable entries are skipped, not fatal
			}
			if d.IsDir() {
				if path != dir && m.excludedDir(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if !isSourceFile(d.Name()) {
				return nil
			}
			norm := filepath.ToSlash(path)
			if !seen[norm] {
				seen[norm] = true
				out = append(out, norm)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Dirs enumerates the project-owned directories under the src roots,
// for recursive watch registration. The roots themselves are included.
func (m *Manifest) Dirs() ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, src := range m.Config.Project.Src {
		root := filepath.Join(m.Root, src)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && m.excludedDir(d.Name()) {
				return filepath.SkipDir
			}
			norm := filepath.ToSlash(path)
			if !seen[norm] {
				seen[norm] = true
				out = append(out, norm)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ExcludesDir reports whether a directory name is skipped during
// enumeration and watching.
func (m *Manifest) ExcludesDir(name string) bool {
	return m.excludedDir(name)
}

// Owns reports whether path is a project-owned source file: inside the
// root, not under an excluded directory, and a non-test .go file.
func (m *Manifest) Owns(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(m.Root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	if !isSourceFile(filepath.Base(abs)) {
		return false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for _, part := range parts[:len(parts)-1] {
		if m.excludedDir(part) {
			return false
		}
	}
	return true
}

// Rel converts an absolute path to the project-root-relative form used
// in the external result shape. Paths outside the root pass through.
func (m *Manifest) Rel(path string) string {
	rel, err := filepath.Rel(m.Root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (m *Manifest) excludedDir(name string) bool {
	if builtinExcluded[name] {
		return true
	}
	if strings.HasPrefix(name, ".") && name != "." {
		return true
	}
	for _, ex := range m.Config.Project.Exclude {
		if name == ex {
			return true
		}
	}
	return false
}

func isSourceFile(name string) bool {
	return strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go")
}
