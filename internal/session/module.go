package session

import (
	"os"
	"path/filepath"
	"strings"

	"typewatch/internal/project"
)

// modulePath derives the import path prefix for project-local
// packages: the go.mod module line when present, else the manifest's
// project name.
func modulePath(m *project.Manifest) string {
	if data, err := os.ReadFile(filepath.Join(m.Root, "go.mod")); err == nil {
		for _, line := range strings.Split(string(data), "\n") {
			if rest, ok := strings.CutPrefix(strings.TrimSpace(line), "module "); ok {
				return strings.TrimSpace(rest)
			}
		}
	}
	if m.Config.Project.Name != "" {
		return m.Config.Project.Name
	}
	return "project"
}
