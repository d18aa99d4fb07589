package session

import (
	"os"
	"path/filepath"

	"typewatch/internal/project"
	"typewatch/internal/snapshot"
	"typewatch/internal/toolchain"
)

// Options configures session construction.
type Options struct {
	// DisableCache forces a full disk reread on every snapshot lookup
	// and turns the program's persistent diagnostics cache off.
	DisableCache bool
}

// Host owns the session state: the snapshot store and exactly one live
// compiler program for the life of the process. It adapts project
// configuration and file-system reads into the Source shape the
// program consumes. Not safe for concurrent use; the single-worker
// model processes queries and watch cycles strictly sequentially.
type Host struct {
	manifest *project.Manifest
	store    *snapshot.Store
	program  *toolchain.Program
	noCache  bool
}

// New locates and decodes the project manifest and builds the session.
// A missing or unparsable manifest fails construction; there is no
// degraded mode without configuration.
func New(startDir string, opts Options) (*Host, error) {
	manifest, err := project.Load(startDir)
	if err != nil {
		return nil, err
	}
	h := &Host{
		manifest: manifest,
		store:    snapshot.NewStore(),
		noCache:  opts.DisableCache,
	}
	h.program = toolchain.NewProgram(manifest.Root, h, toolchain.Options{
		ModulePath:   modulePath(manifest),
		DisableCache: opts.DisableCache,
	})
	return h, nil
}

func (h *Host) Manifest() *project.Manifest { return h.manifest }

// Program returns the live compiler program. The same instance is
// reused across every query; staleness is resolved via snapshot
// versions, never by rebuilding from scratch.
func (h *Host) Program() *toolchain.Program { return h.program }

// Store exposes the snapshot store for inspection.
func (h *Host) Store() *snapshot.Store { return h.store }

// RefreshFile reads the current on-disk content of path into the
// store, bumping its version. A file that cannot be read is a silent
// no-op: the missing file surfaces downstream as a query-level error,
// not a host-level failure.
func (h *Host) RefreshFile(path string) {
	content, err := os.ReadFile(filepath.FromSlash(path))
	if err != nil {
		return
	}
	h.store.Update(path, content)
}

// Lookup implements toolchain.Source. A path never seen before is read
// from disk once and recorded at version 1; afterwards the store is
// authoritative until RefreshFile observes a change.
func (h *Host) Lookup(path string) ([]byte, uint64, bool) {
	if h.noCache {
		h.RefreshFile(path)
	}
	if f, ok := h.store.Get(path); ok {
		return f.Content, f.Version, true
	}
	content, err := os.ReadFile(filepath.FromSlash(path))
	if err != nil {
		return nil, 0, false
	}
	h.store.Update(path, content)
	f, _ := h.store.Get(path)
	return f.Content, f.Version, true
}

// Roots implements toolchain.Source with the manifest's enumeration.
func (h *Host) Roots() ([]string, error) {
	return h.manifest.SourceFiles()
}

// Rebuild prunes snapshots whose files vanished from disk and evicts
// them from the program. Run before project-wide checks to bound
// memory in long sessions; surviving caches stay warm.
func (h *Host) Rebuild() {
	removed := h.store.Prune(func(path string) bool {
		_, err := os.Stat(filepath.FromSlash(path))
		return err == nil
	})
	for _, p := range removed {
		h.program.Forget(p)
	}
}
