package toolchain

// Source supplies the program with everything it may read: the current
// root file list derived from project configuration, and per-path
// content at a version. The session host implements this on top of the
// snapshot store; the program itself never touches the disk.
type Source interface {
	// Lookup returns the current content and version for path, or
	// ok=false when the path cannot be read at all.
	Lookup(path string) (content []byte, version uint64, ok bool)

	// Roots returns the project-owned source files, absolute and
	// slash-normalized.
	Roots() ([]string, error)
}
