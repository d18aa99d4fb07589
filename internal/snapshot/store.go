package snapshot

import (
	"crypto/sha256"
	"path/filepath"
)

// Flags encodes metadata about how a snapshot's content was normalized.
type Flags uint8

const (
	// FlagHadBOM indicates a UTF-8 BOM was stripped from the on-disk bytes.
	FlagHadBOM Flags = 1 << iota
)

// File is the last observed state of one path: immutable content at a
// monotonically increasing version. The version is what the compiler
// program compares to decide whether its caches are stale, so it must
// strictly increase on every observed change.
type File struct {
	Path    string // absolute, slash-normalized
	Version uint64
	Content []byte
	Hash    [32]byte
	Flags   Flags
}

// Store holds one File per path. It is pure data: no disk reads, no
// policy. Exactly one session host owns a Store; everything else goes
// through the host's refresh operation.
type Store struct {
	files map[string]*File
}

func NewStore() *Store {
	return &Store{files: make(map[string]*File)}
}

// Get returns the snapshot for path, if one was ever recorded.
func (s *Store) Get(path string) (*File, bool) {
	f, ok := s.files[NormalizePath(path)]
	return f, ok
}

// Update records content for path and returns the new version.
// The version bumps on every call without comparing content: a
// false-positive invalidation only costs the compiler redundant work,
// never correctness.
func (s *Store) Update(path string, content []byte) uint64 {
	norm := NormalizePath(path)
	content, hadBOM := stripBOM(content)

	var flags Flags
	if hadBOM {
		flags |= FlagHadBOM
	}

	f, ok := s.files[norm]
	if !ok {
		f = &File{Path: norm}
		s.files[norm] = f
	}
	f.Version++
	f.Content = content
	f.Hash = sha256.Sum256(content)
	f.Flags = flags
	return f.Version
}

// Len returns the number of tracked paths.
func (s *Store) Len() int {
	return len(s.files)
}

// Paths returns every tracked path, in map order.
func (s *Store) Paths() []string {
	out := make([]string, 0, len(s.files))
	for p := range s.files {
		out = append(out, p)
	}
	return out
}

// Prune drops entries for which keep returns false and returns the
// removed paths. Stale entries for deleted files are harmless between
// queries; project-wide rebuilds call this to bound memory. The caller
// must also evict the removed paths from the compiler program, or a
// path that reappears could collide with a cached entry at a restarted
// version number.
func (s *Store) Prune(keep func(path string) bool) []string {
	var removed []string
	for p := range s.files {
		if !keep(p) {
			delete(s.files, p)
			removed = append(removed, p)
		}
	}
	return removed
}

// NormalizePath приводит путь к единому виду для ключей карты
// (кроссплатформенные слэши, без ./ и дублей).
func NormalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

func stripBOM(content []byte) ([]byte, bool) {
	if len(content) < 3 {
		return content, false
	}
	if content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}
	return content, false
}
