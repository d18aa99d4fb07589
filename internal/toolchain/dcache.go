package toolchain

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Bump when DiskPayload changes shape; old entries are then misses.
// v2: paths stored root-relative, member names folded into the digest.
const diskCacheSchemaVersion uint16 = 2

// CacheApp is the directory name under the user cache root. The clean
// subcommand opens the same location.
const CacheApp = "typewatch"

// DiskCache memoizes per-package diagnostics keyed by the package
// digest (own content combined with project-local dependency digests).
// This is the program's own incremental metadata: opaque to everything
// above the toolchain, safe to delete at any time.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is the serialized cache entry for one package state.
type DiskPayload struct {
	Schema uint16
	Dir    string
	Digest Digest
	Diags  []DiskDiagnostic
}

// DiskDiagnostic mirrors diag.Diagnostic with plain field types for
// msgpack stability.
type DiskDiagnostic struct {
	Severity uint8
	Code     uint16
	Path     string
	Line     uint32
	Col      uint32
	Message  string
}

// OpenDiskCache initializes the cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// Подкаталог "pkgs" — для удобства очистки руками.
	return filepath.Join(c.dir, "pkgs", hexKey+".mp")
}

// Put serializes and atomically writes a payload.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads a payload; ok=false on miss or schema mismatch.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() { _ = f.Close() }()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the whole cache.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	return os.RemoveAll(old)
}
