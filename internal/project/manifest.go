package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ManifestName is the project configuration file the tool looks for.
const ManifestName = "typewatch.toml"

// ErrNoManifest is returned when no typewatch.toml exists anywhere
// between the start directory and the filesystem root. Construction of
// a session is fatal without it: there is no sensible degraded mode.
var ErrNoManifest = errors.New("no " + ManifestName + " found")

// Config is the decoded shape of typewatch.toml.
type Config struct {
	Project ProjectConfig `toml:"project"`
	Check   CheckConfig   `toml:"check"`
	Watch   WatchConfig   `toml:"watch"`
}

type ProjectConfig struct {
	Name string `toml:"name"`
	// Src lists source directories relative to the project root.
	// Empty means the whole root.
	Src []string `toml:"src"`
	// Exclude lists extra directory names skipped during enumeration,
	// on top of the builtin vendor/testdata/hidden set.
	Exclude []string `toml:"exclude"`
}

type CheckConfig struct {
	MaxDiagnostics int `toml:"max_diagnostics"`
}

type WatchConfig struct {
	DebounceMs int `toml:"debounce_ms"`
}

// Manifest is a located and decoded project configuration.
type Manifest struct {
	Path   string // absolute path of typewatch.toml
	Root   string // directory containing it
	Config Config
}

// FindManifest walks up from startDir to locate typewatch.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load locates and decodes the manifest, applying defaults.
func Load(startDir string) (*Manifest, error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoManifest
	}

	var cfg Config
	if _, err := toml.DecodeFile(manifestPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", manifestPath, err)
	}
	applyDefaults(&cfg)

	return &Manifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, nil
}

func applyDefaults(cfg *Config) {
	if len(cfg.Project.Src) == 0 {
		cfg.Project.Src = []string{"."}
	}
	if cfg.Check.MaxDiagnostics <= 0 {
		cfg.Check.MaxDiagnostics = 100
	}
	if cfg.Watch.DebounceMs <= 0 {
		cfg.Watch.DebounceMs = 50
	}
}
