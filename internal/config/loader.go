// Package config loads the externally defined balance tables from YAML:
// item base stats, grade multipliers, enhancement costs, the destruction
// rule, loot box pricing and sale prices.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// defaultKey caches the default file on its own.
const defaultKey = "$default"

// Paths helper for default/profile files.
type Paths struct {
	BaseDir string // base directory, e.g., /opt/app/config
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "balance", "default.yaml")
}

func (p Paths) ProfilePath(profile string) string {
	return filepath.Join(p.BaseDir, "balance", profile+".yaml")
}

// Files lists the files a profile is built from, for the watcher.
func (p Paths) Files(profile string) []string {
	files := []string{p.DefaultPath()}
	if profile != "" {
		files = append(files, p.ProfilePath(profile))
	}
	return files
}

// Loader reads YAML configs and merges default → profile.
type Loader struct {
	paths  Paths
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]RawConfig // key: profile name or defaultKey
}

// NewLoader creates a config loader with the given base directory.
func NewLoader(baseDir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		paths:  Paths{BaseDir: baseDir},
		logger: logger,
		cache:  make(map[string]RawConfig),
	}
}

// Paths returns the loader's file layout.
func (l *Loader) Paths() Paths { return l.paths }

// LoadMerged loads and merges default → profile (profile optional).
// A missing default file yields the built-in defaults; a named profile
// must exist.
func (l *Loader) LoadMerged(profile string) (RawConfig, error) {
	key := profile
	if key == "" {
		key = defaultKey
	}
	l.mu.RLock()
	if cfg, ok := l.cache[key]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	defCfg, err := readYAML(l.paths.DefaultPath(), true)
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	merged := defCfg
	if profile != "" {
		profCfg, err := readYAML(l.paths.ProfilePath(profile), false)
		if err != nil {
			return RawConfig{}, fmt.Errorf("read profile %q: %w", profile, err)
		}
		merged = mergeRaw(defCfg, profCfg)
	}

	l.mu.Lock()
	l.cache[defaultKey] = defCfg
	l.cache[key] = merged
	l.mu.Unlock()

	l.logger.Info("balance config loaded", "dir", l.paths.BaseDir, "profile", profile, "version", merged.Version)
	return merged, nil
}

// Load returns the resolved, validated balance for profile.
func (l *Loader) Load(profile string) (Balance, error) {
	raw, err := l.LoadMerged(profile)
	if err != nil {
		return Balance{}, err
	}
	b, err := Resolve(raw)
	if err != nil {
		return Balance{}, fmt.Errorf("profile %q: %w", profile, err)
	}
	return b, nil
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// readYAML loads a YAML file into RawConfig. Unknown keys are errors.
// A missing file returns a zero config when optional is set.
func readYAML(path string, optional bool) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return RawConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
