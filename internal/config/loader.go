package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const appName = "listexplorer"

// EnvCacheDir overrides cache.dir when set.
const EnvCacheDir = "LISTEXPLORER_CACHE_DIR"

// ConfigPath returns $XDG_CONFIG_HOME/listexplorer/config.json, falling back
// to ~/.config.
func ConfigPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.json")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", appName, "config.json")
	}
	return filepath.Join(home, ".config", appName, "config.json")
}

// DefaultCacheDir returns the per-user thumbnail directory.
func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, appName, "thumbnails")
}

// Load reads the config from ConfigPath.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config at path over the defaults. A missing file is
// not an error.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		var sc saveConfig
		if err := json.Unmarshal(data, &sc); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		if err := sc.applyTo(cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if dir := os.Getenv(EnvCacheDir); dir != "" {
		cfg.Cache.Dir = dir
	}
	cfg.Cache.Dir = ExpandPath(cfg.Cache.Dir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// applyTo overlays the fields present in the file onto cfg.
func (sc saveConfig) applyTo(cfg *Config) error {
	if sc.Cache.Dir != "" {
		cfg.Cache.Dir = sc.Cache.Dir
	}

	t, st := &cfg.Thumbnails, sc.Thumbnails
	if st.Workers != nil {
		t.Workers = *st.Workers
	}
	if st.Debounce != "" {
		d, err := time.ParseDuration(st.Debounce)
		if err != nil {
			return fmt.Errorf("thumbnails.debounce: %w", err)
		}
		t.Debounce = d
	}
	if st.IconSize != nil {
		t.IconSize = *st.IconSize
	}
	if st.MinIconSize != nil {
		t.MinIconSize = *st.MinIconSize
	}
	if st.MaxIconSize != nil {
		t.MaxIconSize = *st.MaxIconSize
	}
	if st.ZoomStep != nil {
		t.ZoomStep = *st.ZoomStep
	}
	if st.Filter != "" {
		t.Filter = st.Filter
	}
	if st.Dedupe != nil {
		t.Dedupe = *st.Dedupe
	}

	if sc.UI.ViewMode != "" {
		cfg.UI.ViewMode = sc.UI.ViewMode
	}
	if sc.UI.ShowPreview != nil {
		cfg.UI.ShowPreview = *sc.UI.ShowPreview
	}
	if sc.UI.ShowFooter != nil {
		cfg.UI.ShowFooter = *sc.UI.ShowFooter
	}
	if sc.UI.Theme != "" {
		cfg.UI.Theme = sc.UI.Theme
	}

	m := &cfg.Manifest
	if sc.Manifest.SQLiteTable != "" {
		m.SQLiteTable = sc.Manifest.SQLiteTable
	}
	if sc.Manifest.SQLitePathColumn != "" {
		m.SQLitePathColumn = sc.Manifest.SQLitePathColumn
	}
	if sc.Manifest.SQLiteSizeColumn != nil {
		m.SQLiteSizeColumn = *sc.Manifest.SQLiteSizeColumn
	}
	if sc.Manifest.Watch != nil {
		m.Watch = *sc.Manifest.Watch
	}

	for name, on := range sc.Features.Flags {
		cfg.Features.Flags[name] = on
	}
	return nil
}

// ExpandPath replaces a leading ~ with the home directory.
func ExpandPath(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
