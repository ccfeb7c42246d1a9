package config

import (
	"fmt"
	"time"

	"github.com/wilbur182/listexplorer/internal/thumbgen"
)

// View modes accepted by UIConfig.ViewMode.
const (
	ViewList  = "list"
	ViewTiles = "tiles"
)

// Config is the root configuration structure.
type Config struct {
	Cache      CacheConfig      `json:"cache"`
	Thumbnails ThumbnailsConfig `json:"thumbnails"`
	UI         UIConfig         `json:"ui"`
	Manifest   ManifestConfig   `json:"manifest"`
	Features   FeaturesConfig   `json:"features"`
}

// CacheConfig locates the thumbnail store.
type CacheConfig struct {
	Dir string `json:"dir"` // supports ~ expansion
}

// ThumbnailsConfig tunes generation and scheduling.
type ThumbnailsConfig struct {
	Workers     int           `json:"workers"`
	Debounce    time.Duration `json:"debounce"`
	IconSize    int           `json:"iconSize"`
	MinIconSize int           `json:"minIconSize"`
	MaxIconSize int           `json:"maxIconSize"`
	ZoomStep    int           `json:"zoomStep"`
	Filter      string        `json:"filter"`
	// Dedupe shares one generation between concurrent requests for the
	// same key. Off, duplicate queue entries each decode the source.
	Dedupe bool `json:"dedupe"`
}

// UIConfig configures the browser.
type UIConfig struct {
	ViewMode    string `json:"viewMode"`
	ShowPreview bool   `json:"showPreview"`
	ShowFooter  bool   `json:"showFooter"`
	Theme       string `json:"theme"`
}

// FeaturesConfig holds feature flag values by name.
type FeaturesConfig struct {
	Flags map[string]bool `json:"flags"`
}

// ManifestConfig configures manifest loading.
type ManifestConfig struct {
	SQLiteTable      string `json:"sqliteTable"`
	SQLitePathColumn string `json:"sqlitePathColumn"`
	SQLiteSizeColumn string `json:"sqliteSizeColumn"`
	Watch            bool   `json:"watch"`
}

const (
	defaultWorkers     = 2
	maxWorkers         = 64
	defaultDebounce    = 150 * time.Millisecond
	defaultIconSize    = 64
	defaultMinIconSize = 32
	defaultMaxIconSize = 192
	defaultZoomStep    = 8
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			Dir: DefaultCacheDir(),
		},
		Thumbnails: ThumbnailsConfig{
			Workers:     defaultWorkers,
			Debounce:    defaultDebounce,
			IconSize:    defaultIconSize,
			MinIconSize: defaultMinIconSize,
			MaxIconSize: defaultMaxIconSize,
			ZoomStep:    defaultZoomStep,
			Filter:      string(thumbgen.FilterCatmullRom),
			Dedupe:      true,
		},
		UI: UIConfig{
			ViewMode:    ViewList,
			ShowPreview: true,
			ShowFooter:  true,
			Theme:       "default",
		},
		Manifest: ManifestConfig{
			SQLiteTable:      "files",
			SQLitePathColumn: "path",
			SQLiteSizeColumn: "size",
			Watch:            true,
		},
		Features: FeaturesConfig{Flags: make(map[string]bool)},
	}
}

// Validate clamps out-of-range values back to defaults. It fails only for
// values that have no sensible fallback.
func (c *Config) Validate() error {
	t := &c.Thumbnails
	if t.Workers <= 0 || t.Workers > maxWorkers {
		t.Workers = defaultWorkers
	}
	if t.Debounce <= 0 {
		t.Debounce = defaultDebounce
	}
	if t.MinIconSize <= 0 {
		t.MinIconSize = defaultMinIconSize
	}
	if t.MaxIconSize < t.MinIconSize {
		t.MinIconSize, t.MaxIconSize = defaultMinIconSize, defaultMaxIconSize
	}
	if t.ZoomStep <= 0 {
		t.ZoomStep = defaultZoomStep
	}
	t.IconSize = ClampSize(t.IconSize, t.MinIconSize, t.MaxIconSize)

	f, err := thumbgen.ParseFilter(t.Filter)
	if err != nil {
		return err
	}
	t.Filter = string(f)

	switch c.UI.ViewMode {
	case "":
		c.UI.ViewMode = ViewList
	case ViewList, ViewTiles:
	default:
		return fmt.Errorf("unknown view mode %q", c.UI.ViewMode)
	}

	if c.UI.Theme == "" {
		c.UI.Theme = "default"
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = DefaultCacheDir()
	}
	if c.Features.Flags == nil {
		c.Features.Flags = make(map[string]bool)
	}
	if c.Manifest.SQLiteTable == "" {
		c.Manifest.SQLiteTable = "files"
	}
	if c.Manifest.SQLitePathColumn == "" {
		c.Manifest.SQLitePathColumn = "path"
	}
	return nil
}

// ClampSize bounds an icon size; a zero size selects the default.
func ClampSize(n, lo, hi int) int {
	if n == 0 {
		n = defaultIconSize
	}
	return max(lo, min(hi, n))
}
