package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// saveConfig is the JSON intermediary: durations are strings and pointer
// fields distinguish "absent" from the zero value.
type saveConfig struct {
	Cache      CacheConfig          `json:"cache"`
	Thumbnails saveThumbnailsConfig `json:"thumbnails"`
	UI         saveUIConfig         `json:"ui"`
	Manifest   saveManifestConfig   `json:"manifest"`
	Features   FeaturesConfig       `json:"features"`
}

type saveThumbnailsConfig struct {
	Workers     *int   `json:"workers,omitempty"`
	Debounce    string `json:"debounce,omitempty"`
	IconSize    *int   `json:"iconSize,omitempty"`
	MinIconSize *int   `json:"minIconSize,omitempty"`
	MaxIconSize *int   `json:"maxIconSize,omitempty"`
	ZoomStep    *int   `json:"zoomStep,omitempty"`
	Filter      string `json:"filter,omitempty"`
	Dedupe      *bool  `json:"dedupe,omitempty"`
}

type saveUIConfig struct {
	ViewMode    string `json:"viewMode,omitempty"`
	ShowPreview *bool  `json:"showPreview,omitempty"`
	ShowFooter  *bool  `json:"showFooter,omitempty"`
	Theme       string `json:"theme,omitempty"`
}

type saveManifestConfig struct {
	SQLiteTable      string  `json:"sqliteTable,omitempty"`
	SQLitePathColumn string  `json:"sqlitePathColumn,omitempty"`
	SQLiteSizeColumn *string `json:"sqliteSizeColumn,omitempty"`
	Watch            *bool   `json:"watch,omitempty"`
}

// toSaveConfig converts Config to the JSON-serializable format.
func toSaveConfig(cfg *Config) saveConfig {
	t := cfg.Thumbnails
	return saveConfig{
		Cache: cfg.Cache,
		Thumbnails: saveThumbnailsConfig{
			Workers:     &t.Workers,
			Debounce:    t.Debounce.String(),
			IconSize:    &t.IconSize,
			MinIconSize: &t.MinIconSize,
			MaxIconSize: &t.MaxIconSize,
			ZoomStep:    &t.ZoomStep,
			Filter:      t.Filter,
			Dedupe:      &t.Dedupe,
		},
		UI: saveUIConfig{
			ViewMode:    cfg.UI.ViewMode,
			ShowPreview: &cfg.UI.ShowPreview,
			ShowFooter:  &cfg.UI.ShowFooter,
			Theme:       cfg.UI.Theme,
		},
		Manifest: saveManifestConfig{
			SQLiteTable:      cfg.Manifest.SQLiteTable,
			SQLitePathColumn: cfg.Manifest.SQLitePathColumn,
			SQLiteSizeColumn: &cfg.Manifest.SQLiteSizeColumn,
			Watch:            &cfg.Manifest.Watch,
		},
		Features: cfg.Features,
	}
}

// Save writes the config to ConfigPath.
func Save(cfg *Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path.
func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(toSaveConfig(cfg), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SaveView updates only the icon size and view mode stored at path. Other
// fields in the file are written back as they were.
func SaveView(path string, iconSize int, viewMode string) error {
	var sc saveConfig
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &sc); err != nil {
			return err
		}
	}
	sc.Thumbnails.IconSize = &iconSize
	sc.UI.ViewMode = viewMode

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	out, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0644)
}
