// Package features resolves feature flags from CLI overrides, the config
// file and compiled-in defaults, in that order.
package features

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Feature is a known flag with its default value.
type Feature struct {
	Name        string
	Default     bool
	Description string
}

// Known feature flags.
var (
	TermimgPreview = Feature{
		Name:        "termimg_preview",
		Default:     true,
		Description: "Render the preview pane with go-termimg before falling back to mosaic",
	}
	Mouse = Feature{
		Name:        "mouse",
		Default:     true,
		Description: "Capture mouse clicks and wheel events",
	}
	FDMonitor = Feature{
		Name:        "fd_monitor",
		Default:     true,
		Description: "Warn when thumbnail workers hold too many open files",
	}
)

var allFeatures = []Feature{TermimgPreview, Mouse, FDMonitor}

var defaultValues = buildDefaultMap()

func buildDefaultMap() map[string]bool {
	m := make(map[string]bool, len(allFeatures))
	for _, f := range allFeatures {
		m[f.Name] = f.Default
	}
	return m
}

// IsKnownFeature reports whether name is registered.
func IsKnownFeature(name string) bool {
	_, ok := defaultValues[name]
	return ok
}

// ListAll returns a copy of every known feature.
func ListAll() []Feature {
	out := make([]Feature, len(allFeatures))
	copy(out, allFeatures)
	return out
}

// Manager holds config values and CLI overrides.
type Manager struct {
	mu        sync.RWMutex
	flags     map[string]bool // from config
	overrides map[string]bool // from the command line
}

// New creates a Manager over the config file's flags. The map is copied.
func New(flags map[string]bool) *Manager {
	m := &Manager{
		flags:     make(map[string]bool, len(flags)),
		overrides: make(map[string]bool),
	}
	for k, v := range flags {
		m.flags[k] = v
	}
	return m
}

// SetOverride forces a feature on or off.
func (m *Manager) SetOverride(name string, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[name] = enabled
}

// ParseOverride applies a "name" or "name=bool" command-line value.
func (m *Manager) ParseOverride(s string) error {
	name, val, hasVal := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !IsKnownFeature(name) {
		return fmt.Errorf("unknown feature %q (known: %s)", name, strings.Join(names(), ", "))
	}
	enabled := true
	if hasVal {
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			return fmt.Errorf("feature %s: %w", name, err)
		}
		enabled = b
	}
	m.SetOverride(name, enabled)
	return nil
}

// IsEnabled reports whether f is on. A nil Manager reports the default.
func (m *Manager) IsEnabled(f Feature) bool {
	if m == nil {
		return f.Default
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabledLocked(f.Name)
}

func (m *Manager) enabledLocked(name string) bool {
	if v, ok := m.overrides[name]; ok {
		return v
	}
	if v, ok := m.flags[name]; ok {
		return v
	}
	return defaultValues[name]
}

// List returns every known feature's current state.
func (m *Manager) List() map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]bool, len(allFeatures))
	for _, f := range allFeatures {
		out[f.Name] = m.enabledLocked(f.Name)
	}
	return out
}

func names() []string {
	out := make([]string, 0, len(allFeatures))
	for _, f := range allFeatures {
		out = append(out, f.Name)
	}
	sort.Strings(out)
	return out
}
