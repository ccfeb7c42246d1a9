// Package preview renders thumbnails and source images as terminal text.
package preview

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/mosaic"

	"github.com/wilbur182/listexplorer/internal/cache"
	"github.com/wilbur182/listexplorer/internal/dispatch"
)

// MaxIconEntries bounds the rendered-icon cache.
const MaxIconEntries = 2048

// IconRenderer turns decoded thumbnails into fixed-size half-block strings.
type IconRenderer struct {
	cache *cache.Cache[string]
}

// NewIconRenderer creates a renderer caching up to maxEntries strings.
func NewIconRenderer(maxEntries int) *IconRenderer {
	if maxEntries <= 0 {
		maxEntries = MaxIconEntries
	}
	return &IconRenderer{cache: cache.New[string](maxEntries)}
}

// Render returns icon drawn into exactly rows lines of cols cells. A cached
// string is reused while the artifact's size and mtime are unchanged.
func (r *IconRenderer) Render(icon *dispatch.Icon, cols, rows int) string {
	if icon == nil || icon.Img == nil || cols <= 0 || rows <= 0 {
		return ""
	}
	key := cacheKey(icon.Key, cols, rows)
	if s, ok := r.cache.Get(key, icon.Bytes, icon.ModTime); ok {
		return s
	}

	m := mosaic.New().Width(cols).Height(rows)
	out := FitBlock(m.Render(icon.Img), cols, rows)
	r.cache.Set(key, out, icon.Bytes, icon.ModTime)
	return out
}

// Len returns the number of cached renders.
func (r *IconRenderer) Len() int { return r.cache.Len() }

// HitRatio reports how often Render was served from the cache.
func (r *IconRenderer) HitRatio() float64 { return r.cache.HitRatio() }

// Purge drops every cached render, e.g. after a zoom when no cached box can
// be asked for again.
func (r *IconRenderer) Purge() { r.cache.Purge() }

// cacheKey hashes the artifact key with the cell box.
func cacheKey(artifactKey string, cols, rows int) string {
	h := xxhash.New()
	h.WriteString(artifactKey)
	h.Write([]byte{byte(cols >> 8), byte(cols), byte(rows >> 8), byte(rows)})
	return strconv.FormatUint(h.Sum64(), 16)
}

// FitBlock pads or truncates s to exactly rows lines of cols cells,
// preserving ANSI styling.
func FitBlock(s string, cols, rows int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > rows {
		lines = lines[:rows]
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}
	for i, line := range lines {
		if ansi.StringWidth(line) > cols {
			line = ansi.Truncate(line, cols, "")
		}
		if pad := cols - ansi.StringWidth(line); pad > 0 {
			line += strings.Repeat(" ", pad)
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}
