// Package listing loads file manifests into ordered entries.
package listing

import (
	"path/filepath"
	"strings"
)

// Kind classifies an entry by extension.
type Kind int

const (
	KindOther Kind = iota
	KindImage
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	}
	return "other"
}

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".bmp": true, ".gif": true,
	".webp": true, ".tif": true, ".tiff": true,
}

var videoExts = map[string]bool{
	".mp4": true, ".avi": true, ".mov": true, ".mkv": true, ".wmv": true,
}

// Classify returns the Kind for a file extension such as ".PNG".
func Classify(ext string) Kind {
	ext = strings.ToLower(ext)
	switch {
	case imageExts[ext]:
		return KindImage
	case videoExts[ext]:
		return KindVideo
	}
	return KindOther
}

// Entry is one manifest row.
type Entry struct {
	Index        int
	Path         string
	DeclaredSize string // as written in the manifest, may be empty
	Name         string
	Ext          string // lower-case, with leading dot
	Kind         Kind
}

// NewEntry builds an Entry from a raw manifest path.
func NewEntry(index int, path, size string) Entry {
	name := baseName(path)
	ext := strings.ToLower(filepath.Ext(name))
	return Entry{
		Index:        index,
		Path:         path,
		DeclaredSize: strings.TrimSpace(size),
		Name:         name,
		Ext:          ext,
		Kind:         Classify(ext),
	}
}

// IsImage reports whether the entry is eligible for a thumbnail.
func (e Entry) IsImage() bool { return e.Kind == KindImage }

// baseName splits on either separator; manifests mix windows and posix
// spellings regardless of the host.
func baseName(p string) string {
	p = strings.TrimRight(p, `/\`)
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}
