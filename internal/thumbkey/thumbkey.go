// Package thumbkey derives the cache key that names a thumbnail on disk.
package thumbkey

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"golang.org/x/text/unicode/norm"

	"github.com/wilbur182/listexplorer/internal/pathnorm"
)

// Len is the length of every key returned by Key.
const Len = sha256.Size * 2

// Key returns the cache key for a normalized source path at a target size.
// The path is folded to NFC first so NFD and NFC spellings of the same name
// (macOS vs everything else) land on one artifact.
func Key(normalizedPath string, size int) string {
	h := sha256.New()
	h.Write([]byte(norm.NFC.String(normalizedPath)))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(size)))
	return hex.EncodeToString(h.Sum(nil))
}

// ForSource normalizes a raw listing path for the running host and returns
// its key.
func ForSource(sourcePath string, size int) string {
	return Key(pathnorm.Normalize(sourcePath), size)
}

// FileName returns the artifact file name for key with the given extension.
func FileName(key, ext string) string {
	return key + "." + ext
}

// Valid reports whether s looks like a key produced by Key.
func Valid(s string) bool {
	if len(s) != Len {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f') {
			return false
		}
	}
	return true
}
