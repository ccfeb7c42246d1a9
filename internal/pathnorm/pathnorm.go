// Package pathnorm converts the path spellings found in manifests into one
// canonical host-native form. Manifests are often produced on a different
// machine than the one browsing them (a WSL shell writing /mnt/c/... paths
// that a Windows build has to open), so every path goes through Normalize
// before it is hashed into a cache key or opened.
package pathnorm

import (
	"path"
	"runtime"
	"strings"
)

// Normalize returns the canonical form of p for the running host.
func Normalize(p string) string {
	return NormalizeFor(runtime.GOOS, p)
}

// NormalizeFor returns the canonical form of p for the given GOOS.
// It never fails: input that matches no foreign pattern is only cleaned.
func NormalizeFor(goos, p string) string {
	if p == "" {
		return ""
	}
	if goos == "windows" {
		return normalizeWindows(p)
	}
	return path.Clean(p)
}

func normalizeWindows(p string) string {
	s := strings.ReplaceAll(p, `\`, "/")

	// UNC shares keep their double leading separator.
	if strings.HasPrefix(s, "//") && !strings.HasPrefix(s, "///") {
		rest := path.Clean("/" + strings.TrimLeft(s, "/"))
		return `\` + toBackslash(rest)
	}

	// Dot segments go first so /../c/x and /c/x name the same drive.
	if !hasDrive(s) {
		s = path.Clean(s)
		if drive, rest, ok := foreignDrive(s); ok {
			s = drive + ":/" + rest
		}
	}

	if hasDrive(s) {
		vol, tail := strings.ToUpper(s[:1])+":", s[2:]
		if tail == "" {
			// A bare drive names the drive root.
			tail = "/"
		} else {
			tail = path.Clean(tail)
		}
		return toBackslash(vol + tail)
	}
	return toBackslash(s)
}

func hasDrive(s string) bool {
	return len(s) >= 2 && s[1] == ':' && isLetter(s[0])
}

// foreignDrive recognizes /mnt/<d>/... (WSL) and /<d>/... (MSYS, Git Bash)
// and returns the drive letter and the remainder.
func foreignDrive(s string) (drive, rest string, ok bool) {
	if after, found := strings.CutPrefix(s, "/mnt/"); found {
		if len(after) >= 1 && isLetter(after[0]) && (len(after) == 1 || after[1] == '/') {
			return strings.ToUpper(after[:1]), strings.TrimPrefix(after[1:], "/"), true
		}
		return "", "", false
	}
	if !strings.HasPrefix(s, "/") {
		return "", "", false
	}
	parts := strings.Split(strings.Trim(s, "/"), "/")
	if len(parts) > 1 && len(parts[0]) == 1 && isLetter(parts[0][0]) {
		return strings.ToUpper(parts[0]), strings.Join(parts[1:], "/"), true
	}
	return "", "", false
}

func toBackslash(s string) string {
	return strings.ReplaceAll(s, "/", `\`)
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
