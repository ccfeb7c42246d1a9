// Package version resolves the build's version string.
package version

import (
	"runtime/debug"
	"strings"
)

// Resolve returns v when the linker set it, otherwise the module version or
// VCS revision from the embedded build info.
func Resolve(v string) string {
	if v != "" {
		return v
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	return fromBuildInfo(info)
}

func fromBuildInfo(info *debug.BuildInfo) string {
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return "devel"
	}
	ver := "devel+" + shortRevision(revision)
	if dirty {
		ver += "+dirty"
	}
	return ver
}

// IsDevelopment reports whether v is not a tagged release.
func IsDevelopment(v string) bool {
	return v == "" || v == "unknown" || v == "devel" || strings.HasPrefix(v, "devel+")
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
