// Package fdmonitor watches the process's open file descriptor count.
// Workers open a source and a temp artifact per request, so a leak shows up
// here long before open fails with EMFILE.
package fdmonitor

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultWarningThreshold is the FD count that triggers a warning.
	DefaultWarningThreshold = 200
	// DefaultCriticalThreshold is the FD count that triggers a critical warning.
	DefaultCriticalThreshold = 500
	// MinCheckInterval rate-limits Check.
	MinCheckInterval = 10 * time.Second
)

// Monitor rate-limits FD checks and logs when thresholds are crossed.
// It is safe for concurrent use.
type Monitor struct {
	Warning  int
	Critical int
	Interval time.Duration

	cacheDir string
	count    func() int
	now      func() time.Time

	mu        sync.Mutex
	lastCheck time.Time
	lastCount int
}

// New creates a Monitor with the default thresholds. cacheDir lets the
// breakdown tell thumbnail files apart from other files.
func New(cacheDir string) *Monitor {
	return &Monitor{
		Warning:  DefaultWarningThreshold,
		Critical: DefaultCriticalThreshold,
		Interval: MinCheckInterval,
		cacheDir: cacheDir,
		count:    Count,
		now:      time.Now,
	}
}

// Count returns the number of open file descriptors, or -1 where that
// cannot be read.
func Count() int {
	dir := fdDir()
	if dir == "" {
		return -1
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return -1
	}
	return len(entries)
}

func fdDir() string {
	switch runtime.GOOS {
	case "darwin":
		return "/dev/fd"
	case "linux":
		return fmt.Sprintf("/proc/%d/fd", os.Getpid())
	}
	return ""
}

// Check samples the FD count at most once per Interval and logs a warning
// above the thresholds. It returns the last sampled count and whether this
// call warned.
func (m *Monitor) Check(logger *slog.Logger) (count int, warned bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if !m.lastCheck.IsZero() && now.Sub(m.lastCheck) < m.Interval {
		return m.lastCount, false
	}
	count = m.count()
	if count < 0 {
		return count, false
	}
	m.lastCheck = now
	m.lastCount = count

	msg, threshold := "high FD count", m.Warning
	switch {
	case count >= m.Critical:
		msg, threshold = "critical FD count", m.Critical
	case count < m.Warning:
		return count, false
	}
	if logger != nil {
		logger.Warn(msg, "count", count, "threshold", threshold)
		logger.Debug("FD breakdown", "open", m.Breakdown())
	}
	return count, true
}

// Breakdown categorizes the open descriptors. Unsupported platforms return
// an empty map.
func (m *Monitor) Breakdown() map[string]int {
	info := make(map[string]int)
	dir := fdDir()
	if dir == "" {
		return info
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return info
	}
	for _, e := range entries {
		target, err := os.Readlink(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		info[m.category(target)]++
	}
	return info
}

func (m *Monitor) category(target string) string {
	switch {
	case strings.Contains(target, "pipe"):
		return "pipe"
	case strings.HasPrefix(target, "socket") || strings.HasPrefix(target, "["):
		return "socket"
	case m.cacheDir != "" && strings.HasPrefix(target, m.cacheDir+string(filepath.Separator)):
		return "thumbnail"
	}
	switch strings.ToLower(filepath.Ext(target)) {
	case ".db", ".sqlite", ".sqlite3", ".csv", ".tsv":
		return "manifest"
	case ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp", ".tif", ".tiff":
		return "image"
	}
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		return "directory"
	}
	return "file"
}
