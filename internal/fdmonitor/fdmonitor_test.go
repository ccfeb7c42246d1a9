package fdmonitor

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestCount(t *testing.T) {
	count := Count()
	// Sandboxes may hide the fd directory; -1 is acceptable there.
	t.Logf("Current FD count: %d", count)
}

func newTestMonitor(counts ...int) (*Monitor, *time.Time) {
	now := time.Unix(1000, 0)
	m := New("/cache")
	i := 0
	m.count = func() int {
		c := counts[min(i, len(counts)-1)]
		i++
		return c
	}
	m.now = func() time.Time { return now }
	return m, &now
}

func TestCheck_Thresholds(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	m, now := newTestMonitor(50, 250, 600)
	if _, warned := m.Check(logger); warned {
		t.Error("warned below threshold")
	}

	*now = now.Add(MinCheckInterval)
	if count, warned := m.Check(logger); !warned || count != 250 {
		t.Errorf("Check() = %d, %v; want 250, true", count, warned)
	}
	if !strings.Contains(buf.String(), "high FD count") {
		t.Errorf("warning not logged: %s", buf.String())
	}

	*now = now.Add(MinCheckInterval)
	if _, warned := m.Check(logger); !warned || !strings.Contains(buf.String(), "critical FD count") {
		t.Error("critical count not reported")
	}
}

func TestCheck_RateLimited(t *testing.T) {
	m, now := newTestMonitor(10, 900)
	m.Check(nil)

	*now = now.Add(time.Second)
	if count, warned := m.Check(nil); count != 10 || warned {
		t.Errorf("Check() within interval = %d, %v; want cached 10, false", count, warned)
	}
}

func TestCheck_Unsupported(t *testing.T) {
	m, _ := newTestMonitor(-1)
	if count, warned := m.Check(nil); count != -1 || warned {
		t.Errorf("Check() = %d, %v", count, warned)
	}
}

func TestCategory(t *testing.T) {
	m := New(filepath.FromSlash("/cache"))
	tests := map[string]string{
		"pipe:[1234]":                        "pipe",
		"socket:[99]":                        "socket",
		filepath.FromSlash("/cache/ab.png"):  "thumbnail",
		filepath.FromSlash("/data/list.db"):  "manifest",
		filepath.FromSlash("/pics/cat.JPG"):  "image",
		filepath.FromSlash("/nowhere/x.bin"): "file",
	}
	for target, want := range tests {
		if got := m.category(target); got != want {
			t.Errorf("category(%q) = %q, want %q", target, got, want)
		}
	}
}

func TestBreakdown(t *testing.T) {
	info := New(t.TempDir()).Breakdown()
	t.Logf("FD breakdown: %v", info)
}
