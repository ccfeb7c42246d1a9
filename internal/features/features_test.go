package features

import (
	"sync"
	"testing"
)

func TestIsEnabled_Defaults(t *testing.T) {
	m := New(nil)
	for _, f := range ListAll() {
		if got := m.IsEnabled(f); got != f.Default {
			t.Errorf("%s = %v, want default %v", f.Name, got, f.Default)
		}
	}
	var nilManager *Manager
	if !nilManager.IsEnabled(Mouse) {
		t.Error("nil manager should report the default")
	}
}

func TestIsEnabled_ConfigThenOverride(t *testing.T) {
	flags := map[string]bool{"mouse": false}
	m := New(flags)
	flags["mouse"] = true // New copies
	if m.IsEnabled(Mouse) {
		t.Error("config value should disable mouse")
	}
	m.SetOverride("mouse", true)
	if !m.IsEnabled(Mouse) {
		t.Error("CLI override should take precedence over config")
	}
}

func TestParseOverride(t *testing.T) {
	m := New(nil)
	tests := []struct {
		in      string
		wantErr bool
		want    bool
	}{
		{"termimg_preview=false", false, false},
		{"termimg_preview", false, true},
		{"termimg_preview=0", false, false},
		{"termimg_preview=maybe", true, false},
		{"sparkles=true", true, false},
	}
	for _, tt := range tests {
		err := m.ParseOverride(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOverride(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && m.IsEnabled(TermimgPreview) != tt.want {
			t.Errorf("after %q termimg_preview = %v, want %v", tt.in, !tt.want, tt.want)
		}
	}
}

func TestList(t *testing.T) {
	m := New(map[string]bool{"fd_monitor": false})
	got := m.List()
	if len(got) != len(ListAll()) {
		t.Fatalf("List() has %d entries, want %d", len(got), len(ListAll()))
	}
	if got["fd_monitor"] || !got["mouse"] {
		t.Errorf("List() = %v", got)
	}
	if IsKnownFeature("tmux") || !IsKnownFeature("mouse") {
		t.Error("IsKnownFeature mismatch")
	}
}

func TestConcurrentAccess(t *testing.T) {
	m := New(nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			m.SetOverride("mouse", i%2 == 0)
		}(i)
		go func() {
			defer wg.Done()
			_ = m.IsEnabled(Mouse)
		}()
	}
	wg.Wait()
}
