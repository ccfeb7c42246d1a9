// Package dispatch carries worker completions back onto the bubbletea event
// loop and applies them to the items still on screen.
//
// OnReady runs on the event loop and does no I/O itself: it returns a
// tea.Cmd that loads and decodes the artifact on a bubbletea goroutine. The
// resulting IconLoadedMsg comes back through Update, where Apply mutates
// the Registry. Both steps re-check the active size, so a completion for a
// size the user has zoomed away from, or for a path no longer listed, is
// dropped without error. Applying the same completion twice is harmless.
package dispatch

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"io/fs"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wilbur182/listexplorer/internal/thumbkey"
	"github.com/wilbur182/listexplorer/internal/worker"
)

// Icon is a decoded thumbnail ready to render.
type Icon struct {
	Key     string
	Size    int
	Img     image.Image
	ModTime time.Time
	Bytes   int64
}

// IconLoadedMsg delivers a decoded icon to the event loop.
type IconLoadedMsg struct {
	SourcePath string
	Size       int
	Icon       *Icon
	Err        error
}

// Store is the read side of the thumbnail store.
type Store interface {
	Exists(key string) bool
	Read(key string) ([]byte, error)
	Stat(key string) (fs.FileInfo, error)
}

// Dispatcher turns completion events into icon loads.
type Dispatcher struct {
	store  Store
	logger *slog.Logger
}

// New creates a Dispatcher.
func New(store Store, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dispatcher{store: store, logger: logger}
}

// OnReady returns a command loading the icon for ev, or nil when no
// registered item shows ev.SourcePath or ev.Size is not the active size.
func (d *Dispatcher) OnReady(ev worker.Ready, reg *Registry, activeSize int) tea.Cmd {
	if ev.Size != activeSize || len(reg.Lookup(ev.SourcePath)) == 0 {
		return nil
	}
	key := ev.Key
	if key == "" {
		key = thumbkey.ForSource(ev.SourcePath, ev.Size)
	}
	return d.loadCmd(ev.SourcePath, ev.Size, key)
}

// Load returns a command that loads an already cached icon, used to seed
// items the scheduler found cached.
func (d *Dispatcher) Load(sourcePath string, size int) tea.Cmd {
	return d.loadCmd(sourcePath, size, thumbkey.ForSource(sourcePath, size))
}

func (d *Dispatcher) loadCmd(sourcePath string, size int, key string) tea.Cmd {
	return func() tea.Msg {
		icon, err := d.LoadIcon(key, size)
		if err != nil {
			d.logger.Debug("icon load failed", "path", sourcePath, "size", size, "key", key, "error", err)
		}
		return IconLoadedMsg{SourcePath: sourcePath, Size: size, Icon: icon, Err: err}
	}
}

// LoadIcon reads and decodes the artifact for key. It performs disk I/O and
// must not run on the event loop.
func (d *Dispatcher) LoadIcon(key string, size int) (*Icon, error) {
	info, err := d.store.Stat(key)
	if err != nil {
		return nil, err
	}
	data, err := d.store.Read(key)
	if err != nil {
		return nil, err
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode artifact %s: %w", key, err)
	}
	return &Icon{
		Key:     key,
		Size:    size,
		Img:     img,
		ModTime: info.ModTime(),
		Bytes:   info.Size(),
	}, nil
}

// Apply sets msg's icon on every matching item, provided msg.Size is still
// the active size. It returns the number of items updated.
func (d *Dispatcher) Apply(msg IconLoadedMsg, reg *Registry, activeSize int) int {
	if msg.Err != nil || msg.Icon == nil || msg.Size != activeSize {
		return 0
	}
	n := 0
	for _, it := range reg.Lookup(msg.SourcePath) {
		if it.Icon != nil && it.Icon.Key == msg.Icon.Key && it.Icon.ModTime.Equal(msg.Icon.ModTime) {
			continue
		}
		it.Icon = msg.Icon
		n++
	}
	return n
}
