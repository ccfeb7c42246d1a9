package preview

import (
	"errors"
	"image"
	"io/fs"
	"os"
	"time"

	"github.com/blacktop/go-termimg"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/mosaic"

	"github.com/wilbur182/listexplorer/internal/listing"
	"github.com/wilbur182/listexplorer/internal/pathnorm"
	"github.com/wilbur182/listexplorer/internal/thumbgen"
)

// Pane messages shown instead of an image.
const (
	MsgImageNotFound = "Image file not found."
	MsgCannotLoad    = "Cannot load image."
	MsgVideoNotFound = "Video file not found."
	MsgNoPreview     = "No preview available for this file type."
)

// Result is the loaded preview for one entry.
type Result struct {
	Kind     listing.Kind
	Content  string // rendered image, empty when Message is set
	Message  string
	Width    int // source image dimensions
	Height   int
	FileSize int64
	ModTime  time.Time
	Err      error
}

// LoadedMsg carries a preview back to the event loop.
type LoadedMsg struct {
	Epoch  uint64 // selection epoch when the load was issued
	Path   string
	Result Result
}

// Renderer draws source images for the preview pane.
type Renderer struct {
	// Termimg tries go-termimg before the mosaic renderer.
	Termimg bool
}

// Load returns a command rendering entry into a cols×rows cell box off the
// event loop. Callers drop results whose Epoch is stale.
func (p Renderer) Load(entry listing.Entry, epoch uint64, cols, rows int) tea.Cmd {
	return func() tea.Msg {
		return LoadedMsg{Epoch: epoch, Path: entry.Path, Result: p.Render(entry, cols, rows)}
	}
}

// Render builds the preview synchronously.
func (p Renderer) Render(entry listing.Entry, cols, rows int) Result {
	res := Result{Kind: entry.Kind}
	if entry.Kind == listing.KindOther {
		res.Message = MsgNoPreview
		return res
	}

	path := pathnorm.Normalize(entry.Path)
	info, err := os.Stat(path)
	if err != nil {
		res.Err = err
		res.Message = MsgImageNotFound
		if entry.Kind == listing.KindVideo {
			res.Message = MsgVideoNotFound
		}
		if !errors.Is(err, fs.ErrNotExist) {
			res.Message = MsgCannotLoad
		}
		return res
	}
	res.FileSize = info.Size()
	res.ModTime = info.ModTime()

	if entry.Kind == listing.KindVideo {
		// Playback is not supported; the pane shows file details only.
		return res
	}

	img, err := thumbgen.Decode(path)
	if err != nil {
		res.Err = err
		res.Message = MsgCannotLoad
		return res
	}
	b := img.Bounds()
	res.Width, res.Height = b.Dx(), b.Dy()

	if cols <= 0 || rows <= 0 {
		return res
	}
	// Half blocks carry two pixel rows per cell.
	img = thumbgen.Generator{}.Scale(img, max(cols, rows*2))

	res.Content = FitBlock(p.draw(img, cols, rows), cols, rows)
	return res
}

func (p Renderer) draw(img image.Image, cols, rows int) string {
	if p.Termimg {
		out, err := termimg.New(img).Width(cols).Height(rows).Protocol(termimg.Halfblocks).Render()
		if err == nil && out != "" {
			return out
		}
	}
	m := mosaic.New().Width(cols).Height(rows)
	return m.Render(img)
}
