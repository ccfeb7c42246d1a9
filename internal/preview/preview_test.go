package preview

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/wilbur182/listexplorer/internal/dispatch"
	"github.com/wilbur182/listexplorer/internal/listing"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 4), uint8(y * 4), 200, 255})
		}
	}
	return img
}

func checkBlock(t *testing.T, s string, cols, rows int) {
	t.Helper()
	lines := strings.Split(s, "\n")
	if len(lines) != rows {
		t.Fatalf("block has %d lines, want %d", len(lines), rows)
	}
	for i, l := range lines {
		if w := ansi.StringWidth(l); w != cols {
			t.Errorf("line %d width = %d, want %d", i, w, cols)
		}
	}
}

func TestFitBlock(t *testing.T) {
	checkBlock(t, FitBlock("ab\ncdefgh\n", 4, 3), 4, 3)
	checkBlock(t, FitBlock("\x1b[31mred text here\x1b[0m\nx\ny\nz", 5, 2), 5, 2)
	if got := FitBlock("abc", 3, 1); got != "abc" {
		t.Errorf("FitBlock() = %q, want abc", got)
	}
}

func TestIconRenderer_CachesByMetadata(t *testing.T) {
	r := NewIconRenderer(8)
	icon := &dispatch.Icon{Key: "k1", Size: 64, Img: testImage(64, 48), ModTime: time.Unix(100, 0), Bytes: 900}

	first := r.Render(icon, 8, 4)
	checkBlock(t, first, 8, 4)
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}
	if again := r.Render(icon, 8, 4); again != first {
		t.Error("cached render differs")
	}

	r.Render(icon, 6, 3)
	if r.Len() != 2 {
		t.Errorf("Len() = %d after a new box, want 2", r.Len())
	}

	if r.Render(nil, 8, 4) != "" || r.Render(icon, 0, 4) != "" {
		t.Error("Render() should return empty for nil icon or empty box")
	}
}

func TestCacheKey_DistinguishesBoxes(t *testing.T) {
	if cacheKey("k", 8, 4) == cacheKey("k", 4, 8) {
		t.Error("cacheKey() aliases transposed boxes")
	}
	if cacheKey("k", 8, 4) != cacheKey("k", 8, 4) {
		t.Error("cacheKey() not deterministic")
	}
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, testImage(40, 20)); err != nil {
		t.Fatal(err)
	}
}

func TestRender_Messages(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(corrupt, []byte("nope"), 0644); err != nil {
		t.Fatal(err)
	}
	video := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(video, []byte("0123456789"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path string
		want string
	}{
		{filepath.Join(dir, "gone.jpg"), MsgImageNotFound},
		{corrupt, MsgCannotLoad},
		{filepath.Join(dir, "gone.mkv"), MsgVideoNotFound},
		{filepath.Join(dir, "notes.txt"), MsgNoPreview},
		{video, ""},
	}
	for _, tt := range tests {
		res := Renderer{Termimg: true}.Render(listing.NewEntry(0, tt.path, ""), 20, 10)
		if res.Message != tt.want {
			t.Errorf("%s: Message = %q, want %q", filepath.Base(tt.path), res.Message, tt.want)
		}
	}
}

func TestLoad_Image(t *testing.T) {
	src := filepath.Join(t.TempDir(), "pic.png")
	writePNG(t, src)

	msg, ok := Renderer{}.Load(listing.NewEntry(0, src, ""), 7, 20, 8)().(LoadedMsg)
	if !ok {
		t.Fatal("Load() did not return LoadedMsg")
	}
	if msg.Epoch != 7 || msg.Path != src {
		t.Errorf("LoadedMsg = {Epoch:%d Path:%q}", msg.Epoch, msg.Path)
	}
	res := msg.Result
	if res.Err != nil || res.Message != "" {
		t.Fatalf("Render() failed: %v %q", res.Err, res.Message)
	}
	if res.Width != 40 || res.Height != 20 {
		t.Errorf("source dims = %d×%d, want 40×20", res.Width, res.Height)
	}
	checkBlock(t, res.Content, 20, 8)
}

func TestDraw_MosaicFallback(t *testing.T) {
	out := Renderer{}.draw(testImage(32, 16), 8, 4)
	if strings.TrimSpace(ansi.Strip(out)) == "" {
		t.Fatal("draw() without termimg returned an empty render")
	}
}

func TestIconRenderer_PurgeAndHitRatio(t *testing.T) {
	r := NewIconRenderer(8)
	icon := &dispatch.Icon{Key: "k1", Size: 64, Img: testImage(64, 48), ModTime: time.Unix(100, 0), Bytes: 900}

	r.Render(icon, 8, 4)
	r.Render(icon, 8, 4)
	if got := r.HitRatio(); got != 0.5 {
		t.Errorf("HitRatio() = %v, want 0.5", got)
	}
	r.Purge()
	if r.Len() != 0 {
		t.Errorf("Len() after Purge = %d, want 0", r.Len())
	}
}
