// Package browser is the bubbletea front end: a list or tile view over a
// manifest with thumbnail icons and a preview pane.
//
// The Model is the only code that mutates the item registry and the view
// state. Thumbnail work happens in the thumbs controller; its completions
// and debounced pass requests arrive here as messages.
package browser

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wilbur182/listexplorer/internal/config"
	"github.com/wilbur182/listexplorer/internal/dispatch"
	"github.com/wilbur182/listexplorer/internal/keymap"
	"github.com/wilbur182/listexplorer/internal/listing"
	"github.com/wilbur182/listexplorer/internal/mouse"
	"github.com/wilbur182/listexplorer/internal/preview"
	"github.com/wilbur182/listexplorer/internal/styles"
	"github.com/wilbur182/listexplorer/internal/thumbs"
	"github.com/wilbur182/listexplorer/internal/worker"
)

const (
	headerLines     = 1
	footerLines     = 2
	minPreviewWidth = 60 // terminal width below which the preview is hidden
	statusDuration  = 2 * time.Second
)

// Options configures a Model.
type Options struct {
	ManifestPath string
	Entries      []listing.Entry
	SQLite       listing.SQLiteOptions

	Config     *config.Config
	ConfigPath string // view settings are saved here on quit; empty disables

	Thumbs  *thumbs.Controller
	Watcher *listing.Watcher // optional
	Preview preview.Renderer
	Logger  *slog.Logger
}

type (
	manifestChangedMsg struct{}
	manifestLoadedMsg  struct {
		entries []listing.Entry
		err     error
	}
	statusClearMsg struct{ seq int }
)

// Model is the browser's bubbletea model.
type Model struct {
	cfg        *config.Config
	configPath string
	manifest   string
	sqlite     listing.SQLiteOptions
	thumbs     *thumbs.Controller
	watcher    *listing.Watcher
	logger     *slog.Logger

	keys  keymap.KeyMap
	help  help.Model
	input textinput.Model
	spin  spinner.Model
	mouse *mouse.Handler
	icons *preview.IconRenderer
	pane  preview.Renderer

	reg    *dispatch.Registry
	lay    layout
	cursor int // position in lay.view

	query     string
	filtering bool
	spinning  bool
	sized     bool

	showPreview  bool
	previewEpoch uint64
	previewPath  string
	previewRes   preview.Result
	previewReady bool

	width, height int
	status        string
	statusErr     bool
	statusSeq     int
	quitting      bool
}

// New builds a Model over opts.Entries.
func New(opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	input := textinput.New()
	input.Prompt = "/"
	input.PromptStyle = styles.FilterPrompt
	input.Placeholder = "filter by name"

	m := &Model{
		cfg:         cfg,
		configPath:  opts.ConfigPath,
		manifest:    opts.ManifestPath,
		sqlite:      opts.SQLite,
		thumbs:      opts.Thumbs,
		watcher:     opts.Watcher,
		logger:      logger,
		keys:        keymap.Default(),
		help:        help.New(),
		input:       input,
		spin:        spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(styles.StatusOK)),
		mouse:       mouse.NewHandler(),
		icons:       preview.NewIconRenderer(preview.MaxIconEntries),
		pane:        opts.Preview,
		reg:         dispatch.NewRegistry(),
		showPreview: cfg.UI.ShowPreview,
	}
	m.reg.Reset(opts.Entries)
	m.lay = layout{reg: m.reg, mode: cfg.UI.ViewMode}
	m.lay.view = filterView(m.reg, "")
	m.lay.setSize(m.thumbs.Size())
	return m
}

// Init starts listening for worker completions, pass requests and manifest
// changes.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.thumbs.WaitReady(), m.thumbs.WaitPass(), m.listenManifest())
}

// Update handles one message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()
		if !m.sized {
			// First layout: seed cached icons and queue missing ones now.
			m.sized = true
			return m, tea.Batch(m.runPass(), m.loadPreview())
		}
		m.thumbs.RequestVisiblePass()
		return m, m.loadPreview()

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case thumbs.ReadyMsg:
		return m, tea.Batch(m.onReady(worker.Ready(msg)), m.thumbs.WaitReady())

	case thumbs.PassDueMsg:
		return m, tea.Batch(m.runPass(), m.thumbs.WaitPass())

	case dispatch.IconLoadedMsg:
		m.thumbs.Dispatcher().Apply(msg, m.reg, m.thumbs.Size())

	case preview.LoadedMsg:
		if msg.Epoch == m.previewEpoch {
			m.previewRes = msg.Result
			m.previewReady = true
		}

	case manifestChangedMsg:
		return m, tea.Batch(m.reloadManifest(), m.listenManifest())

	case manifestLoadedMsg:
		return m, m.applyListing(msg)

	case spinner.TickMsg:
		if !m.spinning {
			return m, nil
		}
		if m.thumbs.Stats().Queued == 0 && !m.thumbs.PassPending() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case statusClearMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}
	}
	return m, nil
}

// resize recomputes the list area after a size or pane change.
func (m *Model) resize() {
	w := m.width - 1 // scrollbar
	if pw := m.previewWidth(); pw > 0 {
		w -= pw + 1 // divider
	}
	m.lay.width = max(1, w)
	m.lay.height = max(0, m.height-m.chromeLines())
	m.lay.clampScroll()
	m.lay.ensureVisible(m.cursor)
}

func (m *Model) chromeLines() int {
	n := headerLines
	if m.cfg.UI.ShowFooter {
		n += footerLines
	}
	if m.filtering || m.query != "" {
		n++
	}
	return n
}

func (m *Model) previewWidth() int {
	if !m.showPreview || m.width < minPreviewWidth {
		return 0
	}
	return m.width * 2 / 5
}

// previewBox is the cell box available to the preview image.
func (m *Model) previewBox() (cols, rows int) {
	return max(0, m.previewWidth()-2), max(0, m.lay.height-previewDetailLines)
}

// runPass runs a visibility pass now and loads icons for visible entries
// whose thumbnails are already cached.
func (m *Model) runPass() tea.Cmd {
	st := m.thumbs.RunPass(&m.lay)
	var cmds []tea.Cmd
	for _, i := range st.Cached {
		it := m.lay.item(i)
		if it.HasIcon(st.Size) {
			continue
		}
		cmds = append(cmds, m.thumbs.Dispatcher().Load(it.Entry.Path, st.Size))
	}
	if st.Enqueued > 0 {
		cmds = append(cmds, m.startSpinner())
	}
	return tea.Batch(cmds...)
}

// onReady loads the icon for a completion when its entry is on screen.
// Completions for registered entries that are off screen are dropped, not
// applied. The pass that brings such an entry into view seeds it from the
// store.
func (m *Model) onReady(ev worker.Ready) tea.Cmd {
	if !m.onScreen(ev.SourcePath) {
		return nil
	}
	return m.thumbs.Dispatcher().OnReady(ev, m.reg, m.thumbs.Size())
}

func (m *Model) onScreen(path string) bool {
	first, last := m.lay.visibleRange()
	for i := first; i < last; i++ {
		if m.lay.item(i).Entry.Path == path {
			return true
		}
	}
	return false
}

func (m *Model) startSpinner() tea.Cmd {
	if m.spinning {
		return nil
	}
	m.spinning = true
	return m.spin.Tick
}

// selected returns the item under the cursor, or nil.
func (m *Model) selected() *dispatch.Item {
	if m.cursor < 0 || m.cursor >= m.lay.Len() {
		return nil
	}
	return m.lay.item(m.cursor)
}

// moveTo places the cursor at view position i and scrolls it into view.
func (m *Model) moveTo(i int) tea.Cmd {
	n := m.lay.Len()
	if n == 0 {
		return nil
	}
	i = max(0, min(n-1, i))
	if i == m.cursor {
		return nil
	}
	m.cursor = i
	scroll := m.lay.scroll
	m.lay.ensureVisible(i)
	if m.lay.scroll != scroll {
		m.thumbs.RequestVisiblePass()
	}
	return m.loadPreview()
}

// loadPreview starts loading the selection's preview. Results for an older
// epoch are dropped when they arrive.
func (m *Model) loadPreview() tea.Cmd {
	it := m.selected()
	cols, rows := m.previewBox()
	if it == nil || cols <= 0 || rows <= 0 {
		return nil
	}
	m.previewEpoch++
	m.previewPath = it.Entry.Path
	m.previewReady = false
	return m.pane.Load(it.Entry, m.previewEpoch, cols, rows)
}

// zoom changes the icon size by delta within the configured bounds.
func (m *Model) zoom(delta int) tea.Cmd {
	t := m.cfg.Thumbnails
	size := config.ClampSize(m.thumbs.Size()+delta, t.MinIconSize, t.MaxIconSize)
	if size == m.thumbs.Size() {
		return nil
	}
	m.lay.setSize(size)
	m.lay.clampScroll()
	m.lay.ensureVisible(m.cursor)

	// Pre-warm the whole listing, not only the filtered view.
	all := m.lay
	all.view = filterView(m.reg, "")
	n := m.thumbs.OnIconSizeChanged(size, &all)
	m.reg.ClearIcons(size)
	m.logger.Debug("zoom", "size", size, "prewarm", n, "render_hits", m.icons.HitRatio())
	m.icons.Purge()
	if n > 0 {
		return m.startSpinner()
	}
	return nil
}

func (m *Model) toggleView() {
	if m.lay.tiles() {
		m.lay.mode = config.ViewList
	} else {
		m.lay.mode = config.ViewTiles
	}
	m.lay.clampScroll()
	m.lay.ensureVisible(m.cursor)
	m.thumbs.RequestVisiblePass()
}

// setQuery refilters the view, keeping the selection when it still matches.
func (m *Model) setQuery(q string) tea.Cmd {
	prev := -1
	if m.cursor < m.lay.Len() {
		prev = m.lay.view[m.cursor]
	}
	m.query = q
	m.lay.view = filterView(m.reg, q)
	m.cursor = max(0, m.lay.indexOf(prev))
	m.resize()
	m.thumbs.RequestVisiblePass()
	if it := m.selected(); it != nil && it.Entry.Path == m.previewPath {
		return nil
	}
	return m.loadPreview()
}

func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.status, m.statusErr = text, isErr
	seq := m.statusSeq
	return tea.Tick(statusDuration, func(time.Time) tea.Msg {
		return statusClearMsg{seq: seq}
	})
}

func (m *Model) listenManifest() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	ch := m.watcher.Events()
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return manifestChangedMsg{}
	}
}

func (m *Model) reloadManifest() tea.Cmd {
	path, opts := m.manifest, m.sqlite
	return func() tea.Msg {
		entries, err := listing.Load(context.Background(), path, opts)
		return manifestLoadedMsg{entries: entries, err: err}
	}
}

// applyListing swaps in a reloaded manifest. A failed reload keeps the
// current listing.
func (m *Model) applyListing(msg manifestLoadedMsg) tea.Cmd {
	if msg.err != nil {
		m.logger.Warn("manifest reload failed", "path", m.manifest, "error", msg.err)
		return m.setStatus("reload failed: "+msg.err.Error(), true)
	}
	var selPath string
	if it := m.selected(); it != nil {
		selPath = it.Entry.Path
	}

	m.reg.Reset(msg.entries)
	m.lay.view = filterView(m.reg, m.query)
	m.cursor = 0
	for i := range m.lay.view {
		if m.lay.item(i).Entry.Path == selPath {
			m.cursor = i
			break
		}
	}
	m.resize()
	m.thumbs.RequestVisiblePass()
	m.logger.Info("manifest reloaded", "path", m.manifest, "entries", len(msg.entries))
	return tea.Batch(m.loadPreview(), m.setStatus("manifest reloaded", false))
}

// saveView persists the icon size and view mode.
func (m *Model) saveView() {
	if m.configPath == "" {
		return
	}
	if err := config.SaveView(m.configPath, m.thumbs.Size(), m.lay.mode); err != nil {
		m.logger.Warn("save view settings", "path", m.configPath, "error", err)
	}
}
