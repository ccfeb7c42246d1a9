package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/wilbur182/listexplorer/internal/browser"
	"github.com/wilbur182/listexplorer/internal/config"
	"github.com/wilbur182/listexplorer/internal/features"
	"github.com/wilbur182/listexplorer/internal/listing"
	"github.com/wilbur182/listexplorer/internal/pathnorm"
	"github.com/wilbur182/listexplorer/internal/preview"
	"github.com/wilbur182/listexplorer/internal/styles"
	"github.com/wilbur182/listexplorer/internal/thumbgen"
	"github.com/wilbur182/listexplorer/internal/thumbkey"
	"github.com/wilbur182/listexplorer/internal/thumbs"
	"github.com/wilbur182/listexplorer/internal/version"
)

// Version is set at build time via ldflags
var Version = ""

var (
	configPath   = flag.String("config", "", "path to config file")
	cacheDir     = flag.String("cache-dir", "", "thumbnail cache directory")
	sizeFlag     = flag.Int("size", 0, "icon size in pixels")
	workersFlag  = flag.Int("workers", 0, "number of thumbnail workers")
	filterFlag   = flag.String("filter", "", "resampling filter: catmullrom, lanczos or bilinear")
	debugFlag    = flag.Bool("debug", false, "enable debug logging")
	versionFlag  = flag.Bool("version", false, "print version and exit")
	shortVersion = flag.Bool("v", false, "print version and exit (short)")
	warmFlag     = flag.Bool("warm", false, "generate thumbnails for every image in the manifest and exit")
	keyFlag      = flag.String("key", "", "print the normalized path and cache key for a source path and exit")
	featureFlags []string
)

func main() {
	flag.Parse()

	if *versionFlag || *shortVersion {
		fmt.Printf("listexplorer version %s\n", version.Resolve(Version))
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := applyFlags(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid flags: %v\n", err)
		os.Exit(2)
	}
	feats := features.New(cfg.Features.Flags)
	for _, f := range featureFlags {
		if err := feats.ParseOverride(f); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid flags: %v\n", err)
			os.Exit(2)
		}
	}

	if *keyFlag != "" {
		size := cfg.Thumbnails.IconSize
		fmt.Printf("%s\t%s\n", pathnorm.Normalize(*keyFlag), thumbkey.ForSource(*keyFlag, size))
		return
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	manifest, err := filepath.Abs(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve manifest path: %v\n", err)
		os.Exit(1)
	}

	sqliteOpts := listing.SQLiteOptions{
		Table:      cfg.Manifest.SQLiteTable,
		PathColumn: cfg.Manifest.SQLitePathColumn,
		SizeColumn: cfg.Manifest.SQLiteSizeColumn,
	}
	entries, err := listing.Load(context.Background(), manifest, sqliteOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load manifest: %v\n", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if *debugFlag {
		logLevel = slog.LevelDebug
	}

	// Output that is not a terminal cannot host the browser.
	if *warmFlag || !term.IsTerminal(int(os.Stdout.Fd())) {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
		if err := runWarm(cfg, feats, entries, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// The alt screen owns the terminal, so the browser logs to a file.
	logger, closeLog := fileLogger(cfg.Cache.Dir, logLevel)
	defer closeLog()

	if err := runBrowser(cfg, feats, manifest, sqliteOpts, entries, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// applyFlags overlays command-line overrides and revalidates.
func applyFlags(cfg *config.Config) error {
	if *cacheDir != "" {
		cfg.Cache.Dir = config.ExpandPath(*cacheDir)
	}
	if *sizeFlag != 0 {
		cfg.Thumbnails.IconSize = *sizeFlag
	}
	if *workersFlag != 0 {
		cfg.Thumbnails.Workers = *workersFlag
	}
	if *filterFlag != "" {
		cfg.Thumbnails.Filter = *filterFlag
	}
	return cfg.Validate()
}

func fileLogger(dir string, level slog.Level) (*slog.Logger, func()) {
	discard := func() {}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return slog.New(slog.DiscardHandler), discard
	}
	f, err := os.OpenFile(filepath.Join(dir, "listexplorer.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return slog.New(slog.DiscardHandler), discard
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), func() { _ = f.Close() }
}

func controllerOptions(cfg *config.Config, feats *features.Manager) thumbs.Options {
	return thumbs.Options{
		CacheDir:   cfg.Cache.Dir,
		Workers:    cfg.Thumbnails.Workers,
		Debounce:   cfg.Thumbnails.Debounce,
		IconSize:   cfg.Thumbnails.IconSize,
		Filter:     thumbgen.Filter(cfg.Thumbnails.Filter),
		Dedupe:     cfg.Thumbnails.Dedupe,
		MonitorFDs: feats.IsEnabled(features.FDMonitor),
	}
}

func runBrowser(cfg *config.Config, feats *features.Manager, manifest string, sqliteOpts listing.SQLiteOptions, entries []listing.Entry, logger *slog.Logger) error {
	if err := styles.Apply(cfg.UI.Theme); err != nil {
		logger.Warn("theme", "error", err)
	}

	ctrl, err := thumbs.New(controllerOptions(cfg, feats), logger)
	if err != nil {
		return err
	}
	defer ctrl.Close()
	ctrl.Start(context.Background())

	var watcher *listing.Watcher
	if cfg.Manifest.Watch {
		watcher, err = listing.NewWatcher(manifest)
		if err != nil {
			logger.Warn("manifest watch disabled", "path", manifest, "error", err)
			watcher = nil
		} else {
			defer watcher.Stop()
		}
	}

	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = config.ConfigPath()
	}
	model := browser.New(browser.Options{
		ManifestPath: manifest,
		Entries:      entries,
		SQLite:       sqliteOpts,
		Config:       cfg,
		ConfigPath:   cfgPath,
		Thumbs:       ctrl,
		Watcher:      watcher,
		Preview:      preview.Renderer{Termimg: feats.IsEnabled(features.TermimgPreview)},
		Logger:       logger,
	})
	progOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if feats.IsEnabled(features.Mouse) {
		progOpts = append(progOpts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(model, progOpts...)
	_, err = p.Run()
	return err
}

// runWarm generates a thumbnail for every image entry at the configured
// size, then prints a summary. Per-file failures do not fail the run.
func runWarm(cfg *config.Config, feats *features.Manager, entries []listing.Entry, logger *slog.Logger) error {
	opts := controllerOptions(cfg, feats)
	opts.Headless = true
	ctrl, err := thumbs.New(opts, logger)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	ctrl.Start(ctx)
	queued := 0
	for _, e := range entries {
		if e.IsImage() && ctrl.Enqueue(e.Path, opts.IconSize) {
			queued++
		}
	}
	drainErr := ctrl.Drain(ctx)

	st := ctrl.Stats()
	fmt.Printf("%s images at %dpx: %s generated, %s cached, %s failed in %s\n",
		humanize.Comma(int64(queued)), opts.IconSize,
		humanize.Comma(st.Generated), humanize.Comma(st.Hits), humanize.Comma(st.Failed),
		time.Since(start).Round(time.Millisecond))
	if ss, err := ctrl.Store().Stats(); err == nil {
		fmt.Printf("cache %s: %s thumbnails, %s\n", ctrl.Store().Dir(), humanize.Comma(int64(ss.Count)), humanize.IBytes(uint64(ss.Bytes)))
	}
	if drainErr != nil {
		fmt.Println("interrupted; remaining requests abandoned")
	}
	return nil
}

func init() {
	flag.Func("feature", "enable or disable a feature: name[=bool] (repeatable)", func(s string) error {
		featureFlags = append(featureFlags, s)
		return nil
	})
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: listexplorer [options] <manifest.csv|manifest.db>\n\n")
		fmt.Fprintf(os.Stderr, "Browse a file manifest with cached thumbnails.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
}
