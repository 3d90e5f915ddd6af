package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"

	"github.com/robinvdvleuten/beanload/loader"
	"github.com/robinvdvleuten/beanload/output"
)

// WatchCmd checks a ledger and checks it again after every change to the
// root file or one of its includes. Unchanged files come from a parse cache.
type WatchCmd struct {
	File     string        `help:"Beancount input filename." arg:""`
	Debounce time.Duration `help:"Wait this long after a change before checking." default:"100ms"`
}

func (cmd *WatchCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache := loader.NewParseCache(0)
	ldr, err := globals.newLoader(cmd.File, cache)
	if err != nil {
		return err
	}

	w := &watcher{
		loader:   ldr,
		cache:    cache,
		root:     cmd.File,
		debounce: cmd.Debounce,
		stdout:   ctx.Stdout,
		stderr:   ctx.Stderr,
		clear:    isTerminal(ctx.Stdout),
	}
	return w.run(runCtx)
}

type watcher struct {
	loader   *loader.Loader
	cache    *loader.ParseCache
	root     string
	debounce time.Duration
	stdout   io.Writer
	stderr   io.Writer
	clear    bool

	// checked receives a value after every check when set.
	checked chan<- struct{}

	files []string
}

func (w *watcher) run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	w.check(ctx)
	w.watch(fsw, nil)

	reload := make(chan struct{}, 1)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			// Remove and Rename come from editors saving atomically.
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			previous := w.files
			w.check(ctx)
			w.watch(fsw, previous)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			printError(w.stderr, fmt.Sprintf("file watcher error: %v", err))
		}
	}
}

// check loads the ledger and prints the outcome. The files of the last
// successful load stay watched when a load fails.
func (w *watcher) check(ctx context.Context) {
	if w.clear {
		output.NewStyles(w.stdout).Output().ClearScreen()
	}

	result, err := w.loader.Load(ctx, w.root)
	_ = writeCheckReport(w.stdout, w.stderr, result, err)

	switch {
	case result != nil:
		w.files = result.Files
	case len(w.files) == 0:
		w.files = []string{w.root}
	}

	hits, misses := w.cache.Stats()
	printInfof(w.stdout, "Watching %d file(s) for changes (parse cache: %d hits, %d misses)", len(w.files), hits, misses)

	if w.checked != nil {
		w.checked <- struct{}{}
	}
}

// watch re-adds every current file, since atomic saves drop the old watch,
// and removes files no longer loaded.
func (w *watcher) watch(fsw *fsnotify.Watcher, previous []string) {
	current := make(map[string]bool, len(w.files))
	for _, file := range w.files {
		current[file] = true
		if err := fsw.Add(file); err != nil {
			printError(w.stderr, fmt.Sprintf("failed to watch %s: %v", file, err))
		}
	}
	for _, file := range previous {
		if !current[file] {
			_ = fsw.Remove(file)
		}
	}
}
