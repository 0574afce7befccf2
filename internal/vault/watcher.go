package vault

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/lazypower/revisit/internal/lifecycle"
)

// DefaultRenameWindow is how long a Rename waits for its matching Create
// before it is reported as a deletion.
const DefaultRenameWindow = 150 * time.Millisecond

// Sink receives lifecycle events. It is called from a single goroutine in
// the order the filesystem reported them.
type Sink func(lifecycle.Event)

// Watcher turns filesystem notifications under a workspace root into
// lifecycle events.
type Watcher struct {
	fs      *fsnotify.Watcher
	root    string
	matcher *Matcher
	window  time.Duration
	sink    Sink
	log     zerolog.Logger

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// WatcherConfig configures a Watcher.
type WatcherConfig struct {
	Root         string
	Matcher      *Matcher
	RenameWindow time.Duration
	Sink         Sink
	Logger       zerolog.Logger
}

// NewWatcher creates a watcher. Call Start to begin delivering events.
func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	if cfg.Sink == nil {
		return nil, fmt.Errorf("watcher: sink required")
	}
	if cfg.Matcher == nil {
		return nil, fmt.Errorf("watcher: matcher required")
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}
	if cfg.RenameWindow <= 0 {
		cfg.RenameWindow = DefaultRenameWindow
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &Watcher{
		fs:      fw,
		root:    root,
		matcher: cfg.Matcher,
		window:  cfg.RenameWindow,
		sink:    cfg.Sink,
		log:     cfg.Logger,
		done:    make(chan struct{}),
	}, nil
}

// Start watches the root and every non-excluded directory below it.
func (w *Watcher) Start() error {
	if err := w.addRecursive(w.root); err != nil {
		return fmt.Errorf("watch workspace: %w", err)
	}
	w.wg.Add(1)
	go w.loop()
	w.log.Info().Str("root", w.root).Msg("workspace watcher started")
	return nil
}

// Stop ends event delivery. A rename still waiting for its pair is dropped.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fs.Close()
		w.wg.Wait()
		w.log.Info().Msg("workspace watcher stopped")
	})
	if err != nil {
		return fmt.Errorf("close watcher: %w", err)
	}
	return nil
}

// loop owns all pairing state, so events are converted and delivered in
// arrival order without locking.
func (w *Watcher) loop() {
	defer w.wg.Done()

	var (
		pending string
		timer   *time.Timer
		expired <-chan time.Time
	)
	flush := func() {
		if pending == "" {
			return
		}
		if timer != nil {
			timer.Stop()
		}
		w.emit(lifecycle.Deleted{Path: pending})
		pending, timer, expired = "", nil, nil
	}

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case <-expired:
			timer = nil
			flush()

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Error().Err(err).Msg("watcher error")

		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			rel, err := Rel(w.root, ev.Name)
			if err != nil || rel == "." || w.matcher.Excluded(rel) {
				continue
			}

			switch {
			case ev.Has(fsnotify.Create):
				if pending != "" {
					old := pending
					if timer != nil {
						timer.Stop()
					}
					pending, timer, expired = "", nil, nil
					w.renamed(old, rel, ev.Name)
					continue
				}
				w.created(rel, ev.Name)

			case ev.Has(fsnotify.Rename):
				flush()
				pending = rel
				timer = time.NewTimer(w.window)
				expired = timer.C

			case ev.Has(fsnotify.Remove):
				flush()
				w.emit(lifecycle.Deleted{Path: rel})
			}
		}
	}
}

func (w *Watcher) created(rel, abs string) {
	info, err := os.Stat(abs)
	if err != nil {
		w.log.Debug().Err(err).Str("path", rel).Msg("created path vanished")
		return
	}
	if !info.IsDir() {
		w.emit(lifecycle.Created{Path: rel, Trackable: w.matcher.Trackable(rel, false)})
		return
	}
	// Files can land in a new directory before it is watched.
	if err := w.addRecursive(abs); err != nil {
		w.log.Warn().Err(err).Str("path", rel).Msg("watch new directory")
	}
	w.eachFile(abs, func(fileRel string) {
		w.emit(lifecycle.Created{Path: fileRel, Trackable: w.matcher.Trackable(fileRel, false)})
	})
}

func (w *Watcher) renamed(oldRel, newRel, abs string) {
	info, err := os.Stat(abs)
	if err != nil {
		w.emit(lifecycle.Deleted{Path: oldRel})
		return
	}
	if !info.IsDir() {
		w.moved(oldRel, newRel)
		return
	}
	if err := w.addRecursive(abs); err != nil {
		w.log.Warn().Err(err).Str("path", newRel).Msg("watch renamed directory")
	}
	w.eachFile(abs, func(fileRel string) {
		w.moved(oldRel+fileRel[len(newRel):], fileRel)
	})
}

// moved reports a file rename in terms of what is trackable on each side:
// a note renamed to a non-note is deleted, a non-note renamed to a note is
// created, and a note renamed to a note is renamed. The trailing Created
// covers a note that was never recorded; it is a no-op after the rename.
func (w *Watcher) moved(oldRel, newRel string) {
	switch {
	case !w.matcher.Trackable(newRel, false):
		w.emit(lifecycle.Deleted{Path: oldRel})
	case !w.matcher.Trackable(oldRel, false):
		w.emit(lifecycle.Created{Path: newRel, Trackable: true})
	default:
		w.emit(lifecycle.Renamed{OldPath: oldRel, NewPath: newRel})
		w.emit(lifecycle.Created{Path: newRel, Trackable: true})
	}
}

func (w *Watcher) emit(ev lifecycle.Event) {
	w.log.Debug().Str("kind", string(ev.Kind())).Interface("event", ev).Msg("workspace event")
	w.sink(ev)
}

// eachFile calls fn with the relative path of every file under dir that is
// not excluded.
func (w *Watcher) eachFile(dir string, fn func(rel string)) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, err := Rel(w.root, path)
		if err != nil {
			return nil
		}
		if w.matcher.Excluded(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			fn(rel)
		}
		return nil
	})
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root {
			rel, err := Rel(w.root, path)
			if err != nil {
				return err
			}
			if w.matcher.Excluded(rel) {
				return filepath.SkipDir
			}
		}
		if err := w.fs.Add(path); err != nil {
			w.log.Warn().Err(err).Str("path", path).Msg("failed to watch directory")
		}
		return nil
	})
}
