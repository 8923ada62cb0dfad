package internal

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gnolang/keyfold/internal/fixer"
	"github.com/gnolang/keyfold/internal/syntax"
	tt "github.com/gnolang/keyfold/internal/types"
)

const defaultDebounce = 100 * time.Millisecond

// Watcher migrates files as they change on disk.
type Watcher struct {
	engine   *Engine
	fixer    *fixer.Fixer
	dirs     []string
	ignore   map[string]struct{}
	logger   *zap.Logger
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
	// OnResult, when set, is called after each processed file.
	OnResult func(res *tt.Result)
}

func NewWatcher(engine *Engine, fx *fixer.Fixer, dirs, ignore []string, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	skip := make(map[string]struct{}, len(ignore))
	for _, name := range ignore {
		skip[name] = struct{}{}
	}
	return &Watcher{
		engine:   engine,
		fixer:    fx,
		dirs:     dirs,
		ignore:   skip,
		logger:   logger,
		debounce: defaultDebounce,
		pending:  make(map[string]*time.Timer),
	}
}

// Start watches the configured directories until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range w.dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if _, skip := w.ignore[d.Name()]; skip && path != dir {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		})
		if err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}
	w.logger.Info("watching for changes", zap.Strings("dirs", w.dirs))

	for {
		select {
		case <-ctx.Done():
			w.stopPending()
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handleFileEvent(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleFileEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if _, err := syntax.LanguageForFile(event.Name); err != nil {
		return
	}

	// several writes in quick succession count as one change
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[event.Name]; ok {
		t.Stop()
	}
	name := event.Name
	w.pending[name] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, name)
		w.mu.Unlock()
		w.process(name)
	})
}

func (w *Watcher) process(filename string) {
	res, err := w.engine.Run(filename)
	if err != nil {
		w.logger.Error("error processing file", zap.String("file", filename), zap.Error(err))
		return
	}

	changed, err := w.fixer.Apply(res)
	if err != nil {
		w.logger.Error("error writing file", zap.String("file", filename), zap.Error(err))
		return
	}
	if changed {
		w.logger.Info("migrated file", zap.String("file", filename), zap.Int("rewritten", res.Rewritten))
	}
	for _, issue := range res.Issues {
		w.logger.Warn(issue.Message,
			zap.String("rule", issue.Rule),
			zap.String("file", issue.Filename),
			zap.Int("line", issue.Start.Line),
		)
	}

	if w.OnResult != nil {
		w.OnResult(res)
	}
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for name, t := range w.pending {
		t.Stop()
		delete(w.pending, name)
	}
}
