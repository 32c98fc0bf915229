// Package watch ingests documents dropped into a local folder. Files
// are submitted through the same intake path as HTTP uploads and moved
// aside once accepted, so a restart never re-reads what it already
// handled and duplicates are still caught by fingerprint.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jbony2888/entryflow/internal/submissions"
	"github.com/jbony2888/entryflow/pkg/lifecycle"
)

const processedDir = "processed"

// Watcher monitors a folder and submits new documents for processing.
type Watcher struct {
	intake  submissions.Intake
	cfg     Config
	logger  *slog.Logger
	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New creates a folder watcher.
func New(intake submissions.Intake, cfg Config, logger *slog.Logger) *Watcher {
	return &Watcher{
		intake:  intake,
		cfg:     cfg,
		logger:  logger.With("system", "watch"),
		pending: make(map[string]*time.Timer),
	}
}

// Start registers the watcher with the lifecycle coordinator. Existing
// files in the folder are ingested on startup before event watching
// begins.
func (w *Watcher) Start(lc *lifecycle.Coordinator) error {
	if !w.cfg.Enabled {
		return nil
	}

	if err := os.MkdirAll(filepath.Join(w.cfg.Dir, processedDir), 0o755); err != nil {
		return fmt.Errorf("create processed dir: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(w.cfg.Dir); err != nil {
		fsw.Close()
		return fmt.Errorf("watch %s: %w", w.cfg.Dir, err)
	}

	ctx := lc.Context()

	lc.OnStartup(func() {
		w.sweep(ctx)
		go w.run(ctx, fsw)
		w.logger.Info("watch folder started", "dir", w.cfg.Dir)
	})

	lc.OnShutdown(func() {
		<-ctx.Done()
		fsw.Close()
		w.logger.Info("watch folder stopped")
	})

	return nil
}

// sweep ingests files already present when the watcher starts.
func (w *Watcher) sweep(ctx context.Context) {
	entries, err := os.ReadDir(w.cfg.Dir)
	if err != nil {
		w.logger.Error("startup sweep failed", "error", err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !w.matches(entry.Name()) {
			continue
		}
		w.ingest(ctx, filepath.Join(w.cfg.Dir, entry.Name()))
	}
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !w.matches(event.Name) {
				continue
			}
			w.schedule(ctx, event.Name)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error", "error", err)
		}
	}
}

// schedule debounces a path: the timer resets on every event so the
// file is only read once writes have settled.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.cfg.SettleDuration())
		return
	}

	w.pending[path] = time.AfterFunc(w.cfg.SettleDuration(), func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		w.ingest(ctx, path)
	})
}

func (w *Watcher) ingest(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		w.logger.Error("read failed", "path", path, "error", err)
		return
	}
	if len(data) == 0 {
		w.logger.Warn("skipping empty file", "path", path)
		return
	}

	filename := filepath.Base(path)
	sub, enqueued, err := w.intake.Submit(ctx, data, filename, w.cfg.Owner)
	if err != nil {
		w.logger.Error("submit failed", "path", path, "error", err)
		return
	}

	dest := filepath.Join(w.cfg.Dir, processedDir, filename)
	if err := os.Rename(path, dest); err != nil {
		w.logger.Warn("move to processed failed", "path", path, "error", err)
	}

	w.logger.Info("file ingested",
		"path", path,
		"submission_id", sub.ID,
		"enqueued", enqueued,
	)
}

func (w *Watcher) matches(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return slices.Contains(w.cfg.Extensions, ext)
}
