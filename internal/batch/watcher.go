package batch

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"claimlog/internal/document"
)

// ErrWatcherStopped is returned by Start once a watcher has stopped, either
// through Stop or because its context ended.
var ErrWatcherStopped = errors.New("watcher already stopped")

// Watcher re-extracts credential files in a directory as they change.
// Rapid successive writes to one file produce a single result.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	runner      *Runner
	dir         string
	debounceMap map[string]time.Time
	debounceDur time.Duration
	results     chan Result
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	stopped     bool
	closeOnce   sync.Once
	logger      *zap.Logger
}

// NewWatcher prepares a watcher for dir. Results are produced by runner.
func NewWatcher(dir string, runner *Runner, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	return &Watcher{
		watcher:     fw,
		runner:      runner,
		dir:         dir,
		debounceMap: make(map[string]time.Time),
		debounceDur: debounce,
		results:     make(chan Result, 16),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
		logger:      runner.logger,
	}, nil
}

// Results delivers one Result per settled file change. It is closed when the
// watcher stops.
func (w *Watcher) Results() <-chan Result { return w.results }

// Start begins watching. Once the watcher has stopped, through Stop or its
// context, Start returns ErrWatcherStopped.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return ErrWatcherStopped
	}
	if w.running {
		w.mu.Unlock()
		return nil
	}
	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Unlock()
		return err
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info("watching directory", zap.String("dir", w.dir))
	go w.run(ctx)
	return nil
}

// Stop halts the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.stopped = true
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	w.closeOnce.Do(func() {
		if err := w.watcher.Close(); err != nil {
			w.logger.Warn("error closing watcher", zap.Error(err))
		}
		if !running {
			close(w.results)
		}
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	defer close(w.results)
	defer func() {
		w.mu.Lock()
		w.stopped = true
		w.mu.Unlock()
	}()

	tick := 100 * time.Millisecond
	if w.debounceDur < tick {
		tick = w.debounceDur
	}
	debounceTicker := time.NewTicker(tick)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("watcher context cancelled")
			return

		case <-w.stopCh:
			w.logger.Debug("watcher stop signal received")
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))

		case <-debounceTicker.C:
			if !w.processDebouncedEvents(ctx) {
				return
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !document.IsCredentialFile(event.Name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		w.debounceMap[event.Name] = time.Now()
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		delete(w.debounceMap, event.Name)
	}
}

// processDebouncedEvents extracts files that have been quiet for the debounce
// interval. It returns false when the watcher is shutting down.
func (w *Watcher) processDebouncedEvents(ctx context.Context) bool {
	w.mu.Lock()
	now := time.Now()
	var toProcess []string
	for path, eventTime := range w.debounceMap {
		if now.Sub(eventTime) >= w.debounceDur {
			toProcess = append(toProcess, path)
			delete(w.debounceMap, path)
		}
	}
	w.mu.Unlock()

	for _, path := range toProcess {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		res := w.runner.ExtractFile(ctx, path)
		w.logger.Debug("file re-extracted",
			zap.String("event_id", uuid.NewString()),
			zap.String("path", path),
			zap.Bool("ok", res.OK()))

		select {
		case w.results <- res:
		case <-w.stopCh:
			return false
		case <-ctx.Done():
			return false
		}
	}
	return true
}
