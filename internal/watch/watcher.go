// Package watch reports changes to the published data file.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 300 * time.Millisecond

// DataWatcher calls onChange once per burst of writes to one file. It watches
// the parent directory so editors that replace the file by rename are seen.
type DataWatcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	onChange func(path string)
	logger   *zap.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

func New(path string, onChange func(path string), logger *zap.Logger) (*DataWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &DataWatcher{
		watcher:  w,
		path:     abs,
		debounce: defaultDebounce,
		onChange: onChange,
		logger:   logger.Named("watch"),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching in a goroutine. Calling it twice is a no-op.
func (dw *DataWatcher) Start(ctx context.Context) error {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	if dw.running {
		return nil
	}
	dir := filepath.Dir(dw.path)
	if err := dw.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	dw.running = true
	dw.logger.Info("Watching data file", zap.String("path", dw.path))
	go dw.run(ctx)
	return nil
}

// Stop ends the loop and releases the watcher. Safe to call without Start.
func (dw *DataWatcher) Stop() {
	dw.mu.Lock()
	running := dw.running
	dw.running = false
	dw.mu.Unlock()

	if running {
		close(dw.stopCh)
		<-dw.doneCh
	}
	if err := dw.watcher.Close(); err != nil {
		dw.logger.Warn("Closing watcher", zap.Error(err))
	}
}

func (dw *DataWatcher) run(ctx context.Context) {
	defer close(dw.doneCh)

	timer := time.NewTimer(dw.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-dw.stopCh:
			return

		case event, ok := <-dw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != dw.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			dw.logger.Debug("Data file event", zap.String("op", event.Op.String()))
			timer.Reset(dw.debounce)

		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			dw.logger.Error("Watcher error", zap.Error(err))

		case <-timer.C:
			dw.logger.Info("Data file changed", zap.String("path", dw.path))
			dw.onChange(dw.path)
		}
	}
}
