package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/guptam/altimeter/pkg/logging"
)

// ChangeType represents the type of file change detected
type ChangeType int

const (
	ChangeTypeSchema ChangeType = iota
	ChangeTypeInput
)

func (t ChangeType) String() string {
	switch t {
	case ChangeTypeSchema:
		return "schema"
	case ChangeTypeInput:
		return "input"
	}
	return fmt.Sprintf("ChangeType(%d)", int(t))
}

// ChangeEvent represents a batch of file system changes
type ChangeEvent struct {
	Type      ChangeType
	Paths     []string
	Timestamp time.Time
}

// FileWatcher watches the graph inputs and schema files a server was started
// with. Inputs are artifacts or raw scan dumps.
//
// Files are replaced by rename when rewritten, so the watcher follows their
// parent directories and filters events by path.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	files   map[string]ChangeType // cleaned path to type
	events  chan ChangeEvent
	mu      sync.Mutex
	stopped bool
}

// NewFileWatcher creates a watcher for the given inputs and schema files.
func NewFileWatcher(inputs []string, schemas ...string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher: watcher,
		files:   make(map[string]ChangeType),
		events:  make(chan ChangeEvent, 100),
	}
	for _, in := range inputs {
		fw.files[clean(in)] = ChangeTypeInput
	}
	for _, s := range schemas {
		fw.files[clean(s)] = ChangeTypeSchema
	}
	return fw, nil
}

func clean(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Start begins watching for file changes
func (fw *FileWatcher) Start(ctx context.Context) error {
	dirs := make(map[string]bool)
	for path := range fw.files {
		dirs[filepath.Dir(path)] = true
	}
	for dir := range dirs {
		if err := fw.watcher.Add(dir); err != nil {
			fw.watcher.Close()
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}

	logging.Info("started watching inputs", "files", len(fw.files), "directories", len(dirs))

	go fw.processEvents(ctx)
	return nil
}

// processEvents forwards relevant file system events. Batching is left to the
// Debouncer.
func (fw *FileWatcher) processEvents(ctx context.Context) {
	defer close(fw.events)
	for {
		select {
		case <-ctx.Done():
			fw.Stop()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			typ, watched := fw.files[clean(event.Name)]
			if !watched {
				continue
			}
			logging.Trace("input changed", "path", event.Name, "type", typ.String(), "op", event.Op.String())
			select {
			case fw.events <- ChangeEvent{Type: typ, Paths: []string{event.Name}, Timestamp: time.Now()}:
			case <-ctx.Done():
				fw.Stop()
				return
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

// Events returns the channel of change events
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// Stop stops the file watcher
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.stopped {
		return nil
	}
	fw.stopped = true
	return fw.watcher.Close()
}
