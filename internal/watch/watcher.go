package watch

import (
	"context"
	"os"
	"sync"
	"time"
)

// ChangeType represents the type of file change.
type ChangeType int

const (
	ChangeModified ChangeType = iota
	ChangeCreated
	ChangeRemoved
)

// String returns the lowercase name of the change type.
func (c ChangeType) String() string {
	switch c {
	case ChangeModified:
		return "modified"
	case ChangeCreated:
		return "created"
	case ChangeRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Change represents a detected file change.
type Change struct {
	Path string
	Type ChangeType
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are the files to watch.
	Paths []string

	// Interval is the polling period.
	Interval time.Duration
}

// DefaultInterval is used when WatcherConfig.Interval is zero.
const DefaultInterval = 500 * time.Millisecond

type fileState struct {
	exists  bool
	modTime time.Time
	size    int64
}

// Watcher polls a fixed set of files for changes.
type Watcher struct {
	config   WatcherConfig
	onChange func(Change)
	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	states   map[string]fileState
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	return &Watcher{
		config: config,
		states: make(map[string]fileState),
	}
}

// OnChange sets the callback for file changes.
func (w *Watcher) OnChange(fn func(Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start polls until ctx is done or Stop is called. Changes that happened
// before Start are not reported.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	w.scanInitial()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.markStopped(stopCh)
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			w.checkForChanges()
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

func (w *Watcher) markStopped(stopCh chan struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running && w.stopCh == stopCh {
		close(w.stopCh)
		w.running = false
	}
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func stat(path string) fileState {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return fileState{}
	}
	return fileState{exists: true, modTime: info.ModTime(), size: info.Size()}
}

func (w *Watcher) scanInitial() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range w.config.Paths {
		w.states[p] = stat(p)
	}
}

// checkForChanges compares every watched file against its last state.
func (w *Watcher) checkForChanges() {
	var changes []Change

	w.mu.Lock()
	callback := w.onChange
	for _, p := range w.config.Paths {
		prev := w.states[p]
		cur := stat(p)
		w.states[p] = cur

		switch {
		case prev.exists && !cur.exists:
			changes = append(changes, Change{Path: p, Type: ChangeRemoved})
		case !prev.exists && cur.exists:
			changes = append(changes, Change{Path: p, Type: ChangeCreated})
		case cur.exists && (!cur.modTime.Equal(prev.modTime) || cur.size != prev.size):
			changes = append(changes, Change{Path: p, Type: ChangeModified})
		}
	}
	w.mu.Unlock()

	if callback == nil {
		return
	}
	for _, c := range changes {
		callback(c)
	}
}
