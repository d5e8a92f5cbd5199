package shader

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watcher is the implementation of the Watcher interface.
type watcher struct {
	mu       *sync.Mutex
	fs       *fsnotify.Watcher
	debounce time.Duration
	ext      string
	onChange func(paths []string)

	pending map[string]struct{}
	timer   *time.Timer
	done    chan struct{}
	wg      sync.WaitGroup
}

// Watcher reports batches of changed shader files in a directory.
type Watcher interface {
	// Close stops watching and waits for the event loop to exit. Pending changes are dropped.
	//
	// Returns:
	//   - error: any error from closing the underlying watcher
	Close() error
}

var _ Watcher = &watcher{}

// NewWatcher starts watching dir for writes to shader files. Bursts of events are coalesced and
// delivered to onChange as one sorted batch of paths after the debounce interval.
//
// Parameters:
//   - dir: the directory to watch (not recursive)
//   - onChange: called from the watcher goroutine with the changed paths
//   - options: functional options to configure the watcher
//
// Returns:
//   - Watcher: the running watcher
//   - error: an error if the directory cannot be watched
func NewWatcher(dir string, onChange func(paths []string), options ...WatcherBuilderOption) (Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("shader watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("shader watcher: failed to watch %q: %w", dir, err)
	}

	w := &watcher{
		mu:       &sync.Mutex{},
		fs:       fw,
		debounce: 100 * time.Millisecond,
		ext:      ".wgsl",
		onChange: onChange,
		pending:  make(map[string]struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range options {
		opt(w)
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

func (w *watcher) Close() error {
	close(w.done)
	err := w.fs.Close()
	w.wg.Wait()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return err
}

func (w *watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if w.ext != "" && !strings.EqualFold(filepath.Ext(ev.Name), w.ext) {
				continue
			}
			w.queue(ev.Name)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			slog.Error("shader watcher error", "err", err)
		}
	}
}

func (w *watcher) queue(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = struct{}{}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.flush)
		return
	}
	w.timer.Reset(w.debounce)
}

func (w *watcher) flush() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	clear(w.pending)
	w.mu.Unlock()

	select {
	case <-w.done:
		return
	default:
	}
	if len(paths) == 0 {
		return
	}
	slices.Sort(paths)
	w.onChange(paths)
}
