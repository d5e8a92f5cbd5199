package shader

import "time"

// WatcherBuilderOption is a functional option applied to a watcher during construction via NewWatcher.
type WatcherBuilderOption func(*watcher)

// WithDebounce sets how long the watcher waits after the last event before reporting a batch.
//
// Parameters:
//   - d: the debounce interval
//
// Returns:
//   - WatcherBuilderOption: a function that applies the interval to a watcher
func WithDebounce(d time.Duration) WatcherBuilderOption {
	return func(w *watcher) {
		w.debounce = d
	}
}

// WithExtension sets the file extension reported by the watcher. An empty extension reports every file.
func WithExtension(ext string) WatcherBuilderOption {
	return func(w *watcher) {
		w.ext = ext
	}
}
