package shader

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherBatchesShaderWrites(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	var batches [][]string
	w, err := NewWatcher(dir, func(paths []string) {
		mu.Lock()
		defer mu.Unlock()
		batches = append(batches, paths)
	}, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	wgsl := filepath.Join(dir, "grid.frag.wgsl")
	require.NoError(t, os.WriteFile(wgsl, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(wgsl, []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("c"), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(batches) > 0
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{wgsl}, batches[0])
}

func TestWatcherMissingDirectory(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing"), func([]string) {})
	assert.Error(t, err)
}
