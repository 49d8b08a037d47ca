package watch

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_CoalescesBursts(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []string
	)

	d := NewDebouncer(50*time.Millisecond, func(path string) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, path)
	})
	defer d.Stop()

	d.Trigger("a.yaml")
	d.Trigger("b.yaml")
	d.Trigger("c.yaml")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(calls) == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"c.yaml"}, calls)
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	var (
		mu    sync.Mutex
		fired bool
	)

	d := NewDebouncer(30*time.Millisecond, func(string) {
		mu.Lock()
		defer mu.Unlock()
		fired = true
	})

	d.Trigger("a.yaml")
	d.Stop()

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, fired)
}

func TestIsRelevant(t *testing.T) {
	abs := func(p string) string {
		a, err := filepath.Abs(p)
		require.NoError(t, err)
		return a
	}

	watched := map[string]bool{
		abs("doc.yaml"): true,
	}

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write to watched file", fsnotify.Event{Name: "doc.yaml", Op: fsnotify.Write}, true},
		{"rename of watched file", fsnotify.Event{Name: "doc.yaml", Op: fsnotify.Rename}, true},
		{"chmod only", fsnotify.Event{Name: "doc.yaml", Op: fsnotify.Chmod}, false},
		{"unwatched sibling", fsnotify.Event{Name: "other.yaml", Op: fsnotify.Write}, false},
		{"editor swap file", fsnotify.Event{Name: ".doc.yaml.swp", Op: fsnotify.Write}, false},
		{"backup file", fsnotify.Event{Name: "doc.yaml~", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRelevant(tt.event, watched))
		})
	}
}

func TestWatchTargets(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "doc.yaml")

	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer watcher.Close()

	watched, err := watchTargets(watcher, []string{file})
	require.NoError(t, err)

	assert.True(t, watched[file])
	assert.Contains(t, watcher.WatchList(), dir)
}
