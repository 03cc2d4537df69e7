package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/filesieve/filesieve/internal/exclude"
	"github.com/filesieve/filesieve/internal/model"
)

func newTestWatcher(t *testing.T, root string) *Watcher {
	t.Helper()
	filter, err := exclude.New(model.DefaultExclusionRules())
	require.NoError(t, err)

	w, err := New(root, filter, 30*time.Millisecond)
	require.NoError(t, err)
	return w
}

func TestWatcherDeliversCreateEvent(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root)
	w.Start()
	defer func() { _ = w.Stop() }()

	path := filepath.Join(root, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	select {
	case ev := <-w.Events():
		assert.Equal(t, path, ev.Path)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for file event")
	}
}

func TestWatcherDebouncesRapidWrites(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root)
	w.Start()
	defer func() { _ = w.Stop() }()

	path := filepath.Join(root, "b.txt")
	require.NoError(t, os.WriteFile(path, []byte("1"), 0o644))

	// Drain the create event.
	select {
	case <-w.Events():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for initial event")
	}

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("more"), 0o644))
	}

	received := 0
	timeout := time.After(300 * time.Millisecond)
loop:
	for {
		select {
		case <-w.Events():
			received++
		case <-timeout:
			break loop
		}
	}
	assert.LessOrEqual(t, received, 1, "rapid writes within the debounce window should collapse to at most one delivery")
}

func TestWatcherStopIsClean(t *testing.T) {
	defer goleak.VerifyNone(t,
		goleak.IgnoreTopFunction("github.com/fsnotify/fsnotify.(*fdPoller).poll"),
	)

	root := t.TempDir()
	w := newTestWatcher(t, root)
	w.Start()

	require.NoError(t, w.Stop())

	_, ok := <-w.Events()
	assert.False(t, ok, "Events channel should be closed after Stop")
}
