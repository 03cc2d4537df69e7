package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filesieve/filesieve/internal/config"
)

func newTestEngine(t *testing.T) (*Engine, string) {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.IndexPath = filepath.Join(t.TempDir(), "index.db")

	e, err := WithConfig(root, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e, root
}

func TestEngineIndexAndSearch(t *testing.T) {
	e, root := newTestEngine(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "readme.txt"), []byte("hello"), 0o644))

	ctx := context.Background()
	count, err := e.IndexDirectory(ctx, root, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	results, err := e.Search(ctx, "readme")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "readme.txt", results[0].File.Name)
}

func TestEngineUpdateIndexDetectsChanges(t *testing.T) {
	e, root := newTestEngine(t)
	ctx := context.Background()

	path := filepath.Join(root, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))
	_, err := e.IndexDirectory(ctx, root, nil)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	stats, err := e.UpdateIndex(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Removed)
}

func TestEngineVerifyIndexAndClear(t *testing.T) {
	e, root := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644))
	_, err := e.IndexDirectory(ctx, root, nil)
	require.NoError(t, err)

	vstats, err := e.VerifyIndex(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, 1, vstats.Valid)

	require.NoError(t, e.ClearIndex(ctx))
	stats, err := e.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalFiles)
}

func TestEngineStartStopWatching(t *testing.T) {
	e, root := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.StartWatching(root))
	err := e.StartWatching(root)
	assert.Error(t, err, "starting a second watch while one is active should fail")

	path := filepath.Join(root, "watched.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	require.Eventually(t, func() bool {
		entry, ok, err := e.store.FindByPath(ctx, path)
		return err == nil && ok && entry.Path == path
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, e.StopWatching())
	require.NoError(t, e.StopWatching())
}

func TestEngineAddExclusionPattern(t *testing.T) {
	e, root := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.AddExclusionPattern(ctx, "**/*.secret"))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.secret"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("x"), 0o644))

	count, err := e.IndexDirectory(ctx, root, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestEngineReloadsPersistedExclusionPattern(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.IndexPath = filepath.Join(t.TempDir(), "index.db")
	ctx := context.Background()

	e1, err := WithConfig(root, cfg)
	require.NoError(t, err)
	require.NoError(t, e1.AddExclusionPattern(ctx, "**/*.secret"))
	require.NoError(t, e1.Close())

	// Reopening against the same index.db must re-derive the exclusion
	// filter from the persisted rule, not just cfg's own patterns.
	e2, err := WithConfig(root, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e2.Close() })

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.secret"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("x"), 0o644))

	count, err := e2.IndexDirectory(ctx, root, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
