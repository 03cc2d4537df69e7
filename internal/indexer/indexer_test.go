package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filesieve/filesieve/internal/exclude"
	"github.com/filesieve/filesieve/internal/model"
	"github.com/filesieve/filesieve/internal/store"
)

func newIndexer(t *testing.T) (*Indexer, string) {
	t.Helper()
	root := t.TempDir()
	s, err := store.Open(filepath.Join(t.TempDir(), "index.db"), 4, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	filter, err := exclude.New(model.DefaultExclusionRules())
	require.NoError(t, err)

	return &Indexer{
		Store:     s,
		Exclude:   filter,
		BatchSize: 100,
	}, root
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestIndexDirectoryCountsAllFiles(t *testing.T) {
	ix, root := newIndexer(t)
	writeFile(t, filepath.Join(root, "a.txt"), "a")
	writeFile(t, filepath.Join(root, "b.rs"), "b")
	writeFile(t, filepath.Join(root, "sub", "c.txt"), "c")

	count, err := ix.IndexDirectory(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestIndexDirectoryIsIdempotent(t *testing.T) {
	ix, root := newIndexer(t)
	writeFile(t, filepath.Join(root, "a.txt"), "a")

	ctx := context.Background()
	_, err := ix.IndexDirectory(ctx, root, nil)
	require.NoError(t, err)
	_, err = ix.IndexDirectory(ctx, root, nil)
	require.NoError(t, err)

	stats, err := ix.Store.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalFiles)
}

func TestUpdateDetectsAddAndRemove(t *testing.T) {
	ix, root := newIndexer(t)
	xPath := filepath.Join(root, "x.txt")
	writeFile(t, xPath, "x")

	ctx := context.Background()
	_, err := ix.IndexDirectory(ctx, root, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "y.txt"), []byte("y"), 0o644))
	require.NoError(t, os.Remove(xPath))

	stats, err := ix.Update(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Added)
	assert.Equal(t, 1, stats.Removed)
}

func TestUpdateDetectsModification(t *testing.T) {
	ix, root := newIndexer(t)
	path := filepath.Join(root, "a.txt")
	writeFile(t, path, "original")

	ctx := context.Background()
	_, err := ix.IndexDirectory(ctx, root, nil)
	require.NoError(t, err)

	future := time.Now().Add(2 * time.Hour)
	require.NoError(t, os.WriteFile(path, []byte("changed content"), 0o644))
	require.NoError(t, os.Chtimes(path, future, future))

	stats, err := ix.Update(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Updated)
	assert.Equal(t, 0, stats.Added)
}

func TestVerifyIndexClassifiesMissing(t *testing.T) {
	ix, root := newIndexer(t)
	path := filepath.Join(root, "a.txt")
	writeFile(t, path, "a")

	ctx := context.Background()
	_, err := ix.IndexDirectory(ctx, root, nil)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))

	stats, err := ix.VerifyIndex(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalIndexed)
	assert.Equal(t, 1, stats.Missing)
	assert.Equal(t, float64(0), stats.Health())
}

func TestUpdateFileUpsertsAndDeletes(t *testing.T) {
	ix, root := newIndexer(t)
	path := filepath.Join(root, "a.txt")
	writeFile(t, path, "a")

	ctx := context.Background()
	require.NoError(t, ix.UpdateFile(ctx, path))

	_, ok, err := ix.Store.FindByPath(ctx, path)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, os.Remove(path))
	require.NoError(t, ix.UpdateFile(ctx, path))

	_, ok, err = ix.Store.FindByPath(ctx, path)
	require.NoError(t, err)
	assert.False(t, ok)
}
