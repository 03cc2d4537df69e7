package search

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filesieve/filesieve/internal/model"
	"github.com/filesieve/filesieve/internal/rank"
	"github.com/filesieve/filesieve/internal/store"
)

func newExecutor(t *testing.T, entries []model.FileEntry) *Executor {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "index.db"), 4, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = s.UpsertBatch(context.Background(), entries)
	require.NoError(t, err)

	return &Executor{
		Store:             s,
		EnableContentSearch: false,
		FuzzyThreshold:    0.7,
		DefaultMaxResults: 1000,
		RankOptions:       rank.Options{Now: time.Now()},
	}
}

func entry(path string, size uint64) model.FileEntry {
	e := model.NewFileEntry(path)
	now := time.Now()
	e.Size = size
	e.ModifiedAt = &now
	e.IndexedAt = now
	e.LastVerified = now
	return e
}

func TestSearchBasicNameMatch(t *testing.T) {
	ex := newExecutor(t, []model.FileEntry{
		entry("/data/a.txt", 10),
		entry("/data/b.rs", 10),
		entry("/data/sub/c.txt", 10),
	})

	results, err := ex.Search(context.Background(), model.DefaultQuery("a"))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a.txt", results[0].File.Name)
}

func TestSearchExtensionFilterNarrowsCandidates(t *testing.T) {
	ex := newExecutor(t, []model.FileEntry{
		entry("/data/a.txt", 10),
		entry("/data/b.rs", 10),
		entry("/data/sub/c.txt", 10),
	})

	q := model.DefaultQuery("c")
	q.Extensions = []string{"txt"}
	results, err := ex.Search(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c.txt", results[0].File.Name)

	q2 := model.DefaultQuery("c")
	q2.Extensions = []string{"rs"}
	results2, err := ex.Search(context.Background(), q2)
	require.NoError(t, err)
	assert.Empty(t, results2)
}

func TestSearchFuzzyModePrefersPrefix(t *testing.T) {
	ex := newExecutor(t, []model.FileEntry{
		entry("/data/alpha.rs", 10),
		entry("/data/alphabet.rs", 10),
		entry("/data/beta.rs", 10),
	})

	q := model.DefaultQuery("alp")
	q.MatchMode = model.Fuzzy
	results, err := ex.Search(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, results, 2)

	var alpha, alphabet float64
	for _, r := range results {
		switch r.File.Name {
		case "alpha.rs":
			alpha = r.Score
		case "alphabet.rs":
			alphabet = r.Score
		}
	}
	assert.Greater(t, alpha, alphabet)
}

func TestSearchSizeFilterRange(t *testing.T) {
	ex := newExecutor(t, []model.FileEntry{
		entry("/data/small.bin", 500),
		entry("/data/mid.bin", 1024),
		entry("/data/big.bin", 4096),
	})

	q := model.DefaultQuery("bin")
	q.SizeFilter = &model.SizeFilter{Kind: model.SizeGreaterThan, N: 1024}
	results, err := ex.Search(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "big.bin", results[0].File.Name)

	q2 := model.DefaultQuery("bin")
	q2.SizeFilter = &model.SizeFilter{Kind: model.SizeRange, Lo: 500, Hi: 2000}
	results2, err := ex.Search(context.Background(), q2)
	require.NoError(t, err)
	assert.Len(t, results2, 2)
}

func TestSearchContentScopeDisabledReturnsEmpty(t *testing.T) {
	ex := newExecutor(t, []model.FileEntry{entry("/data/a.txt", 10)})

	q := model.DefaultQuery("anything")
	q.Scope = model.ScopeContent
	results, err := ex.Search(context.Background(), q)
	require.NoError(t, err)
	assert.Empty(t, results)
}
