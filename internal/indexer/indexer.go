// Package indexer implements C11: building and incrementally
// maintaining the persistent index (spec §4.10). It drives the walker
// (C3), metadata extractor (C2), content analyzer (C4), and caches
// (C6) into batched store (C5) writes, and computes add/update/remove
// deltas for `update_index` and missing/outdated/valid classification
// for `verify_index`.
package indexer

import (
	"context"
	"os"
	"time"

	"github.com/filesieve/filesieve/internal/cache"
	"github.com/filesieve/filesieve/internal/content"
	"github.com/filesieve/filesieve/internal/debug"
	"github.com/filesieve/filesieve/internal/exclude"
	"github.com/filesieve/filesieve/internal/fserr"
	"github.com/filesieve/filesieve/internal/metadata"
	"github.com/filesieve/filesieve/internal/model"
	"github.com/filesieve/filesieve/internal/store"
	"github.com/filesieve/filesieve/internal/walker"
)

// Indexer owns the pipeline from filesystem to persisted FileEntry
// rows for one or more roots.
type Indexer struct {
	Store   *store.Store
	Exclude *exclude.Filter

	WalkOptions         walker.Options
	EnableContentSearch bool
	MaxContentSize      int64
	BatchSize           int

	LRU   *cache.EntryLRU
	Bloom *cache.Bloom
}

// IndexDirectory walks root, extracts metadata (and content previews
// when enabled) for every surviving path, and commits them in batches.
// Cancellation is checked between batches via ctx: already-committed
// batches are preserved and the count reflects only what committed
// (spec §5 "a cancelled build returns 0 inserted for the remaining
// batches but preserves already-committed batches").
func (ix *Indexer) IndexDirectory(ctx context.Context, root string, progress model.ProgressReporter) (int, error) {
	if progress == nil {
		progress = model.NoopProgress{}
	}

	paths := walker.Walk(root, ix.Exclude, ix.WalkOptions)
	batchSize := ix.BatchSize
	if batchSize <= 0 {
		batchSize = 1000
	}

	total := len(paths)
	committed := 0
	debug.LogIndex("building index for %s: %d candidate paths", root, total)

	for start := 0; start < len(paths); start += batchSize {
		if err := ctx.Err(); err != nil {
			debug.LogIndex("build cancelled after %d/%d committed", committed, total)
			return committed, nil
		}

		end := start + batchSize
		if end > len(paths) {
			end = len(paths)
		}
		batchPaths := paths[start:end]

		entries := ix.extractBatch(ctx, batchPaths)
		ids, err := ix.Store.UpsertBatch(ctx, entries)
		if err != nil {
			return committed, err
		}
		ix.indexContent(ctx, entries, ids)
		ix.warmCaches(entries)

		committed += len(entries)
		progress.Report(model.Progress{
			Current:    committed,
			Total:      total,
			Message:    "indexing",
			Percentage: percentage(committed, total),
		})
	}

	return committed, nil
}

func (ix *Indexer) extractBatch(ctx context.Context, paths []string) []model.FileEntry {
	raw, errs := metadata.ExtractParallel(ctx, paths, 0)
	now := time.Now()

	entries := make([]model.FileEntry, 0, len(raw))
	for i, e := range raw {
		if errs[i] != nil {
			// spec §7: per-file walk/batch failures log and are skipped.
			debug.LogIndex("skipping %s: %v", paths[i], errs[i])
			continue
		}
		e.IndexedAt = now
		e.LastVerified = now
		entries = append(entries, e)
	}
	return entries
}

func (ix *Indexer) indexContent(ctx context.Context, entries []model.FileEntry, ids []int64) {
	if !ix.EnableContentSearch || len(ids) != len(entries) {
		return
	}
	for i, e := range entries {
		if e.IsDirectory {
			continue
		}
		preview, err := content.Analyze(e.Path, ix.MaxContentSize)
		if err != nil || preview == nil {
			continue
		}
		preview.FileID = ids[i]
		_ = ix.Store.UpsertContent(ctx, ids[i], *preview)
	}
}

func (ix *Indexer) warmCaches(entries []model.FileEntry) {
	for _, e := range entries {
		if ix.Bloom != nil {
			ix.Bloom.Add(e.Path)
		}
		if ix.LRU != nil {
			ix.LRU.Set(e.Path, e)
		}
	}
}

// Update computes and applies the add/update/remove delta between the
// filesystem under root and the persisted rows under root (spec §4.10).
func (ix *Indexer) Update(ctx context.Context, root string) (model.UpdateStats, error) {
	currentPaths := walker.Walk(root, ix.Exclude, ix.WalkOptions)
	currentSet := make(map[string]bool, len(currentPaths))
	for _, p := range currentPaths {
		currentSet[p] = true
	}

	existing, err := ix.allUnderPath(ctx, root)
	if err != nil {
		return model.UpdateStats{}, err
	}
	existingByPath := make(map[string]model.FileEntry, len(existing))
	for _, e := range existing {
		existingByPath[e.Path] = e
	}

	var toUpsert []model.FileEntry
	stats := model.UpdateStats{}

	for _, p := range currentPaths {
		if err := ctx.Err(); err != nil {
			break
		}
		e, err := metadata.Extract(p)
		if err != nil {
			continue
		}
		now := time.Now()
		e.LastVerified = now

		if prior, ok := existingByPath[p]; !ok {
			e.IndexedAt = now
			toUpsert = append(toUpsert, e)
			stats.Added++
		} else if isNewerThan(e.ModifiedAt, prior.ModifiedAt) {
			e.ID = prior.ID
			e.IndexedAt = prior.IndexedAt
			toUpsert = append(toUpsert, e)
			stats.Updated++
		}
	}

	for _, e := range existing {
		if !currentSet[e.Path] {
			if err := ix.Store.DeleteByPath(ctx, e.Path); err != nil {
				return stats, err
			}
			if ix.LRU != nil {
				ix.LRU.Invalidate(e.Path)
			}
			stats.Removed++
		}
	}

	if len(toUpsert) > 0 {
		ids, err := ix.Store.UpsertBatch(ctx, toUpsert)
		if err != nil {
			return stats, err
		}
		ix.indexContent(ctx, toUpsert, ids)
		ix.warmCaches(toUpsert)
	}

	return stats, nil
}

// UpdateFile re-indexes (or removes, if absent) a single path. Used by
// the watcher's debounced event delivery (C12).
func (ix *Indexer) UpdateFile(ctx context.Context, path string) error {
	if ix.Exclude.IsExcluded(path) {
		return nil
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			if err := ix.Store.DeleteByPath(ctx, path); err != nil {
				return err
			}
			if ix.LRU != nil {
				ix.LRU.Invalidate(path)
			}
			return nil
		}
		return fserr.Wrap(fserr.IO, "stat failed: "+path, err)
	}

	e, err := metadata.Extract(path)
	if err != nil {
		return err
	}
	now := time.Now()
	e.IndexedAt = now
	e.LastVerified = now

	if prior, ok, err := ix.Store.FindByPath(ctx, path); err == nil && ok {
		e.ID = prior.ID
		e.IndexedAt = prior.IndexedAt
	}

	ids, err := ix.Store.UpsertBatch(ctx, []model.FileEntry{e})
	if err != nil {
		return err
	}
	ix.indexContent(ctx, []model.FileEntry{e}, ids)
	ix.warmCaches([]model.FileEntry{e})
	return nil
}

// VerifyIndex classifies every persisted row under root as valid,
// outdated (on-disk mtime differs at whole-second precision, the
// precision the store keeps), or missing (no longer present).
func (ix *Indexer) VerifyIndex(ctx context.Context, root string) (model.VerificationStats, error) {
	existing, err := ix.allUnderPath(ctx, root)
	if err != nil {
		return model.VerificationStats{}, err
	}

	stats := model.VerificationStats{TotalIndexed: len(existing)}
	for _, e := range existing {
		info, err := os.Stat(e.Path)
		if err != nil {
			stats.Missing++
			continue
		}
		mtime := info.ModTime()
		if e.ModifiedAt == nil || mtime.Unix() != e.ModifiedAt.Unix() {
			stats.Outdated++
			continue
		}
		stats.Valid++
	}
	return stats, nil
}

func (ix *Indexer) allUnderPath(ctx context.Context, root string) ([]model.FileEntry, error) {
	const pageSize = 1000
	var all []model.FileEntry
	for offset := 0; ; offset += pageSize {
		page, err := ix.Store.GetFilesUnderPath(ctx, root, pageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pageSize {
			break
		}
	}
	return all, nil
}

// isNewerThan reports whether a's mtime is strictly after b's at
// whole-second precision (the precision the store keeps), treating the
// absence of exactly one side as "changed" so a round-trip through an
// entry missing ModifiedAt never silently stops updating; two absent
// values are not a change.
func isNewerThan(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a != b
	}
	return a.Unix() > b.Unix()
}

func percentage(current, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(current) / float64(total) * 100
}
