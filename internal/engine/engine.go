// Package engine implements C14: the facade spec.md §6's External
// Interfaces describe, wiring the store (C5), caches (C6), query
// parser (C7), search executor (C10), incremental indexer (C11), and
// watcher (C12) behind a single handle. Grounded on the teacher's
// cmd/lci/main.go construction sequence and internal/search/engine.go
// facade shape, generalized from LCI's code-search domain to
// filesieve's file-search domain.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/filesieve/filesieve/internal/cache"
	"github.com/filesieve/filesieve/internal/config"
	"github.com/filesieve/filesieve/internal/exclude"
	"github.com/filesieve/filesieve/internal/fserr"
	"github.com/filesieve/filesieve/internal/indexer"
	"github.com/filesieve/filesieve/internal/model"
	"github.com/filesieve/filesieve/internal/query"
	"github.com/filesieve/filesieve/internal/rank"
	"github.com/filesieve/filesieve/internal/search"
	"github.com/filesieve/filesieve/internal/store"
	"github.com/filesieve/filesieve/internal/walker"
	"github.com/filesieve/filesieve/internal/watch"
)

// Engine is the single shared handle a CLI or embedding application
// drives. Store, caches, and config are immutable-after-construction;
// StartWatching/StopWatching take the instance mutex, per the "shared
// ownership of the engine" design, and AddExclusionPattern takes it to
// swap in a rebuilt exclusion filter. The other methods take no
// engine-level lock and rely on the store's own connection pool and the
// caches' internal locking.
type Engine struct {
	cfg     *config.Config
	store   *store.Store
	exclude *exclude.Filter
	lru     *cache.EntryLRU
	bloom   *cache.Bloom
	indexer *indexer.Indexer
	search  *search.Executor

	watchMu sync.Mutex
	watcher *watch.Watcher
	stopped chan struct{}
}

// New opens (or creates) the index at path's project root using
// defaults merged with any on-disk configuration.
func New(root string) (*Engine, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	return WithConfig(root, cfg)
}

// WithConfig builds an Engine from an already-loaded Config, skipping
// config.Load entirely. Useful for tests and for callers that want to
// override documented defaults programmatically.
func WithConfig(root string, cfg *config.Config) (*Engine, error) {
	s, err := store.Open(cfg.IndexPath, cfg.DBPoolSize, cfg.CacheSize)
	if err != nil {
		return nil, err
	}

	rules, err := loadExclusionRules(context.Background(), s, cfg)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	filter, err := exclude.New(rules)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	lru := cache.NewEntryLRU(cfg.CacheSize)
	bloom := cache.NewBloom(cfg.BloomFilterCapacity, cfg.BloomFilterErrorRate)

	ix := &indexer.Indexer{
		Store:   s,
		Exclude: filter,
		WalkOptions: walker.Options{
			FollowSymlinks:   cfg.FollowSymlinks,
			IndexHiddenFiles: cfg.IndexHiddenFiles,
		},
		EnableContentSearch: cfg.EnableContentSearch,
		MaxContentSize:      cfg.MaxFileSizeForContent,
		BatchSize:           cfg.BatchSize,
		LRU:                 lru,
		Bloom:               bloom,
	}

	ex := &search.Executor{
		Store:               s,
		EnableContentSearch: cfg.EnableContentSearch,
		FuzzyThreshold:      cfg.FuzzyThreshold,
		DefaultMaxResults:   cfg.MaxSearchResults,
		RankOptions:         rank.Options{Now: time.Now()},
	}

	_ = root
	return &Engine{
		cfg:     cfg,
		store:   s,
		exclude: filter,
		lru:     lru,
		bloom:   bloom,
		indexer: ix,
		search:  ex,
	}, nil
}

// loadExclusionRules implements spec §3's ExclusionRule lifecycle:
// "persisted; loaded at engine init; overrides the default set if
// non-empty". On a fresh index the store has no persisted rules yet, so
// cfg's (config-file, gitignore, and build-artifact derived) patterns
// are seeded into the store and used as-is. Once any rule has been
// persisted — by this seeding or by AddExclusionPattern — the persisted
// set is authoritative on every subsequent engine construction.
func loadExclusionRules(ctx context.Context, s *store.Store, cfg *config.Config) ([]model.ExclusionRule, error) {
	persisted, err := s.ListExclusionRules(ctx)
	if err != nil {
		return nil, err
	}
	if len(persisted) > 0 {
		return persisted, nil
	}

	for _, rule := range cfg.ExclusionPatterns {
		if err := s.AddExclusionRule(ctx, rule); err != nil {
			return nil, err
		}
	}
	return cfg.ExclusionPatterns, nil
}

// Close releases the underlying store connection pool. StopWatching is
// called first if a watch is active.
func (e *Engine) Close() error {
	_ = e.StopWatching()
	return e.store.Close()
}

// IndexDirectory performs a full build of root (spec §4.10 build_index).
func (e *Engine) IndexDirectory(ctx context.Context, root string, progress model.ProgressReporter) (int, error) {
	return e.indexer.IndexDirectory(ctx, root, progress)
}

// UpdateIndex computes and applies the add/update/remove delta for root.
func (e *Engine) UpdateIndex(ctx context.Context, root string) (model.UpdateStats, error) {
	return e.indexer.Update(ctx, root)
}

// Search parses a query line and executes it.
func (e *Engine) Search(ctx context.Context, line string) ([]model.SearchResult, error) {
	q, err := query.Parse(line, time.Now())
	if err != nil {
		return nil, err
	}
	return e.SearchWithQuery(ctx, q)
}

// SearchWithQuery executes an already-parsed structured query.
func (e *Engine) SearchWithQuery(ctx context.Context, q model.Query) ([]model.SearchResult, error) {
	results, err := e.search.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	if e.cfg.EnableAccessTracking {
		_ = e.store.RecordSearchHistory(ctx, q.Pattern, len(results))
	}
	return results, nil
}

// StartWatching begins watching root for changes, feeding debounced
// events into UpdateFile. Calling it while a watch is already active
// returns fserr.Watch.
func (e *Engine) StartWatching(root string) error {
	e.watchMu.Lock()
	defer e.watchMu.Unlock()

	if e.watcher != nil {
		return fserr.New(fserr.Watch, "a watch is already active")
	}

	w, err := watch.New(root, e.exclude, time.Duration(e.cfg.WatchDebounceMs)*time.Millisecond)
	if err != nil {
		return fserr.Wrap(fserr.Watch, "failed to start watcher", err)
	}
	w.Start()

	e.watcher = w
	e.stopped = make(chan struct{})
	go e.consumeEvents(w, e.stopped)
	return nil
}

// StopWatching stops an active watch, if any. Safe to call when no
// watch is active.
func (e *Engine) StopWatching() error {
	e.watchMu.Lock()
	w := e.watcher
	e.watcher = nil
	stopped := e.stopped
	e.stopped = nil
	e.watchMu.Unlock()

	if w == nil {
		return nil
	}
	err := w.Stop()
	if stopped != nil {
		<-stopped
	}
	return err
}

func (e *Engine) consumeEvents(w *watch.Watcher, done chan struct{}) {
	defer close(done)
	ctx := context.Background()
	for ev := range w.Events() {
		_ = e.indexer.UpdateFile(ctx, ev.Path)
	}
}

// GetStats reports aggregate index statistics.
func (e *Engine) GetStats(ctx context.Context) (model.IndexStats, error) {
	return e.store.GetStats(ctx)
}

// VerifyIndex classifies every persisted row under root as valid,
// outdated, or missing.
func (e *Engine) VerifyIndex(ctx context.Context, root string) (model.VerificationStats, error) {
	return e.indexer.VerifyIndex(ctx, root)
}

// ClearIndex drops every indexed row (schema and exclusion rules
// survive) and clears the in-memory caches.
func (e *Engine) ClearIndex(ctx context.Context) error {
	if err := e.store.ClearAll(ctx); err != nil {
		return err
	}
	e.lru.Clear()
	e.bloom.Reset()
	return nil
}

// Vacuum reclaims on-disk space in the persistent store.
func (e *Engine) Vacuum(ctx context.Context) error {
	return e.store.Vacuum(ctx)
}

// AddExclusionPattern persists a new glob exclusion rule and rebuilds
// the in-memory filter so it takes effect on the next walk.
func (e *Engine) AddExclusionPattern(ctx context.Context, pattern string) error {
	rule := model.ExclusionRule{Pattern: pattern, Kind: model.RuleGlob, CreatedAt: time.Now()}
	if err := e.store.AddExclusionRule(ctx, rule); err != nil {
		return err
	}

	rules, err := e.store.ListExclusionRules(ctx)
	if err != nil {
		return err
	}
	filter, err := exclude.New(rules)
	if err != nil {
		return err
	}

	e.watchMu.Lock()
	e.exclude = filter
	e.indexer.Exclude = filter
	e.watchMu.Unlock()
	return nil
}
