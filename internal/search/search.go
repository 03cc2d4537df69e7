// Package search implements C10: the search executor (spec §4.8). It
// composes the candidate-selection, filter-pipeline, matching, and
// ranking steps the spec lays out in order, dispatching to the store
// (C5), matchers (C8), and ranker (C9) built elsewhere in this module.
package search

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/filesieve/filesieve/internal/debug"
	"github.com/filesieve/filesieve/internal/match"
	"github.com/filesieve/filesieve/internal/model"
	"github.com/filesieve/filesieve/internal/rank"
	"github.com/filesieve/filesieve/internal/store"
)

const fuzzyScanCap = 10000

// Executor answers structured queries against the persistent index.
type Executor struct {
	Store               *store.Store
	EnableContentSearch bool
	FuzzyThreshold      float64
	DefaultMaxResults   int
	RankOptions         rank.Options
}

// Search runs q end to end: candidate selection, filtering, matching,
// and ranking (spec §4.8.1-4.8.4).
func (ex *Executor) Search(ctx context.Context, q model.Query) ([]model.SearchResult, error) {
	maxResults := ex.DefaultMaxResults
	if maxResults <= 0 {
		maxResults = 1000
	}
	if q.MaxResults != nil {
		maxResults = *q.MaxResults
	}

	debug.LogSearch("query pattern=%q mode=%s scope=%s max=%d", q.Pattern, q.MatchMode, q.Scope, maxResults)

	if q.MatchMode == model.Fuzzy {
		return ex.searchFuzzy(ctx, q, maxResults)
	}

	candidates, err := ex.selectCandidates(ctx, q, maxResults)
	if err != nil {
		return nil, err
	}

	matcher, err := ex.matcherFor(q)
	if err != nil {
		return nil, err
	}

	results := make([]model.SearchResult, 0, len(candidates))
	for _, c := range candidates {
		if !passesFilters(c, q) {
			continue
		}
		if !ex.matches(c, q, matcher) {
			continue
		}
		results = append(results, model.SearchResult{File: c, Score: 0})
	}

	opts := ex.RankOptions
	if opts.Now.IsZero() {
		opts = rank.Options{Now: time.Now()}
	}
	for i := range results {
		results[i].Score = rank.Score(results[i].File, q.Pattern, opts)
	}
	rank.Sort(results)

	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// selectCandidates implements spec §4.8.1's per-scope candidate pulls.
func (ex *Executor) selectCandidates(ctx context.Context, q model.Query, maxResults int) ([]model.FileEntry, error) {
	limit := 2 * maxResults

	switch q.Scope {
	case model.ScopePath:
		return ex.Store.SearchByName(ctx, q.Pattern, limit)
	case model.ScopeContent:
		if !ex.EnableContentSearch {
			return nil, nil
		}
		ids, err := ex.Store.SearchContent(ctx, q.Pattern, limit)
		if err != nil {
			return nil, err
		}
		entries := make([]model.FileEntry, 0, len(ids))
		for _, id := range ids {
			e, ok, err := ex.Store.FindByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if ok {
				entries = append(entries, e)
			}
		}
		return entries, nil
	case model.ScopeAll:
		return ex.Store.GetAllFiles(ctx, limit, 0)
	default: // model.ScopeName, ""
		if len(q.Extensions) == 1 {
			return ex.Store.SearchByExtension(ctx, q.Extensions[0], limit)
		}
		return ex.Store.SearchByName(ctx, q.Pattern, limit)
	}
}

// matcherFor builds the matcher for q's pattern/mode, or nil when the
// scope short-circuits matching (Content: already matched by SQL).
func (ex *Executor) matcherFor(q model.Query) (match.Matcher, error) {
	if q.Scope == model.ScopeContent {
		return nil, nil
	}
	return match.ForMode(q.MatchMode, q.Pattern)
}

func (ex *Executor) matches(e model.FileEntry, q model.Query, matcher match.Matcher) bool {
	if q.Scope == model.ScopeContent || matcher == nil {
		return true
	}
	text := e.Name
	if q.Scope == model.ScopePath {
		text = e.Path
	}
	return matcher.IsMatch(text)
}

// passesFilters applies the extension/size/date pipeline in order
// (spec §4.8.2).
func passesFilters(e model.FileEntry, q model.Query) bool {
	if len(q.Extensions) > 0 {
		ok := false
		for _, ext := range q.Extensions {
			if strings.EqualFold(e.Extension, ext) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if q.SizeFilter != nil && !q.SizeFilter.Accepts(e.Size) {
		return false
	}
	if q.DateFilter != nil {
		if e.ModifiedAt == nil || !q.DateFilter.Accepts(*e.ModifiedAt) {
			return false
		}
	}
	return true
}

// searchFuzzy is the executor's distinct fuzzy path (spec §4.8.3): pull
// up to 10,000 entries, filter, score by subsequence match, keep those
// at or above fuzzy_threshold*100, sort descending, truncate.
func (ex *Executor) searchFuzzy(ctx context.Context, q model.Query, maxResults int) ([]model.SearchResult, error) {
	entries, err := ex.Store.GetAllFiles(ctx, fuzzyScanCap, 0)
	if err != nil {
		return nil, err
	}

	threshold := ex.FuzzyThreshold
	if threshold <= 0 {
		threshold = 0.7
	}
	minScore := threshold * 100

	type scored struct {
		entry model.FileEntry
		raw   int
	}
	var hits []scored
	for _, e := range entries {
		if !passesFilters(e, q) {
			continue
		}
		raw := match.FuzzyScore(e.Name, q.Pattern)
		if float64(raw) >= minScore {
			hits = append(hits, scored{entry: e, raw: raw})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].raw > hits[j].raw })
	if len(hits) > maxResults {
		hits = hits[:maxResults]
	}

	results := make([]model.SearchResult, len(hits))
	for i, h := range hits {
		results[i] = model.SearchResult{File: h.entry, Score: float64(h.raw) / 100}
	}
	return results, nil
}
