// Package rank implements C9: scoring and ordering SearchResults (spec
// §4.9). The weighted name/depth/recency blend and the boost re-sort
// step follow the shape of the teacher's semantic scoring passes
// (internal/semantic), generalized here from embedding similarity to
// filename scoring. The Levenshtein fallback tier uses
// github.com/hbollon/go-edlib, the same library the teacher's
// fuzzy_matcher.go already depends on.
package rank

import (
	"sort"
	"strings"
	"time"

	"github.com/hbollon/go-edlib"

	"github.com/filesieve/filesieve/internal/match"
	"github.com/filesieve/filesieve/internal/model"
)

// Options carries the boosts applicable when scoring (spec §4.9
// "Optional boosts").
type Options struct {
	Now                time.Time
	PreferredExtensions []string
	SizeBoostPreferSmall bool
	SizeBoostEnabled     bool
	MinSize, MaxSize     uint64
}

// Score computes score(entry, query) per spec §4.9.
func Score(entry model.FileEntry, pattern string, opts Options) float64 {
	return 0.5*nameMatch(entry.Name, pattern) +
		0.2*depthFactor(entry.Path) +
		0.3*recency(entry.ModifiedAt, opts.Now)
}

func nameMatch(name, pattern string) float64 {
	if pattern == "" {
		return 0
	}
	lowerName := strings.ToLower(name)
	lowerPattern := strings.ToLower(pattern)

	switch {
	case lowerName == lowerPattern:
		return 1.0
	case strings.HasPrefix(lowerName, lowerPattern):
		return 0.9
	case strings.Contains(lowerName, lowerPattern):
		return 0.45
	}

	if raw := match.FuzzyScore(name, pattern); raw > 0 {
		normalized := float64(raw) / (16 * float64(len([]rune(pattern))))
		if normalized > 1 {
			normalized = 1
		}
		return 0.7 * normalized
	}

	// go-edlib's Levenshtein mode returns 1 - distance/maxLen directly,
	// which is exactly the spec's (1 - levenshtein/max_len) term.
	similarity, err := edlib.StringsSimilarity(lowerName, lowerPattern, edlib.Levenshtein)
	if err != nil {
		return 0
	}
	return 0.5 * float64(similarity)
}

func depthFactor(path string) float64 {
	depth := pathDepth(path)
	capped := float64(depth) / 20
	if capped > 1 {
		capped = 1
	}
	return 1 - capped*0.5
}

func pathDepth(path string) int {
	clean := strings.Trim(strings.ReplaceAll(path, "\\", "/"), "/")
	if clean == "" {
		return 0
	}
	return len(strings.Split(clean, "/"))
}

func recency(modifiedAt *time.Time, now time.Time) float64 {
	if modifiedAt == nil {
		return 0.5
	}
	age := now.Sub(*modifiedAt)
	switch {
	case age < 24*time.Hour:
		return 1.0
	case age < 7*24*time.Hour:
		return 0.9
	case age < 30*24*time.Hour:
		return 0.7
	case age < 90*24*time.Hour:
		return 0.5
	case age < 365*24*time.Hour:
		return 0.3
	default:
		return 0.1
	}
}

// ApplyBoosts multiplies preferred-extension and size boosts onto
// already-scored results, then re-sorts (spec §4.9's "Boosts re-sort
// after application").
func ApplyBoosts(results []model.SearchResult, opts Options) []model.SearchResult {
	preferred := make(map[string]bool, len(opts.PreferredExtensions))
	for _, ext := range opts.PreferredExtensions {
		preferred[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}

	for i := range results {
		entry := results[i].File
		if preferred[strings.ToLower(entry.Extension)] {
			results[i].Score *= 1.2
		}
		if opts.SizeBoostEnabled && opts.MaxSize > opts.MinSize {
			delta := normalizedSizeDelta(entry.Size, opts.MinSize, opts.MaxSize, opts.SizeBoostPreferSmall)
			results[i].Score *= 1 + delta*0.1
		}
	}

	Sort(results)
	return results
}

func normalizedSizeDelta(size, min, max uint64, preferSmall bool) float64 {
	if max <= min {
		return 0
	}
	frac := float64(size-min) / float64(max-min)
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	if preferSmall {
		return 1 - frac
	}
	return frac
}

// Sort orders results by descending score, ties broken by ascending
// name (spec §4.9).
func Sort(results []model.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].File.Name < results[j].File.Name
	})
}
