package match

import "strings"

// FuzzyScore implements a SkimV2-style character-subsequence scorer:
// pattern characters must appear in text in order (not necessarily
// contiguous); consecutive and word-boundary matches score higher than
// scattered ones. No example repo implements this exact algorithm, so
// it is hand-rolled here; the Levenshtein path used
// elsewhere in the ranker (spec §4.9's fallback tiers) comes from
// hbollon/go-edlib, grounded on the teacher's fuzzy_matcher.go.
//
// Returns a raw, unnormalized score: 0 if pattern is not a subsequence
// of text, otherwise a positive integer that increases with match
// quality (consecutive runs, word-boundary starts, overall compactness).
func FuzzyScore(text, pattern string) int {
	if pattern == "" {
		return 0
	}
	t := []rune(strings.ToLower(text))
	p := []rune(strings.ToLower(pattern))

	ti := 0
	score := 0
	consecutive := 0
	matchedAny := false
	firstMatch := -1
	lastMatch := -1

	for pi := 0; pi < len(p); pi++ {
		found := false
		for ; ti < len(t); ti++ {
			if t[ti] == p[pi] {
				found = true
				matchedAny = true
				if firstMatch < 0 {
					firstMatch = ti
				}
				lastMatch = ti

				base := 10
				if ti == 0 || isWordBoundary(t, ti) {
					base += 15
				}
				consecutive++
				base += (consecutive - 1) * 5
				score += base

				ti++
				break
			}
			consecutive = 0
		}
		if !found {
			return 0
		}
	}

	if !matchedAny {
		return 0
	}

	span := lastMatch - firstMatch + 1
	compactness := len(p) * 8
	if span > len(p) {
		compactness -= (span - len(p)) * 2
		if compactness < 0 {
			compactness = 0
		}
	}
	score += compactness

	// Penalize every text character beyond the pattern's length (unmatched
	// characters before, inside or after the match span): two candidates whose
	// pattern-matching prefix is identical (e.g. "alpha.rs" and
	// "alphabet.rs" against "alp") must not tie, or the shorter, tighter
	// candidate never wins the way spec's fuzzy-prefers-prefix scenario
	// requires.
	if extra := len(t) - len(p); extra > 0 {
		score -= extra
	}

	if score < 1 {
		score = 1
	}
	return score
}

func isWordBoundary(t []rune, i int) bool {
	if i == 0 {
		return true
	}
	prev := t[i-1]
	return prev == '/' || prev == '\\' || prev == '_' || prev == '-' || prev == '.' || prev == ' '
}
