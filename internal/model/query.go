package model

import "time"

// MatchMode selects how Query.Pattern is applied to candidate text.
type MatchMode string

const (
	Exact            MatchMode = "exact"
	CaseInsensitive  MatchMode = "case_insensitive"
	Fuzzy            MatchMode = "fuzzy"
	Regex            MatchMode = "regex"
	Glob             MatchMode = "glob"
)

// Scope selects which field(s) of a FileEntry the pattern is matched
// against.
type Scope string

const (
	ScopeName    Scope = "name"
	ScopePath    Scope = "path"
	ScopeContent Scope = "content"
	ScopeAll     Scope = "all"
)

// SizeFilterKind tags which shape of SizeFilter is populated.
type SizeFilterKind int

const (
	SizeExact SizeFilterKind = iota
	SizeRange
	SizeGreaterThan
	SizeLessThan
)

// SizeFilter restricts candidates by FileEntry.Size.
type SizeFilter struct {
	Kind SizeFilterKind
	N    uint64
	Lo   uint64
	Hi   uint64
}

// Accepts reports whether size satisfies the filter.
func (f SizeFilter) Accepts(size uint64) bool {
	switch f.Kind {
	case SizeExact:
		return size == f.N
	case SizeRange:
		return size >= f.Lo && size <= f.Hi
	case SizeGreaterThan:
		return size > f.N
	case SizeLessThan:
		return size < f.N
	default:
		return true
	}
}

// DateFilterKind tags which shape of DateFilter is populated.
type DateFilterKind int

const (
	DateAfter DateFilterKind = iota
	DateBefore
	DateBetween
	DateOn
)

// DateFilter restricts candidates by FileEntry.ModifiedAt.
type DateFilter struct {
	Kind DateFilterKind
	T    time.Time
	T0   time.Time
	T1   time.Time
}

// Accepts reports whether t (typically ModifiedAt) satisfies the filter.
// An absent ModifiedAt (nil) should be treated as non-matching by
// callers before invoking Accepts.
func (f DateFilter) Accepts(t time.Time) bool {
	switch f.Kind {
	case DateAfter:
		return t.After(f.T)
	case DateBefore:
		return t.Before(f.T)
	case DateBetween:
		return !t.Before(f.T0) && !t.After(f.T1)
	case DateOn:
		y, m, d := f.T.UTC().Date()
		dayStart := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		dayEnd := dayStart.Add(24*time.Hour - time.Second)
		tu := t.UTC()
		return !tu.Before(dayStart) && !tu.After(dayEnd)
	default:
		return true
	}
}

// Query is the structured form the parser produces and the search
// executor consumes. Pattern is required and non-empty.
type Query struct {
	Pattern     string
	MatchMode   MatchMode
	Scope       Scope
	Extensions  []string
	SizeFilter  *SizeFilter
	DateFilter  *DateFilter
	MaxResults  *int
}

// DefaultQuery returns the zero-value defaults spec'd for a bare pattern.
func DefaultQuery(pattern string) Query {
	return Query{Pattern: pattern, MatchMode: CaseInsensitive, Scope: ScopeName}
}

// MatchSpan is an (offset, length) pair within a searched string.
type MatchSpan struct {
	Offset int
	Length int
}

// ResultMatch is a located occurrence within a file, used to build
// snippets and highlight context.
type ResultMatch struct {
	Line    int
	Column  int
	Length  int
	Context string
}

// SearchResult is a scored, ranked hit.
type SearchResult struct {
	File    FileEntry
	Score   float64
	Snippet *string
	Matches []ResultMatch
}

// IndexStats aggregates counts reported by the store.
type IndexStats struct {
	TotalFiles       int64
	TotalDirectories int64
	TotalSizeBytes   uint64
	SizeOnDiskBytes  uint64
	DistinctExtensions int64
}

// UpdateStats reports the outcome of an incremental sync.
type UpdateStats struct {
	Added   int
	Updated int
	Removed int
}

// VerificationStats reports the outcome of a verify pass.
type VerificationStats struct {
	TotalIndexed int
	Valid        int
	Outdated     int
	Missing      int
}

// Health is valid/total expressed as a percent; an empty index reports
// 100 (spec §3).
func (v VerificationStats) Health() float64 {
	if v.TotalIndexed == 0 {
		return 100
	}
	return float64(v.Valid) / float64(v.TotalIndexed) * 100
}
