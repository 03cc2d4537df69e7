// Package match implements C8: the matcher variants over candidate
// text (spec §4.6). Exact/Regex/Glob each expose IsMatch/FindMatches;
// Composite combines a vector of matchers with and/or semantics. Fuzzy
// is handled separately (see fuzzy.go) since the executor's fuzzy path
// scores rather than spans (spec §4.8.3).
package match

import (
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/filesieve/filesieve/internal/fserr"
	"github.com/filesieve/filesieve/internal/model"
)

// Matcher is the common interface every non-fuzzy variant implements.
type Matcher interface {
	IsMatch(text string) bool
	FindMatches(text string) []model.MatchSpan
}

// NewExact returns a substring matcher, optionally case-insensitive.
func NewExact(pattern string, caseSensitive bool) Matcher {
	return &exactMatcher{pattern: pattern, caseSensitive: caseSensitive}
}

type exactMatcher struct {
	pattern       string
	caseSensitive bool
}

func (m *exactMatcher) normalize(s string) string {
	if m.caseSensitive {
		return s
	}
	return strings.ToLower(s)
}

func (m *exactMatcher) IsMatch(text string) bool {
	return strings.Contains(m.normalize(text), m.normalize(m.pattern))
}

func (m *exactMatcher) FindMatches(text string) []model.MatchSpan {
	if m.pattern == "" {
		return nil
	}
	hay := m.normalize(text)
	needle := m.normalize(m.pattern)

	var spans []model.MatchSpan
	offset := 0
	for {
		idx := strings.Index(hay[offset:], needle)
		if idx < 0 {
			break
		}
		spans = append(spans, model.MatchSpan{Offset: offset + idx, Length: len(needle)})
		offset += idx + len(needle)
		if offset >= len(hay) {
			break
		}
	}
	return dedupSorted(spans)
}

// NewRegex compiles pattern as a regular expression matcher.
func NewRegex(pattern string) (Matcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fserr.Wrap(fserr.Parse, "invalid regex pattern", err)
	}
	return &regexMatcher{re: re}, nil
}

type regexMatcher struct {
	re *regexp.Regexp
}

func (m *regexMatcher) IsMatch(text string) bool {
	return m.re.MatchString(text)
}

func (m *regexMatcher) FindMatches(text string) []model.MatchSpan {
	locs := m.re.FindAllStringIndex(text, -1)
	spans := make([]model.MatchSpan, 0, len(locs))
	for _, loc := range locs {
		spans = append(spans, model.MatchSpan{Offset: loc[0], Length: loc[1] - loc[0]})
	}
	return dedupSorted(spans)
}

// NewGlob matches the whole text against a doublestar glob pattern
// (full ** support, unlike stdlib filepath.Match).
func NewGlob(pattern string) (Matcher, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fserr.Newf(fserr.Parse, "invalid glob pattern: %s", pattern)
	}
	return &globMatcher{pattern: pattern}, nil
}

type globMatcher struct {
	pattern string
}

func (m *globMatcher) IsMatch(text string) bool {
	ok, _ := doublestar.Match(m.pattern, text)
	return ok
}

func (m *globMatcher) FindMatches(text string) []model.MatchSpan {
	if !m.IsMatch(text) {
		return nil
	}
	return []model.MatchSpan{{Offset: 0, Length: len(text)}}
}

// CombineMode selects and/or semantics for Composite.
type CombineMode int

const (
	CombineAnd CombineMode = iota
	CombineOr
)

// Composite evaluates a vector of matchers with and/or semantics, then
// dedups and sorts the union of all spans by offset.
type Composite struct {
	Matchers []Matcher
	Mode     CombineMode
}

func (c *Composite) IsMatch(text string) bool {
	if len(c.Matchers) == 0 {
		return false
	}
	switch c.Mode {
	case CombineOr:
		for _, m := range c.Matchers {
			if m.IsMatch(text) {
				return true
			}
		}
		return false
	default: // CombineAnd
		for _, m := range c.Matchers {
			if !m.IsMatch(text) {
				return false
			}
		}
		return true
	}
}

func (c *Composite) FindMatches(text string) []model.MatchSpan {
	var all []model.MatchSpan
	for _, m := range c.Matchers {
		all = append(all, m.FindMatches(text)...)
	}
	return dedupSorted(all)
}

func dedupSorted(spans []model.MatchSpan) []model.MatchSpan {
	if len(spans) == 0 {
		return spans
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Offset != spans[j].Offset {
			return spans[i].Offset < spans[j].Offset
		}
		return spans[i].Length < spans[j].Length
	})
	out := spans[:1]
	for _, s := range spans[1:] {
		last := out[len(out)-1]
		if s.Offset == last.Offset && s.Length == last.Length {
			continue
		}
		out = append(out, s)
	}
	return out
}

// ForMode builds the Matcher spec.Query.MatchMode calls for; Fuzzy has
// no Matcher (handled by the executor's distinct scoring path) so
// callers must special-case it before reaching here.
func ForMode(mode model.MatchMode, pattern string) (Matcher, error) {
	switch mode {
	case model.Exact:
		return NewExact(pattern, true), nil
	case model.CaseInsensitive:
		return NewExact(pattern, false), nil
	case model.Regex:
		return NewRegex(pattern)
	case model.Glob:
		return NewGlob(pattern)
	default:
		return nil, fserr.Newf(fserr.InvalidQuery, "unsupported match mode for matcher construction: %s", mode)
	}
}
