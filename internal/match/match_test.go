package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExactMatcherCaseSensitivity(t *testing.T) {
	m := NewExact("Report", true)
	assert.True(t, m.IsMatch("Quarterly Report Final"))
	assert.False(t, m.IsMatch("quarterly report final"))

	ci := NewExact("Report", false)
	assert.True(t, ci.IsMatch("quarterly report final"))
}

func TestExactMatcherFindMatchesDedupSorted(t *testing.T) {
	m := NewExact("ab", false)
	spans := m.FindMatches("ab cd ab ef AB")
	require.Len(t, spans, 3)
	assert.Equal(t, 0, spans[0].Offset)
	assert.True(t, spans[1].Offset > spans[0].Offset)
	assert.True(t, spans[2].Offset > spans[1].Offset)
}

func TestRegexMatcher(t *testing.T) {
	m, err := NewRegex(`\d+`)
	require.NoError(t, err)
	assert.True(t, m.IsMatch("file42.txt"))

	spans := m.FindMatches("file42 and file7")
	require.Len(t, spans, 2)
}

func TestRegexMatcherInvalidPattern(t *testing.T) {
	_, err := NewRegex(`(unclosed`)
	assert.Error(t, err)
}

func TestGlobMatcherWholeString(t *testing.T) {
	m, err := NewGlob("**/*.go")
	require.NoError(t, err)
	assert.True(t, m.IsMatch("internal/match/match.go"))
	assert.False(t, m.IsMatch("internal/match/match.rs"))
}

func TestCompositeAndOr(t *testing.T) {
	a := NewExact("foo", false)
	b := NewExact("bar", false)

	and := &Composite{Matchers: []Matcher{a, b}, Mode: CombineAnd}
	assert.True(t, and.IsMatch("foobar"))
	assert.False(t, and.IsMatch("foo only"))

	or := &Composite{Matchers: []Matcher{a, b}, Mode: CombineOr}
	assert.True(t, or.IsMatch("foo only"))
	assert.True(t, or.IsMatch("bar only"))
	assert.False(t, or.IsMatch("neither"))
}

func TestFuzzyScoreSubsequence(t *testing.T) {
	assert.True(t, FuzzyScore("main.go", "mg") > 0)
	assert.Equal(t, 0, FuzzyScore("main.go", "xyz"))
}

func TestFuzzyScorePrefersConsecutiveAndBoundary(t *testing.T) {
	contiguous := FuzzyScore("search_engine.go", "search")
	scattered := FuzzyScore("s_e_a_r_c_h.go", "search")
	assert.True(t, contiguous > scattered)
}
