package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filesieve/filesieve/internal/fserr"
	"github.com/filesieve/filesieve/internal/model"
)

var fixedNow = time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)

func TestParseBarePattern(t *testing.T) {
	q, err := Parse("readme", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "readme", q.Pattern)
	assert.Equal(t, model.CaseInsensitive, q.MatchMode)
	assert.Equal(t, model.ScopeName, q.Scope)
}

func TestParseEmptyPatternFails(t *testing.T) {
	_, err := Parse("ext:go mode:exact", fixedNow)
	require.Error(t, err)
	kind, ok := fserr.Of(err)
	require.True(t, ok)
	assert.Equal(t, fserr.InvalidQuery, kind)
}

func TestParseExtensions(t *testing.T) {
	q, err := Parse("ext:.GO,rs main", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "rs"}, q.Extensions)
	assert.Equal(t, "main", q.Pattern)
}

func TestParseSizeFilters(t *testing.T) {
	q, err := Parse("size:>10mb report", fixedNow)
	require.NoError(t, err)
	require.NotNil(t, q.SizeFilter)
	assert.Equal(t, model.SizeGreaterThan, q.SizeFilter.Kind)
	assert.Equal(t, uint64(10<<20), q.SizeFilter.N)

	q, err = Parse("size:100..200 report", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, model.SizeRange, q.SizeFilter.Kind)
	assert.Equal(t, uint64(100), q.SizeFilter.Lo)
	assert.Equal(t, uint64(200), q.SizeFilter.Hi)
}

func TestParseRelativeDates(t *testing.T) {
	q, err := Parse("modified:>7d report", fixedNow)
	require.NoError(t, err)
	require.NotNil(t, q.DateFilter)
	assert.Equal(t, model.DateAfter, q.DateFilter.Kind)
	assert.Equal(t, fixedNow.Add(-7*24*time.Hour), q.DateFilter.T)

	q, err = Parse("date:yesterday report", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, model.DateOn, q.DateFilter.Kind)
	assert.Equal(t, fixedNow.Add(-24*time.Hour), q.DateFilter.T)
}

func TestParseModeAndScopeAndLimit(t *testing.T) {
	q, err := Parse("mode:fuzzy scope:content limit:5 needle", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, model.Fuzzy, q.MatchMode)
	assert.Equal(t, model.ScopeContent, q.Scope)
	require.NotNil(t, q.MaxResults)
	assert.Equal(t, 5, *q.MaxResults)
}

func TestParseUnknownKeyAppendsToPattern(t *testing.T) {
	q, err := Parse("author:alice report", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "author:alice report", q.Pattern)
}

func TestParseRoundtrip(t *testing.T) {
	original := "ext:go,rs mode:regex scope:path limit:20 needle in haystack"
	q1, err := Parse(original, fixedNow)
	require.NoError(t, err)

	printed := Print(q1)
	q2, err := Parse(printed, fixedNow)
	require.NoError(t, err)

	assert.Equal(t, q1.Pattern, q2.Pattern)
	assert.Equal(t, q1.MatchMode, q2.MatchMode)
	assert.Equal(t, q1.Scope, q2.Scope)
	assert.Equal(t, q1.Extensions, q2.Extensions)
	assert.Equal(t, *q1.MaxResults, *q2.MaxResults)
}

func TestParseRoundtripPreservesDateFilter(t *testing.T) {
	original := "modified:>7d report"
	q1, err := Parse(original, fixedNow)
	require.NoError(t, err)
	require.NotNil(t, q1.DateFilter)

	printed := Print(q1)
	q2, err := Parse(printed, fixedNow)
	require.NoError(t, err)

	require.NotNil(t, q2.DateFilter)
	assert.Equal(t, q1.DateFilter.Kind, q2.DateFilter.Kind)
	assert.True(t, q1.DateFilter.T.Equal(q2.DateFilter.T))
}
