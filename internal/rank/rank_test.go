package rank

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/filesieve/filesieve/internal/model"
)

var fixedNow = time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)

func entryWithModified(path string, age time.Duration) model.FileEntry {
	e := model.NewFileEntry(path)
	m := fixedNow.Add(-age)
	e.ModifiedAt = &m
	return e
}

func TestScoreExactNameBeatsSubstring(t *testing.T) {
	exact := entryWithModified("/a/report.txt", time.Hour)
	exact.Name = "report"
	substr := entryWithModified("/a/annual-report-final.txt", time.Hour)
	substr.Name = "annual-report-final.txt"

	opts := Options{Now: fixedNow}
	assert.Greater(t, Score(exact, "report", opts), Score(substr, "report", opts))
}

func TestScorePrefersShallowerPath(t *testing.T) {
	shallow := entryWithModified("/a/file.txt", time.Hour)
	shallow.Name = "file.txt"
	deep := entryWithModified("/a/b/c/d/e/f/g/h/file.txt", time.Hour)
	deep.Name = "file.txt"

	opts := Options{Now: fixedNow}
	assert.Greater(t, Score(shallow, "file", opts), Score(deep, "file", opts))
}

func TestScorePrefersRecentFile(t *testing.T) {
	recent := entryWithModified("/a/file.txt", time.Hour)
	recent.Name = "file.txt"
	old := entryWithModified("/a/file.txt", 400*24*time.Hour)
	old.Name = "file.txt"

	opts := Options{Now: fixedNow}
	assert.Greater(t, Score(recent, "file", opts), Score(old, "file", opts))
}

func TestScoreAbsentModifiedUsesMidRecency(t *testing.T) {
	e := model.NewFileEntry("/a/file.txt")
	e.Name = "file.txt"
	opts := Options{Now: fixedNow}
	// Same as an entry whose ModifiedAt lands in the 30-90 day bucket (0.5).
	mid := entryWithModified("/a/file.txt", 60*24*time.Hour)
	mid.Name = "file.txt"
	assert.Equal(t, Score(mid, "file", opts), Score(e, "file", opts))
}

func TestScoreTierOrderingExactPrefixSubstringFuzzy(t *testing.T) {
	// All four share path depth and modified time; only the name/pattern
	// relationship differs, isolating the nameMatch tier ordering spec
	// §4.9 requires: exact >= prefix >= substring >= fuzzy-fallback.
	at := func(name string) model.FileEntry {
		e := entryWithModified("/a/"+name, time.Hour)
		e.Name = name
		return e
	}

	exact := at("report")
	prefix := at("reportcard")
	substring := at("annual-report")
	fuzzy := at("xyz123") // shares no characters with "report" at all

	opts := Options{Now: fixedNow}
	pattern := "report"

	scoreExact := Score(exact, pattern, opts)
	scorePrefix := Score(prefix, pattern, opts)
	scoreSubstring := Score(substring, pattern, opts)
	scoreFuzzy := Score(fuzzy, pattern, opts)

	assert.GreaterOrEqual(t, scoreExact, scorePrefix)
	assert.GreaterOrEqual(t, scorePrefix, scoreSubstring)
	assert.GreaterOrEqual(t, scoreSubstring, scoreFuzzy)
}

func TestSortDescendingScoreTieBreakByName(t *testing.T) {
	a := model.SearchResult{File: model.FileEntry{Name: "banana"}, Score: 0.5}
	b := model.SearchResult{File: model.FileEntry{Name: "apple"}, Score: 0.5}
	c := model.SearchResult{File: model.FileEntry{Name: "cherry"}, Score: 0.9}

	results := []model.SearchResult{a, b, c}
	Sort(results)

	assert.Equal(t, "cherry", results[0].File.Name)
	assert.Equal(t, "apple", results[1].File.Name)
	assert.Equal(t, "banana", results[2].File.Name)
}

func TestApplyBoostsPreferredExtensionReorders(t *testing.T) {
	goFile := model.SearchResult{File: model.FileEntry{Name: "a.go", Extension: "go"}, Score: 0.5}
	rsFile := model.SearchResult{File: model.FileEntry{Name: "b.rs", Extension: "rs"}, Score: 0.5}

	results := ApplyBoosts([]model.SearchResult{rsFile, goFile}, Options{
		Now:                 fixedNow,
		PreferredExtensions: []string{"go"},
	})

	assert.Equal(t, "a.go", results[0].File.Name)
	assert.InEpsilon(t, 0.6, results[0].Score, 1e-9)
}
