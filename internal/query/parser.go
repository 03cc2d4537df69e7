// Package query implements C7: parsing a single-line query language
// into a structured model.Query. The tokenizer/option-splitting shape
// follows the teacher's CLI argument handling in cmd/lci (flag-ish
// key:value tokens interleaved with free text).
package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/filesieve/filesieve/internal/fserr"
	"github.com/filesieve/filesieve/internal/model"
)

// Parse tokenizes line per spec §4.5 and builds a Query. now is
// injected so relative-date math and tests are deterministic.
func Parse(line string, now time.Time) (model.Query, error) {
	q := model.DefaultQuery("")
	var patternParts []string

	for _, tok := range strings.Fields(line) {
		key, value, isOption := splitOption(tok)
		if !isOption {
			patternParts = append(patternParts, tok)
			continue
		}

		switch strings.ToLower(key) {
		case "ext", "extension":
			q.Extensions = parseExtensions(value)
		case "size":
			sf, err := parseSizeFilter(value)
			if err != nil {
				return model.Query{}, err
			}
			q.SizeFilter = sf
		case "modified", "date":
			df, err := parseDateFilter(value, now)
			if err != nil {
				return model.Query{}, err
			}
			q.DateFilter = df
		case "mode":
			mm, err := parseMatchMode(value)
			if err != nil {
				return model.Query{}, err
			}
			q.MatchMode = mm
		case "scope":
			sc, err := parseScope(value)
			if err != nil {
				return model.Query{}, err
			}
			q.Scope = sc
		case "limit", "max":
			n, err := strconv.Atoi(value)
			if err != nil {
				return model.Query{}, fserr.Newf(fserr.InvalidQuery, "invalid %s value: %s", key, value)
			}
			q.MaxResults = &n
		default:
			// Unknown keys: the whole token is appended to the pattern.
			patternParts = append(patternParts, tok)
		}
	}

	q.Pattern = strings.Join(patternParts, " ")
	if q.Pattern == "" {
		return model.Query{}, fserr.New(fserr.InvalidQuery, "query pattern must not be empty")
	}
	return q, nil
}

// splitOption reports whether tok is a key:value option token. A bare
// colon or a colon-less token is treated as plain pattern text.
func splitOption(tok string) (key, value string, ok bool) {
	idx := strings.Index(tok, ":")
	if idx <= 0 || idx == len(tok)-1 {
		return "", "", false
	}
	return tok[:idx], tok[idx+1:], true
}

func parseExtensions(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.TrimPrefix(p, ".")
		if p == "" {
			continue
		}
		out = append(out, strings.ToLower(p))
	}
	return out
}

func parseMatchMode(value string) (model.MatchMode, error) {
	switch strings.ToLower(value) {
	case "exact", "case", "casesensitive":
		return model.Exact, nil
	case "insensitive", "caseinsensitive":
		return model.CaseInsensitive, nil
	case "fuzzy":
		return model.Fuzzy, nil
	case "regex":
		return model.Regex, nil
	case "glob":
		return model.Glob, nil
	default:
		return "", fserr.Newf(fserr.InvalidQuery, "invalid mode value: %s", value)
	}
}

func parseScope(value string) (model.Scope, error) {
	switch strings.ToLower(value) {
	case "name":
		return model.ScopeName, nil
	case "path":
		return model.ScopePath, nil
	case "content":
		return model.ScopeContent, nil
	case "all":
		return model.ScopeAll, nil
	default:
		return "", fserr.Newf(fserr.InvalidQuery, "invalid scope value: %s", value)
	}
}

// parseSizeFilter parses >N, <N, N..M, or N, where N supports an
// optional binary-multiple unit suffix (b|k|kb|m|mb|g|gb|t|tb).
func parseSizeFilter(value string) (*model.SizeFilter, error) {
	switch {
	case strings.HasPrefix(value, ">"):
		n, err := parseSizeNumber(value[1:])
		if err != nil {
			return nil, err
		}
		return &model.SizeFilter{Kind: model.SizeGreaterThan, N: n}, nil
	case strings.HasPrefix(value, "<"):
		n, err := parseSizeNumber(value[1:])
		if err != nil {
			return nil, err
		}
		return &model.SizeFilter{Kind: model.SizeLessThan, N: n}, nil
	case strings.Contains(value, ".."):
		parts := strings.SplitN(value, "..", 2)
		lo, err := parseSizeNumber(parts[0])
		if err != nil {
			return nil, err
		}
		hi, err := parseSizeNumber(parts[1])
		if err != nil {
			return nil, err
		}
		return &model.SizeFilter{Kind: model.SizeRange, Lo: lo, Hi: hi}, nil
	default:
		n, err := parseSizeNumber(value)
		if err != nil {
			return nil, err
		}
		return &model.SizeFilter{Kind: model.SizeExact, N: n}, nil
	}
}

var sizeUnits = map[string]uint64{
	"b":  1,
	"k":  1 << 10,
	"kb": 1 << 10,
	"m":  1 << 20,
	"mb": 1 << 20,
	"g":  1 << 30,
	"gb": 1 << 30,
	"t":  1 << 40,
	"tb": 1 << 40,
}

func parseSizeNumber(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fserr.New(fserr.InvalidQuery, "empty size value")
	}
	numEnd := len(s)
	for numEnd > 0 && !isDigit(s[numEnd-1]) {
		numEnd--
	}
	numPart, unitPart := s[:numEnd], strings.ToLower(s[numEnd:])
	n, err := strconv.ParseUint(numPart, 10, 64)
	if err != nil {
		return 0, fserr.Newf(fserr.InvalidQuery, "invalid size value: %s", s)
	}
	if unitPart == "" {
		return n, nil
	}
	mult, ok := sizeUnits[unitPart]
	if !ok {
		return 0, fserr.Newf(fserr.InvalidQuery, "invalid size unit: %s", unitPart)
	}
	return n * mult, nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// parseDateFilter parses >rel, <rel, rel..rel, or rel.
func parseDateFilter(value string, now time.Time) (*model.DateFilter, error) {
	switch {
	case strings.HasPrefix(value, ">"):
		t, err := parseRelativeDate(value[1:], now)
		if err != nil {
			return nil, err
		}
		return &model.DateFilter{Kind: model.DateAfter, T: t}, nil
	case strings.HasPrefix(value, "<"):
		t, err := parseRelativeDate(value[1:], now)
		if err != nil {
			return nil, err
		}
		return &model.DateFilter{Kind: model.DateBefore, T: t}, nil
	case strings.Contains(value, ".."):
		parts := strings.SplitN(value, "..", 2)
		t0, err := parseRelativeDate(parts[0], now)
		if err != nil {
			return nil, err
		}
		t1, err := parseRelativeDate(parts[1], now)
		if err != nil {
			return nil, err
		}
		return &model.DateFilter{Kind: model.DateBetween, T0: t0, T1: t1}, nil
	default:
		t, err := parseRelativeDate(value, now)
		if err != nil {
			return nil, err
		}
		return &model.DateFilter{Kind: model.DateOn, T: t}, nil
	}
}

func parseRelativeDate(rel string, now time.Time) (time.Time, error) {
	rel = strings.TrimSpace(rel)
	if t, err := time.Parse(time.RFC3339, rel); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", rel); err == nil {
		return t, nil
	}

	rel = strings.ToLower(rel)
	switch rel {
	case "today":
		return now, nil
	case "yesterday":
		return now.Add(-24 * time.Hour), nil
	case "week", "thisweek", "this week":
		return now.Add(-7 * 24 * time.Hour), nil
	case "month":
		return now.AddDate(0, -1, 0), nil
	case "year":
		return now.AddDate(-1, 0, 0), nil
	}

	if n, unit, ok := splitRelativeAmount(rel); ok {
		switch unit {
		case "d", "day", "days":
			return now.Add(-time.Duration(n) * 24 * time.Hour), nil
		case "w", "week", "weeks":
			return now.Add(-time.Duration(n) * 7 * 24 * time.Hour), nil
		case "month", "months":
			return now.AddDate(0, -n, 0), nil
		case "year", "years":
			return now.AddDate(-n, 0, 0), nil
		}
	}

	return time.Time{}, fserr.Newf(fserr.InvalidQuery, "invalid relative date: %s", rel)
}

func splitRelativeAmount(s string) (n int, unit string, ok bool) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == 0 {
		return 0, "", false
	}
	num, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, "", false
	}
	return num, s[i:], true
}

// Print renders q back into a single-line query string, used to verify
// the parser's round-trip property.
func Print(q model.Query) string {
	var parts []string
	if len(q.Extensions) > 0 {
		parts = append(parts, "ext:"+strings.Join(q.Extensions, ","))
	}
	if q.SizeFilter != nil {
		parts = append(parts, "size:"+printSizeFilter(*q.SizeFilter))
	}
	if q.DateFilter != nil {
		parts = append(parts, "modified:"+printDateFilter(*q.DateFilter))
	}
	if q.MatchMode != "" && q.MatchMode != model.CaseInsensitive {
		parts = append(parts, "mode:"+string(q.MatchMode))
	}
	if q.Scope != "" && q.Scope != model.ScopeName {
		parts = append(parts, "scope:"+string(q.Scope))
	}
	if q.MaxResults != nil {
		parts = append(parts, fmt.Sprintf("limit:%d", *q.MaxResults))
	}
	if q.Pattern != "" {
		parts = append(parts, q.Pattern)
	}
	return strings.Join(parts, " ")
}

// printDateFilter renders a DateFilter as an absolute RFC3339 timestamp
// rather than the relative form ("7d", "yesterday") it may have
// originated from — Parse accepts both, but only the absolute form
// round-trips exactly regardless of what "now" is at reparse time.
func printDateFilter(f model.DateFilter) string {
	switch f.Kind {
	case model.DateAfter:
		return ">" + f.T.Format(time.RFC3339)
	case model.DateBefore:
		return "<" + f.T.Format(time.RFC3339)
	case model.DateBetween:
		return f.T0.Format(time.RFC3339) + ".." + f.T1.Format(time.RFC3339)
	default:
		return f.T.Format(time.RFC3339)
	}
}

func printSizeFilter(f model.SizeFilter) string {
	switch f.Kind {
	case model.SizeGreaterThan:
		return fmt.Sprintf(">%d", f.N)
	case model.SizeLessThan:
		return fmt.Sprintf("<%d", f.N)
	case model.SizeRange:
		return fmt.Sprintf("%d..%d", f.Lo, f.Hi)
	default:
		return fmt.Sprintf("%d", f.N)
	}
}
