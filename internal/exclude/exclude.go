// Package exclude implements C1: deciding whether a path is excluded by
// the configured glob/regex/substring rules. Construction compiles each
// rule once so that IsExcluded is O(rules) per path, matching the
// teacher's regex-compilation-cache approach in its gitignore parser.
package exclude

import (
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/filesieve/filesieve/internal/fserr"
	"github.com/filesieve/filesieve/internal/model"
)

// compiledRule is a rule with its regex pre-compiled (regex kind only).
type compiledRule struct {
	rule     model.ExclusionRule
	compiled *regexp.Regexp // non-nil only for RuleRegex
}

// Filter evaluates a fixed set of exclusion rules against paths.
type Filter struct {
	rules []compiledRule
}

// New compiles rules into a Filter. If rules is empty the caller should
// pass model.DefaultExclusionRules() first — New itself does not
// substitute defaults, so callers control when "no persisted rules"
// means "use defaults" (engine init) versus "exclude nothing" (a
// deliberately cleared rule set).
func New(rules []model.ExclusionRule) (*Filter, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		cr := compiledRule{rule: r}
		if r.Kind == model.RuleRegex {
			re, err := regexp.Compile(r.Pattern)
			if err != nil {
				return nil, fserr.Wrap(fserr.Parse, "invalid exclusion regex: "+r.Pattern, err)
			}
			cr.compiled = re
		}
		compiled = append(compiled, cr)
	}
	return &Filter{rules: compiled}, nil
}

// IsExcluded reports whether path matches any configured rule.
func (f *Filter) IsExcluded(path string) bool {
	for _, cr := range f.rules {
		if matches(cr, path) {
			return true
		}
	}
	return false
}

// Rules returns the rule set the filter was constructed with.
func (f *Filter) Rules() []model.ExclusionRule {
	out := make([]model.ExclusionRule, len(f.rules))
	for i, cr := range f.rules {
		out[i] = cr.rule
	}
	return out
}

func matches(cr compiledRule, path string) bool {
	switch cr.rule.Kind {
	case model.RuleGlob:
		ok, err := doublestar.Match(cr.rule.Pattern, path)
		return err == nil && ok
	case model.RuleRegex:
		return cr.compiled != nil && cr.compiled.MatchString(path)
	case model.RuleSubstring:
		return cr.rule.Pattern != "" && strings.Contains(path, cr.rule.Pattern)
	default:
		return false
	}
}
