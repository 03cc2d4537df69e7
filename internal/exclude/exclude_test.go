package exclude

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filesieve/filesieve/internal/model"
)

func TestDefaultRulesExcludeGit(t *testing.T) {
	f, err := New(model.DefaultExclusionRules())
	require.NoError(t, err)

	assert.True(t, f.IsExcluded("/repo/.git/HEAD"))
	assert.True(t, f.IsExcluded("/repo/node_modules/left-pad/index.js"))
	assert.True(t, f.IsExcluded("/repo/.DS_Store"))
	assert.False(t, f.IsExcluded("/repo/main.go"))
}

func TestRegexRule(t *testing.T) {
	f, err := New([]model.ExclusionRule{{Pattern: `\.tmp$`, Kind: model.RuleRegex}})
	require.NoError(t, err)

	assert.True(t, f.IsExcluded("/a/b/file.tmp"))
	assert.False(t, f.IsExcluded("/a/b/file.go"))
}

func TestSubstringRule(t *testing.T) {
	f, err := New([]model.ExclusionRule{{Pattern: "vendor", Kind: model.RuleSubstring}})
	require.NoError(t, err)

	assert.True(t, f.IsExcluded("/project/vendor/lib.go"))
	assert.False(t, f.IsExcluded("/project/lib.go"))
}

func TestInvalidRegexRejected(t *testing.T) {
	_, err := New([]model.ExclusionRule{{Pattern: "(unterminated", Kind: model.RuleRegex}})
	require.Error(t, err)
}
