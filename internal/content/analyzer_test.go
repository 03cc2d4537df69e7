package content

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeTextFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	text := "hello world\nsecond line with more words\n"
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))

	preview, err := Analyze(path, 10*1024*1024)
	require.NoError(t, err)
	require.NotNil(t, preview)
	assert.Equal(t, "utf-8", preview.Encoding)
	assert.Equal(t, 2, preview.LineCount)
	assert.True(t, strings.HasPrefix(preview.Preview, "hello world"))
	assert.Equal(t, 7, preview.WordCount)
}

func TestAnalyzeSkipsOversizedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	preview, err := Analyze(path, 0)
	require.NoError(t, err)
	assert.Nil(t, preview)
}

func TestAnalyzeSkipsBinary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")
	binary := make([]byte, 256)
	for i := range binary {
		binary[i] = byte(i)
	}
	require.NoError(t, os.WriteFile(path, binary, 0o644))

	preview, err := Analyze(path, 10*1024*1024)
	require.NoError(t, err)
	assert.Nil(t, preview)
}

func TestSnippetFindsContext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("before TARGET-word after"), 0o644))

	snippet, err := Snippet(path, "target-word", 6, 10*1024*1024)
	require.NoError(t, err)
	require.NotNil(t, snippet)
	assert.Contains(t, *snippet, "TARGET-word")
}

func TestSnippetNoMatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("nothing relevant here"), 0o644))

	snippet, err := Snippet(path, "zzz", 6, 10*1024*1024)
	require.NoError(t, err)
	assert.Nil(t, snippet)
}
