package walker

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filesieve/filesieve/internal/exclude"
	"github.com/filesieve/filesieve/internal/model"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func TestWalkBasicSet(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.txt":     "a",
		"b.rs":      "b",
		"sub/c.txt": "c",
	})

	filter, err := exclude.New(model.DefaultExclusionRules())
	require.NoError(t, err)

	got := Walk(root, filter, Options{})
	sort.Strings(got)

	want := []string{
		filepath.Join(root, "a.txt"),
		filepath.Join(root, "b.rs"),
		filepath.Join(root, "sub", "c.txt"),
	}
	sort.Strings(want)
	assert.Equal(t, want, got)
}

func TestWalkExcludesGitDirectory(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".git/HEAD":  "ref",
		"visible.go": "x",
	})

	filter, err := exclude.New(model.DefaultExclusionRules())
	require.NoError(t, err)

	got := Walk(root, filter, Options{})
	assert.Equal(t, []string{filepath.Join(root, "visible.go")}, got)
}

func TestWalkHiddenFilesGatedByOption(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".env":    "secret",
		"main.go": "x",
	})

	filter, err := exclude.New(nil)
	require.NoError(t, err)

	got := Walk(root, filter, Options{IndexHiddenFiles: false})
	assert.Equal(t, []string{filepath.Join(root, "main.go")}, got)

	got = Walk(root, filter, Options{IndexHiddenFiles: true})
	sort.Strings(got)
	want := []string{filepath.Join(root, ".env"), filepath.Join(root, "main.go")}
	sort.Strings(want)
	assert.Equal(t, want, got)
}

func TestWalkReadDirErrorIsLoggedAndSkipped(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"visible.go": "x",
	})
	missing := filepath.Join(root, "does-not-exist")

	var loggedPath string
	var loggedErr error
	prev := logWalkError
	logWalkError = func(path string, err error) {
		loggedPath, loggedErr = path, err
	}
	t.Cleanup(func() { logWalkError = prev })

	filter, err := exclude.New(model.DefaultExclusionRules())
	require.NoError(t, err)

	got := Walk(missing, filter, Options{})
	assert.Empty(t, got, "a ReadDir failure yields no files rather than aborting with a panic")
	assert.Equal(t, missing, loggedPath)
	require.Error(t, loggedErr)
}

func TestWalkSelfSymlinkCycleTerminates(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644))

	loop := filepath.Join(root, "loop")
	require.NoError(t, os.Symlink(root, loop))

	filter, err := exclude.New(nil)
	require.NoError(t, err)

	done := make(chan []string, 1)
	go func() {
		done <- Walk(root, filter, Options{FollowSymlinks: true})
	}()

	select {
	case got := <-done:
		assert.Contains(t, got, filepath.Join(root, "a.txt"))
	case <-time.After(5 * time.Second):
		t.Fatal("walk did not terminate: likely infinite symlink recursion")
	}
}
