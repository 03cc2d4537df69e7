// Package walker implements C3: a parallel-friendly directory walker
// that yields the deduplicated set of non-excluded, non-directory
// candidate paths under a root. Grounded on the teacher's
// internal/indexing/pipeline.go CountFiles/ScanDirectory walk, which
// also tracks canonicalized visited directories to break symlink
// cycles before recursing into them.
package walker

import (
	"os"
	"path/filepath"

	"github.com/filesieve/filesieve/internal/debug"
	"github.com/filesieve/filesieve/internal/exclude"
)

// Options controls walk behavior; these mirror the engine Configuration
// fields that affect traversal (spec §6).
type Options struct {
	FollowSymlinks  bool
	IndexHiddenFiles bool
}

// Walk traverses root and returns the candidate file set: non-excluded,
// non-hidden-unless-configured, non-directory paths. The returned slice
// is deterministic as a set (spec §4.3 rule 5) but not guaranteed stable
// in order across runs when symlinks introduce traversal-order
// ambiguity; callers that need a stable order should sort it themselves.
func Walk(root string, filter *exclude.Filter, opts Options) []string {
	w := &walk{filter: filter, opts: opts, visited: make(map[string]bool)}
	w.visitDir(root)
	return w.files
}

type walk struct {
	filter  *exclude.Filter
	opts    Options
	visited map[string]bool
	files   []string
}

// visitDir recurses into dir, which the caller has already determined
// should be entered (not excluded, not hidden-unless-configured).
func (w *walk) visitDir(dir string) {
	canonical := canonicalize(dir)
	if w.visited[canonical] {
		return
	}
	w.visited[canonical] = true

	entries, err := os.ReadDir(dir)
	if err != nil {
		// Traversal errors on individual entries are logged and skipped;
		// they never abort the walk (spec §4.3 rule 4).
		logWalkError(dir, err)
		return
	}

	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		info, err := e.Info()
		if err != nil {
			logWalkError(path, err)
			continue
		}

		isSymlink := info.Mode()&os.ModeSymlink != 0
		isDir := info.IsDir()

		if isSymlink {
			if !w.opts.FollowSymlinks {
				continue
			}
			target, err := os.Stat(path)
			if err != nil {
				logWalkError(path, err)
				continue
			}
			isDir = target.IsDir()
		}

		if w.excludedByVisibility(e.Name(), isDir) {
			continue
		}
		if w.filter != nil && w.filter.IsExcluded(path) {
			continue
		}

		if isDir {
			w.visitDir(path)
			continue
		}

		w.files = append(w.files, path)
	}
}

// excludedByVisibility applies the hidden-file gate shared by directory
// entry and file yield rules (spec §4.3 rules 1-2).
func (w *walk) excludedByVisibility(name string, isDir bool) bool {
	if w.opts.IndexHiddenFiles {
		return false
	}
	return isHiddenName(name) && !(name == "." || name == "..")
}

func isHiddenName(name string) bool {
	return len(name) > 0 && name[0] == '.' && name != "." && name != ".."
}

// canonicalize resolves symlinks to detect cycles; on failure it falls
// back to the textual path per spec §4.3 rule 3.
func canonicalize(path string) string {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return path
	}
	return resolved
}

// logWalkError is a seam tests can override; production code logs through
// the gated debug logger, so walks stay quiet unless debug output is
// enabled (spec §4.3 rule 4: traversal errors are logged and skipped).
var logWalkError = func(path string, err error) {
	debug.LogIndex("walk error at %s: %v", path, err)
}
