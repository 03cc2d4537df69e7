// Package metadata implements C2: deriving a FileEntry from a single
// stat() call, plus the batched, embarrassingly-parallel extraction
// helper the walker and indexer use.
package metadata

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/filesieve/filesieve/internal/fserr"
	"github.com/filesieve/filesieve/internal/model"
)

// Extract stats path once and derives a FileEntry per spec §4.2's
// invariants. Timestamps the OS doesn't expose are left nil rather than
// zero-valued, so callers can distinguish "unknown" from "epoch".
func Extract(path string) (model.FileEntry, error) {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.FileEntry{}, fserr.Wrap(fserr.PathNotFound, "path not found: "+path, err)
		}
		if os.IsPermission(err) {
			return model.FileEntry{}, fserr.Wrap(fserr.PermissionDenied, "permission denied: "+path, err)
		}
		return model.FileEntry{}, fserr.Wrap(fserr.IO, "stat failed: "+path, err)
	}

	entry := model.NewFileEntry(path)
	entry.IsSymlink = info.Mode()&os.ModeSymlink != 0
	entry.IsDirectory = info.IsDir()
	entry.IsHidden = isHidden(entry.Name, info)

	if entry.IsDirectory {
		entry.Size = 0
	} else {
		entry.Size = uint64(info.Size())
	}

	modTime := info.ModTime()
	entry.ModifiedAt = &modTime

	if created, ok := platformCreatedAt(info); ok {
		entry.CreatedAt = &created
	}
	if accessed, ok := platformAccessedAt(info); ok {
		entry.AccessedAt = &accessed
	}

	entry.MimeType = guessMimeType(entry.Extension)

	return entry, nil
}

// isHidden reports dotfile-or-platform-hidden-attribute status per
// spec §4.2: a dotfile (excluding "." and "..") OR the platform hidden
// attribute bit.
func isHidden(name string, info os.FileInfo) bool {
	if model.IsHiddenName(name) {
		return true
	}
	return platformHiddenAttribute(info)
}

// IsModifiedSince reports whether path's filesystem mtime is after t.
func IsModifiedSince(path string, t time.Time) (bool, error) {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, fserr.Wrap(fserr.PathNotFound, "path not found: "+path, err)
		}
		return false, fserr.Wrap(fserr.IO, "stat failed: "+path, err)
	}
	return info.ModTime().After(t), nil
}

var mimeByExt = map[string]string{
	"txt":  "text/plain",
	"md":   "text/markdown",
	"go":   "text/x-go",
	"json": "application/json",
	"yaml": "application/x-yaml",
	"yml":  "application/x-yaml",
	"html": "text/html",
	"htm":  "text/html",
	"css":  "text/css",
	"js":   "application/javascript",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"pdf":  "application/pdf",
	"zip":  "application/zip",
}

func guessMimeType(ext string) string {
	if ext == "" {
		return ""
	}
	if mt, ok := mimeByExt[ext]; ok {
		return mt
	}
	return ""
}

// BatchExtract extracts entries for every path independently (no shared
// mutable state) and returns successes alongside a parallel slice of
// errors (nil where extraction succeeded). Failures on individual paths
// never abort the batch, matching the walker's "log and skip" policy.
func BatchExtract(paths []string) ([]model.FileEntry, []error) {
	entries := make([]model.FileEntry, len(paths))
	errs := make([]error, len(paths))
	for i, p := range paths {
		e, err := Extract(filepath.Clean(p))
		entries[i] = e
		errs[i] = err
	}
	return entries, errs
}

// ExtractParallel extracts entries for every path using a bounded
// worker pool (default 2x logical cores, per spec §6's thread_count
// default). Each worker operates on its own index with no shared
// mutable state beyond the pre-sized output slices, satisfying spec
// §4.2's "embarrassingly parallel" requirement. Individual extraction
// failures never abort the group: they're recorded in the errs slice.
func ExtractParallel(ctx context.Context, paths []string, workers int) ([]model.FileEntry, []error) {
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}
	entries := make([]model.FileEntry, len(paths))
	errs := make([]error, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			select {
			case <-ctx.Done():
				errs[i] = fserr.Wrap(fserr.Cancelled, "extraction cancelled", ctx.Err())
				return nil
			default:
			}
			e, err := Extract(filepath.Clean(p))
			entries[i] = e
			errs[i] = err
			return nil
		})
	}
	_ = g.Wait()
	return entries, errs
}
