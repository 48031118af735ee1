// Package walker produces a lazy sequence of directory entries from a
// root, honoring protection, depth, junction, and exclusion policy.
// Files are never emitted; only directories are.
package walker

import (
	"context"
	"os"
	"path/filepath"

	"github.com/xuanyiying/filemover-cli/internal/types"
)

// DirEntry is one directory the walker visited.
type DirEntry struct {
	Path         string
	IsDirectory  bool
	IsJunction   bool
	AccessDenied bool
	SizeBytes    *int64
}

// ErrCancelled is returned (wrapped) when a walk observes context
// cancellation at a directory-enumeration boundary.
var ErrCancelled = context.Canceled

// Walk enumerates root and returns every DirEntry on the returned
// channel; the error channel carries at most one non-nil value, sent
// after the entry channel is closed. Walk fails the whole walk only
// for context cancellation; an access-denied subtree, or a root that
// cannot be read, is emitted as an AccessDenied entry instead.
func Walk(ctx context.Context, root string, opts types.ScanOptions) (<-chan DirEntry, <-chan error) {
	entries := make(chan DirEntry)
	errc := make(chan error, 1)

	go func() {
		defer close(entries)
		defer close(errc)

		visited := make(map[string]struct{})
		err := walkDir(ctx, root, 0, opts, visited, entries)
		if err != nil {
			errc <- err
		}
	}()

	return entries, errc
}

func walkDir(ctx context.Context, path string, depth int, opts types.ScanOptions, visited map[string]struct{}, out chan<- DirEntry) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if opts.SystemProtections && IsProtectedPath(path) {
		return nil
	}
	if HasExcludedPrefix(path, opts.ExcludedPaths) {
		return nil
	}

	info, lstatErr := os.Lstat(path)
	if lstatErr != nil {
		out <- DirEntry{Path: path, IsDirectory: true, AccessDenied: true}
		return nil
	}

	isJunction := info.Mode()&os.ModeSymlink != 0
	entry := DirEntry{Path: path, IsDirectory: true, IsJunction: isJunction}

	if isJunction {
		out <- entry
		if !opts.FollowJunctions {
			return nil
		}
		target, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil
		}
		if _, seen := visited[target]; seen {
			return nil
		}
		visited[target] = struct{}{}
		path = target
	}

	if opts.MaxDepth != nil && depth > *opts.MaxDepth {
		return nil
	}

	dirEntries, err := os.ReadDir(path)
	if err != nil {
		if !isJunction {
			out <- DirEntry{Path: path, IsDirectory: true, AccessDenied: true}
		}
		return nil
	}
	if !isJunction {
		out <- entry
	}

	if opts.MaxDepth != nil && depth >= *opts.MaxDepth {
		return nil
	}

	for _, de := range dirEntries {
		if !de.IsDir() && de.Type()&os.ModeSymlink == 0 {
			continue
		}
		childPath := filepath.Join(path, de.Name())
		if err := walkDir(ctx, childPath, depth+1, opts, visited, out); err != nil {
			return err
		}
	}
	return nil
}
