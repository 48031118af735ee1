// Package scanner composes the Walker and Matcher into a typed hit
// list, following the shape of internal/cleaner's scanner (a struct
// wrapping a directory walk and emitting entries with warnings
// attached), generalized here to directory-only FolderHit production
// instead of file metadata.
package scanner

import (
	"context"
	"os"
	"time"

	"github.com/xuanyiying/filemover-cli/internal/matcher"
	"github.com/xuanyiying/filemover-cli/internal/types"
	"github.com/xuanyiying/filemover-cli/internal/walker"
	"github.com/xuanyiying/filemover-cli/pkg/template"
)

const longPathThreshold = 260

// OfflineHook reports whether a path is a remote-placeholder file not
// currently materialized locally (e.g. a cloud-sync stub). The
// default hook always reports false; platforms that can detect this
// cheaply may install their own.
type OfflineHook func(path string) bool

var defaultOfflineHook OfflineHook = func(string) bool { return false }

// ScanRoots walks every root, asks the Matcher about each directory,
// and for every matched directory produces a FolderHit carrying a
// restricted destination preview and any advisory warnings.
func ScanRoots(ctx context.Context, roots []string, rules []types.Rule, opts types.ScanOptions, now time.Time, offline OfflineHook) ([]types.FolderHit, error) {
	if offline == nil {
		offline = defaultOfflineHook
	}

	engine, err := matcher.NewEngine(rules, opts.Normalization)
	if err != nil {
		return nil, err
	}

	entries, errc := walker.ParallelWalk(ctx, roots, opts)

	var hits []types.FolderHit
	for entry := range entries {
		if !entry.IsDirectory {
			continue
		}
		hit, ok, err := matchEntry(entry, engine, opts, now, offline)
		if err != nil {
			return nil, err
		}
		if ok {
			hits = append(hits, hit)
		}
	}

	if err := <-errc; err != nil {
		return nil, err
	}
	return hits, nil
}

func matchEntry(entry walker.DirEntry, engine *matcher.Engine, opts types.ScanOptions, now time.Time, offline OfflineHook) (types.FolderHit, bool, error) {
	name := pathBase(entry.Path)
	rule, status := engine.FindMatchingRule(name, opts.Normalization)
	if status != matcher.StatusMatched {
		return types.FolderHit{}, false, nil
	}

	preview, err := template.ExpandRestricted(*rule, entry.Path, now)
	if err != nil {
		return types.FolderHit{}, false, err
	}

	hit := types.FolderHit{
		Path:        entry.Path,
		Name:        name,
		MatchedRule: &rule.ID,
		DestPreview: preview,
	}

	if len(entry.Path) > longPathThreshold {
		hit.Warnings = append(hit.Warnings, types.Warning{Kind: types.WarningLongPath})
	}
	if entry.IsJunction {
		hit.Warnings = append(hit.Warnings, types.Warning{Kind: types.WarningJunction})
	}
	if entry.AccessDenied {
		hit.Warnings = append(hit.Warnings, types.Warning{Kind: types.WarningAccessDenied})
	}
	if offline(entry.Path) {
		hit.Warnings = append(hit.Warnings, types.Warning{Kind: types.WarningOffline})
	}
	if entry.SizeBytes != nil {
		hit.SizeBytes = entry.SizeBytes
	} else if size, ok := dirSizeHint(entry.Path); ok {
		hit.SizeBytes = &size
	}

	return hit, true, nil
}

// dirSizeHint reports the size of the directory's own inode entry,
// not a recursive tree size — a cheap, best-effort hint only. The
// Conflict Resolver's space check uses this figure as given; it does
// not walk the tree to compute a real one.
func dirSizeHint(path string) (int64, bool) {
	info, err := os.Lstat(path)
	if err != nil {
		return 0, false
	}
	return info.Size(), true
}

func pathBase(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' || p[i] == '\\' {
			return p[i+1:]
		}
	}
	return p
}
