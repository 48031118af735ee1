// Package planner orchestrates the Conflict Resolver, Validator, and
// Planner stages that turn a slice of FolderHits into a MovePlan.
package planner

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuanyiying/filemover-cli/internal/types"
	"github.com/xuanyiying/filemover-cli/pkg/ferrors"
)

const (
	autoRenameCap = 9999
	probeDeadline = 2 * time.Second
)

// FreeSpaceHook reports free bytes available on the volume containing
// path. The default hook reports no figure (ok is false), so the
// NoSpace check never fires with it, since free-space accounting is
// platform-specific; callers
// running on a concrete OS may install a real hook (e.g. via
// golang.org/x/sys/unix.Statfs) without changing the Resolver's logic.
type FreeSpaceHook func(path string) (available int64, ok bool)

var defaultFreeSpaceHook FreeSpaceHook = func(string) (int64, bool) { return 0, false }

// Resolver assigns collision-free destination paths across a single
// plan. Its reserved set is a global invariant, so a Resolver must
// never be shared across concurrent create_plan calls — the Planner
// owns exactly one per plan.
type Resolver struct {
	reserved           map[string]struct{}
	autoRenameCounters map[string]int
	freeSpace          FreeSpaceHook
}

// NewResolver returns an empty Resolver ready to process nodes in the
// Planner's canonical order.
func NewResolver(freeSpace FreeSpaceHook) *Resolver {
	if freeSpace == nil {
		freeSpace = defaultFreeSpaceHook
	}
	return &Resolver{
		reserved:           make(map[string]struct{}),
		autoRenameCounters: make(map[string]int),
		freeSpace:          freeSpace,
	}
}

// Resolve assigns a collision-free path for desired under policy,
// returning the final path and any residual conflicts. sourcePath and
// sizeBytes drive the structural and resource checks; sizeBytes may be
// nil when unknown, in which case the NoSpace check is skipped.
func (r *Resolver) Resolve(desired, sourcePath string, policy types.ConflictPolicy, sizeBytes *int64) (string, []types.Conflict, error) {
	final := desired
	var conflicts []types.Conflict

	if r.existsOrReserved(final) {
		conflicts = append(conflicts, types.NameExists(final))

		switch policy {
		case types.PolicyAutoRename:
			renamed, err := r.autoRename(final)
			if err != nil {
				return "", nil, err
			}
			final = renamed
			conflicts = nil
		case types.PolicySkip, types.PolicyOverwrite:
			// leave final unchanged; conflict retained for the caller
			// (Skip) or the Executor (Overwrite) to interpret.
		}
	}

	if isDestInsideSource(final, sourcePath) {
		conflicts = append(conflicts, types.DestInsideSourceConflict())
	}

	if sizeBytes != nil {
		if available, ok := r.freeSpace(final); ok && *sizeBytes > available {
			conflicts = append(conflicts, types.NoSpace(*sizeBytes, available))
		}
	}

	if !probeWriteAccess(filepath.Dir(final)) {
		conflicts = append(conflicts, types.PermissionConflict("filesystem_write"))
	}

	r.reserved[final] = struct{}{}
	return final, conflicts, nil
}

// Free removes path from the reserved set, used by SetSkip(true) and
// ExcludeNode to give the destination back to other nodes.
func (r *Resolver) Free(path string) {
	delete(r.reserved, path)
}

func (r *Resolver) existsOrReserved(path string) bool {
	if _, ok := r.reserved[path]; ok {
		return true
	}
	return existsOnDisk(path)
}

// autoRename finds the least k, starting from the last value used for
// this stem, such that "stem_k[.ext]" is neither on disk nor reserved.
func (r *Resolver) autoRename(desired string) (string, error) {
	dir := filepath.Dir(desired)
	ext := filepath.Ext(desired)
	stem := strings.TrimSuffix(filepath.Base(desired), ext)
	key := filepath.Join(dir, stem) + ext

	start := r.autoRenameCounters[key] + 1
	for k := start; k <= autoRenameCap; k++ {
		candidate := filepath.Join(dir, stem+"_"+strconv.Itoa(k)+ext)
		if !r.existsOrReserved(candidate) {
			r.autoRenameCounters[key] = k
			return candidate, nil
		}
	}
	return "", ferrors.New(ferrors.KindPlanValidation, "auto_rename: exhausted suffixes up to %d for %q", autoRenameCap, desired)
}

func isDestInsideSource(dest, source string) bool {
	cleanSource := filepath.Clean(source)
	cleanDest := filepath.Clean(dest)
	if cleanDest == cleanSource {
		return false
	}
	return strings.HasPrefix(cleanDest, cleanSource+string(filepath.Separator))
}

func existsOnDisk(path string) bool {
	done := make(chan bool, 1)
	go func() {
		_, err := os.Stat(path)
		done <- err == nil
	}()
	select {
	case exists := <-done:
		return exists
	case <-time.After(probeDeadline):
		return false
	}
}

// probeWriteAccess tests write permission by creating and immediately
// removing a sentinel file under the nearest existing ancestor of dir
// — it never materializes dir itself, since planning only reads the
// filesystem to resolve conflicts, it doesn't create the destination
// tree. A dir with no existing ancestor at all (inconclusive) reports
// true so the caller raises no conflict, bounded by probeDeadline.
func probeWriteAccess(dir string) bool {
	done := make(chan bool, 1)
	go func() {
		probeDir, ok := nearestExistingAncestor(dir)
		if !ok {
			done <- true
			return
		}
		sentinel := filepath.Join(probeDir, fmt.Sprintf(".filemover-probe-%d", os.Getpid()))
		f, err := os.OpenFile(sentinel, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err != nil {
			done <- false
			return
		}
		f.Close()
		os.Remove(sentinel)
		done <- true
	}()
	select {
	case ok := <-done:
		return ok
	case <-time.After(probeDeadline):
		return true
	}
}

// nearestExistingAncestor walks up from dir until it finds a path
// that exists on disk, returning false only if it exhausts the path
// without finding one (e.g. dir is relative and resolves above the
// filesystem root).
func nearestExistingAncestor(dir string) (string, bool) {
	clean := filepath.Clean(dir)
	for {
		if info, err := os.Stat(clean); err == nil && info.IsDir() {
			return clean, true
		}
		parent := filepath.Dir(clean)
		if parent == clean {
			return "", false
		}
		clean = parent
	}
}

// DifferentVolumes reports whether a and b sit on different volumes:
// their leading volume prefix differs (drive letter, UNC share root,
// or — on POSIX, where filepath.VolumeName is always empty — this
// degrades to "never cross-volume"; platforms that can detect device
// ids may wire a device-aware hook in).
func DifferentVolumes(a, b string) bool {
	return filepath.VolumeName(a) != filepath.VolumeName(b)
}
