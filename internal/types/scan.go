package types

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ScanOptions configures a single Walker/Scanner pass.
type ScanOptions struct {
	Normalization     NormalizationOptions `json:"normalization"`
	FollowJunctions   bool                  `json:"follow_junctions"`
	SystemProtections bool                  `json:"system_protections"`
	MaxDepth          *int                  `json:"max_depth,omitempty"`
	ExcludedPaths     []string              `json:"excluded_paths"`
	ParallelThreads   *int                  `json:"parallel_threads,omitempty"`
}

// WarningKind enumerates the advisory conditions a Walker or Scanner
// can attach to a DirEntry or FolderHit. Warnings never block
// execution on their own.
type WarningKind string

const (
	WarningLongPath     WarningKind = "long_path"
	WarningAclDiffers   WarningKind = "acl_differs"
	WarningOffline      WarningKind = "offline"
	WarningAccessDenied WarningKind = "access_denied"
	WarningJunction     WarningKind = "junction"
	WarningCrossVolume  WarningKind = "cross_volume"
)

func (k WarningKind) valid() bool {
	switch k {
	case WarningLongPath, WarningAclDiffers, WarningOffline, WarningAccessDenied, WarningJunction, WarningCrossVolume:
		return true
	}
	return false
}

// Warning is advisory-only metadata attached to a FolderHit or
// PlanNode. It carries no payload beyond its kind.
type Warning struct {
	Kind WarningKind `json:"kind"`
}

func (w Warning) MarshalJSON() ([]byte, error) {
	if !w.Kind.valid() {
		return nil, fmt.Errorf("types: invalid WarningKind %q", string(w.Kind))
	}
	return json.Marshal(struct {
		Kind WarningKind `json:"kind"`
	}{w.Kind})
}

func (w *Warning) UnmarshalJSON(data []byte) error {
	var aux struct {
		Kind WarningKind `json:"kind"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if !aux.Kind.valid() {
		return fmt.Errorf("types: unknown WarningKind %q", string(aux.Kind))
	}
	w.Kind = aux.Kind
	return nil
}

// FolderHit is a matched directory before conflict resolution; it
// does not imply commitment to a plan.
type FolderHit struct {
	Path         string     `json:"path"`
	Name         string     `json:"name"`
	MatchedRule  *uuid.UUID `json:"matched_rule,omitempty"`
	DestPreview  string     `json:"dest_preview,omitempty"`
	Warnings     []Warning  `json:"warnings"`
	SizeBytes    *int64     `json:"size_bytes,omitempty"`
}
