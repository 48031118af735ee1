package types

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// OpKind is the operation a PlanNode will perform at apply time.
type OpKind string

const (
	OpMove       OpKind = "move"
	OpCopyDelete OpKind = "copy_delete"
	OpRename     OpKind = "rename"
	OpSkip       OpKind = "skip"
	OpNone       OpKind = "none"
)

func (k OpKind) valid() bool {
	switch k {
	case OpMove, OpCopyDelete, OpRename, OpSkip, OpNone:
		return true
	}
	return false
}

func (k OpKind) MarshalJSON() ([]byte, error) {
	if !k.valid() {
		return nil, fmt.Errorf("types: invalid OpKind %q", string(k))
	}
	return json.Marshal(string(k))
}

func (k *OpKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	ok := OpKind(s)
	if !ok.valid() {
		return fmt.Errorf("types: unknown OpKind %q", s)
	}
	*k = ok
	return nil
}

// Executable reports whether a node's kind is neither Skip nor None —
// whether applying the plan would touch this node at all.
func (k OpKind) Executable() bool {
	return k != OpSkip && k != OpNone
}

// PlanNode is one folder operation within a MovePlan. IDs are stable
// across incremental edits; PriorKind remembers the kind a node had
// before SetSkip(true) so SetSkip(false) can restore it.
type PlanNode struct {
	ID          uuid.UUID      `json:"id"`
	IsDir       bool           `json:"is_dir"`
	NameBefore  string         `json:"name_before"`
	PathBefore  string         `json:"path_before"`
	NameAfter   string         `json:"name_after"`
	PathAfter   string         `json:"path_after"`
	DesiredPath string         `json:"desired_path"`
	Policy      ConflictPolicy `json:"policy"`
	Kind        OpKind         `json:"kind"`
	PriorKind   OpKind         `json:"prior_kind,omitempty"`
	SizeBytes   *int64         `json:"size_bytes,omitempty"`
	Warnings    []Warning      `json:"warnings"`
	Conflicts   []Conflict     `json:"conflicts"`
	Children    []uuid.UUID    `json:"children"`
	RuleID      *uuid.UUID     `json:"rule_id,omitempty"`
}

// PlanSummary is derived state: it must equal the reduction over
// executable nodes at every observable point.
type PlanSummary struct {
	CountDirs    int    `json:"count_dirs"`
	CountFiles   int    `json:"count_files"`
	TotalBytes   *int64 `json:"total_bytes,omitempty"`
	CrossVolume  int    `json:"cross_volume"`
	Conflicts    int    `json:"conflicts"`
	Warnings     int    `json:"warnings"`
}

// PlanSummaryDiff carries signed deltas for each PlanSummary field,
// produced by incremental validation and folded into plan.Summary by
// the Planner so the summary always matches the nodes it describes.
type PlanSummaryDiff struct {
	CountDirsDelta   int   `json:"count_dirs_delta"`
	CountFilesDelta  int   `json:"count_files_delta"`
	TotalBytesDelta  int64 `json:"total_bytes_delta"`
	CrossVolumeDelta int   `json:"cross_volume_delta"`
	ConflictsDelta   int   `json:"conflicts_delta"`
	WarningsDelta    int   `json:"warnings_delta"`
}

// MovePlan is the arena: a flat id->node map plus the forest's root
// ids. Keys are globally unique; children edges form an acyclic forest
// rooted at Roots; every node not listed in Roots is reachable from
// exactly one parent's Children slice.
type MovePlan struct {
	Roots   []uuid.UUID           `json:"roots"`
	Nodes   map[uuid.UUID]*PlanNode `json:"nodes"`
	Summary PlanSummary           `json:"summary"`
}

// NewMovePlan returns an empty plan ready to be populated by the
// Planner.
func NewMovePlan() *MovePlan {
	return &MovePlan{Nodes: make(map[uuid.UUID]*PlanNode)}
}

// NodeChangeKind discriminates the edits a caller can apply to a plan.
type NodeChangeKind string

const (
	ChangeSetSkip           NodeChangeKind = "set_skip"
	ChangeSetConflictPolicy NodeChangeKind = "set_conflict_policy"
	ChangeRenameNode        NodeChangeKind = "rename_node"
	ChangeExcludeNode       NodeChangeKind = "exclude_node"
)

// NodeChange is a user edit routed through the Validator. Only the
// fields relevant to Kind are populated (same discriminated-struct
// idiom as Conflict).
type NodeChange struct {
	Kind     NodeChangeKind `json:"kind"`
	NodeID   uuid.UUID      `json:"node_id"`
	Skip     bool           `json:"skip,omitempty"`
	Policy   ConflictPolicy `json:"policy,omitempty"`
	NewName  string         `json:"new_name,omitempty"`
}

// SetSkip constructs a ChangeSetSkip edit.
func SetSkip(id uuid.UUID, skip bool) NodeChange {
	return NodeChange{Kind: ChangeSetSkip, NodeID: id, Skip: skip}
}

// SetConflictPolicy constructs a ChangeSetConflictPolicy edit.
func SetConflictPolicy(id uuid.UUID, policy ConflictPolicy) NodeChange {
	return NodeChange{Kind: ChangeSetConflictPolicy, NodeID: id, Policy: policy}
}

// RenameNode constructs a ChangeRenameNode edit.
func RenameNode(id uuid.UUID, name string) NodeChange {
	return NodeChange{Kind: ChangeRenameNode, NodeID: id, NewName: name}
}

// ExcludeNode constructs a ChangeExcludeNode edit.
func ExcludeNode(id uuid.UUID) NodeChange {
	return NodeChange{Kind: ChangeExcludeNode, NodeID: id}
}

// ValidationDelta is the minimal state change produced by a
// NodeChange or by a whole-plan revalidation.
type ValidationDelta struct {
	AffectedNodes     []uuid.UUID     `json:"affected_nodes"`
	NewConflicts      []Conflict      `json:"new_conflicts"`
	ResolvedConflicts []Conflict      `json:"resolved_conflicts"`
	SummaryDiff       PlanSummaryDiff `json:"summary_diff"`
}

// SimulationReport is the dry-run output of simulate_plan: an estimate
// of what applying the plan as it currently stands would do, without
// touching the filesystem.
type SimulationReport struct {
	SuccessEstimate        int     `json:"success_estimate"`
	ConflictsRemaining     int     `json:"conflicts_remaining"`
	SkippedCount           int     `json:"skipped_count"`
	EstimatedDurationSecs  float64 `json:"estimated_duration_secs"`
}
