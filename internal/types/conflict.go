package types

import (
	"encoding/json"
	"fmt"
)

// ConflictKind enumerates the blocking conditions a PlanNode can
// carry. A node with any conflict is not executed unless the policy
// resolves it.
type ConflictKind string

const (
	ConflictNameExists      ConflictKind = "name_exists"
	ConflictCycleDetected    ConflictKind = "cycle_detected"
	ConflictDestInsideSource ConflictKind = "dest_inside_source"
	ConflictNoSpace          ConflictKind = "no_space"
	ConflictPermission       ConflictKind = "permission"
)

func (k ConflictKind) valid() bool {
	switch k {
	case ConflictNameExists, ConflictCycleDetected, ConflictDestInsideSource, ConflictNoSpace, ConflictPermission:
		return true
	}
	return false
}

// Conflict is a Go struct standing in for a tagged union: Kind
// discriminates, and only the fields relevant to that kind are
// populated. Go has no native sum type, so this mirrors the way the
// teacher's config.RuleCondition carries an operator-specific payload
// in otherwise-unused fields.
type Conflict struct {
	Kind ConflictKind `json:"kind"`

	// ConflictNameExists
	ExistingPath string `json:"existing_path,omitempty"`

	// ConflictNoSpace
	RequiredBytes  int64 `json:"required_bytes,omitempty"`
	AvailableBytes int64 `json:"available_bytes,omitempty"`

	// ConflictPermission
	Required string `json:"required,omitempty"`
}

func (c Conflict) MarshalJSON() ([]byte, error) {
	if !c.Kind.valid() {
		return nil, fmt.Errorf("types: invalid ConflictKind %q", string(c.Kind))
	}
	type alias Conflict
	return json.Marshal(alias(c))
}

func (c *Conflict) UnmarshalJSON(data []byte) error {
	type alias Conflict
	var aux alias
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if !aux.Kind.valid() {
		return fmt.Errorf("types: unknown ConflictKind %q", string(aux.Kind))
	}
	*c = Conflict(aux)
	return nil
}

// NameExists constructs a ConflictNameExists conflict.
func NameExists(existingPath string) Conflict {
	return Conflict{Kind: ConflictNameExists, ExistingPath: existingPath}
}

// CycleDetectedConflict constructs a ConflictCycleDetected conflict.
func CycleDetectedConflict() Conflict {
	return Conflict{Kind: ConflictCycleDetected}
}

// DestInsideSourceConflict constructs a ConflictDestInsideSource conflict.
func DestInsideSourceConflict() Conflict {
	return Conflict{Kind: ConflictDestInsideSource}
}

// NoSpace constructs a ConflictNoSpace conflict.
func NoSpace(required, available int64) Conflict {
	return Conflict{Kind: ConflictNoSpace, RequiredBytes: required, AvailableBytes: available}
}

// PermissionConflict constructs a ConflictPermission conflict.
func PermissionConflict(required string) Conflict {
	return Conflict{Kind: ConflictPermission, Required: required}
}
