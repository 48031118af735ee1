package types

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ConflictPolicy selects how the Conflict Resolver treats a
// destination that already exists on disk or has already been
// reserved by an earlier node in the same plan.
type ConflictPolicy string

const (
	PolicyAutoRename ConflictPolicy = "auto_rename"
	PolicySkip       ConflictPolicy = "skip"
	PolicyOverwrite  ConflictPolicy = "overwrite"
)

func (p ConflictPolicy) valid() bool {
	switch p {
	case PolicyAutoRename, PolicySkip, PolicyOverwrite:
		return true
	}
	return false
}

func (p ConflictPolicy) MarshalJSON() ([]byte, error) {
	if !p.valid() {
		return nil, fmt.Errorf("types: invalid ConflictPolicy %q", string(p))
	}
	return json.Marshal(string(p))
}

func (p *ConflictPolicy) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	cp := ConflictPolicy(s)
	if !cp.valid() {
		return fmt.Errorf("types: unknown ConflictPolicy %q", s)
	}
	*p = cp
	return nil
}

// Rule is a single declarative routing rule. Identity (ID) survives
// editing; a cloned rule must be assigned a fresh ID by the caller.
type Rule struct {
	ID       uuid.UUID      `json:"id"`
	Enabled  bool           `json:"enabled"`
	Pattern  PatternSpec    `json:"pattern"`
	DestRoot string         `json:"dest_root"`
	Template string         `json:"template"`
	Policy   ConflictPolicy `json:"policy"`
	Label    string         `json:"label,omitempty"`
	Priority uint32         `json:"priority"`
}

// NewRule assigns a fresh id, following the convention of constructor
// functions that stamp identity at creation time.
func NewRule() Rule {
	return Rule{ID: uuid.New(), Enabled: true, Policy: PolicyAutoRename}
}
