// Package types defines the serializable record types shared by every
// stage of the plan engine: patterns, rules, scan options, folder
// hits, plan nodes, the move plan itself, and journal entries.
package types

import (
	"encoding/json"
	"fmt"
)

// PatternKind discriminates the three ways a folder name can be
// matched against a rule.
type PatternKind string

const (
	PatternGlob     PatternKind = "glob"
	PatternRegex    PatternKind = "regex"
	PatternContains PatternKind = "contains"
)

func (k PatternKind) valid() bool {
	switch k {
	case PatternGlob, PatternRegex, PatternContains:
		return true
	}
	return false
}

// MarshalJSON rejects attempts to serialize an unrecognized kind so
// that a programming error surfaces immediately rather than producing
// a plan file another process cannot load.
func (k PatternKind) MarshalJSON() ([]byte, error) {
	if !k.valid() {
		return nil, fmt.Errorf("types: invalid PatternKind %q", string(k))
	}
	return json.Marshal(string(k))
}

func (k *PatternKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	pk := PatternKind(s)
	if !pk.valid() {
		return fmt.Errorf("types: unknown PatternKind %q", s)
	}
	*k = pk
	return nil
}

// PatternSpec is immutable once constructed; a rule's matcher is
// compiled from it once at engine construction time.
type PatternSpec struct {
	Kind            PatternKind `json:"kind"`
	Value           string      `json:"value"`
	IsExclude       bool        `json:"is_exclude"`
	CaseInsensitive bool        `json:"case_insensitive"`
}

// NormalizationOptions controls the Normalizer pipeline. Defaults
// (NFC on, width fold on, diacritic strip off, case fold on) are
// supplied by DefaultNormalizationOptions, not by zero values, because
// the zero value of a bool is false and the intended defaults are
// mixed.
type NormalizationOptions struct {
	NormalizeUnicode bool `json:"normalize_unicode"`
	NormalizeWidth   bool `json:"normalize_width"`
	StripDiacritics  bool `json:"strip_diacritics"`
	NormalizeCase    bool `json:"normalize_case"`
}

// DefaultNormalizationOptions returns the engine's default pipeline settings.
func DefaultNormalizationOptions() NormalizationOptions {
	return NormalizationOptions{
		NormalizeUnicode: true,
		NormalizeWidth:   true,
		StripDiacritics:  false,
		NormalizeCase:    true,
	}
}
