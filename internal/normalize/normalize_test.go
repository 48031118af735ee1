package normalize

import (
	"testing"

	"github.com/xuanyiying/filemover-cli/internal/types"
)

func TestNormalizeCaseFold(t *testing.T) {
	opts := types.NormalizationOptions{NormalizeCase: true}
	if got := Normalize("Report_Q1", opts); got != "report_q1" {
		t.Errorf("Normalize case fold = %q, want %q", got, "report_q1")
	}
}

func TestNormalizeWidthFold(t *testing.T) {
	opts := types.NormalizationOptions{NormalizeWidth: true}
	// Fullwidth "ABC" (U+FF21-FF23) folds to halfwidth ASCII.
	got := Normalize("ＡＢＣ", opts)
	if got != "ABC" {
		t.Errorf("Normalize width fold = %q, want %q", got, "ABC")
	}
}

func TestNormalizeStripDiacritics(t *testing.T) {
	opts := types.NormalizationOptions{StripDiacritics: true}
	if got := Normalize("café", opts); got != "cafe" {
		t.Errorf("Normalize diacritic strip = %q, want %q", got, "cafe")
	}
}

func TestNormalizeNoOptionsIsIdentity(t *testing.T) {
	opts := types.NormalizationOptions{}
	if got := Normalize("MixedCase", opts); got != "MixedCase" {
		t.Errorf("Normalize with no options changed input: %q", got)
	}
}

func TestNormalizeDefaultsMatchesPatternAndSubject(t *testing.T) {
	opts := types.DefaultNormalizationOptions()
	pattern := Normalize("Report*", opts)
	subject := Normalize("REPORT_2024", opts)
	if pattern[:6] != subject[:6] {
		t.Errorf("normalized pattern/subject prefixes diverge: %q vs %q", pattern, subject)
	}
}
