// Package normalize implements the Unicode/width/diacritic/case
// folding pipeline applied identically to pattern literals and
// subject folder names, so matching holds modulo the fold rather than
// raw string equality.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/xuanyiying/filemover-cli/internal/types"
)

// Normalize runs the fixed-order pipeline — NFC, fullwidth->halfwidth
// fold, diacritic strip, ASCII case fold — gating each stage on its
// option flag.
func Normalize(text string, opts types.NormalizationOptions) string {
	if opts.NormalizeUnicode {
		text = norm.NFC.String(text)
	}
	if opts.NormalizeWidth {
		text = foldWidth(text)
	}
	if opts.StripDiacritics {
		text = stripDiacritics(text)
	}
	if opts.NormalizeCase {
		text = strings.Map(func(r rune) rune {
			if r >= 'A' && r <= 'Z' {
				return r + ('a' - 'A')
			}
			return r
		}, text)
	}
	return text
}

// foldWidth maps fullwidth digits, fullwidth Latin letters, and the
// ideographic space to their halfwidth/ASCII equivalents; every other
// rune is left unchanged.
func foldWidth(text string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 0xFF10 && r <= 0xFF19, r >= 0xFF21 && r <= 0xFF3A, r >= 0xFF41 && r <= 0xFF5A:
			return r - 0xFF00 + 0x20
		case r == 0x3000:
			return ' '
		}
		return r
	}, text)
}

// stripDiacritics decomposes to NFD and drops combining marks
// (Unicode category Mn). golang.org/x/text offers no narrower
// "strip combining marks" primitive than composing norm.NFD with a
// category filter, so the filter itself uses the stdlib unicode
// category tables — see DESIGN.md for the why-stdlib note.
func stripDiacritics(text string) string {
	decomposed := norm.NFD.String(text)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}
