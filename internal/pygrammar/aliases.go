// Package pygrammar implements S5 Parse: the layered recursive-descent
// expression and statement grammar of spec §4.4, producing a
// graph.ParseResult whose deferred actions wrap internal/handlers and
// internal/matcher. It consumes internal/lex's token stream and is
// packrat-memoized per spec's "cleared at end of each top-level parse"
// rule.
package pygrammar

import (
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// unicodeAliases maps a Unicode operator glyph to the ASCII spelling the
// rest of the lexer/grammar already understands, per the "Unicode operator
// aliases" elaboration (SPEC_FULL §3.A). Substitution happens once, before
// lexing, exactly like the teacher's own "recognize, then strip/alias"
// handling of backslash-escaped reserved words (spec §4.5.9) — a first
// textual pass rather than new lexer machinery.
var unicodeAliases = map[string]string{
	"·": "*",  // · multiplication
	"÷": "/",  // ÷ division
	"≠": "!=", // ≠
	"≤": "<=", // ≤
	"≥": ">=", // ≥
	"←": "=>", // ← alternate lambda/assignment arrow glyph
	"⇒": "=>", // ⇒
	"¬": "not ",
	"∧": " and ", // ∧
	"∨": " or ",  // ∨
	"→": "->",    // →
}

// orderedAliasGlyphs is unicodeAliases' keys in a fixed, longest-first
// order; none of the current glyphs overlap as prefixes of one another
// (each is a single rune), but the table is walked this way so a future
// multi-rune glyph can be added without silently mis-substituting.
var orderedAliasGlyphs = buildOrderedAliasGlyphs()

func buildOrderedAliasGlyphs() []string {
	out := make([]string, 0, len(unicodeAliases))
	for g := range unicodeAliases {
		out = append(out, g)
	}
	// Longest-first so a future multi-rune glyph sharing a prefix with a
	// single-rune one is tried first.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && len(out[j]) > len(out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// NormalizeAliases replaces every recognized Unicode operator alias in
// text with its ASCII equivalent. It runs before lexing, over already-S4-
// processed (bracketed) text, so it never touches the contents of a
// sidetable marker (those are opaque digit runs plus fixed sentinels, none
// of which collide with an alias glyph).
//
// Two canonicalization passes run first so a glyph typed in a fullwidth
// form (common when pasted from a CJK IME) or as a decomposed combining
// sequence still matches the (precomposed, halfwidth) table above: NFC
// composition, then halfwidth/fullwidth folding.
func NormalizeAliases(text string) string {
	text = norm.NFC.String(text)
	text = width.Fold.String(text)

	if !strings.ContainsAny(text, aliasRuneSet()) {
		return text
	}
	out := text
	for _, glyph := range orderedAliasGlyphs {
		out = strings.ReplaceAll(out, glyph, unicodeAliases[glyph])
	}
	return out
}

func aliasRuneSet() string {
	var sb strings.Builder
	for g := range unicodeAliases {
		sb.WriteString(g)
	}
	return sb.String()
}
