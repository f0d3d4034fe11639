// Package source implements S1 Prepare: normalizing line endings to a bare
// "\n" so every later stage can assume a single line-terminator convention,
// and optionally stripping a leading shebang/encoding preamble the caller
// doesn't want re-emitted.
package source

import "strings"

// Prepare normalizes text's line endings to "\n" (collapsing "\r\n" and
// bare "\r") and returns the result. It is the identity function for text
// that already uses "\n" exclusively.
func Prepare(text string) string {
	if strings.IndexByte(text, '\r') < 0 {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text))

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '\r':
			sb.WriteByte('\n')
			if i+1 < len(runes) && runes[i+1] == '\n' {
				i++
			}
		default:
			sb.WriteRune(runes[i])
		}
	}

	return sb.String()
}

// StripShebang removes a leading "#!"-prefixed line from text, if present,
// along with its trailing newline. Used when re-compiling already-headered
// output so the old header's shebang line isn't duplicated downstream.
func StripShebang(text string) string {
	if !strings.HasPrefix(text, "#!") {
		return text
	}
	idx := strings.IndexByte(text, '\n')
	if idx < 0 {
		return ""
	}
	return text[idx+1:]
}
