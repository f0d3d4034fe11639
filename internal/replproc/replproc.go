// Package replproc implements S8 ReplProc: re-expanding the sidetable
// markers left by S2/S3 back into literal text, using the side table
// accumulated during S2/S3 and left untouched by S4-S7.
package replproc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dekarrin/cococ/internal/sidetable"
)

// UnterminatedMarkerError reports a marker whose digits or closing
// sentinel never arrived before EOF — an internal error, since a
// well-formed S2/S3/S4 pipeline never produces one.
type UnterminatedMarkerError struct {
	Pos int
}

func (e *UnterminatedMarkerError) Error() string {
	return fmt.Sprintf("internal error: unterminated sidetable marker at position %d", e.Pos)
}

// quoteFor renders ref's delimiters given its prefix flags.
func renderString(ref sidetable.Ref) string {
	var prefix strings.Builder
	if ref.Raw {
		prefix.WriteByte('r')
	}
	if ref.Byte {
		prefix.WriteByte('b')
	}
	if ref.FString {
		prefix.WriteByte('f')
	}

	q := string(ref.QuoteChar)
	delim := q
	if ref.Multiline {
		delim = q + q + q
	}

	return prefix.String() + delim + ref.Text + delim
}

// Expand walks text (the output of S7 Reindent) and replaces every
// sidetable marker with its original literal text: strings are re-quoted
// with their original delimiters and prefix, comments regain their
// leading '#', and passthroughs are spliced in verbatim.
func Expand(text string, st *sidetable.SideTable) (string, error) {
	runes := []rune(text)
	n := len(runes)
	var out strings.Builder
	out.Grow(n)

	i := 0
	for i < n {
		r := runes[i]

		switch r {
		case sidetable.SentinelOpenStr:
			idx, consumed, err := scanMarkerIndex(runes, i+1)
			if err != nil {
				return "", err
			}
			ref := st.Get(idx)
			out.WriteString(renderString(ref))
			i = consumed

		case '#':
			idx, consumed, err := scanMarkerIndex(runes, i+1)
			if err != nil {
				// a literal '#' that isn't a marker (shouldn't happen post
				// S2, but don't corrupt otherwise-valid text over it)
				out.WriteRune(r)
				i++
				continue
			}
			ref := st.Get(idx)
			out.WriteByte('#')
			out.WriteString(ref.Text)
			i = consumed

		case '\\':
			doubled := i+1 < n && runes[i+1] == '\\'
			start := i + 1
			if doubled {
				start = i + 2
			}
			idx, consumed, err := scanMarkerIndex(runes, start)
			if err != nil {
				out.WriteRune(r)
				i++
				continue
			}
			ref := st.Get(idx)
			out.WriteString(ref.Text)
			i = consumed

		default:
			out.WriteRune(r)
			i++
		}
	}

	return out.String(), nil
}

func scanMarkerIndex(runes []rune, start int) (idx int, consumed int, err error) {
	n := len(runes)
	j := start
	for j < n && runes[j] >= '0' && runes[j] <= '9' {
		j++
	}
	if j == start {
		return 0, 0, &UnterminatedMarkerError{Pos: start}
	}
	if j >= n || runes[j] != sidetable.SentinelClose {
		return 0, 0, &UnterminatedMarkerError{Pos: start}
	}

	val, convErr := strconv.Atoi(string(runes[start:j]))
	if convErr != nil {
		return 0, 0, &UnterminatedMarkerError{Pos: start}
	}

	return val, j + 1, nil
}
