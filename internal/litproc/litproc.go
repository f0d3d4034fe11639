// Package litproc implements S2 StringProc and S3 PassthroughProc: the
// scanner passes that remove every lexically-trapped region (string
// literals, comments, backslash passthroughs) from source text, replacing
// each with an opaque sidetable marker so later stages can treat the
// remaining text as brace-balanced without worrying about literal content.
//
// Both passes are hand-rolled rune scanners in the style of
// internal/ictiobus/lex's rune-buffering reader: forward-only, no
// backtracking, explicit state carried in local variables rather than a
// table of regexes.
package litproc

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/dekarrin/cococ/internal/sidetable"
)

// UnclosedStringError reports a string literal with no matching closing
// quote.
type UnclosedStringError struct {
	Line int
}

func (e *UnclosedStringError) Error() string {
	return fmt.Sprintf("unclosed string literal starting at line %d", e.Line)
}

// EmbeddedNewlineError reports a literal newline inside a non-triple-quoted
// string.
type EmbeddedNewlineError struct {
	Line int
}

func (e *EmbeddedNewlineError) Error() string {
	return fmt.Sprintf("single-line string contains a literal newline at line %d", e.Line)
}

// UnclosedParenPassthroughError reports a `\(...)` passthrough whose parens
// never balance before EOF.
type UnclosedParenPassthroughError struct {
	Line int
}

func (e *UnclosedParenPassthroughError) Error() string {
	return fmt.Sprintf("unclosed passthrough expression starting at line %d", e.Line)
}

func isStringPrefixLetter(r rune) bool {
	switch r {
	case 'r', 'R', 'b', 'B', 'f', 'F', 'u', 'U':
		return true
	}
	return false
}

func isIdentChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// classifyPrefix reports whether s is one of the legal string-literal
// prefixes (case-insensitive, up to two letters, any order), and which
// flags it implies.
func classifyPrefix(s string) (raw, byteStr, fstring, ok bool) {
	switch strings.ToLower(s) {
	case "":
		return false, false, false, true
	case "r":
		return true, false, false, true
	case "b":
		return false, true, false, true
	case "f":
		return false, false, true, true
	case "u":
		return false, false, false, true
	case "rb", "br":
		return true, true, false, true
	case "rf", "fr":
		return true, false, true, true
	default:
		return false, false, false, false
	}
}

// ExtractStrings runs S2 over text: every string literal (with optional
// r/b/f/u prefix) and every comment is replaced with a sidetable marker.
// Every original source line fully swallowed by a triple-quoted string
// contributes an entry to skip so S9/diag can map parser line numbers back
// to the original text.
func ExtractStrings(text string, st *sidetable.SideTable, skip *sidetable.SkipSet) (string, error) {
	runes := []rune(text)
	n := len(runes)
	out := make([]rune, 0, n)

	line := 1
	i := 0

	for i < n {
		c := runes[i]

		switch {
		case c == '#':
			start := i + 1
			j := start
			for j < n && runes[j] != '\n' {
				j++
			}
			idx := st.Add(sidetable.Ref{Kind: sidetable.KindComment, Text: string(runes[start:j])})
			out = append(out, '#')
			out = appendDigits(out, idx)
			out = append(out, sidetable.SentinelClose)
			i = j

		case c == '\'' || c == '"':
			prefixStart := len(out)
			for prefixStart > 0 && isStringPrefixLetter(out[prefixStart-1]) && (len(out)-prefixStart) < 2 {
				prefixStart--
			}
			raw, byteStr, fstring, ok := classifyPrefix(string(out[prefixStart:]))
			if !ok || (prefixStart > 0 && isIdentChar(out[prefixStart-1])) {
				prefixStart = len(out)
				raw, byteStr, fstring = false, false, false
			}

			consumed, produced, newLine, err := scanStringBody(runes, i, line, c, st, skip, raw, byteStr, fstring)
			if err != nil {
				return "", err
			}
			out = append(out[:prefixStart], produced...)
			i += consumed
			line = newLine

		case c == '\n':
			line++
			out = append(out, c)
			i++

		default:
			out = append(out, c)
			i++
		}
	}

	return string(out), nil
}

// scanStringBody scans one string literal starting at runes[start], which
// must be the quote character. It returns how many runes were consumed
// from the input and the marker text to splice into the output.
func scanStringBody(runes []rune, start, line int, quote rune, st *sidetable.SideTable, skip *sidetable.SkipSet, raw, byteStr, fstring bool) (consumed int, out []rune, newLine int, err error) {
	n := len(runes)

	qcount := 1
	for start+qcount < n && runes[start+qcount] == quote && qcount < 3 {
		qcount++
	}

	if qcount == 2 {
		idx := st.Add(sidetable.Ref{Kind: sidetable.KindString, QuoteChar: quote, Raw: raw, Byte: byteStr, FString: fstring})
		return 2, marker(idx), line, nil
	}

	multiline := qcount == 3
	j := start + qcount
	var content []rune
	closed := false
	curLine := line

	for j < n {
		switch {
		case runes[j] == '\\' && j+1 < n:
			// Raw strings still treat \<quote> as non-terminating (the
			// Python raw-string rule) but the backslash itself is kept
			// literally rather than interpreted; non-raw strings keep the
			// escape pair as-is for the target emitter to reinterpret.
			content = append(content, runes[j], runes[j+1])
			if runes[j+1] == '\n' {
				curLine++
			}
			j += 2

		case runes[j] == '\n':
			if !multiline {
				return 0, nil, 0, &EmbeddedNewlineError{Line: curLine}
			}
			skip.Add(curLine)
			curLine++
			content = append(content, runes[j])
			j++

		case runes[j] == quote:
			run := 0
			k := j
			for k < n && runes[k] == quote && run < qcount {
				run++
				k++
			}
			if run == qcount {
				closed = true
				j = k
			} else {
				content = append(content, runes[j])
				j++
			}

		default:
			content = append(content, runes[j])
			j++
		}

		if closed {
			break
		}
	}

	if !closed {
		return 0, nil, 0, &UnclosedStringError{Line: line}
	}

	idx := st.Add(sidetable.Ref{
		Kind:      sidetable.KindString,
		Text:      string(content),
		QuoteChar: quote,
		Multiline: multiline,
		Raw:       raw,
		Byte:      byteStr,
		FString:   fstring,
	})

	return j - start, marker(idx), curLine, nil
}

func marker(idx int) []rune {
	out := []rune{sidetable.SentinelOpenStr}
	out = appendDigits(out, idx)
	out = append(out, sidetable.SentinelClose)
	return out
}

func appendDigits(out []rune, n int) []rune {
	return append(out, []rune(strconv.Itoa(n))...)
}

// ExtractPassthroughs runs S3 over text already processed by
// ExtractStrings: it recognizes `\x` (single passthrough character),
// `\(...)` (parenthesis-balanced, possibly multi-line passthrough) and
// `\\(...)` (doubled-backslash variant used for passthroughs that must
// survive a second round of backslash interpretation downstream), storing
// the inner text as a Passthrough Ref.
func ExtractPassthroughs(text string, st *sidetable.SideTable, skip *sidetable.SkipSet) (string, error) {
	runes := []rune(text)
	n := len(runes)
	out := make([]rune, 0, n)

	line := 1
	i := 0

	for i < n {
		c := runes[i]

		if c == '\n' {
			line++
			out = append(out, c)
			i++
			continue
		}

		if c != '\\' {
			out = append(out, c)
			i++
			continue
		}

		doubled := i+1 < n && runes[i+1] == '\\'
		parenIdx := i + 1
		if doubled {
			parenIdx = i + 2
		}

		// A backslash immediately followed by an identifier character is a
		// reserved-word escape (`\match`, `\data`, ...), not a passthrough:
		// leave it untouched for the lexer/name checker to recognize.
		if !doubled && parenIdx < n && isIdentChar(runes[parenIdx]) {
			out = append(out, c)
			i++
			continue
		}

		if parenIdx < n && runes[parenIdx] == '(' {
			depth := 0
			j := parenIdx
			startLine := line
			curLine := line
			var content []rune

		parenScan:
			for j < n {
				switch runes[j] {
				case '(':
					depth++
					if depth > 1 {
						content = append(content, runes[j])
					}
				case ')':
					depth--
					if depth == 0 {
						j++
						break parenScan
					}
					content = append(content, runes[j])
				case '\n':
					curLine++
					skip.Add(curLine - 1)
					content = append(content, runes[j])
				default:
					content = append(content, runes[j])
				}
				j++
			}

			if depth != 0 {
				return "", &UnclosedParenPassthroughError{Line: startLine}
			}

			idx := st.Add(sidetable.Ref{Kind: sidetable.KindPassthrough, Text: string(content), Multiline: true})
			out = append(out, '\\')
			if doubled {
				out = append(out, '\\')
			}
			out = appendDigits(out, idx)
			out = append(out, sidetable.SentinelClose)
			line = curLine
			i = j
			continue
		}

		if parenIdx < n {
			ch := runes[parenIdx]
			idx := st.Add(sidetable.Ref{Kind: sidetable.KindPassthrough, Text: string(ch)})
			out = append(out, '\\')
			if doubled {
				out = append(out, '\\')
			}
			out = appendDigits(out, idx)
			out = append(out, sidetable.SentinelClose)
			i = parenIdx + 1
			continue
		}

		// trailing lone backslash at EOF: nothing to extract
		out = append(out, c)
		i++
	}

	return string(out), nil
}
