package handlers

import (
	"fmt"
	"strings"
)

// isDottedName reports whether expr is a simple dotted-name decorator
// expression (optionally followed by a call), the only shape the spec
// allows to stay as a direct `@expr` instead of being bound to a temporary
// first.
func isDottedName(expr string) bool {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return false
	}

	head := trimmed
	if idx := strings.IndexByte(trimmed, '('); idx >= 0 {
		depth := 0
		for i := idx; i < len(trimmed); i++ {
			switch trimmed[i] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 && i != len(trimmed)-1 {
					// more text follows the call's closing paren: a second
					// call, an attribute access, etc. — not a bare call.
					return false
				}
			}
		}
		if depth != 0 {
			return false
		}
		head = trimmed[:idx]
	}

	if head == "" {
		return false
	}
	for i, r := range head {
		switch {
		case r == '.' || r == '_':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// Decorators lowers a list of decorator expressions per 4.5.5: complex
// expressions (anything beyond a dotted name, optionally called) are first
// bound to a synthesized temporary, in declaration order; then every
// `@`-application is emitted, temporaries first; then the decorated
// definition (already-rendered defText) follows.
func Decorators(exprs []string, defText string) string {
	var temps []string
	var applies []string

	for i, expr := range exprs {
		if isDottedName(expr) {
			applies = append(applies, "@"+expr)
			continue
		}
		name := fmt.Sprintf("_decorator_%d", i)
		temps = append(temps, fmt.Sprintf("%s = %s", name, expr))
		applies = append(applies, "@"+name)
	}

	var sb strings.Builder
	for _, t := range temps {
		sb.WriteString(t)
		sb.WriteByte('\n')
	}
	for _, a := range applies {
		sb.WriteString(a)
		sb.WriteByte('\n')
	}
	sb.WriteString(defText)
	return sb.String()
}
