package handlers

import (
	"fmt"
	"strings"
)

// reservedWords are surface-language keywords that may still be used as
// identifiers when backslash-escaped (`\match`, `\data`, ...).
var reservedWords = map[string]bool{
	"match": true, "data": true, "case": true, "async": true, "await": true,
}

// InternalPrefix is the prefix reserved for names the runtime header
// synthesizes; user code using it risks colliding with a compiler-
// generated helper.
const InternalPrefix = "_coconut"

// ReservedWordError reports direct (non-escaped) use of a reserved word as
// an identifier under strict mode.
type ReservedWordError struct {
	Name string
}

func (e *ReservedWordError) Error() string {
	return fmt.Sprintf("%q is a reserved word and cannot be used as an identifier (escape it with a leading backslash, or compile without --strict)", e.Name)
}

// InternalPrefixError reports use of the internal-prefix namespace as an
// identifier under strict mode.
type InternalPrefixError struct {
	Name string
}

func (e *InternalPrefixError) Error() string {
	return fmt.Sprintf("%q begins with the reserved internal prefix %q", e.Name, InternalPrefix)
}

// InternalPrefixWarning is the non-strict counterpart of
// InternalPrefixError.
type InternalPrefixWarning struct {
	Name string
}

func (w *InternalPrefixWarning) Error() string {
	return fmt.Sprintf("%q begins with the reserved internal prefix %q", w.Name, InternalPrefix)
}

// StripReservedEscape removes a leading backslash from a backslash-escaped
// reserved word (`\match` -> `match`), per 4.5.9. Names that aren't escaped
// reserved words pass through unchanged.
func StripReservedEscape(name string) string {
	if strings.HasPrefix(name, `\`) && reservedWords[name[1:]] {
		return name[1:]
	}
	return name
}

// CheckName validates name per 4.5.9: a direct (non-escaped) use of a
// reserved word is always suspicious, escalating to an error under strict;
// likewise a name in the internal-prefix namespace is warned, escalating
// to an error under strict. Returns a non-nil warning-or-error as an error
// value; callers distinguish Warning from Error by type.
func CheckName(name string, strict bool) error {
	if reservedWords[name] {
		if strict {
			return &ReservedWordError{Name: name}
		}
		return nil
	}

	if strings.HasPrefix(name, InternalPrefix) {
		if strict {
			return &InternalPrefixError{Name: name}
		}
		return &InternalPrefixWarning{Name: name}
	}

	return nil
}
