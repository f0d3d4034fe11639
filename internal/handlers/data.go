package handlers

import (
	"fmt"
	"strings"
)

// ReservedFieldNameError reports a data-class field name beginning with an
// underscore, or the bare wildcard "_", both forbidden per 4.5.3.
type ReservedFieldNameError struct {
	Name string
}

func (e *ReservedFieldNameError) Error() string {
	return fmt.Sprintf("data field name %q is reserved (must not begin with '_')", e.Name)
}

// DataClass lowers `data Name(fields): <body>` to a named-tuple subclass
// per 4.5.3: fields become the tuple's positional slots, `__slots__` is
// empty so no extra per-instance dict is allocated, and body (already
// rendered def/assignment text, or empty) is attached as the class body.
func DataClass(name string, fields []string, body string, docstring string) (string, error) {
	for _, f := range fields {
		if f == "_" || strings.HasPrefix(f, "_") {
			return "", &ReservedFieldNameError{Name: f}
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "class %s(_coconut.collections.namedtuple(%q, %q)):\n", name, name, strings.Join(fields, " "))

	if docstring != "" {
		fmt.Fprintf(&sb, "    %s\n", docstring)
	}

	sb.WriteString("    __slots__ = ()\n")

	if strings.TrimSpace(body) == "" {
		return sb.String(), nil
	}

	for _, line := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
		sb.WriteString("    ")
		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	return sb.String(), nil
}
