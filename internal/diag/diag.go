// Package diag implements the compiler's diagnostic hierarchy: Internal
// invariant violations, top-level Exceptions, positioned SyntaxErrors (with
// Parse/Style/Target/DeferredSyntax subtypes), and non-fatal Warnings.
//
// A diagnostic always carries enough to render: severity, message, an
// optional hint, and — for anything position-aware — the offending source
// line with a caret under the column and the original-file line number
// (already remapped through a sidetable.SkipSet by the caller).
package diag

import (
	"fmt"
	"strings"

	"github.com/dekarrin/rosed"
	"github.com/hashicorp/go-multierror"
)

// Severity classifies a diagnostic for display and for whether it aborts
// compilation.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityInternal
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityInternal:
		return "internal error"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Kind further distinguishes SyntaxError/Warning diagnostics, per spec
// §4.7.
type Kind int

const (
	// KindNone applies to Internal and plain Exception diagnostics, which
	// have no finer-grained kind.
	KindNone Kind = iota
	KindParseError
	KindStyleError
	KindTargetError
	KindDeferredSyntaxError
)

func (k Kind) String() string {
	switch k {
	case KindParseError:
		return "ParseError"
	case KindStyleError:
		return "StyleError"
	case KindTargetError:
		return "TargetError"
	case KindDeferredSyntaxError:
		return "DeferredSyntaxError"
	default:
		return "Error"
	}
}

// Position is the location a diagnostic is anchored to, expressed in terms
// of the *original* source (already remapped via a SkipSet where needed).
type Position struct {
	// Line is the 1-indexed original-file line number. Zero means no
	// position is known (e.g. an unexpected-EOF diagnostic).
	Line int

	// Column is the 1-indexed original-file column.
	Column int

	// SourceLine is the full text of the offending line, used to render
	// the caret.
	SourceLine string
}

// HasPosition reports whether d carries a usable Position.
func (p Position) HasPosition() bool {
	return p.Line > 0
}

// Diagnostic is a single compiler diagnostic.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Message  string

	// Hint is additional guidance appended after the message, e.g. the
	// "(use --strict to promote to an error)" suffix for StyleErrors, or
	// the target-version suffix for TargetErrors. May be empty.
	Hint string

	Position Position

	// TraceID correlates this diagnostic with the worker process/goroutine
	// that produced it, for drivers that compile many files concurrently
	// (§5). It has no bearing on diagnostic identity or equality.
	TraceID string

	wrapped error
}

// Error implements the error interface with the diagnostic's technical
// (non-pretty) message, suitable for Go error chains and test assertions.
func (d *Diagnostic) Error() string {
	var sb strings.Builder
	sb.WriteString(d.Severity.String())
	if d.Kind != KindNone {
		sb.WriteString(" (")
		sb.WriteString(d.Kind.String())
		sb.WriteString(")")
	}
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	if d.Position.HasPosition() {
		fmt.Fprintf(&sb, " (line %d, col %d)", d.Position.Line, d.Position.Column)
	}
	return sb.String()
}

// Unwrap gives the error d wraps, if any.
func (d *Diagnostic) Unwrap() error {
	return d.wrapped
}

// Fatal reports whether this diagnostic should abort compilation. Only
// Warnings are non-fatal.
func (d *Diagnostic) Fatal() bool {
	return d.Severity != SeverityWarning
}

// Render produces the full user-facing diagnostic: severity, message, hint
// (if any), the source line with a caret under the offending column, and
// the original-file line number.
func (d *Diagnostic) Render() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s: %s", strings.ToUpper(d.Severity.String()[:1])+d.Severity.String()[1:], d.Message)
	if d.Hint != "" {
		sb.WriteString("\n")
		sb.WriteString(rosed.Edit(d.Hint).Wrap(78).String())
	}

	if d.Position.HasPosition() {
		sb.WriteString(fmt.Sprintf("\n  line %d:\n", d.Position.Line))
		sb.WriteString("    ")
		sb.WriteString(d.Position.SourceLine)
		sb.WriteString("\n    ")
		sb.WriteString(caret(d.Position.Column))
	}

	return sb.String()
}

func caret(col int) string {
	if col < 1 {
		col = 1
	}
	return strings.Repeat(" ", col-1) + "^"
}

// Internal builds a diagnostic for an invariant violation inside the
// compiler itself. These are never caught by handler code and always
// indicate a bug in the compiler, not the input.
func Internal(format string, a ...interface{}) *Diagnostic {
	return &Diagnostic{
		Severity: SeverityInternal,
		Message:  fmt.Sprintf(format, a...),
	}
}

// Exception builds a plain top-level compiler error with an optional hint.
func Exception(message, hint string) *Diagnostic {
	return &Diagnostic{
		Severity: SeverityError,
		Message:  message,
		Hint:     hint,
	}
}

// SyntaxErr builds a positioned SyntaxError diagnostic of the given Kind.
func SyntaxErr(kind Kind, message string, pos Position) *Diagnostic {
	return &Diagnostic{
		Severity: SeverityError,
		Kind:     kind,
		Message:  message,
		Position: pos,
	}
}

// Style builds a StyleError; under strict mode its Hint documents the
// --strict rule that fired.
func Style(message string, pos Position) *Diagnostic {
	d := SyntaxErr(KindStyleError, message, pos)
	d.Hint = "disallowed by --strict"
	return d
}

// Target builds a TargetError noting which target the construct requires.
func Target(message, requiredTarget string, pos Position) *Diagnostic {
	d := SyntaxErr(KindTargetError, message, pos)
	d.Hint = fmt.Sprintf("requires target %q", requiredTarget)
	return d
}

// DeferredSyntax builds a DeferredSyntaxError: one raised by a handler
// after parsing has already completed successfully (e.g. a forbidden
// `from __future__` import found during evaluation).
func DeferredSyntax(message string, pos Position) *Diagnostic {
	return SyntaxErr(KindDeferredSyntaxError, message, pos)
}

// Warn builds a non-fatal Warning diagnostic. Warnings share SyntaxError's
// shape but never abort compilation.
func Warn(kind Kind, message string, pos Position) *Diagnostic {
	return &Diagnostic{
		Severity: SeverityWarning,
		Kind:     kind,
		Message:  message,
		Position: pos,
	}
}

// Wrap attaches an underlying error to d and returns d, for use with
// Unwrap()/errors.Is chains.
func (d *Diagnostic) Wrap(err error) *Diagnostic {
	d.wrapped = err
	return d
}

// Bag accumulates the non-fatal Warnings produced over the course of one
// compilation. Unlike Errors (of which only the first ever surfaces, per
// spec §7 "one diagnostic per compilation"), Warnings are collected so the
// driver can show all of them at once.
type Bag struct {
	warnings *multierror.Error
}

// NewBag returns an empty warning Bag.
func NewBag() *Bag {
	return &Bag{warnings: &multierror.Error{
		ErrorFormat: func(errs []error) string {
			lines := make([]string, len(errs))
			for i, e := range errs {
				lines[i] = e.Error()
			}
			return strings.Join(lines, "\n")
		},
	}}
}

// Add records a Warning. Passing a non-Warning diagnostic panics, since
// that indicates a bug in the caller rather than in user input.
func (b *Bag) Add(d *Diagnostic) {
	if d.Severity != SeverityWarning {
		panic("diag: Bag.Add called with a non-Warning diagnostic")
	}
	b.warnings = multierror.Append(b.warnings, d)
}

// Len returns the number of warnings accumulated.
func (b *Bag) Len() int {
	if b.warnings == nil {
		return 0
	}
	return len(b.warnings.Errors)
}

// All returns the accumulated warnings in the order they were added.
func (b *Bag) All() []*Diagnostic {
	if b.warnings == nil {
		return nil
	}
	out := make([]*Diagnostic, 0, len(b.warnings.Errors))
	for _, e := range b.warnings.Errors {
		if d, ok := e.(*Diagnostic); ok {
			out = append(out, d)
		}
	}
	return out
}

// Err returns the accumulated warnings as a single error (nil if none were
// recorded), for callers that want to log or return them via a standard
// error value.
func (b *Bag) Err() error {
	if b.Len() == 0 {
		return nil
	}
	return b.warnings.ErrorOrNil()
}
