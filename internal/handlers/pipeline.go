// Package handlers implements the semantic handlers of spec section 4.5:
// pure functions of already-evaluated child text that lower a matched
// surface construct to its target-language equivalent. Each handler is
// invoked as (or from) a graph.Action once the computation graph has
// evaluated its children, never during parsing itself.
package handlers

import "fmt"

// ErrUnknownPipeOp is returned by Pipeline for an operator lexeme the
// grammar should never have produced; seeing it means the grammar and this
// handler have drifted out of sync.
type ErrUnknownPipeOp struct {
	Op string
}

func (e *ErrUnknownPipeOp) Error() string {
	return fmt.Sprintf("internal error: unrecognized pipeline operator %q", e.Op)
}

// Pipeline lowers one pipeline step per 4.5.1:
//
//	lhs |>  f   ->  (f)(lhs)
//	lhs |*> f   ->  (f)(*lhs)
//	f   <|  rhs ->  (f)(rhs)
//	f   <*| rhs ->  (f)(*rhs)
func Pipeline(op, lhs, rhs string) (string, error) {
	switch op {
	case "|>":
		return fmt.Sprintf("(%s)(%s)", rhs, lhs), nil
	case "|*>":
		return fmt.Sprintf("(%s)(*%s)", rhs, lhs), nil
	case "<|":
		return fmt.Sprintf("(%s)(%s)", lhs, rhs), nil
	case "<*|":
		return fmt.Sprintf("(%s)(*%s)", lhs, rhs), nil
	default:
		return "", &ErrUnknownPipeOp{Op: op}
	}
}

// Compose lowers `f .. g` to a lambda that applies g then f:
// (lambda *a, **k: f(g(*a, **k))).
func Compose(f, g string) string {
	return fmt.Sprintf("(lambda *_coconut_a, **_coconut_k: (%s)((%s)(*_coconut_a, **_coconut_k)))", f, g)
}

// Chain lowers `a :: b` to a lazily-evaluated chain of both operands via
// itertools, so neither side is forced before the other.
func Chain(a, b string) string {
	return fmt.Sprintf("_coconut.itertools.chain.from_iterable(_coconut_lazy_list(lambda: %s, lambda: %s))", a, b)
}

// PartialApply lowers the partial-apply trailer `head$(args)` to
// functools.partial.
func PartialApply(head, args string) string {
	if args == "" {
		return fmt.Sprintf("_coconut.functools.partial(%s)", head)
	}
	return fmt.Sprintf("_coconut.functools.partial(%s, %s)", head, args)
}

// LazySubscript lowers the lazy-subscript trailer `head$[index]` to
// igetitem(head, index).
func LazySubscript(head, index string) string {
	return fmt.Sprintf("_coconut_igetitem(%s, %s)", head, index)
}

// LazySlice lowers `head$[a:b:c]` to igetitem(head, slice(a, b, c)), with
// any missing component defaulting to the literal None.
func LazySlice(head, a, b, c string) string {
	if a == "" {
		a = "None"
	}
	if b == "" {
		b = "None"
	}
	if c == "" {
		c = "None"
	}
	return fmt.Sprintf("_coconut_igetitem(%s, slice(%s, %s, %s))", head, a, b, c)
}

// bareOpLambdas maps a bare operator-as-function atom, e.g. `(+)`, to the
// canonical lambda or stdlib operator-module function the spec calls for.
var bareOpLambdas = map[string]string{
	"+":  "_coconut.operator.add",
	"-":  "_coconut.operator.sub",
	"*":  "_coconut.operator.mul",
	"/":  "_coconut.operator.truediv",
	"//": "_coconut.operator.floordiv",
	"%":  "_coconut.operator.mod",
	"**": "_coconut.operator.pow",
	"==": "_coconut.operator.eq",
	"!=": "_coconut.operator.ne",
	"<":  "_coconut.operator.lt",
	"<=": "_coconut.operator.le",
	">":  "_coconut.operator.gt",
	">=": "_coconut.operator.ge",
	"&":  "_coconut.operator.and_",
	"|":  "_coconut.operator.or_",
	"^":  "_coconut.operator.xor",
	"~":  "_coconut.operator.invert",
	"<<": "_coconut.operator.lshift",
	">>": "_coconut.operator.rshift",
}

// ErrUnknownBareOp reports an operator atom with no known canonical
// function, a grammar/handler drift the same way ErrUnknownPipeOp is.
type ErrUnknownBareOp struct {
	Op string
}

func (e *ErrUnknownBareOp) Error() string {
	return fmt.Sprintf("internal error: unrecognized bare operator atom %q", e.Op)
}

// BareOpAtom lowers a bare operator-as-function atom like `(+)` to its
// canonical target-language function.
func BareOpAtom(op string) (string, error) {
	fn, ok := bareOpLambdas[op]
	if !ok {
		return "", &ErrUnknownBareOp{Op: op}
	}
	return fn, nil
}
