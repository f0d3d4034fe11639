// Package matcher implements the pattern-matching code generator of
// handler 4.5.2: given an abstract Pattern tree and the name of the value
// being matched, it emits a nested sequence of target-language conditional
// blocks that set a boolean flag and bind names on success.
//
// The generator is structured the way tunascript/syntax/hooks.go
// dispatches on AST node kind: a type-switch over the Pattern sum type,
// one case per variant, each producing a Check/Defs pair that the caller
// threads together.
package matcher

import "fmt"

// Pattern is the sum type of match-pattern AST nodes (spec 4.5.2).
type Pattern interface {
	isPattern()
}

// Const matches a literal constant: `None`/`True`/`False` use `is`,
// everything else uses `==`.
type Const struct {
	// Lexeme is the already-rendered target-language text of the constant
	// (e.g. "None", "42", "\"hi\"").
	Lexeme string
}

// Var binds (or, if already bound, checks equality with) a name. The
// wildcard name "_" is a no-op.
type Var struct {
	Name string
}

// Sequence matches a fixed-length list or tuple and recurses into each
// element.
type Sequence struct {
	Elems []Pattern
	Tuple bool
}

// HeadRest matches `(p1, ..., pk, *rest)`: at least k elements, with rest
// bound to whatever remains.
type HeadRest struct {
	Front []Pattern
	Rest  string
	Tuple bool
}

// RestTail matches `(*rest, p1, ..., pk)`: symmetric to HeadRest, anchored
// from the end.
type RestTail struct {
	Rest  string
	Tail  []Pattern
	Tuple bool
}

// Middle matches `[h1, h2] + mid + [t1]`: at least len(Head)+len(Tail)
// elements, with Mid bound to the slice between them.
type Middle struct {
	Head  []Pattern
	Mid   string
	Tail  []Pattern
	Tuple bool
}

// Iterator matches `(p1, ..., pk) :: rest` against any Iterable: the first
// k elements are drained from a fresh iterator and matched positionally,
// and Rest is bound to the unconsumed remainder of that same iterator.
type Iterator struct {
	Elems []Pattern
	Rest  string
}

// Dict matches a fixed set of keys against a Mapping.
type Dict struct {
	Keys []string // already-rendered key literals
	Vals []Pattern
}

// Set matches a fixed collection of constants against a Set.
type Set struct {
	Consts []string // already-rendered constant literals
}

// Data matches a data-class instance positionally.
type Data struct {
	Type  string
	Elems []Pattern
}

// As binds Alias to the matched value in addition to checking Inner.
type As struct {
	Inner Pattern
	Alias string
}

// Is additionally requires isinstance(x, Type).
type Is struct {
	Inner Pattern
	Type  string
}

// And is the conjunction of every Sub against the same value.
type And struct {
	Subs []Pattern
}

// Or forks the Matcher once per alternative; the first check of every
// alternative after the first is `not <flag>` so only one alternative's
// bindings take effect.
type Or struct {
	Alts []Pattern
}

func (Const) isPattern()    {}
func (Var) isPattern()      {}
func (Sequence) isPattern() {}
func (HeadRest) isPattern() {}
func (RestTail) isPattern() {}
func (Middle) isPattern()   {}
func (Iterator) isPattern() {}
func (Dict) isPattern()     {}
func (Set) isPattern()      {}
func (Data) isPattern()     {}
func (As) isPattern()       {}
func (Is) isPattern()       {}
func (And) isPattern()      {}
func (Or) isPattern()       {}

// UnboundVarError should never escape a well-formed Matcher; it exists so
// internal bugs in variable-binding tracking surface loudly instead of
// silently emitting bad code.
type UnboundVarError struct {
	Name string
}

func (e *UnboundVarError) Error() string {
	return fmt.Sprintf("internal error: pattern variable %q referenced before binding tracked", e.Name)
}
