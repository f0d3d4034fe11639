// Package graph implements the ComputationNode/ParseResult deferred-
// evaluation model the grammar package builds during S5 Parse and walks
// during S6 Evaluate: parsing constructs a tree describing *shape*, and a
// single post-order walk later supplies *meaning* by invoking each node's
// action exactly once.
//
// The tree shape itself borrows the leveled pretty-printer convention of
// internal/ictiobus/types/tree.go's ParseTree, but nodes here carry a
// deferred action instead of a fixed terminal/nonterminal Value, since the
// grammar this pipeline implements is PEG/packrat recursive descent rather
// than a bottom-up SDD-annotated parse tree.
package graph

import (
	"fmt"
	"strings"
)

// Action is the semantic handler attached to a production match. It
// receives the original source text, the match's starting location, and
// the already-evaluated text of every child node, and returns the target-
// language text this node contributes.
type Action func(original string, loc Location, children []string) (string, error)

// Location pinpoints where in the original (pre-S2/S3/S4) source a node's
// match began, for diagnostics raised during evaluation.
type Location struct {
	Line int
	Col  int
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Col)
}

// Node is one vertex of a computation graph. A leaf node (no children, Action
// nil) simply contributes Literal verbatim; an interior node defers to
// Action once all of its children have been evaluated.
type Node struct {
	Label    string // production name, for diagnostics/debugging only
	Loc      Location
	Literal  string // used when Action is nil
	Action   Action
	Children []*Node

	evaluated bool
	result    string
}

// Leaf returns a Node that contributes literal verbatim with no action.
func Leaf(label string, loc Location, literal string) *Node {
	return &Node{Label: label, Loc: loc, Literal: literal}
}

// New returns an interior Node whose value is produced by action once all
// of children have themselves been evaluated.
func New(label string, loc Location, action Action, children ...*Node) *Node {
	return &Node{Label: label, Loc: loc, Action: action, Children: children}
}

// AlreadyEvaluatedError is returned by Evaluate when a Node is walked more
// than once. Re-entry into an evaluated node is an internal-compiler bug,
// never a user-facing condition: a ParseResult is meant to be evaluated
// exactly once.
type AlreadyEvaluatedError struct {
	Label string
	Loc   Location
}

func (e *AlreadyEvaluatedError) Error() string {
	return fmt.Sprintf("internal error: computation node %q at %s evaluated more than once", e.Label, e.Loc)
}

// Evaluate walks n post-order, invoking every interior node's Action
// exactly once, and returns the root's resulting text. original is the
// full original source text, passed through unchanged to every Action for
// use in diagnostics.
func Evaluate(n *Node, original string) (string, error) {
	if n == nil {
		return "", nil
	}

	if n.evaluated {
		return "", &AlreadyEvaluatedError{Label: n.Label, Loc: n.Loc}
	}

	if n.Action == nil {
		n.evaluated = true
		n.result = n.Literal
		return n.result, nil
	}

	childTexts := make([]string, len(n.Children))
	for i, c := range n.Children {
		text, err := Evaluate(c, original)
		if err != nil {
			return "", err
		}
		childTexts[i] = text
	}

	out, err := n.Action(original, n.Loc, childTexts)
	if err != nil {
		return "", err
	}

	n.evaluated = true
	n.result = out
	return out, nil
}

// ParseResult is S5's output: the single root ComputationNode produced by
// the grammar, plus anything S6 needs to drive evaluation (currently just
// the root, but kept as a distinct type so the grammar package's public
// surface doesn't leak raw *Node construction details to its callers).
type ParseResult struct {
	Root *Node
}

// Evaluate runs S6 over r: a single post-order walk of Root, returning the
// complete target-language body.
func (r ParseResult) Evaluate(original string) (string, error) {
	return Evaluate(r.Root, original)
}

// String renders the shape of the computation graph (not its evaluated
// value) for debugging, in the teacher's leveled-tree style.
func (n *Node) String() string {
	return n.leveledStr("", "")
}

func (n *Node) leveledStr(firstPrefix, contPrefix string) string {
	var sb strings.Builder
	sb.WriteString(firstPrefix)
	if n.Action == nil {
		sb.WriteString(fmt.Sprintf("(LEAF %s %q)", n.Label, n.Literal))
	} else {
		sb.WriteString(fmt.Sprintf("( %s @%s )", n.Label, n.Loc))
	}

	for i, c := range n.Children {
		sb.WriteRune('\n')
		var nextFirst, nextCont string
		if i+1 < len(n.Children) {
			nextFirst = contPrefix + "  |-- "
			nextCont = contPrefix + "  |   "
		} else {
			nextFirst = contPrefix + `  \-- `
			nextCont = contPrefix + "      "
		}
		sb.WriteString(c.leveledStr(nextFirst, nextCont))
	}

	return sb.String()
}
