package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_LeafReturnsLiteral(t *testing.T) {
	n := Leaf("name", Location{1, 1}, "foo")
	out, err := Evaluate(n, "foo")
	require.NoError(t, err)
	assert.Equal(t, "foo", out)
}

func TestEvaluate_InteriorCallsActionOnceWithChildTexts(t *testing.T) {
	calls := 0
	action := func(original string, loc Location, children []string) (string, error) {
		calls++
		return "(" + children[0] + " + " + children[1] + ")", nil
	}

	left := Leaf("num", Location{1, 1}, "1")
	right := Leaf("num", Location{1, 5}, "2")
	root := New("add", Location{1, 1}, action, left, right)

	out, err := Evaluate(root, "1 + 2")
	require.NoError(t, err)
	assert.Equal(t, "(1 + 2)", out)
	assert.Equal(t, 1, calls)
}

func TestEvaluate_PostOrder_ChildrenEvaluatedBeforeParent(t *testing.T) {
	var order []string

	leafAction := func(name string) Action {
		return func(original string, loc Location, children []string) (string, error) {
			order = append(order, name)
			return name, nil
		}
	}

	a := New("a", Location{}, leafAction("a"))
	b := New("b", Location{}, leafAction("b"))
	root := New("root", Location{}, func(original string, loc Location, children []string) (string, error) {
		order = append(order, "root")
		return strJoin(children), nil
	}, a, b)

	_, err := Evaluate(root, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "root"}, order)
}

func strJoin(ss []string) string {
	out := ""
	for _, s := range ss {
		out += s
	}
	return out
}

func TestEvaluate_ReEvaluationIsAnError(t *testing.T) {
	n := Leaf("x", Location{1, 1}, "x")

	_, err := Evaluate(n, "x")
	require.NoError(t, err)

	_, err = Evaluate(n, "x")
	require.Error(t, err)
	var target *AlreadyEvaluatedError
	require.ErrorAs(t, err, &target)
}

func TestParseResult_Evaluate(t *testing.T) {
	root := Leaf("lit", Location{1, 1}, "hello")
	pr := ParseResult{Root: root}

	out, err := pr.Evaluate("hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestNode_String_RendersShape(t *testing.T) {
	a := Leaf("a", Location{1, 1}, "a")
	b := Leaf("b", Location{1, 2}, "b")
	root := New("root", Location{1, 1}, func(string, Location, []string) (string, error) { return "", nil }, a, b)

	s := root.String()
	assert.Contains(t, s, "root")
	assert.Contains(t, s, "LEAF a")
	assert.Contains(t, s, "LEAF b")
}

func TestEvaluate_PropagatesChildError(t *testing.T) {
	failing := New("bad", Location{1, 1}, func(string, Location, []string) (string, error) {
		return "", assertErr
	})
	root := New("root", Location{1, 1}, func(string, Location, []string) (string, error) {
		return "", nil
	}, failing)

	_, err := Evaluate(root, "")
	require.Error(t, err)
}

var assertErr = assertError("boom")

type assertError string

func (e assertError) Error() string { return string(e) }
