package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_ConstPattern(t *testing.T) {
	out, err := Generate(Const{Lexeme: "None"}, "x", "_match_check")
	require.NoError(t, err)
	assert.Contains(t, out, "x is None")
	assert.Contains(t, out, "_match_check = True")
}

func TestGenerate_ConstPattern_NonSingleton(t *testing.T) {
	out, err := Generate(Const{Lexeme: "42"}, "x", "_match_check")
	require.NoError(t, err)
	assert.Contains(t, out, "x == 42")
}

func TestGenerate_VarPattern_Wildcard(t *testing.T) {
	out, err := Generate(Var{Name: "_"}, "x", "_match_check")
	require.NoError(t, err)
	assert.NotContains(t, out, "_ = x")
	assert.Contains(t, out, "_match_check = True")
}

func TestGenerate_VarPattern_FirstBindThenCheck(t *testing.T) {
	out, err := Generate(And{Subs: []Pattern{Var{Name: "a"}, Var{Name: "a"}}}, "x", "_match_check")
	require.NoError(t, err)
	assert.Contains(t, out, "a = x")
	assert.Contains(t, out, "x == a")
}

func TestGenerate_SequencePattern(t *testing.T) {
	out, err := Generate(Sequence{Elems: []Pattern{Var{Name: "a"}, Var{Name: "b"}}}, "x", "_match_check")
	require.NoError(t, err)
	assert.Contains(t, out, "isinstance(x, Sequence) and len(x) == 2")
	assert.Contains(t, out, "a = x[0]")
	assert.Contains(t, out, "b = x[1]")
}

func TestGenerate_HeadRestPattern(t *testing.T) {
	out, err := Generate(HeadRest{Front: []Pattern{Var{Name: "h"}}, Rest: "t", Tuple: false}, "x", "_match_check")
	require.NoError(t, err)
	assert.Contains(t, out, "len(x) >= 1")
	assert.Contains(t, out, "h = x[0]")
	assert.Contains(t, out, "t = list(x[1:])")
}

func TestGenerate_DataPattern(t *testing.T) {
	out, err := Generate(Data{Type: "Point", Elems: []Pattern{Var{Name: "x"}, Var{Name: "y"}}}, "p", "_match_check")
	require.NoError(t, err)
	assert.Contains(t, out, "isinstance(p, Point) and len(p) == 2")
}

func TestGenerate_OrPattern_TriesEachAlternative(t *testing.T) {
	out, err := Generate(Or{Alts: []Pattern{Const{Lexeme: "1"}, Const{Lexeme: "2"}}}, "x", "_match_check")
	require.NoError(t, err)
	assert.Contains(t, out, "if not _match_check:")
	assert.Contains(t, out, "x == 1")
	assert.Contains(t, out, "x == 2")
}

func TestGenerate_IteratorPattern(t *testing.T) {
	out, err := Generate(Iterator{Elems: []Pattern{Var{Name: "a"}}, Rest: "rest"}, "x", "_match_check")
	require.NoError(t, err)
	assert.Contains(t, out, "isinstance(x, Iterable)")
	assert.Contains(t, out, "_coconut_sentinel")
	assert.Contains(t, out, "rest = _coconut_match_iter_1")
}

func TestGenerate_AsPattern(t *testing.T) {
	out, err := Generate(As{Inner: Var{Name: "n"}, Alias: "whole"}, "x", "_match_check")
	require.NoError(t, err)
	assert.Contains(t, out, "n = x")
	assert.Contains(t, out, "whole = x")
}

func TestGenerate_IsPattern(t *testing.T) {
	out, err := Generate(Is{Inner: Var{Name: "n"}, Type: "int"}, "x", "_match_check")
	require.NoError(t, err)
	assert.Contains(t, out, "isinstance(x, int)")
}
