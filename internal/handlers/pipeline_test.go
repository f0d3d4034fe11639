package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeline_Forward(t *testing.T) {
	out, err := Pipeline("|>", "x", "f")
	require.NoError(t, err)
	assert.Equal(t, "(f)(x)", out)
}

func TestPipeline_StarForward(t *testing.T) {
	out, err := Pipeline("|*>", "x", "f")
	require.NoError(t, err)
	assert.Equal(t, "(f)(*x)", out)
}

func TestPipeline_Backward(t *testing.T) {
	out, err := Pipeline("<|", "f", "x")
	require.NoError(t, err)
	assert.Equal(t, "(f)(x)", out)
}

func TestPipeline_StarBackward(t *testing.T) {
	out, err := Pipeline("<*|", "f", "x")
	require.NoError(t, err)
	assert.Equal(t, "(f)(*x)", out)
}

func TestPipeline_UnknownOpErrors(t *testing.T) {
	_, err := Pipeline("|?>", "x", "f")
	require.Error(t, err)
	var target *ErrUnknownPipeOp
	require.ErrorAs(t, err, &target)
}

func TestCompose(t *testing.T) {
	out := Compose("f", "g")
	assert.Contains(t, out, "(f)((g)")
}

func TestChain(t *testing.T) {
	out := Chain("a", "b")
	assert.Contains(t, out, "itertools.chain.from_iterable")
	assert.Contains(t, out, "lambda: a")
	assert.Contains(t, out, "lambda: b")
}

func TestPartialApply_WithAndWithoutArgs(t *testing.T) {
	assert.Equal(t, "_coconut.functools.partial(f, 1, 3)", PartialApply("f", "1, 3"))
	assert.Equal(t, "_coconut.functools.partial(f)", PartialApply("f", ""))
}

func TestLazySubscript(t *testing.T) {
	assert.Equal(t, "_coconut_igetitem(xs, 3)", LazySubscript("xs", "3"))
}

func TestLazySlice_MissingComponentsDefaultToNone(t *testing.T) {
	out := LazySlice("xs", "", "5", "")
	assert.Equal(t, "_coconut_igetitem(xs, slice(None, 5, None))", out)
}

func TestBareOpAtom_KnownAndUnknown(t *testing.T) {
	out, err := BareOpAtom("+")
	require.NoError(t, err)
	assert.Equal(t, "_coconut.operator.add", out)

	_, err = BareOpAtom("@@@")
	require.Error(t, err)
	var target *ErrUnknownBareOp
	require.ErrorAs(t, err, &target)
}
