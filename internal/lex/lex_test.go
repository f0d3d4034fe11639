package lex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/cococ/internal/sidetable"
)

func classesOf(toks []Token) []Class {
	out := make([]Class, len(toks))
	for i, t := range toks {
		out[i] = t.Class
	}
	return out
}

func TestLexer_Names_Numbers_Keywords(t *testing.T) {
	toks, err := New("x1 = 42 + foo").Tokens()
	require.NoError(t, err)

	got := classesOf(toks)
	assert.Equal(t, []Class{ClassName, ClassAssign, ClassNumber, ClassPlus, ClassName, ClassEOF}, got)
}

func TestLexer_Keyword(t *testing.T) {
	toks, err := New("return x").Tokens()
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, ClassKeyword, toks[0].Class)
	assert.Equal(t, "return", toks[0].Lexeme)
}

func TestLexer_PipelineOperators_LongestMatchFirst(t *testing.T) {
	toks, err := New("x |*> f |> g <*| h <| i").Tokens()
	require.NoError(t, err)

	got := classesOf(toks)
	assert.Contains(t, got, ClassPipeStarForward)
	assert.Contains(t, got, ClassPipeForward)
	assert.Contains(t, got, ClassPipeStarBackward)
	assert.Contains(t, got, ClassPipeBackward)
}

func TestLexer_ComposeAndChain(t *testing.T) {
	toks, err := New("f .. g :: h").Tokens()
	require.NoError(t, err)
	got := classesOf(toks)
	assert.Contains(t, got, ClassCompose)
	assert.Contains(t, got, ClassChain)
}

func TestLexer_IndentSentinels(t *testing.T) {
	src := string(sidetable.SentinelOpen) + "x = 1" + string(sidetable.SentinelClose)
	toks, err := New(src).Tokens()
	require.NoError(t, err)

	got := classesOf(toks)
	assert.Equal(t, ClassOpen, got[0])
	assert.Equal(t, ClassClose, got[len(got)-2])
}

func TestLexer_StringMarker(t *testing.T) {
	src := string(sidetable.SentinelOpenStr) + "3" + string(sidetable.SentinelClose)
	toks, err := New(src).Tokens()
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, ClassStringMarker, toks[0].Class)
	assert.Equal(t, 3, toks[0].MarkerIndex)
}

func TestLexer_CommentMarker(t *testing.T) {
	src := "#12" + string(sidetable.SentinelClose)
	toks, err := New(src).Tokens()
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, ClassCommentMarker, toks[0].Class)
	assert.Equal(t, 12, toks[0].MarkerIndex)
}

func TestLexer_PassthroughMarker_SingleAndDoubled(t *testing.T) {
	toks, err := New(`\5` + string(sidetable.SentinelClose)).Tokens()
	require.NoError(t, err)
	assert.Equal(t, ClassPassthroughMarker, toks[0].Class)
	assert.Equal(t, 5, toks[0].MarkerIndex)

	toks2, err := New(`\\7` + string(sidetable.SentinelClose)).Tokens()
	require.NoError(t, err)
	assert.Equal(t, ClassPassthroughMarker, toks2[0].Class)
	assert.Equal(t, 7, toks2[0].MarkerIndex)
}

func TestLexer_AugmentedAssignment(t *testing.T) {
	toks, err := New("x += 1").Tokens()
	require.NoError(t, err)
	assert.Equal(t, ClassAugAssign, toks[1].Class)
	assert.Equal(t, "+=", toks[1].Lexeme)
}

func TestLexer_UnrecognizedCharacterErrors(t *testing.T) {
	_, err := New("x = " + string(rune(0x00AC)) + " y").Tokens()
	require.Error(t, err)
}

func TestLexer_NumberWithDecimalNotConfusedWithCompose(t *testing.T) {
	toks, err := New("1.5 .. f").Tokens()
	require.NoError(t, err)
	assert.Equal(t, ClassNumber, toks[0].Class)
	assert.Equal(t, "1.5", toks[0].Lexeme)
	assert.Equal(t, ClassCompose, toks[1].Class)
}

func TestLexer_EscapedReservedWordIsNotAPassthroughMarker(t *testing.T) {
	toks, err := New(`\match = 1`).Tokens()
	require.NoError(t, err)
	assert.Equal(t, ClassEscapedName, toks[0].Class)
	assert.Equal(t, `\match`, toks[0].Lexeme)
}
