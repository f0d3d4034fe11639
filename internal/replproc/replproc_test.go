package replproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/cococ/internal/litproc"
	"github.com/dekarrin/cococ/internal/sidetable"
)

func TestExpand_SimpleString(t *testing.T) {
	st := sidetable.New()
	skip := sidetable.NewSkipSet()

	processed, err := litproc.ExtractStrings(`x = "hello"`, st, skip)
	require.NoError(t, err)

	out, err := Expand(processed, st)
	require.NoError(t, err)
	assert.Equal(t, `x = "hello"`, out)
}

func TestExpand_PrefixedString(t *testing.T) {
	st := sidetable.New()
	skip := sidetable.NewSkipSet()

	processed, err := litproc.ExtractStrings(`x = rb"raw bytes"`, st, skip)
	require.NoError(t, err)

	out, err := Expand(processed, st)
	require.NoError(t, err)
	assert.Equal(t, `x = rb"raw bytes"`, out)
}

func TestExpand_Comment(t *testing.T) {
	st := sidetable.New()
	skip := sidetable.NewSkipSet()

	processed, err := litproc.ExtractStrings("x = 1 # a note", st, skip)
	require.NoError(t, err)

	out, err := Expand(processed, st)
	require.NoError(t, err)
	assert.Equal(t, "x = 1 # a note", out)
}

func TestExpand_TripleQuoted(t *testing.T) {
	st := sidetable.New()
	skip := sidetable.NewSkipSet()

	src := "x = '''line one\nline two'''"
	processed, err := litproc.ExtractStrings(src, st, skip)
	require.NoError(t, err)

	out, err := Expand(processed, st)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestExpand_Passthrough_SingleChar(t *testing.T) {
	st := sidetable.New()
	skip := sidetable.NewSkipSet()

	processed, err := litproc.ExtractPassthroughs(`x = 1 \+ 2`, st, skip)
	require.NoError(t, err)

	out, err := Expand(processed, st)
	require.NoError(t, err)
	assert.Equal(t, `x = 1 \+ 2`, out)
}

func TestExpand_Passthrough_ParenBalanced(t *testing.T) {
	st := sidetable.New()
	skip := sidetable.NewSkipSet()

	processed, err := litproc.ExtractPassthroughs(`f(\(a, (b, c)\))`, st, skip)
	require.NoError(t, err)

	out, err := Expand(processed, st)
	require.NoError(t, err)
	assert.Equal(t, `f(\(a, (b, c)\))`, out)
}

func TestExpand_FullRoundTrip_StringsCommentsAndPassthroughs(t *testing.T) {
	st := sidetable.New()
	skip := sidetable.NewSkipSet()

	src := "x = \"hi\" # greeting\ny = \\(raw + code\\)"
	afterStrings, err := litproc.ExtractStrings(src, st, skip)
	require.NoError(t, err)
	afterPassthroughs, err := litproc.ExtractPassthroughs(afterStrings, st, skip)
	require.NoError(t, err)

	out, err := Expand(afterPassthroughs, st)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestExpand_UnterminatedMarkerErrors(t *testing.T) {
	st := sidetable.New()
	st.Add(sidetable.Ref{Kind: sidetable.KindString, QuoteChar: '"'})

	_, err := Expand(string(sidetable.SentinelOpenStr)+"abc", st)
	require.Error(t, err)
	var target *UnterminatedMarkerError
	require.ErrorAs(t, err, &target)
}
