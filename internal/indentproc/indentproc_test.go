package indentproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/cococ/internal/sidetable"
)

func TestProcess_SimpleBlock(t *testing.T) {
	skip := sidetable.NewSkipSet()
	src := "if x:\n    return x\nreturn 0"

	res, err := Process(src, skip, false)
	require.NoError(t, err)

	open := string(sidetable.SentinelOpen)
	close_ := string(sidetable.SentinelClose)

	assert.Contains(t, res.Text, open+"return x")
	assert.Contains(t, res.Text, close_+"return 0")
}

func TestProcess_NestedBlocks(t *testing.T) {
	skip := sidetable.NewSkipSet()
	src := "if x:\n    if y:\n        return 1\n    return 2\nreturn 3"

	res, err := Process(src, skip, false)
	require.NoError(t, err)

	opens := countRune(res.Text, sidetable.SentinelOpen)
	closes := countRune(res.Text, sidetable.SentinelClose)
	assert.Equal(t, opens, closes)
	assert.Equal(t, 2, opens)
}

func TestProcess_IllegalInitialIndent(t *testing.T) {
	skip := sidetable.NewSkipSet()
	_, err := Process("    return 1", skip, false)
	require.Error(t, err)
	var target *IllegalInitialIndentError
	require.ErrorAs(t, err, &target)
}

func TestProcess_IllegalDedent(t *testing.T) {
	skip := sidetable.NewSkipSet()
	// dedent to width 2, which was never an established level (0 or 4)
	src := "if x:\n    if y:\n        return 1\n  return 2"
	_, err := Process(src, skip, false)
	require.Error(t, err)
	var target *IllegalDedentError
	require.ErrorAs(t, err, &target)
}

func TestProcess_UnclosedParen(t *testing.T) {
	skip := sidetable.NewSkipSet()
	_, err := Process("x = (1, 2", skip, false)
	require.Error(t, err)
	var target *UnclosedParenError
	require.ErrorAs(t, err, &target)
}

func TestProcess_ParenContinuationIgnoresIndent(t *testing.T) {
	skip := sidetable.NewSkipSet()
	src := "x = (1,\n  2,\n      3)"
	res, err := Process(src, skip, false)
	require.NoError(t, err)
	assert.NotContains(t, res.Text, string(sidetable.SentinelOpen))
	assert.NotContains(t, res.Text, string(sidetable.SentinelClose))
}

func TestProcess_BackslashContinuationRecordsSkipAndWarning(t *testing.T) {
	skip := sidetable.NewSkipSet()
	src := "x = 1 + \\\n    2"
	res, err := Process(src, skip, false)
	require.NoError(t, err)
	assert.Equal(t, 1, skip.Len())
	require.Len(t, res.Warnings, 1)
	var w *BackslashContinuationWarning
	assert.ErrorAs(t, res.Warnings[0], &w)
}

func TestProcess_BackslashContinuation_StrictModeStillWarns(t *testing.T) {
	// Backslash continuation is a style warning even in strict mode per
	// the IndentProc contract (strict only promotes the mixed-indent
	// warning); spec leaves the exact promotion up to the caller, so this
	// just documents current behavior.
	skip := sidetable.NewSkipSet()
	_, err := Process("x = 1 + \\\n    2", skip, false)
	require.NoError(t, err)
}

func TestProcess_MixedTabsAndSpaces_StrictFails(t *testing.T) {
	skip := sidetable.NewSkipSet()
	src := "if x:\n\treturn 1\nif y:\n return 2"
	_, err := Process(src, skip, true)
	require.Error(t, err)
	var target *MixedTabsAndSpacesWarning
	require.ErrorAs(t, err, &target)
}

func TestReindent_RoundTrip(t *testing.T) {
	skip := sidetable.NewSkipSet()
	src := "if x:\n    if y:\n        return 1\n    return 2\nreturn 3"

	res, err := Process(src, skip, false)
	require.NoError(t, err)

	back, err := Reindent(res.Text)
	require.NoError(t, err)

	assert.Contains(t, back, "    if y:")
	assert.Contains(t, back, "        return 1")
	assert.Contains(t, back, "    return 2")
	assert.Contains(t, back, "return 3")
}

func TestReindent_UnbalancedCloseErrors(t *testing.T) {
	_, err := Reindent(string(sidetable.SentinelClose) + "x")
	require.Error(t, err)
}

func TestReindent_UnbalancedOpenErrors(t *testing.T) {
	_, err := Reindent(string(sidetable.SentinelOpen) + "x")
	require.Error(t, err)
}

func countRune(s string, r rune) int {
	n := 0
	for _, c := range s {
		if c == r {
			n++
		}
	}
	return n
}
