package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostic_Error(t *testing.T) {
	tests := []struct {
		name string
		d    *Diagnostic
		want string
	}{
		{
			name: "internal, no position",
			d:    Internal("node %s evaluated twice", "N3"),
			want: "internal error: node N3 evaluated twice",
		},
		{
			name: "positioned style error",
			d:    Style("backslash continuation is not allowed", Position{Line: 12, Column: 4}),
			want: "error (StyleError): backslash continuation is not allowed (line 12, col 4)",
		},
		{
			name: "warning has no fatal",
			d:    Warn(KindStyleError, "mixed tabs and spaces", Position{Line: 1, Column: 1}),
			want: "warning (StyleError): mixed tabs and spaces (line 1, col 1)",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.d.Error())
		})
	}
}

func TestDiagnostic_Fatal(t *testing.T) {
	assert.True(t, Internal("x").Fatal())
	assert.True(t, Exception("x", "").Fatal())
	assert.True(t, SyntaxErr(KindParseError, "x", Position{}).Fatal())
	assert.False(t, Warn(KindStyleError, "x", Position{}).Fatal())
}

func TestDiagnostic_Render_Caret(t *testing.T) {
	d := SyntaxErr(KindParseError, "unexpected token", Position{
		Line:       3,
		Column:     5,
		SourceLine: "x = $$$",
	})

	rendered := d.Render()
	assert.Contains(t, rendered, "x = $$$")
	assert.Contains(t, rendered, "line 3:")
	// caret column 5 means 4 leading spaces before '^'
	assert.Contains(t, rendered, "    ^")
}

func TestBag_AccumulatesWarningsWithoutAborting(t *testing.T) {
	bag := NewBag()
	require.Equal(t, 0, bag.Len())

	bag.Add(Warn(KindStyleError, "first", Position{Line: 1}))
	bag.Add(Warn(KindStyleError, "second", Position{Line: 2}))

	assert.Equal(t, 2, bag.Len())
	all := bag.All()
	require.Len(t, all, 2)
	assert.Equal(t, "first", all[0].Message)
	assert.Equal(t, "second", all[1].Message)
	assert.Error(t, bag.Err())
}

func TestBag_AddPanicsOnNonWarning(t *testing.T) {
	bag := NewBag()
	assert.Panics(t, func() {
		bag.Add(Exception("not a warning", ""))
	})
}
