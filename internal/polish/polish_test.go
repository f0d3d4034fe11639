package polish

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean_StripsTrailingWhitespace(t *testing.T) {
	assert.Equal(t, "a\nb\n", Clean("a   \nb\t\n"))
}

func TestClean_CollapsesMultipleTrailingBlankLines(t *testing.T) {
	assert.Equal(t, "a\nb\n", Clean("a\nb\n\n\n\n"))
}

func TestClean_AddsMissingTrailingNewline(t *testing.T) {
	assert.Equal(t, "a\nb\n", Clean("a\nb"))
}

func TestClean_EmptyInputStaysEmpty(t *testing.T) {
	assert.Equal(t, "", Clean(""))
}

func TestClean_AllBlankInputBecomesEmpty(t *testing.T) {
	assert.Equal(t, "", Clean("\n\n   \n"))
}

func TestClean_PreservesInternalBlankLines(t *testing.T) {
	assert.Equal(t, "a\n\nb\n", Clean("a\n\nb"))
}
