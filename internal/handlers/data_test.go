package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataClass_EmptyBody(t *testing.T) {
	out, err := DataClass("Point", []string{"x", "y"}, "", "")
	require.NoError(t, err)
	assert.Contains(t, out, `class Point(_coconut.collections.namedtuple("Point", "x y")):`)
	assert.Contains(t, out, "__slots__ = ()")
}

func TestDataClass_WithBody(t *testing.T) {
	body := "def norm(self): return (self.x**2 + self.y**2) ** 0.5"
	out, err := DataClass("Point", []string{"x", "y"}, body, "")
	require.NoError(t, err)
	assert.Contains(t, out, "    def norm(self): return (self.x**2 + self.y**2) ** 0.5")
}

func TestDataClass_Docstring(t *testing.T) {
	out, err := DataClass("Point", []string{"x"}, "", `"""a point"""`)
	require.NoError(t, err)
	assert.Contains(t, out, `"""a point"""`)
}

func TestDataClass_RejectsUnderscoreField(t *testing.T) {
	_, err := DataClass("Bad", []string{"_x"}, "", "")
	require.Error(t, err)
	var target *ReservedFieldNameError
	require.ErrorAs(t, err, &target)
}

func TestDataClass_RejectsBareUnderscoreField(t *testing.T) {
	_, err := DataClass("Bad", []string{"_"}, "", "")
	require.Error(t, err)
}
