package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecorators_DottedNameStaysDirect(t *testing.T) {
	out := Decorators([]string{"functools.wraps"}, "def f(): pass")
	assert.Contains(t, out, "@functools.wraps")
	assert.NotContains(t, out, "_decorator_0")
}

func TestDecorators_ComplexExprBoundToTemp(t *testing.T) {
	out := Decorators([]string{"make_decorator(1, 2)(x)"}, "def f(): pass")
	assert.Contains(t, out, "_decorator_0 = make_decorator(1, 2)(x)")
	assert.Contains(t, out, "@_decorator_0")
}

func TestDecorators_TemporariesBeforeApplications(t *testing.T) {
	out := Decorators([]string{"complex_expr + 1", "simple.dotted"}, "def f(): pass")
	tempIdx := indexOf(out, "_decorator_0 = complex_expr + 1")
	applyIdx := indexOf(out, "@_decorator_0")
	defIdx := indexOf(out, "def f(): pass")

	assert.True(t, tempIdx < applyIdx)
	assert.True(t, applyIdx < defIdx)
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
