package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMathDef(t *testing.T) {
	assert.Equal(t, "def f(x): return x + 1", MathDef("f", "x", "x + 1"))
}

func TestOperatorDef(t *testing.T) {
	assert.Equal(t, "def plus(a, b): return a + b", OperatorDef("plus", "a", "b", "a + b"))
}
