package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAugAssign_PipeForward(t *testing.T) {
	assert.Equal(t, "a = (f)(a)", AugAssign("a", "|>=", "f"))
}

func TestAugAssign_ComposeAssign(t *testing.T) {
	out := AugAssign("a", "..=", "g")
	assert.Contains(t, out, "a = (lambda")
}

func TestAugAssign_ChainAssign_FreezesOldValue(t *testing.T) {
	out := AugAssign("a", "::=", "s")
	assert.Contains(t, out, "_coconut_a_old = a")
	assert.Contains(t, out, "itertools.chain.from_iterable")
}

func TestAugAssign_PassthroughForOrdinaryOps(t *testing.T) {
	assert.Equal(t, "a += 1", AugAssign("a", "+=", "1"))
}
