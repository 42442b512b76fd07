package superopt

import (
	"math"
	test "testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nickandperla.net/superopt/machine"
)

func makeFillProgram() machine.Program {
	return machine.Program{
		machine.Load(3), machine.Swap(0, 1),
		machine.Load(3), machine.Swap(0, 2),
		machine.Load(3), machine.Swap(0, 3),
		machine.Load(3),
	}
}

func makeEvaluator(t *test.T) *Evaluator {
	target, err := machine.ComputeState(makeFillProgram(), machine.DefaultConfig())
	require.NoError(t, err)
	return NewEvaluator(target, machine.DefaultConfig())
}

func TestEvaluateEquivalent(t *test.T) {
	ev := makeEvaluator(t)

	result := ev.Evaluate(makeFillProgram())
	assert.NoError(t, result.Fault)
	assert.True(t, result.Equivalent)
	assert.Equal(t, machine.State{3, 3, 3, 3}, result.State)
	assert.Equal(t, uint(7), result.Steps)
	assert.Zero(t, result.Distance)
	assert.True(t, ev.Equivalent(makeFillProgram()))
}

func TestEvaluateDistance(t *test.T) {
	ev := makeEvaluator(t)

	result := ev.Evaluate(machine.Program{})
	assert.False(t, result.Equivalent)
	assert.Equal(t, 6.0, result.Distance)

	result = ev.Evaluate(machine.Program{machine.Load(3)})
	assert.InDelta(t, math.Sqrt(27), result.Distance, 1e-9)
	assert.False(t, ev.Equivalent(machine.Program{machine.Load(3)}))
}

func TestEvaluateFault(t *test.T) {
	ev := makeEvaluator(t)

	result := ev.Evaluate(machine.Program{machine.Load(3), machine.Jmp(5)})
	assert.ErrorIs(t, result.Fault, machine.ErrJumpOutOfRange)
	assert.False(t, result.Equivalent)
	assert.True(t, math.IsInf(result.Distance, 1))

	// A looping program can still leave the target state behind. It is never
	// equivalent.
	looping := append(makeFillProgram(), machine.Jmp(7))
	assert.False(t, ev.Equivalent(looping))
}
