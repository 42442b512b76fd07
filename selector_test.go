package superopt

import (
	test "testing"

	"github.com/stretchr/testify/assert"

	"nickandperla.net/superopt/machine"
)

func TestSelectFailures(t *test.T) {
	cases := []struct {
		program  machine.Program
		expected SelectFailReason
	}{
		{makeFillProgram(), 0},
		{machine.Program{}, 0},
		{machine.Program{machine.Load(1), machine.Load(2)}, FailedConsecutiveLoad},
		{machine.Program{machine.Swap(0, 1), machine.Swap(1, 0)}, FailedCancellingPair},
		{machine.Program{machine.Swap(2, 3), machine.Swap(2, 3)}, FailedCancellingPair},
		{machine.Program{machine.XOR(1, 0), machine.XOR(1, 0)}, FailedCancellingPair},
		{machine.Program{machine.XOR(1, 0), machine.XOR(0, 1)}, 0},
		{machine.Program{machine.XOR(1, 0), machine.XOR(2, 0)}, 0},
		{machine.Program{machine.XOR(1, 1), machine.XOR(1, 1)}, 0},
		{machine.Program{machine.Inc(0), machine.Swap(2, 2)}, FailedSelfSwap},
		{machine.Program{machine.Jmp(3), machine.Inc(0)}, FailedJumpOutOfRange},
		{machine.Program{machine.Inc(0), machine.Jmp(1)}, FailedSelfJump},
		{machine.Program{machine.Jmp(2), machine.Inc(0), machine.Inc(1)}, 0},
	}

	s := NewSelector(nil)
	for _, c := range cases {
		assert.Equal(t, c.expected, s.Select(c.program), "[%v]", c.program)
	}

	assert.Equal(t, map[SelectFailReason]uint64{
		FailedConsecutiveLoad: 1,
		FailedCancellingPair:  3,
		FailedSelfSwap:        1,
		FailedJumpOutOfRange:  1,
		FailedSelfJump:        1,
	}, s.Rejections())
}

func TestSelectFailReasonNames(t *test.T) {
	assert.Equal(t, "selected", SelectFailReason(0).String())
	assert.Equal(t, "consecutive_load", FailedConsecutiveLoad.String())
	assert.Equal(t, "self_jump", FailedSelfJump.String())
	assert.Equal(t, "selected", failReasonCount.String())
}
