package superopt

import (
	"sync/atomic"

	"nickandperla.net/superopt/machine"
)

type SelectFailReason uint

const (
	FailedConsecutiveLoad SelectFailReason = iota + 1
	FailedCancellingPair
	FailedSelfSwap
	FailedJumpOutOfRange
	FailedSelfJump

	failReasonCount
)

var failReasonNames = [failReasonCount]string{
	FailedConsecutiveLoad: "consecutive_load",
	FailedCancellingPair:  "cancelling_pair",
	FailedSelfSwap:        "self_swap",
	FailedJumpOutOfRange:  "jump_out_of_range",
	FailedSelfJump:        "self_jump",
}

func (r SelectFailReason) String() string {
	if r == 0 || r >= failReasonCount {
		return "selected"
	}
	return failReasonNames[r]
}

// Selector rejects candidates that are provably wasteful before they reach
// the VM. In straight-line code every rejected shape has a shorter equivalent
// the search can still generate.
type Selector struct {
	rejections [failReasonCount]atomic.Uint64
	metrics    *Metrics
}

func NewSelector(metrics *Metrics) *Selector {
	return &Selector{metrics: metrics}
}

// Select returns 0 for a candidate worth running.
func (s *Selector) Select(p machine.Program) SelectFailReason {
	reason := selectFailReason(p)
	if reason != 0 {
		s.rejections[reason].Add(1)
		s.metrics.rejected(reason)
	}
	return reason
}

func selectFailReason(p machine.Program) SelectFailReason {
	for n, ins := range p {
		switch ins.Op {
		case machine.OP_SWAP:
			if ins.A == ins.B {
				return FailedSelfSwap
			}
		case machine.OP_JMP:
			if int(ins.A) >= len(p) {
				return FailedJumpOutOfRange
			}
			if int(ins.A) == n {
				return FailedSelfJump
			}
		}

		if n == 0 {
			continue
		}
		prev := p[n-1]
		if prev.Op == machine.OP_LOAD && ins.Op == machine.OP_LOAD {
			return FailedConsecutiveLoad
		}
		if cancels(prev, ins) {
			return FailedCancellingPair
		}
	}
	return 0
}

// cancels reports an adjacent SWAP or XOR pair over the same two addresses
// whose effects undo each other.
func cancels(a, b machine.Instruction) bool {
	if a.Op != b.Op || a.A == a.B {
		return false
	}
	switch a.Op {
	case machine.OP_SWAP:
		return (a.A == b.A && a.B == b.B) || (a.A == b.B && a.B == b.A)
	case machine.OP_XOR:
		return a.A == b.A && a.B == b.B
	}
	return false
}

// Rejections snapshots the per-reason counts.
func (s *Selector) Rejections() map[SelectFailReason]uint64 {
	counts := make(map[SelectFailReason]uint64)
	for reason := SelectFailReason(1); reason < failReasonCount; reason++ {
		if n := s.rejections[reason].Load(); n > 0 {
			counts[reason] = n
		}
	}
	return counts
}
