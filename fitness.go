package superopt

import (
	"math"

	"nickandperla.net/superopt/machine"
)

// Score is the Euclidean distance between the final state and the target.
// Zero means equivalent. A faulted run scores +Inf so it never wins a
// comparison.
func Score(e Evaluation, target machine.State) float64 {
	if e.Fault != nil {
		return math.Inf(1)
	}
	return e.State.Distance(target)
}

// scored pairs a program with its distance to the target.
type scored struct {
	Program  machine.Program
	Distance float64
}

// better reports whether a should take b's place: strictly closer, or as
// close and shorter.
func (a scored) better(b scored) bool {
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return len(a.Program) < len(b.Program)
}
