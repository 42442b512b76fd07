package superopt

import (
	"math/rand"

	"nickandperla.net/superopt/machine"
)

// crossover splices a's prefix up to a random cut with b's suffix from the
// same cut. The child is never longer than the longer parent.
func crossover(a, b machine.Program, r *rand.Rand) machine.Program {
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	cut := r.Intn(longest + 1)

	child := make(machine.Program, 0, longest)
	if cut < len(a) {
		child = append(child, a[:cut]...)
	} else {
		child = append(child, a...)
	}
	if cut < len(b) {
		child = append(child, b[cut:]...)
	}
	return child
}
