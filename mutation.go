package superopt

import (
	"nickandperla.net/superopt/machine"
)

// mutate replaces each instruction of p with a fresh random one with
// probability rate. It returns the number of replaced instructions.
func mutate(p machine.Program, gen *Generator, rate float64) int {
	replaced := 0
	for n := range p {
		if gen.Rand().Float64() < rate {
			p[n] = gen.Instruction(len(p))
			replaced++
		}
	}
	return replaced
}
