package superopt

import (
	"math/rand"
	"sync"

	"nickandperla.net/superopt/machine"
)

// Population is the shared gene pool of the genetic strategy. Members are
// never modified in place; admission swaps whole entries under the write
// lock, so a program read under the read lock stays valid afterwards.
type Population struct {
	mu      sync.RWMutex
	members []scored
}

func NewPopulation(members []scored) *Population {
	return &Population{members: members}
}

// seedPopulation starts from the input program plus random programs no
// longer than it.
func seedPopulation(size int, input machine.Program, gen *Generator, ev *Evaluator) *Population {
	members := make([]scored, 0, size)
	members = append(members, scoreProgram(input.Clone(), ev))
	for len(members) < size {
		n := 1
		if len(input) > 1 {
			n = 1 + gen.Rand().Intn(len(input))
		}
		members = append(members, scoreProgram(gen.Program(n), ev))
	}
	return NewPopulation(members)
}

func scoreProgram(p machine.Program, ev *Evaluator) scored {
	return scored{Program: p, Distance: ev.Evaluate(p).Distance}
}

func (p *Population) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.members)
}

// Pick returns a uniformly random member.
func (p *Population) Pick(r *rand.Rand) machine.Program {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.members[r.Intn(len(p.members))].Program
}

// Fittest returns the member closest to the target, shortest first on ties.
func (p *Population) Fittest() scored {
	p.mu.RLock()
	defer p.mu.RUnlock()
	best := p.members[0]
	for _, m := range p.members[1:] {
		if m.better(best) {
			best = m
		}
	}
	return best
}
