package superopt

import (
	"math/rand"

	"github.com/xrash/smetrics"

	"nickandperla.net/superopt/machine"
)

// Admit is steady-state culling. The child competes with the worse of two
// random members and takes its slot when it is better. A child identical to
// its first parent is refused so clones don't crowd out the pool.
func (p *Population) Admit(child scored, parent machine.Program, r *rand.Rand) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	a, b := r.Intn(len(p.members)), r.Intn(len(p.members))
	worse := a
	if p.members[a].better(p.members[b]) {
		worse = b
	}
	if !child.better(p.members[worse]) || editDistance(child.Program, parent) == 0 {
		return false
	}
	p.members[worse] = child
	return true
}

// editDistance is the Wagner-Fischer distance between the text forms, with
// substitution costing as much as a delete plus an insert.
func editDistance(a, b machine.Program) int {
	return smetrics.WagnerFischer(a.String(), b.String(), 1, 1, 2)
}
