package superopt

import (
	"sync"
	"sync/atomic"

	"nickandperla.net/superopt/machine"
)

// diffing is a greedy hill climb. Workers share one frontier program, extend
// it by a single random instruction, and keep the extension when it lands
// strictly closer to the target. The frontier is separate from the best
// program: the best only changes when the frontier reaches distance zero.
type diffing struct {
	sc *SearchContext

	mu       sync.Mutex
	frontier scored
	epoch    uint64

	misses atomic.Int64
	origin float64
}

func newDiffing(sc *SearchContext) *diffing {
	d := &diffing{
		sc:     sc,
		origin: machine.State{}.Distance(sc.Target),
	}
	d.frontier = scored{Program: machine.Program{}, Distance: d.origin}
	return d
}

func (d *diffing) snapshot() (machine.Program, float64, uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frontier.Program, d.frontier.Distance, d.epoch
}

// restart empties the frontier unless another worker already moved it past
// epoch.
func (d *diffing) restart(epoch uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.epoch != epoch {
		return
	}
	d.frontier = scored{Program: machine.Program{}, Distance: d.origin}
	d.epoch++
	d.misses.Store(0)
	d.sc.log.WithField("epoch", d.epoch).Debug("Restarting climb")
}

// advance installs candidate when it is still the closest program seen.
func (d *diffing) advance(candidate scored) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if candidate.Distance >= d.frontier.Distance || len(candidate.Program) >= d.sc.best.Len() {
		return false
	}
	d.frontier = candidate
	d.epoch++
	d.misses.Store(0)
	return true
}

func (d *diffing) work(id int) {
	sc := d.sc
	gen := sc.newGenerator(id)
	ev := sc.newEvaluator()
	limit := int64(sc.Options.StagnationLimit)

	for !sc.Stopped() {
		if sc.MaxLength() < 1 {
			return
		}
		base, distance, epoch := d.snapshot()
		length := len(base) + 1
		if length > sc.MaxLength() {
			d.restart(epoch)
			continue
		}

		candidate := make(machine.Program, length)
		copy(candidate, base)
		candidate[len(base)] = gen.Instruction(length)

		eval := ev.Evaluate(candidate)
		sc.CountEvaluated(1)

		if eval.Equivalent {
			sc.Offer(candidate, StrategyDiffing, id)
			d.restart(epoch)
			continue
		}
		if eval.Distance < distance && d.advance(scored{Program: candidate, Distance: eval.Distance}) {
			continue
		}
		if d.misses.Add(1) >= limit {
			d.restart(epoch)
		}
	}
}
