package superopt

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"nickandperla.net/superopt/machine"
)

// randomSearch samples programs of uniformly random length up to an adaptive
// bound. The bound drops to best-1 on every improvement so later samples are
// always candidates for a strictly shorter program.
type randomSearch struct {
	sc       *SearchContext
	bound    atomic.Int64
	selector *Selector
}

func newRandomSearch(sc *SearchContext) *randomSearch {
	rs := &randomSearch{sc: sc}
	rs.bound.Store(int64(sc.MaxLength()))
	if !sc.Options.NoPrefilter {
		rs.selector = NewSelector(sc.metrics)
		sc.OnSummary(func(fields logrus.Fields) {
			for reason, n := range rs.selector.Rejections() {
				fields["rejected_"+reason.String()] = n
			}
		})
	}
	sc.OnImprovement(rs.tighten)
	return rs
}

func (rs *randomSearch) tighten(length int) {
	next := int64(length - 1)
	for {
		current := rs.bound.Load()
		if next >= current || rs.bound.CompareAndSwap(current, next) {
			return
		}
	}
}

func (rs *randomSearch) work(id int) {
	sc := rs.sc
	gen := sc.newGenerator(id)
	ev := sc.newEvaluator()
	r := gen.Rand()
	buf := make(machine.Program, 0, sc.Options.MaxInstructions+1)

	for !sc.Stopped() {
		bound := rs.bound.Load()
		// the empty program was checked before the workers started
		if bound < 1 {
			return
		}
		candidate := gen.Fill(buf[:1+r.Intn(int(bound))])
		if rs.selector != nil && rs.selector.Select(candidate) != 0 {
			continue
		}

		sc.CountEvaluated(1)
		if len(candidate) < sc.best.Len() && ev.Equivalent(candidate) {
			sc.Offer(candidate, StrategyRandom, id)
		}
	}
}
