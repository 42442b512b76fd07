package superopt

import (
	"nickandperla.net/superopt/machine"
)

// Processor drains candidate batches produced by an enumerator.
type Processor struct {
	ID        int
	Search    *SearchContext
	Evaluator *Evaluator
	Strategy  Strategy
}

func NewProcessor(id int, sc *SearchContext, strategy Strategy) *Processor {
	return &Processor{
		ID:        id,
		Search:    sc,
		Evaluator: sc.newEvaluator(),
		Strategy:  strategy,
	}
}

// Run returns when input is closed or the search stops. The token is checked
// before every candidate.
func (p *Processor) Run(input <-chan []machine.Program) {
	sc := p.Search
FOR:
	for {
		select {
		case batch, ok := <-input:
			if !ok {
				break FOR
			}
			for _, candidate := range batch {
				if sc.Stopped() {
					break FOR
				}
				sc.CountEvaluated(1)
				if len(candidate) < sc.best.Len() && p.Evaluator.Equivalent(candidate) {
					sc.Offer(candidate, p.Strategy, p.ID)
				}
			}
		case <-sc.token.Done():
			break FOR
		}
	}
}
