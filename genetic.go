package superopt

import "github.com/sirupsen/logrus"

// genetic evolves a shared population. Workers breed independently: two
// uniform parents, single-point crossover, per-instruction mutation, then
// steady-state admission.
type genetic struct {
	sc         *SearchContext
	population *Population
}

func newGenetic(sc *SearchContext) *genetic {
	// The seeding generator uses an id no worker has.
	gen := sc.newGenerator(sc.Options.Workers)
	ga := &genetic{
		sc:         sc,
		population: seedPopulation(sc.Options.PopulationSize, sc.Input, gen, sc.newEvaluator()),
	}
	sc.OnSummary(func(fields logrus.Fields) {
		fittest := ga.population.Fittest()
		fields["fittest_distance"] = fittest.Distance
		fields["fittest_length"] = len(fittest.Program)
	})
	return ga
}

func (ga *genetic) work(id int) {
	sc := ga.sc
	gen := sc.newGenerator(id)
	ev := sc.newEvaluator()
	r := gen.Rand()

	for !sc.Stopped() {
		first := ga.population.Pick(r)
		second := ga.population.Pick(r)

		child := crossover(first, second, r)
		mutate(child, gen, sc.Options.MutationRate)

		eval := ev.Evaluate(child)
		sc.CountEvaluated(1)

		if eval.Equivalent && len(child) < sc.best.Len() {
			sc.Offer(child, StrategyGenetic, id)
		}
		ga.population.Admit(scored{Program: child, Distance: eval.Distance}, first, r)
	}
}
