package superopt

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"nickandperla.net/superopt/machine"
)

// Result is the outcome of one run. Program is never longer than Input and
// always reaches Target.
type Result struct {
	Program      machine.Program
	Input        machine.Program
	Target       machine.State
	Strategy     Strategy
	Evaluated    uint64
	Elapsed      time.Duration
	Cancelled    bool
	Improvements []Improvement
}

// Optimize searches for the shortest program equivalent to input. It blocks
// until the strategy exhausts its space, ctx ends, or opts.Deadline passes.
// Cancellation is not an error: the best program found so far is returned.
func Optimize(ctx context.Context, input machine.Program, strategy Strategy, opts Options) (*Result, error) {
	opts = opts.withDefaults(len(input))
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputFaults, err)
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	target, err := machine.ComputeState(input, machine.Config{StepBudget: opts.StepBudget})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputFaults, err)
	}

	sc, err := NewSearchContext(input, target, strategy, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}

	var interrupted atomic.Bool
	release := sc.token.Bind(ctx)
	defer release()
	stopDeadline := func() bool { return false }
	if opts.Deadline > 0 {
		stopDeadline = time.AfterFunc(opts.Deadline, func() {
			interrupted.Store(true)
			sc.token.Cancel()
		}).Stop
	}

	sc.log.WithFields(logrus.Fields{
		"strategy":         strategy,
		"workers":          opts.Workers,
		"target":           target,
		"input_length":     len(input),
		"max_instructions": opts.MaxInstructions,
		"max_num":          opts.MaxNum,
		"mnemonics":        mnemonicNames(sc.Ops),
	}).Info("Starting search")

	// The sampling strategies never generate the empty program. The
	// enumerator starts at length zero on its own.
	if strategy != StrategyExhaustive && len(input) > 0 && target == (machine.State{}) {
		sc.CountEvaluated(1)
		sc.Offer(machine.Program{}, strategy, -1)
	}

	tasks := opts.Workers + 1
	if strategy == StrategyExhaustive {
		tasks++
	}
	var g errgroup.Group
	g.SetLimit(tasks)

	g.Go(func() error {
		sc.progressTicker().Run(sc.token.Done())
		return nil
	})
	if err := runStrategy(&g, strategy, sc); err != nil {
		sc.token.Cancel()
		g.Wait()
		stopDeadline()
		return nil, err
	}
	err = g.Wait()
	stopDeadline()
	if err != nil {
		return nil, err
	}

	result := &Result{
		Program:      sc.best.Program(),
		Input:        input.Clone(),
		Target:       target,
		Strategy:     strategy,
		Evaluated:    sc.Evaluated(),
		Elapsed:      sc.Elapsed(),
		Cancelled:    interrupted.Load() || ctx.Err() != nil,
		Improvements: sc.Improvements(),
	}

	sc.log.WithFields(sc.summarize(logrus.Fields{
		"length":    len(result.Program),
		"evaluated": result.Evaluated,
		"elapsed":   result.Elapsed.Truncate(time.Millisecond),
		"cancelled": result.Cancelled,
	})).Info("Search stopped")

	return result, nil
}

// runStrategy starts the workers of one strategy on g. The last worker to
// return cancels the token so the progress task stops too.
func runStrategy(g *errgroup.Group, kind Strategy, sc *SearchContext) error {
	var work func(id int)
	var feed func()

	switch kind {
	case StrategyRandom:
		work = newRandomSearch(sc).work
	case StrategyExhaustive:
		batches := make(chan []machine.Program, sc.Options.Workers)
		feed = newEnumerator(sc, batches).run
		work = func(id int) {
			NewProcessor(id, sc, StrategyExhaustive).Run(batches)
		}
	case StrategyDiffing:
		work = newDiffing(sc).work
	case StrategyGenetic:
		work = newGenetic(sc).work
	default:
		return fmt.Errorf("%w: [%d]", ErrUnknownStrategy, int(kind))
	}

	if feed != nil {
		g.Go(func() error {
			feed()
			return nil
		})
	}

	var remaining atomic.Int64
	remaining.Store(int64(sc.Options.Workers))
	for id := 0; id < sc.Options.Workers; id++ {
		id := id
		g.Go(func() error {
			defer func() {
				if remaining.Add(-1) == 0 {
					sc.token.Cancel()
				}
			}()
			work(id)
			return nil
		})
	}
	return nil
}
