package superopt

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"nickandperla.net/superopt/machine"
)

// SearchContext is the state shared by every task of one run. The target and
// bounds are fixed at construction; the best program, counter and token are
// safe for concurrent use.
type SearchContext struct {
	Target         machine.State
	Input          machine.Program
	OriginalLength int
	Options        Options
	Ops            []machine.Opcode
	Strategy       Strategy

	best      *BestProgram
	evaluated atomic.Uint64
	token     *Token
	start     time.Time
	log       logrus.FieldLogger
	metrics   *Metrics

	mu           sync.Mutex
	improvements []Improvement
	listeners    []func(length int)
	summaries    []func(fields logrus.Fields)
}

// NewSearchContext computes nothing; target must already be the input's
// final state. opts must have passed Validate.
func NewSearchContext(input machine.Program, target machine.State, strategy Strategy, opts Options) (*SearchContext, error) {
	opts = opts.withDefaults(len(input))
	ops, err := ParseMnemonics(opts.Mnemonics)
	if err != nil {
		return nil, err
	}
	sc := &SearchContext{
		Target:         target,
		Input:          input.Clone(),
		OriginalLength: len(input),
		Options:        opts,
		Ops:            ops,
		Strategy:       strategy,
		best:           NewBestProgram(input),
		token:          NewToken(),
		start:          time.Now(),
		log:            opts.Logger,
		metrics:        opts.Metrics,
	}
	sc.metrics.attach(sc)
	return sc, nil
}

func (sc *SearchContext) Best() *BestProgram {
	return sc.best
}

func (sc *SearchContext) Token() *Token {
	return sc.token
}

// Stopped is true once the token is cancelled or nothing shorter than the
// best can exist.
func (sc *SearchContext) Stopped() bool {
	return sc.token.Cancelled() || sc.best.Len() == 0
}

func (sc *SearchContext) Evaluated() uint64 {
	return sc.evaluated.Load()
}

func (sc *SearchContext) CountEvaluated(n uint64) {
	sc.evaluated.Add(n)
}

func (sc *SearchContext) Elapsed() time.Duration {
	return time.Since(sc.start)
}

// MaxLength is the longest candidate still worth generating.
func (sc *SearchContext) MaxLength() int {
	limit := sc.best.Len() - 1
	if sc.Options.MaxInstructions < limit {
		limit = sc.Options.MaxInstructions
	}
	return limit
}

func (sc *SearchContext) MachineConfig() machine.Config {
	return machine.Config{StepBudget: sc.Options.StepBudget}
}

func (sc *SearchContext) newEvaluator() *Evaluator {
	return NewEvaluator(sc.Target, sc.MachineConfig())
}

func (sc *SearchContext) newGenerator(worker int) *Generator {
	return NewGenerator(sc.Ops, sc.Options.MinImm, sc.Options.MaxNum, newWorkerRand(sc.Options.Seed, worker))
}

// OnImprovement registers f to run after every replacement of the best.
// Register before the workers start.
func (sc *SearchContext) OnImprovement(f func(length int)) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.listeners = append(sc.listeners, f)
}

// OnSummary registers f to add strategy fields to the closing log line.
func (sc *SearchContext) OnSummary(f func(fields logrus.Fields)) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.summaries = append(sc.summaries, f)
}

func (sc *SearchContext) summarize(fields logrus.Fields) logrus.Fields {
	sc.mu.Lock()
	summaries := sc.summaries
	sc.mu.Unlock()
	for _, f := range summaries {
		f(fields)
	}
	return fields
}

// Offer proposes p as the new best. It is rechecked on a fresh machine so a
// broken strategy can never install a non-equivalent program.
func (sc *SearchContext) Offer(p machine.Program, strategy Strategy, worker int) bool {
	if len(p) >= sc.best.Len() || len(p) > sc.Options.MaxInstructions {
		return false
	}
	state, err := machine.ComputeState(p, sc.MachineConfig())
	if err != nil || state != sc.Target {
		sc.log.WithFields(logrus.Fields{
			"strategy": strategy,
			"worker":   worker,
		}).Warn("Rejected a candidate that is not equivalent")
		return false
	}
	if !sc.best.TryReplaceIfShorter(p) {
		return false
	}

	improvement := Improvement{
		Length:    len(p),
		Strategy:  strategy,
		Worker:    worker,
		Evaluated: sc.Evaluated(),
		Elapsed:   sc.Elapsed(),
		Program:   p.Clone(),
	}

	sc.mu.Lock()
	sc.improvements = append(sc.improvements, improvement)
	listeners := sc.listeners
	sc.mu.Unlock()

	sc.metrics.improved(len(p))
	sc.log.WithFields(logrus.Fields{
		"length":    improvement.Length,
		"evaluated": improvement.Evaluated,
		"strategy":  strategy,
		"worker":    worker,
	}).Info("Found more optimal program")

	for _, f := range listeners {
		f(len(p))
	}
	return true
}

func (sc *SearchContext) Improvements() []Improvement {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return append([]Improvement{}, sc.improvements...)
}
