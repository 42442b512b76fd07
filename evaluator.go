package superopt

import (
	"nickandperla.net/superopt/machine"
)

// An Evaluation is a snapshot of how one candidate ran against the target.
// A faulted run is never equivalent, whatever state it stopped in.
type Evaluation struct {
	State      machine.State
	Steps      uint
	Fault      error
	Equivalent bool
	Distance   float64
}

// Evaluator runs candidates on a machine it owns. Every worker has its own.
type Evaluator struct {
	Machine *machine.Machine
	Target  machine.State
}

func NewEvaluator(target machine.State, config machine.Config) *Evaluator {
	return &Evaluator{
		Machine: machine.NewMachine(config),
		Target:  target,
	}
}

func (e *Evaluator) Evaluate(p machine.Program) Evaluation {
	state, err := e.Machine.ComputeState(p)
	eval := Evaluation{
		State: state,
		Steps: e.Machine.Steps,
		Fault: err,
	}
	eval.Equivalent = err == nil && state == e.Target
	eval.Distance = Score(eval, e.Target)
	return eval
}

// Equivalent is the hot path used by the enumerating strategies.
func (e *Evaluator) Equivalent(p machine.Program) bool {
	state, err := e.Machine.ComputeState(p)
	return err == nil && state == e.Target
}
