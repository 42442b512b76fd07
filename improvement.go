package superopt

import (
	"time"

	"nickandperla.net/superopt/machine"
)

// Improvement records one replacement of the best program.
type Improvement struct {
	Length    int
	Strategy  Strategy
	Worker    int
	Evaluated uint64
	Elapsed   time.Duration
	Program   machine.Program
}
