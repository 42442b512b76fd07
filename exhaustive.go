package superopt

import (
	"nickandperla.net/superopt/machine"
)

// enumerator produces every program of length 0..MaxInstructions in a fixed
// order: for each length, each multiset of opcodes, each distinct ordering of
// that multiset, each combination of operands. Programs are sent in batches.
type enumerator struct {
	sc        *SearchContext
	batchSize int
	out       chan<- []machine.Program

	batch   []machine.Program
	backing []machine.Instruction
	length  int
}

func newEnumerator(sc *SearchContext, out chan<- []machine.Program) *enumerator {
	return &enumerator{sc: sc, batchSize: sc.Options.BatchSize, out: out}
}

// run closes out when enumeration is exhausted or can no longer improve on
// the best program.
func (e *enumerator) run() {
	defer close(e.out)
	for length := 0; length <= e.sc.Options.MaxInstructions; length++ {
		if !e.worthEnumerating(length) {
			return
		}
		e.sc.log.WithField("length", length).Debug("Enumerating programs")
		if !e.enumerateLength(length) {
			return
		}
		if !e.flush() {
			return
		}
	}
}

func (e *enumerator) worthEnumerating(length int) bool {
	return !e.sc.token.Cancelled() && e.sc.best.Len() > length
}

func (e *enumerator) enumerateLength(length int) bool {
	e.length = length
	e.reset()
	if length == 0 {
		return e.emit(nil)
	}

	variants := make([][]machine.Instruction, len(e.sc.Ops))
	for n, op := range e.sc.Ops {
		variants[n] = operandVariants(op, e.sc.Options.MinImm, e.sc.Options.MaxNum, length)
	}

	multiset := make([]int, length)
	order := make([]int, length)
	for {
		copy(order, multiset)
		for {
			if !e.emitOperands(order, variants) {
				return false
			}
			if !nextPermutation(order) {
				break
			}
		}
		if !nextMultiset(multiset, len(e.sc.Ops)) {
			return true
		}
	}
}

// emitOperands walks the operand odometer for one opcode ordering, the last
// position turning fastest.
func (e *enumerator) emitOperands(order []int, variants [][]machine.Instruction) bool {
	for _, op := range order {
		if len(variants[op]) == 0 {
			return true
		}
	}
	digits := make([]int, len(order))
	program := make(machine.Program, len(order))
	for {
		for n, op := range order {
			program[n] = variants[op][digits[n]]
		}
		if !e.emit(program) {
			return false
		}

		n := len(digits) - 1
		for ; n >= 0; n-- {
			digits[n]++
			if digits[n] < len(variants[order[n]]) {
				break
			}
			digits[n] = 0
		}
		if n < 0 {
			return true
		}
	}
}

func (e *enumerator) reset() {
	e.batch = make([]machine.Program, 0, e.batchSize)
	e.backing = make([]machine.Instruction, e.batchSize*e.length)
}

// emit copies p into the current batch and ships the batch once full.
func (e *enumerator) emit(p machine.Program) bool {
	n := len(e.batch)
	slot := machine.Program(e.backing[n*e.length : (n+1)*e.length : (n+1)*e.length])
	copy(slot, p)
	e.batch = append(e.batch, slot)
	if len(e.batch) < e.batchSize {
		return true
	}
	if !e.flush() {
		return false
	}
	e.reset()
	return e.worthEnumerating(e.length)
}

func (e *enumerator) flush() bool {
	if len(e.batch) == 0 {
		return true
	}
	select {
	case e.out <- e.batch:
		e.batch = nil
		return true
	case <-e.sc.token.Done():
		return false
	}
}

// nextMultiset advances a non-decreasing index vector over k symbols,
// i.e. the next combination with replacement.
func nextMultiset(idx []int, k int) bool {
	n := len(idx) - 1
	for n >= 0 && idx[n] == k-1 {
		n--
	}
	if n < 0 {
		return false
	}
	idx[n]++
	for m := n + 1; m < len(idx); m++ {
		idx[m] = idx[n]
	}
	return true
}

// nextPermutation rearranges idx into the next lexicographic ordering,
// skipping duplicates. It returns false after the last one.
func nextPermutation(idx []int) bool {
	n := len(idx) - 2
	for n >= 0 && idx[n] >= idx[n+1] {
		n--
	}
	if n < 0 {
		return false
	}
	m := len(idx) - 1
	for idx[m] <= idx[n] {
		m--
	}
	idx[n], idx[m] = idx[m], idx[n]
	for l, r := n+1, len(idx)-1; l < r; l, r = l+1, r-1 {
		idx[l], idx[r] = idx[r], idx[l]
	}
	return true
}
