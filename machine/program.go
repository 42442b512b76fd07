package machine

import (
	"fmt"
	"strings"
)

// Program is an ordered sequence of instructions. Equality is structural and
// says nothing about equivalence; use ComputeState for that.
type Program []Instruction

func (p Program) Len() int {
	return len(p)
}

// Clone returns a copy that shares no backing array with p.
func (p Program) Clone() Program {
	if p == nil {
		return Program{}
	}
	c := make(Program, len(p))
	copy(c, p)
	return c
}

func (p Program) Equal(o Program) bool {
	if len(p) != len(o) {
		return false
	}
	for n := range p {
		if p[n] != o[n] {
			return false
		}
	}
	return true
}

// Validate checks every instruction, reporting the index of the first bad one.
func (p Program) Validate() error {
	for n, ins := range p {
		if err := ins.Validate(); err != nil {
			return fmt.Errorf("instruction [%d]: %w", n, err)
		}
	}
	return nil
}

// String renders one instruction per line with no trailing newline.
func (p Program) String() string {
	var sb strings.Builder
	for n, ins := range p {
		if n > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(ins.String())
	}
	return sb.String()
}
