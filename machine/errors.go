package machine

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedInstruction = errors.New("malformed instruction")
	ErrInvalidOperand       = errors.New("invalid operand")
	ErrStepBudgetExceeded   = errors.New("step budget exceeded")
	ErrJumpOutOfRange       = errors.New("jump target out of range")
)

// MalformedInstructionError reports text or binary input that doesn't decode
// to a valid instruction. Text errors carry Line and Text, binary errors
// carry Offset and Opcode.
type MalformedInstructionError struct {
	Line   int
	Text   string
	Offset int
	Opcode byte
	Binary bool
	Reason string
}

func (e *MalformedInstructionError) Error() string {
	if e.Binary {
		return fmt.Sprintf("malformed instruction at byte [%d] (opcode [%d]): %s", e.Offset, e.Opcode, e.Reason)
	}
	if e.Line > 0 {
		return fmt.Sprintf("malformed instruction on line [%d] %q: %s", e.Line, e.Text, e.Reason)
	}
	return fmt.Sprintf("malformed instruction %q: %s", e.Text, e.Reason)
}

func (e *MalformedInstructionError) Is(target error) bool {
	return target == ErrMalformedInstruction
}

// InvalidOperandError is returned when an instruction is constructed with an
// operand that doesn't fit the machine.
type InvalidOperandError struct {
	Instruction Instruction
	Reason      string
}

func (e *InvalidOperandError) Error() string {
	return fmt.Sprintf("invalid operand in [%s %d %d]: %s", e.Instruction.Op, e.Instruction.A, e.Instruction.B, e.Reason)
}

func (e *InvalidOperandError) Is(target error) bool {
	return target == ErrInvalidOperand
}
