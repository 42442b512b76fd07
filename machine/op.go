package machine

import (
	"fmt"
	"strings"
)

// The instruction set of the superr machine. Every instruction works on a
// fixed bank of MemSize 8-bit cells. Values wrap modulo 256.
//
//	LOAD imm     cell[0] = imm
//	SWAP a b     cell[a], cell[b] = cell[b], cell[a]
//	XOR  a b     cell[a] = cell[a] ^ cell[b]
//	INC  a       cell[a]++
//	DECR a       cell[a]--
//	ADD  a b     cell[a] = cell[a] + cell[b]
//	SUB  a b     cell[a] = cell[a] - cell[b]
//	PUT  a       emit cell[a] to the output sink
//	JMP  target  pc = target (no implicit increment)
//
// LOAD can only ever write cell 0, so filling other cells always takes a
// second instruction (SWAP, XOR, ADD...).

const MemSize = 4

// MaxImmediate is the largest value a LOAD can carry.
const MaxImmediate = 255

type Address = uint8

type Opcode uint8

const (
	OP_LOAD Opcode = iota
	OP_SWAP
	OP_XOR
	OP_INC
	OP_DECR
	OP_ADD
	OP_SUB
	OP_PUT
	OP_JMP

	opcodeCount
)

var mnemonics = [opcodeCount]string{
	OP_LOAD: "LOAD",
	OP_SWAP: "SWAP",
	OP_XOR:  "XOR",
	OP_INC:  "INC",
	OP_DECR: "DECR",
	OP_ADD:  "ADD",
	OP_SUB:  "SUB",
	OP_PUT:  "PUT",
	OP_JMP:  "JMP",
}

var arity = [opcodeCount]int{
	OP_LOAD: 1,
	OP_SWAP: 2,
	OP_XOR:  2,
	OP_INC:  1,
	OP_DECR: 1,
	OP_ADD:  2,
	OP_SUB:  2,
	OP_PUT:  1,
	OP_JMP:  1,
}

// Opcodes returns every opcode in encoding order.
func Opcodes() []Opcode {
	ops := make([]Opcode, 0, opcodeCount)
	for o := Opcode(0); o < opcodeCount; o++ {
		ops = append(ops, o)
	}
	return ops
}

func (o Opcode) Valid() bool {
	return o < opcodeCount
}

func (o Opcode) String() string {
	if !o.Valid() {
		return fmt.Sprintf("OP(%d)", uint8(o))
	}
	return mnemonics[o]
}

// Arity is the number of operands the opcode takes.
func (o Opcode) Arity() int {
	if !o.Valid() {
		return 0
	}
	return arity[o]
}

// TakesAddresses reports whether the operands of o are memory addresses.
func (o Opcode) TakesAddresses() bool {
	return o.Valid() && o != OP_LOAD && o != OP_JMP
}

// ParseOpcode resolves a mnemonic, ignoring case.
func ParseOpcode(s string) (Opcode, bool) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for o, m := range mnemonics {
		if m == upper {
			return Opcode(o), true
		}
	}
	return 0, false
}

// Instruction is a single decoded instruction. A holds the immediate for
// LOAD, the target for JMP and the first address otherwise. B is only used
// by two-address instructions and is zero for every other opcode.
type Instruction struct {
	Op Opcode
	A  uint16
	B  uint16
}

func Load(imm uint8) Instruction { return Instruction{Op: OP_LOAD, A: uint16(imm)} }

func Swap(a, b Address) Instruction { return Instruction{Op: OP_SWAP, A: uint16(a), B: uint16(b)} }

func XOR(a, b Address) Instruction { return Instruction{Op: OP_XOR, A: uint16(a), B: uint16(b)} }

func Inc(a Address) Instruction { return Instruction{Op: OP_INC, A: uint16(a)} }

func Decr(a Address) Instruction { return Instruction{Op: OP_DECR, A: uint16(a)} }

func Add(a, b Address) Instruction { return Instruction{Op: OP_ADD, A: uint16(a), B: uint16(b)} }

func Sub(a, b Address) Instruction { return Instruction{Op: OP_SUB, A: uint16(a), B: uint16(b)} }

func Put(a Address) Instruction { return Instruction{Op: OP_PUT, A: uint16(a)} }

func Jmp(target uint16) Instruction { return Instruction{Op: OP_JMP, A: target} }

// Validate checks the operands against MemSize and the immediate range.
// Jump targets are checked at execution time since they depend on the
// program length.
func (i Instruction) Validate() error {
	if !i.Op.Valid() {
		return &InvalidOperandError{Instruction: i, Reason: fmt.Sprintf("unknown opcode [%d]", uint8(i.Op))}
	}
	switch {
	case i.Op == OP_LOAD:
		if i.A > MaxImmediate {
			return &InvalidOperandError{Instruction: i, Reason: fmt.Sprintf("immediate [%d] exceeds [%d]", i.A, MaxImmediate)}
		}
		if i.B != 0 {
			return &InvalidOperandError{Instruction: i, Reason: "unused operand is set"}
		}
	case i.Op == OP_JMP:
		if i.B != 0 {
			return &InvalidOperandError{Instruction: i, Reason: "unused operand is set"}
		}
	default:
		if i.A >= MemSize {
			return &InvalidOperandError{Instruction: i, Reason: fmt.Sprintf("address [%d] out of range [0, %d)", i.A, MemSize)}
		}
		if i.Op.Arity() == 2 && i.B >= MemSize {
			return &InvalidOperandError{Instruction: i, Reason: fmt.Sprintf("address [%d] out of range [0, %d)", i.B, MemSize)}
		}
		if i.Op.Arity() == 1 && i.B != 0 {
			return &InvalidOperandError{Instruction: i, Reason: "unused operand is set"}
		}
	}
	return nil
}

// String renders the text form, e.g. "SWAP 0 1".
func (i Instruction) String() string {
	if i.Op.Arity() == 2 {
		return fmt.Sprintf("%s %d %d", i.Op, i.A, i.B)
	}
	return fmt.Sprintf("%s %d", i.Op, i.A)
}
