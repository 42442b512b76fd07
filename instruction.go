package superopt

import (
	"fmt"
	"math/rand"
	"strings"

	"nickandperla.net/superopt/machine"
)

// ParseMnemonics resolves a vocabulary like ["load", "swap"]. Duplicates are
// dropped and order is kept.
func ParseMnemonics(names []string) ([]machine.Opcode, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("mnemonic set is empty")
	}
	seen := make(map[machine.Opcode]bool, len(names))
	ops := make([]machine.Opcode, 0, len(names))
	for _, name := range names {
		op, ok := machine.ParseOpcode(name)
		if !ok {
			return nil, fmt.Errorf("unknown mnemonic [%s]", name)
		}
		if seen[op] {
			continue
		}
		seen[op] = true
		ops = append(ops, op)
	}
	return ops, nil
}

// ExcludeMnemonics returns every opcode except the excluded ones.
func ExcludeMnemonics(excluded []string) ([]machine.Opcode, error) {
	drop := make(map[machine.Opcode]bool, len(excluded))
	for _, name := range excluded {
		op, ok := machine.ParseOpcode(name)
		if !ok {
			return nil, fmt.Errorf("unknown mnemonic [%s]", name)
		}
		drop[op] = true
	}
	var ops []machine.Opcode
	for _, op := range machine.Opcodes() {
		if !drop[op] {
			ops = append(ops, op)
		}
	}
	if len(ops) == 0 {
		return nil, fmt.Errorf("every mnemonic is excluded")
	}
	return ops, nil
}

func mnemonicNames(ops []machine.Opcode) string {
	names := make([]string, len(ops))
	for n, op := range ops {
		names[n] = op.String()
	}
	return strings.Join(names, " ")
}

// Generator draws uniformly random instructions from a vocabulary. It is
// owned by a single worker.
type Generator struct {
	Ops    []machine.Opcode
	MinImm uint8
	MaxNum uint8
	rand   *rand.Rand
}

func NewGenerator(ops []machine.Opcode, minImm, maxNum uint8, r *rand.Rand) *Generator {
	if len(ops) == 0 {
		panic("generator needs at least one opcode")
	}
	if minImm > maxNum {
		panic(fmt.Sprintf("generator immediate range [%d, %d] is empty", minImm, maxNum))
	}
	return &Generator{Ops: ops, MinImm: minImm, MaxNum: maxNum, rand: r}
}

func (g *Generator) Rand() *rand.Rand {
	return g.rand
}

// Instruction returns a random instruction for a program of the given
// length. JMP targets land in [0, length).
func (g *Generator) Instruction(length int) machine.Instruction {
	return g.instructionFor(g.Ops[g.rand.Intn(len(g.Ops))], length)
}

func (g *Generator) instructionFor(op machine.Opcode, length int) machine.Instruction {
	ins := machine.Instruction{Op: op}
	switch {
	case op == machine.OP_LOAD:
		ins.A = uint16(g.MinImm) + uint16(g.rand.Intn(int(g.MaxNum)-int(g.MinImm)+1))
	case op == machine.OP_JMP:
		if length > 0 {
			ins.A = uint16(g.rand.Intn(length))
		}
	default:
		ins.A = uint16(g.rand.Intn(machine.MemSize))
		if op.Arity() == 2 {
			ins.B = uint16(g.rand.Intn(machine.MemSize))
		}
	}
	return mustValid(ins)
}

// Program returns a fresh random program of exactly n instructions.
func (g *Generator) Program(n int) machine.Program {
	return g.Fill(make(machine.Program, n))
}

// Fill overwrites every slot of p and returns it.
func (g *Generator) Fill(p machine.Program) machine.Program {
	for n := range p {
		p[n] = g.Instruction(len(p))
	}
	return p
}

// operandVariants lists every instruction op can form in a program of the
// given length, in ascending operand order.
func operandVariants(op machine.Opcode, minImm, maxNum uint8, length int) []machine.Instruction {
	var variants []machine.Instruction
	switch {
	case op == machine.OP_LOAD:
		for imm := int(minImm); imm <= int(maxNum); imm++ {
			variants = append(variants, mustValid(machine.Load(uint8(imm))))
		}
	case op == machine.OP_JMP:
		for target := 0; target < length; target++ {
			variants = append(variants, mustValid(machine.Jmp(uint16(target))))
		}
	case op.Arity() == 2:
		for a := uint16(0); a < machine.MemSize; a++ {
			for b := uint16(0); b < machine.MemSize; b++ {
				variants = append(variants, mustValid(machine.Instruction{Op: op, A: a, B: b}))
			}
		}
	default:
		for a := uint16(0); a < machine.MemSize; a++ {
			variants = append(variants, mustValid(machine.Instruction{Op: op, A: a}))
		}
	}
	return variants
}

// mustValid panics on an instruction no generator should ever build.
func mustValid(ins machine.Instruction) machine.Instruction {
	if err := ins.Validate(); err != nil {
		panic(fmt.Errorf("generator built an invalid instruction: %w", err))
	}
	return ins
}
