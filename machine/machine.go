package machine

// DefaultStepBudget caps a single run. Generated candidates with JMP can loop
// forever, so every run is bounded.
const DefaultStepBudget uint = 10000

type Config struct {
	// StepBudget is the maximum number of executed instructions. Zero means
	// DefaultStepBudget.
	StepBudget uint
}

func DefaultConfig() Config {
	return Config{StepBudget: DefaultStepBudget}
}

func (c Config) budget() uint {
	if c.StepBudget == 0 {
		return DefaultStepBudget
	}
	return c.StepBudget
}

// Machine executes one program at a time. It is not safe for concurrent use;
// every worker owns its own.
type Machine struct {
	State  State
	PC     int
	Steps  uint
	Output []uint8
	Config Config

	program Program
	discard bool
}

func NewMachine(cfg Config) *Machine {
	return &Machine{Config: cfg}
}

func (m *Machine) Reset() {
	m.State = State{}
	m.PC = 0
	m.Steps = 0
	m.Output = m.Output[:0]
}

// Load resets the machine and installs p as the running program.
func (m *Machine) Load(p Program) {
	m.Reset()
	m.program = p
}

func (m *Machine) Program() Program {
	return m.program
}

// Halted reports whether the program counter has run off the end.
func (m *Machine) Halted() bool {
	return m.PC >= len(m.program)
}

// Step executes the instruction at PC. It returns false once the program has
// halted. A fault leaves State as it was before the faulting instruction.
func (m *Machine) Step() (bool, error) {
	if m.Halted() {
		return false, nil
	}
	if m.Steps >= m.Config.budget() {
		return false, ErrStepBudgetExceeded
	}
	m.Steps++

	ins := m.program[m.PC]
	if ins.Op.TakesAddresses() && (ins.A >= MemSize || ins.B >= MemSize) {
		return false, &InvalidOperandError{Instruction: ins, Reason: "address out of range"}
	}
	s := &m.State
	switch ins.Op {
	case OP_LOAD:
		s[0] = uint8(ins.A)
	case OP_SWAP:
		s[ins.A], s[ins.B] = s[ins.B], s[ins.A]
	case OP_XOR:
		s[ins.A] ^= s[ins.B]
	case OP_INC:
		s[ins.A]++
	case OP_DECR:
		s[ins.A]--
	case OP_ADD:
		s[ins.A] += s[ins.B]
	case OP_SUB:
		s[ins.A] -= s[ins.B]
	case OP_PUT:
		if !m.discard {
			m.Output = append(m.Output, s[ins.A])
		}
	case OP_JMP:
		if int(ins.A) >= len(m.program) {
			return false, ErrJumpOutOfRange
		}
		m.PC = int(ins.A)
		return true, nil
	default:
		return false, &InvalidOperandError{Instruction: ins, Reason: "unknown opcode"}
	}

	m.PC++
	return true, nil
}

// Run executes p from a fresh state until it halts or faults.
func (m *Machine) Run(p Program) error {
	m.Load(p)
	for {
		ok, err := m.Step()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
}

// ComputeState runs p and returns only the final state. PUT output is not
// recorded.
func (m *Machine) ComputeState(p Program) (State, error) {
	m.discard = true
	defer func() { m.discard = false }()
	err := m.Run(p)
	return m.State, err
}

// ComputeState runs p on a fresh machine.
func ComputeState(p Program, cfg Config) (State, error) {
	return NewMachine(cfg).ComputeState(p)
}
