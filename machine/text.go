package machine

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseInstruction decodes a single "MNEMONIC a [b]" line.
func ParseInstruction(text string) (Instruction, error) {
	return parseLine(0, text)
}

func parseLine(line int, text string) (Instruction, error) {
	malformed := func(format string, args ...any) error {
		return &MalformedInstructionError{Line: line, Text: text, Reason: fmt.Sprintf(format, args...)}
	}

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Instruction{}, malformed("empty instruction")
	}

	op, ok := ParseOpcode(fields[0])
	if !ok {
		return Instruction{}, malformed("unknown mnemonic [%s]", fields[0])
	}

	operands := fields[1:]
	if len(operands) < op.Arity() {
		return Instruction{}, malformed("%s takes %d operand(s), got %d", op, op.Arity(), len(operands))
	}
	if len(operands) > op.Arity() {
		return Instruction{}, malformed("%s takes %d operand(s), got %d", op, op.Arity(), len(operands))
	}

	limit := uint64(MemSize - 1)
	switch op {
	case OP_LOAD:
		limit = MaxImmediate
	case OP_JMP:
		limit = 0xFFFF
	}

	values := make([]uint16, 2)
	for n, operand := range operands {
		v, err := strconv.ParseUint(operand, 10, 16)
		if errors.Is(err, strconv.ErrRange) {
			return Instruction{}, malformed("operand [%s] out of range [0, %d]", operand, limit)
		}
		if err != nil {
			return Instruction{}, malformed("operand [%s] is not a decimal number", operand)
		}
		if v > limit {
			return Instruction{}, malformed("operand [%d] out of range [0, %d]", v, limit)
		}
		values[n] = uint16(v)
	}

	return Instruction{Op: op, A: values[0], B: values[1]}, nil
}

func skipLine(text string) bool {
	trimmed := strings.TrimSpace(text)
	return trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";")
}

// ParseProgram reads one instruction per line. Blank lines and lines
// starting with '#' or ';' are skipped. The first malformed line aborts the
// load.
func ParseProgram(r io.Reader) (Program, error) {
	program := Program{}
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		if skipLine(scanner.Text()) {
			continue
		}
		ins, err := parseLine(line, strings.TrimSpace(scanner.Text()))
		if err != nil {
			return nil, err
		}
		program = append(program, ins)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}
	return program, nil
}

// ParseProgramLenient is like ParseProgram but skips malformed lines and
// hands them back alongside the program.
func ParseProgramLenient(r io.Reader) (Program, []error, error) {
	program := Program{}
	var skipped []error
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		if skipLine(scanner.Text()) {
			continue
		}
		ins, err := parseLine(line, strings.TrimSpace(scanner.Text()))
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		program = append(program, ins)
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("failed to read program: %w", err)
	}
	return program, skipped, nil
}

// ParseProgramString is a convenience for tests and literals.
func ParseProgramString(s string) (Program, error) {
	return ParseProgram(strings.NewReader(s))
}

// WriteProgram writes the text form, one instruction per line.
func WriteProgram(w io.Writer, p Program) error {
	bw := bufio.NewWriter(w)
	for _, ins := range p {
		if _, err := fmt.Fprintln(bw, ins.String()); err != nil {
			return err
		}
	}
	return bw.Flush()
}
