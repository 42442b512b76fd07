package machine

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// every representable instruction for a small immediate and jump range
func makeAllInstructions() []Instruction {
	all := []Instruction{}
	for imm := 0; imm <= MaxImmediate; imm++ {
		all = append(all, Load(uint8(imm)))
	}
	for a := Address(0); a < MemSize; a++ {
		all = append(all, Inc(a), Decr(a), Put(a))
		for b := Address(0); b < MemSize; b++ {
			all = append(all, Swap(a, b), XOR(a, b), Add(a, b), Sub(a, b))
		}
	}
	for target := uint16(0); target < 300; target++ {
		all = append(all, Jmp(target))
	}
	return all
}

func TestParseInstructionRoundTrip(t *testing.T) {
	for _, ins := range makeAllInstructions() {
		got, err := ParseInstruction(ins.String())
		if err != nil {
			t.Errorf("ParseInstruction(%q) failed: %v", ins.String(), err)
			continue
		}
		if got != ins {
			t.Errorf("ParseInstruction(%q) returned [%+v], expected [%+v]", ins.String(), got, ins)
		}
	}
}

func TestParseInstructionMalformed(t *testing.T) {
	cases := []string{
		"",
		"SWAP 0",
		"SWAP 0 1 2",
		"LOAD",
		"LOAD 256",
		"LOAD -1",
		"LOAD 0x10",
		"INC 4",
		"XOR 0 9",
		"FROB 1",
		"JMP 70000",
	}
	for _, text := range cases {
		_, err := ParseInstruction(text)
		if err == nil {
			t.Errorf("ParseInstruction(%q) unexpectedly succeeded", text)
			continue
		}
		if !errors.Is(err, ErrMalformedInstruction) {
			t.Errorf("ParseInstruction(%q) error [%v] does not match ErrMalformedInstruction", text, err)
		}
	}
}

func TestParseProgramAbortsOnSwapMissingOperand(t *testing.T) {
	src := "LOAD 3\n\n# comment\nSWAP 0\nLOAD 3\n"
	p, err := ParseProgram(strings.NewReader(src))
	if err == nil {
		t.Fatalf("expected ParseProgram to fail, got program [%v]", p)
	}
	if p != nil {
		t.Errorf("a failed load must not return a program, got [%v]", p)
	}

	var mi *MalformedInstructionError
	if !errors.As(err, &mi) {
		t.Fatalf("error [%v] is not a MalformedInstructionError", err)
	}
	if mi.Line != 4 {
		t.Errorf("error reported line [%d], expected [4]", mi.Line)
	}
	if mi.Text != "SWAP 0" {
		t.Errorf("error reported text %q, expected %q", mi.Text, "SWAP 0")
	}
}

func TestParseProgramLenient(t *testing.T) {
	src := "load 3\nswap 0\n; note\nSWAP 0 1\nbogus\n"
	p, skipped, err := ParseProgramLenient(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Equal(Program{Load(3), Swap(0, 1)}) {
		t.Errorf("unexpected program [%v]", p)
	}
	if len(skipped) != 2 {
		t.Errorf("expected [2] skipped lines, got [%d]: %v", len(skipped), skipped)
	}
}

func TestWriteProgramRoundTrip(t *testing.T) {
	p := Program{Load(3), Swap(0, 1), XOR(2, 1), Put(2), Jmp(5), Sub(3, 3)}

	var buf bytes.Buffer
	if err := WriteProgram(&buf, p); err != nil {
		t.Fatalf("WriteProgram failed: %v", err)
	}
	got, err := ParseProgram(&buf)
	if err != nil {
		t.Fatalf("ParseProgram failed: %v", err)
	}
	if !got.Equal(p) {
		t.Errorf("round trip returned [%v], expected [%v]", got, p)
	}
}

func TestParseOperandOutOfRange(t *testing.T) {
	cases := []string{"JMP 70000", "LOAD 99999999999999999999", "INC 65536"}
	for _, text := range cases {
		_, err := ParseInstruction(text)
		var mi *MalformedInstructionError
		if !errors.As(err, &mi) {
			t.Errorf("ParseInstruction(%q) error [%v] is not a MalformedInstructionError", text, err)
			continue
		}
		if !strings.Contains(mi.Reason, "out of range") {
			t.Errorf("ParseInstruction(%q) reported [%s], expected an out of range reason", text, mi.Reason)
		}
	}
}
