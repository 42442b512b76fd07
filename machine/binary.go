package machine

import (
	"bufio"
	bin "encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Format selects a binary serialization.
//
// FormatWord packs every instruction into a big-endian uint32:
//
//	31      24 23          12 11           0
//	[ opcode ] [ operand A  ] [ operand B  ]
//
// FormatCompact writes an opcode byte followed by one byte per operand.
//
// Both start with a big-endian uint32 instruction count.
type Format int

const (
	FormatWord Format = iota
	FormatCompact
)

const (
	wordOperandBits = 12
	wordOperandMask = 1<<wordOperandBits - 1

	// MaxWordJump is the largest JMP target FormatWord can hold.
	MaxWordJump = wordOperandMask
	// MaxCompactJump is the largest JMP target FormatCompact can hold.
	MaxCompactJump = 0xFF
)

// maxDecodeCount rejects absurd counts in corrupt input. Counts below it are
// still only trusted up to maxDecodePrealloc; the rest grows with the data.
const (
	maxDecodeCount    = 1 << 24
	maxDecodePrealloc = 4096
)

func (f Format) String() string {
	switch f {
	case FormatWord:
		return "word"
	case FormatCompact:
		return "compact"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat resolves "word" or "compact".
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "word":
		return FormatWord, nil
	case "compact":
		return FormatCompact, nil
	}
	return 0, fmt.Errorf("unknown binary format [%s]", name)
}

// EncodeInstruction packs a single instruction into a FormatWord word.
func EncodeInstruction(i Instruction) (uint32, error) {
	if err := i.Validate(); err != nil {
		return 0, err
	}
	if i.A > wordOperandMask || i.B > wordOperandMask {
		return 0, &InvalidOperandError{Instruction: i, Reason: fmt.Sprintf("operand does not fit in %d bits", wordOperandBits)}
	}
	return uint32(i.Op)<<24 | uint32(i.A)<<wordOperandBits | uint32(i.B), nil
}

// DecodeInstruction unpacks a FormatWord word.
func DecodeInstruction(word uint32) (Instruction, error) {
	op := byte(word >> 24)
	ins := Instruction{
		Op: Opcode(op),
		A:  uint16(word >> wordOperandBits & wordOperandMask),
		B:  uint16(word & wordOperandMask),
	}
	if !ins.Op.Valid() {
		return Instruction{}, &MalformedInstructionError{Binary: true, Opcode: op, Reason: "unknown opcode"}
	}
	if err := ins.Validate(); err != nil {
		return Instruction{}, &MalformedInstructionError{Binary: true, Opcode: op, Reason: err.Error()}
	}
	return ins, nil
}

// EncodeProgram writes p to w in the given format.
func EncodeProgram(w io.Writer, p Program, format Format) error {
	bw := bufio.NewWriter(w)
	if err := bin.Write(bw, bin.BigEndian, uint32(len(p))); err != nil {
		return err
	}

	for n, ins := range p {
		switch format {
		case FormatWord:
			word, err := EncodeInstruction(ins)
			if err != nil {
				return fmt.Errorf("instruction [%d]: %w", n, err)
			}
			if err := bin.Write(bw, bin.BigEndian, word); err != nil {
				return err
			}
		case FormatCompact:
			if err := ins.Validate(); err != nil {
				return fmt.Errorf("instruction [%d]: %w", n, err)
			}
			if ins.A > MaxCompactJump {
				return fmt.Errorf("instruction [%d]: %w", n,
					&InvalidOperandError{Instruction: ins, Reason: "operand does not fit in a byte"})
			}
			buf := []byte{byte(ins.Op), byte(ins.A), byte(ins.B)}
			if _, err := bw.Write(buf[:1+ins.Op.Arity()]); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown binary format [%d]", int(format))
		}
	}

	return bw.Flush()
}

// DecodeProgram reads a program written by EncodeProgram.
func DecodeProgram(r io.Reader, format Format) (Program, error) {
	br := bufio.NewReader(r)

	var count uint32
	if err := bin.Read(br, bin.BigEndian, &count); err != nil {
		return nil, &MalformedInstructionError{Binary: true, Reason: "missing instruction count"}
	}
	if count > maxDecodeCount {
		return nil, &MalformedInstructionError{Binary: true, Reason: fmt.Sprintf("instruction count [%d] too large", count)}
	}

	program := make(Program, 0, min(count, maxDecodePrealloc))
	offset := 4
	for n := uint32(0); n < count; n++ {
		switch format {
		case FormatWord:
			var word uint32
			if err := bin.Read(br, bin.BigEndian, &word); err != nil {
				return nil, truncated(offset, err)
			}
			ins, err := DecodeInstruction(word)
			if err != nil {
				var mi *MalformedInstructionError
				if errors.As(err, &mi) {
					mi.Offset = offset
				}
				return nil, err
			}
			program = append(program, ins)
			offset += 4
		case FormatCompact:
			op, err := br.ReadByte()
			if err != nil {
				return nil, truncated(offset, err)
			}
			ins := Instruction{Op: Opcode(op)}
			if !ins.Op.Valid() {
				return nil, &MalformedInstructionError{Binary: true, Offset: offset, Opcode: op, Reason: "unknown opcode"}
			}
			operands := make([]byte, ins.Op.Arity())
			if _, err := io.ReadFull(br, operands); err != nil {
				return nil, &MalformedInstructionError{Binary: true, Offset: offset, Opcode: op, Reason: "missing operand"}
			}
			ins.A = uint16(operands[0])
			if len(operands) == 2 {
				ins.B = uint16(operands[1])
			}
			if err := ins.Validate(); err != nil {
				return nil, &MalformedInstructionError{Binary: true, Offset: offset, Opcode: op, Reason: err.Error()}
			}
			program = append(program, ins)
			offset += 1 + len(operands)
		default:
			return nil, fmt.Errorf("unknown binary format [%d]", int(format))
		}
	}

	return program, nil
}

func truncated(offset int, err error) error {
	return &MalformedInstructionError{Binary: true, Offset: offset, Reason: fmt.Sprintf("truncated input: %v", err)}
}
