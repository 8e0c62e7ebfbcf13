package bytecode

import (
	"fmt"
	"io"
)

// Disassembler renders a Program as human-readable text, grounded on the
// teacher's internal/bytecode/disasm.go Disassembler{writer, chunk} shape
// (header, constants pool, then one line per instruction).
type Disassembler struct {
	writer  io.Writer
	program *Program
}

// NewDisassembler creates a Disassembler writing to w.
func NewDisassembler(program *Program, w io.Writer) *Disassembler {
	return &Disassembler{writer: w, program: program}
}

// Disassemble writes the full program listing.
func (d *Disassembler) Disassemble(name string) {
	fmt.Fprintf(d.writer, "== %s ==\n", name)

	fmt.Fprintln(d.writer, "Constants:")
	for i, k := range d.program.Constants {
		fmt.Fprintf(d.writer, "  %04d %s\n", i, describeConstant(k))
	}

	fmt.Fprintln(d.writer, "Bytecode:")
	offset := 0
	for offset < len(d.program.Instructions) {
		offset = d.DisassembleInstruction(offset)
	}
}

// DisassembleInstruction writes one instruction at offset and returns the
// offset of the next instruction (instructions here are fixed-size: one
// slot each, so this is always offset+1, but the method keeps the
// teacher's offset-returning signature so callers never need to know
// that).
func (d *Disassembler) DisassembleInstruction(offset int) int {
	instr := d.program.Instructions[offset]
	if instr.Op.hasOperand() {
		fmt.Fprintf(d.writer, "  %04d %-22s %4d", offset, instr.Op, instr.Operand)
		if instr.Operand >= 0 && instr.Operand < len(d.program.Constants) {
			fmt.Fprintf(d.writer, "  ; %s", describeConstant(d.program.Constants[instr.Operand]))
		}
		fmt.Fprintln(d.writer)
	} else {
		fmt.Fprintf(d.writer, "  %04d %s\n", offset, instr.Op)
	}
	return offset + 1
}

// Disassemble is a convenience wrapper returning the full listing as a
// string, for golden-file comparisons.
func Disassemble(program *Program, name string) string {
	var b stringWriter
	NewDisassembler(program, &b).Disassemble(name)
	return string(b)
}

// describeConstant renders a constant pool entry for the listing; it never
// fails even for values with no canonical string form.
func describeConstant(v interface{ Type() string }) string {
	type stringer interface {
		String() (string, error)
	}
	if s, ok := v.(stringer); ok {
		if str, err := s.String(); err == nil {
			return fmt.Sprintf("%s(%q)", v.Type(), str)
		}
	}
	return v.Type()
}

// stringWriter is a minimal io.Writer backed by a growing byte buffer,
// avoiding a bytes.Buffer import for this single use.
type stringWriter []byte

func (s *stringWriter) Write(p []byte) (int, error) {
	*s = append(*s, p...)
	return len(p), nil
}
