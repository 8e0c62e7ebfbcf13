package bytecode

import "github.com/mekotech/loom/internal/runtime"

// Instruction is one opcode plus its (possibly unused) operand: an index
// into the owning Program's constant pool, or for JoinStrings a value count.
type Instruction struct {
	Op      OpCode
	Operand int
}

// Program is the flat, position-independent output of Compile: a sequence
// of Instructions plus the constant pool they index into. Unlike the
// teacher's Chunk (which packs a bytecode byte slice and a separate
// constants slice), operands here are plain ints: a constant-pool index for
// PushConstant, PushLiteral and SetSource, a value count for JoinStrings,
// and unused by every other opcode, since this language has no jumps to
// encode.
type Program struct {
	Instructions []Instruction
	Constants    []runtime.Value
}

// addConstant appends v to the pool and returns its index, reusing an
// existing identical String/Integer/Real/Boolean entry when possible to
// keep the pool small (the teacher's Chunk.AddConstant does the same
// dedup for literal pools).
func (p *Program) addConstant(v runtime.Value) int {
	for i, existing := range p.Constants {
		if constantsEqual(existing, v) {
			return i
		}
	}
	p.Constants = append(p.Constants, v)
	return len(p.Constants) - 1
}

func constantsEqual(a, b runtime.Value) bool {
	switch av := a.(type) {
	case runtime.String:
		bv, ok := b.(runtime.String)
		return ok && av == bv
	case runtime.Integer:
		bv, ok := b.(runtime.Integer)
		return ok && av == bv
	case runtime.Real:
		bv, ok := b.(runtime.Real)
		return ok && av == bv
	case runtime.Boolean:
		bv, ok := b.(runtime.Boolean)
		return ok && av == bv
	default:
		// *Script and other reference-like constants are never deduped:
		// each Block's Script value gets its own pool slot.
		return false
	}
}

func (p *Program) emit(op OpCode) int {
	p.Instructions = append(p.Instructions, Instruction{Op: op})
	return len(p.Instructions) - 1
}

func (p *Program) emitWithOperand(op OpCode, operand int) int {
	p.Instructions = append(p.Instructions, Instruction{Op: op, Operand: operand})
	return len(p.Instructions) - 1
}
