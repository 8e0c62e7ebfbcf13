package bytecode

import "github.com/mekotech/loom/internal/runtime"

// OptimizationPass names one independent peephole pass, mirroring the
// teacher's internal/bytecode/optimizer.go OptimizationPass string-enum
// and functional-option configuration shape.
type OptimizationPass string

const (
	// PassConstantFold collapses an adjacent run of PushLiteral
	// instructions followed immediately by JoinStrings(n), where n equals
	// the run's length, into a single PushLiteral of the concatenated
	// text. It is the only pass this Compiler performs: every other
	// candidate peephole (e.g. folding PushConstant runs) changes nothing
	// observable here because constant Script values never concatenate.
	PassConstantFold OptimizationPass = "constant-fold"
)

// OptimizeOption configures Optimize.
type OptimizeOption func(*optimizeConfig)

type optimizeConfig struct {
	enabled map[OptimizationPass]bool
}

func (c *optimizeConfig) isEnabled(pass OptimizationPass) bool {
	if c.enabled == nil {
		return true
	}
	v, ok := c.enabled[pass]
	if !ok {
		return true
	}
	return v
}

// WithOptimizationPass enables or disables pass explicitly; every pass
// defaults to enabled.
func WithOptimizationPass(pass OptimizationPass, enabled bool) OptimizeOption {
	return func(c *optimizeConfig) {
		if c.enabled == nil {
			c.enabled = make(map[OptimizationPass]bool)
		}
		c.enabled[pass] = enabled
	}
}

// Optimize returns a new Program equivalent to prog under every Result
// the executor could observe, with the enabled peephole passes applied.
// It never mutates prog.
func Optimize(prog *Program, opts ...OptimizeOption) *Program {
	cfg := &optimizeConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	out := &Program{
		Instructions: append([]Instruction(nil), prog.Instructions...),
		Constants:    append([]runtime.Value(nil), prog.Constants...),
	}

	if cfg.isEnabled(PassConstantFold) {
		out.Instructions = foldConstantStrings(out)
	}

	return out
}

// foldConstantStrings finds every run [PushLiteral x n, JoinStrings(n)]
// with no intervening instruction and replaces it with a single
// PushLiteral of the concatenated literal text. It never touches a run
// containing anything but PushLiteral before the JoinStrings, since any
// other opcode (RESOLVE_VALUE, SELECT_*, ...) means the word is not a
// compile-time-constant Compound.
func foldConstantStrings(prog *Program) []Instruction {
	out := make([]Instruction, 0, len(prog.Instructions))
	instrs := prog.Instructions

	i := 0
	for i < len(instrs) {
		instr := instrs[i]
		if instr.Op != JoinStrings {
			out = append(out, instr)
			i++
			continue
		}

		n := instr.Operand
		start := len(out) - n
		if n < 1 || start < 0 || !allPushLiteral(out[start:]) {
			out = append(out, instr)
			i++
			continue
		}

		var joined string
		for _, lit := range out[start:] {
			s, _ := prog.Constants[lit.Operand].(runtime.String)
			joined += string(s)
		}
		folded := Instruction{Op: PushLiteral, Operand: prog.addConstant(runtime.String(joined))}
		out = append(out[:start], folded)
		i++
	}

	return out
}

func allPushLiteral(instrs []Instruction) bool {
	for _, instr := range instrs {
		if instr.Op != PushLiteral {
			return false
		}
	}
	return true
}
