// Package vm implements the Executor of spec §4.6: a stack machine that
// runs an internal/bytecode Program against a runtime.Context, carrying
// out the EVALUATE_SENTENCE call protocol (command resolution, the
// numeric and command-bearing head special cases), the deferred-body
// frame mechanism, and the cooperative yield/resume trampoline.
//
// The frame/ip/operand-stack shape and the fall-off-the-end-means-done
// convention are grounded on the teacher's internal/bytecode VM
// (vm.go/vm_exec.go): a slice of call frames, each with its own
// instruction pointer, executed by one dispatch loop until the frame
// stack empties.
package vm

import (
	"github.com/mekotech/loom/internal/bytecode"
	"github.com/mekotech/loom/internal/runtime"
)

// frame is one (Scope, Program, ProgramState) triple of spec §4.6: ctx is
// the lexical Scope (through the narrow runtime.Context view), prog/ip
// track execution position, stack is the operand stack, and marks is the
// frame-mark stack OPEN_FRAME/CLOSE_FRAME_AS_* operate on.
type frame struct {
	ctx    runtime.Context
	prog   *bytecode.Program
	ip     int
	stack  []runtime.Value
	marks  []int

	lastResult runtime.Result

	// translate rewrites this frame's terminal Result before it is
	// delivered to the parent frame — set only for a frame pushed to run
	// a runtime.Deferred body (spec §4.6).
	translate func(runtime.Result) runtime.Result
}

func newFrame(ctx runtime.Context, prog *bytecode.Program) *frame {
	return &frame{ctx: ctx, prog: prog, lastResult: runtime.Ok(runtime.Nil{})}
}

func (f *frame) push(v runtime.Value) { f.stack = append(f.stack, v) }

func (f *frame) pop() runtime.Value {
	n := len(f.stack)
	v := f.stack[n-1]
	f.stack = f.stack[:n-1]
	return v
}

func (f *frame) openFrame() { f.marks = append(f.marks, len(f.stack)) }

// closeFrame pops the innermost mark and returns every value pushed since
// it, removing them from the operand stack.
func (f *frame) closeFrame() []runtime.Value {
	n := len(f.marks)
	mark := f.marks[n-1]
	f.marks = f.marks[:n-1]
	elems := append([]runtime.Value(nil), f.stack[mark:]...)
	f.stack = f.stack[:mark]
	return elems
}

// done reports whether every instruction in prog has executed.
func (f *frame) done() bool { return f.ip >= len(f.prog.Instructions) }
