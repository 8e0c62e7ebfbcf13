package vm

import (
	"fmt"
	"io"
	"strings"

	"github.com/mekotech/loom/internal/bytecode"
	"github.com/mekotech/loom/internal/errcat"
	"github.com/mekotech/loom/internal/runtime"
	"github.com/mekotech/loom/internal/scope"
)

// Process is one stack of (Scope, Program, ProgramState) frames (spec
// §3.3/§4.6). A Process is single-shot per Program: construct one with
// NewProcess, call Run (optionally several times, across YieldBack calls,
// until the Result's Code is no longer YIELD).
type Process struct {
	frames []*frame

	// trace, when non-nil, receives one line per executed instruction
	// (an embedder-facing tracing facility, not part of spec §4 proper).
	trace io.Writer

	// suspendedCmd/suspendedCtx remember which Command (and which Context
	// it was invoked with) produced the last YIELD, so YieldBack can
	// locate the Resumer to call (spec §4.6's resume protocol).
	suspendedCmd runtime.Command
	suspendedCtx runtime.Context
	// suspendedData is the opaque Data of that YIELD Result, handed back
	// unchanged to Resume.
	suspendedData any
}

// NewProcess creates a Process ready to run prog against the top-level
// ctx.
func NewProcess(ctx runtime.Context, prog *bytecode.Program) *Process {
	p := &Process{}
	p.frames = []*frame{newFrame(ctx, prog)}
	return p
}

// WithTrace enables per-instruction tracing to w.
func (p *Process) WithTrace(w io.Writer) *Process {
	p.trace = w
	return p
}

// Run executes until the Program completes, an unrecoverable error
// occurs, or a command yields. A YIELD Result means the Process is
// suspended: the caller inspects Result.Value, does whatever work the
// yield represents, and resumes with YieldBack.
func (p *Process) Run() runtime.Result {
	for {
		if len(p.frames) == 0 {
			return runtime.Ok(runtime.Nil{})
		}
		f := p.frames[len(p.frames)-1]

		if f.done() {
			result := f.lastResult
			p.frames = p.frames[:len(p.frames)-1]
			if f.translate != nil {
				result = f.translate(result)
			}
			if len(p.frames) == 0 {
				return boundaryResult(result)
			}
			parent := p.frames[len(p.frames)-1]
			if result.Code == runtime.OK {
				parent.push(result.Value)
			} else {
				parent.lastResult = result
				parent.ip = len(parent.prog.Instructions)
			}
			continue
		}

		instr := f.prog.Instructions[f.ip]
		f.ip++
		p.traceInstr(f, instr)

		if suspended, result := p.step(f, instr); suspended {
			return result
		}
	}
}

// boundaryResult converts a Result crossing the process boundary — the
// outermost frame closing with a Code that names something only a
// surrounding construct (a loop, a namespace/proc body, a command's own
// Resume) could make sense of — into the canonical ERROR Result spec §7
// names for it. OK and ERROR pass through unchanged. YIELD cannot
// actually reach this path (a YIELD suspends immediately via
// handleInvokeResult, returning before any frame closes), but is handled
// here too so the translation table matches spec §7's list exactly and
// stays correct if that ever changes.
func boundaryResult(result runtime.Result) runtime.Result {
	switch result.Code {
	case runtime.RETURN:
		return runtime.Err(errcat.UnexpectedReturn())
	case runtime.YIELD:
		return runtime.Err(errcat.UnexpectedYield())
	case runtime.BREAK:
		return runtime.Err(errcat.UnexpectedBreak())
	case runtime.CONTINUE:
		return runtime.Err(errcat.UnexpectedContinue())
	case runtime.PASS:
		return runtime.Err(errcat.UnexpectedPass())
	default:
		return result
	}
}

// YieldBack resumes a suspended Process, handing v to the Resumer that
// produced the last YIELD, and continues running.
func (p *Process) YieldBack(v runtime.Value) runtime.Result {
	if p.suspendedCmd == nil {
		return runtime.Err("process is not suspended")
	}
	cmd, ctx, data := p.suspendedCmd, p.suspendedCtx, p.suspendedData
	p.suspendedCmd, p.suspendedCtx, p.suspendedData = nil, nil, nil

	resumer, ok := cmd.(runtime.Resumer)
	if !ok {
		return runtime.Err("command does not support resume")
	}
	result := resumer.Resume(runtime.Result{Code: runtime.YIELD, Value: v, Data: data}, ctx)

	f := p.frames[len(p.frames)-1]
	if suspended, out := p.handleInvokeResult(f, cmd, ctx, result); suspended {
		return out
	}
	return p.Run()
}

func (p *Process) traceInstr(f *frame, instr bytecode.Instruction) {
	if p.trace == nil {
		return
	}
	fmt.Fprintf(p.trace, "[%d] %s\n", len(p.frames)-1, instr.Op)
}

// step executes one instruction against f, returning (true, result) if it
// suspended the Process (a YIELD).
func (p *Process) step(f *frame, instr bytecode.Instruction) (bool, runtime.Result) {
	switch instr.Op {
	case bytecode.PushNil:
		f.push(runtime.Nil{})

	case bytecode.PushConstant, bytecode.PushLiteral:
		f.push(f.prog.Constants[instr.Operand])

	case bytecode.OpenFrame:
		f.openFrame()

	case bytecode.CloseFrameAsTuple:
		f.push(runtime.NewTuple(f.closeFrame()...))

	case bytecode.CloseFrameAsList:
		f.push(runtime.NewList(f.closeFrame()...))

	case bytecode.ResolveValue:
		name := f.pop()
		resolved, err := scope.ResolveName(f.ctx, name)
		if err != nil {
			return p.abort(f, err)
		}
		f.push(resolved)

	case bytecode.ExpandValue:
		v := f.pop()
		if tup, ok := v.(*runtime.Tuple); ok {
			for _, e := range tup.Elements {
				f.push(e)
			}
		} else {
			f.push(v)
		}

	case bytecode.SetSource:
		// No-op: this Compiler does not currently tag values with source
		// positions (see internal/bytecode's compiler); the opcode is kept
		// for spec completeness and future use by error reporting.

	case bytecode.SelectIndex:
		idx := f.pop()
		v := f.pop()
		sel, err := runtime.NewIndexedSelector(idx)
		if err != nil {
			return p.abort(f, err)
		}
		result, err := sel.Apply(v)
		if err != nil {
			return p.abort(f, err)
		}
		f.push(result)

	case bytecode.SelectKeys:
		keys := selectorOperands(f.pop())
		v := f.pop()
		sel, err := runtime.NewKeyedSelector(keys)
		if err != nil {
			return p.abort(f, err)
		}
		result, err := sel.Apply(v)
		if err != nil {
			return p.abort(f, err)
		}
		f.push(result)

	case bytecode.SelectRules:
		rules := selectorOperands(f.pop())
		v := f.pop()
		sel, err := runtime.NewGenericSelector(rules)
		if err != nil {
			return p.abort(f, err)
		}
		result, err := sel.Apply(v)
		if err != nil {
			return p.abort(f, err)
		}
		f.push(result)

	case bytecode.EvaluateSentence:
		tup, _ := f.pop().(*runtime.Tuple)
		result, cmd, ctx := p.invokeSentence(f, tup)
		return p.handleInvokeResult(f, cmd, ctx, result)

	case bytecode.PushResult:
		f.lastResult = runtime.Ok(f.pop())

	case bytecode.JoinStrings:
		n := instr.Operand
		parts := make([]string, n)
		for i := n - 1; i >= 0; i-- {
			s, err := f.pop().String()
			if err != nil {
				return p.abort(f, err)
			}
			parts[i] = s
		}
		f.push(runtime.String(strings.Join(parts, "")))

	case bytecode.PopDiscard:
		f.pop()

	case bytecode.MakeQualified:
		f.push(runtime.NewQualifiedValue(f.pop()))

	case bytecode.AppendIndexedSelector:
		idx := f.pop()
		q, ok := f.pop().(*runtime.QualifiedValue)
		if !ok {
			return p.abort(f, fmt.Errorf("APPEND_INDEXED_SELECTOR: operand is not a qualified value"))
		}
		sel, err := runtime.NewIndexedSelector(idx)
		if err != nil {
			return p.abort(f, err)
		}
		f.push(q.WithSelector(sel))

	case bytecode.AppendKeyedSelector:
		keys := selectorOperands(f.pop())
		q, ok := f.pop().(*runtime.QualifiedValue)
		if !ok {
			return p.abort(f, fmt.Errorf("APPEND_KEYED_SELECTOR: operand is not a qualified value"))
		}
		sel, err := runtime.NewKeyedSelector(keys)
		if err != nil {
			return p.abort(f, err)
		}
		f.push(q.WithSelector(sel))

	case bytecode.AppendGenericSelector:
		rules := selectorOperands(f.pop())
		q, ok := f.pop().(*runtime.QualifiedValue)
		if !ok {
			return p.abort(f, fmt.Errorf("APPEND_GENERIC_SELECTOR: operand is not a qualified value"))
		}
		sel, err := runtime.NewGenericSelector(rules)
		if err != nil {
			return p.abort(f, err)
		}
		f.push(q.WithSelector(sel))
	}
	return false, runtime.Result{}
}

// selectorOperands extracts the element slice from a Tuple or List
// selector operand (SELECT_KEYS expects a Tuple; SELECT_RULES a List).
func selectorOperands(v runtime.Value) []runtime.Value {
	switch op := v.(type) {
	case *runtime.Tuple:
		return op.Elements
	case *runtime.List:
		return op.Elements
	default:
		return []runtime.Value{op}
	}
}

// abort turns a Go error from a selector/resolution opcode into an ERROR
// Result for the current frame, closing it the same way a command's own
// ERROR Result would (see the done() branch in Run).
func (p *Process) abort(f *frame, err error) (bool, runtime.Result) {
	f.lastResult = runtime.Err(err.Error())
	f.ip = len(f.prog.Instructions)
	return false, runtime.Result{}
}

// invokeSentence performs the EVALUATE_SENTENCE call protocol (spec §4.6):
// a numeric head resolves to the implicit "number" identity command, a
// CommandValue head unwraps to its carried Command directly, and any other
// head resolves its string form to a name looked up in ctx.
func (p *Process) invokeSentence(f *frame, tup *runtime.Tuple) (runtime.Result, runtime.Command, runtime.Context) {
	args := tup.Elements
	if len(args) == 0 {
		return runtime.Err("empty command invocation"), nil, nil
	}
	head := args[0]

	switch h := head.(type) {
	case runtime.Integer, runtime.Real:
		if len(args) != 1 {
			return runtime.Err(errcat.WrongArgs("number")), nil, nil
		}
		return runtime.Ok(head), nil, nil

	case *runtime.CommandValue:
		return h.Command.Execute(args, f.ctx), h.Command, f.ctx

	default:
		name, err := head.String()
		if err != nil {
			return runtime.Err(errcat.InvalidCommandName(head.Type())), nil, nil
		}
		cmd, ok := f.ctx.ResolveCommand(name)
		if !ok {
			return runtime.Err(errcat.CannotResolveCommand(name)), nil, nil
		}
		return cmd.Execute(args, f.ctx), cmd, f.ctx
	}
}

// handleInvokeResult applies the dispositions a command's Result can
// demand: YIELD suspends the Process; an OK Result carrying a
// runtime.Deferred either pushes a new frame to run a Script body or, for
// a Tuple body, invokes it directly as a single sentence (spec §4.6); any
// other OK pushes the value; anything else aborts the current frame so it
// propagates like a non-OK EVALUATE_SENTENCE result.
func (p *Process) handleInvokeResult(f *frame, cmd runtime.Command, ctx runtime.Context, result runtime.Result) (bool, runtime.Result) {
	switch result.Code {
	case runtime.YIELD:
		p.suspendedCmd = cmd
		p.suspendedCtx = ctx
		p.suspendedData = result.Data
		return true, result

	case runtime.OK:
		if deferred, ok := result.Value.(*runtime.Deferred); ok {
			return p.dispatchDeferred(f, deferred)
		}
		f.push(result.Value)
		return false, runtime.Result{}

	default:
		f.lastResult = result
		f.ip = len(f.prog.Instructions)
		return false, runtime.Result{}
	}
}

// dispatchDeferred runs d's body. A Script body is compiled fresh and
// pushed as a new frame under d.Ctx, wiring d.Translate so the frame's
// terminal Result is rewritten before it reaches f. A Tuple body names an
// already-built invocation (its elements are the words of one sentence)
// rather than a parsed script, so it is invoked directly through the same
// invokeSentence/handleInvokeResult path EVALUATE_SENTENCE uses, letting a
// Tuple body's own YIELD suspend the Process correctly.
func (p *Process) dispatchDeferred(f *frame, d *runtime.Deferred) (bool, runtime.Result) {
	switch body := d.Body.(type) {
	case *runtime.Script:
		compiled, err := bytecode.Compile(body.Tree)
		if err != nil {
			return p.abort(f, err)
		}
		nf := newFrame(d.Ctx, compiled)
		nf.translate = d.Translate
		p.frames = append(p.frames, nf)
		return false, runtime.Result{}

	case *runtime.Tuple:
		childFrame := &frame{ctx: d.Ctx}
		result, cmd, ctx := p.invokeSentence(childFrame, body)
		if d.Translate != nil {
			result = d.Translate(result)
		}
		return p.handleInvokeResult(f, cmd, ctx, result)

	default:
		return p.abort(f, fmt.Errorf("invalid deferred body %T", d.Body))
	}
}
