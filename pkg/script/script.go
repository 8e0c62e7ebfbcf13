// Package script is the embedding API of spec §6.2: the surface a host
// program links against to register commands, parse source, and run or
// step a script. Grounded on the New/Compile/Program.AST() shape observed
// in the teacher's pkg/dwscript (integration_test.go), adapted from that
// package's Pascal-family compile pipeline to this engine's
// parse-then-compile-then-execute pipeline.
package script

import (
	"io"

	"github.com/mekotech/loom/internal/ast"
	"github.com/mekotech/loom/internal/bytecode"
	"github.com/mekotech/loom/internal/errcat"
	"github.com/mekotech/loom/internal/parser"
	"github.com/mekotech/loom/internal/runtime"
	"github.com/mekotech/loom/internal/scope"
	"github.com/mekotech/loom/internal/vm"
	"github.com/mekotech/loom/pkg/command"
)

// Option configures an Engine, the same functional-options shape as the
// teacher's dwscript.WithTypeCheck/WithTracing.
type Option func(*Engine)

// WithTrace enables per-instruction VM tracing to w on every Process this
// Engine prepares, grounded on the teacher's Lexer tracing option (spec
// §A.2's ambient choice to expose an io.Writer rather than a logging
// framework).
func WithTrace(w io.Writer) Option {
	return func(e *Engine) { e.trace = w }
}

// WithOptimization enables or disables a named internal/bytecode pass on
// every Program this Engine compiles. All passes default to enabled.
func WithOptimization(pass bytecode.OptimizationPass, enabled bool) Option {
	return func(e *Engine) {
		e.optimize = append(e.optimize, bytecode.WithOptimizationPass(pass, enabled))
	}
}

// Engine owns the root Scope commands are registered into and the
// compilation options new Programs are built with.
type Engine struct {
	root     *scope.Scope
	trace    io.Writer
	optimize []bytecode.OptimizeOption
}

// NewEngine creates an Engine with an empty root scope.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{root: scope.New()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register binds cmd under name in the root scope, visible to every
// script this Engine parses or runs.
func (e *Engine) Register(name string, cmd command.Command) {
	e.root.DefineCommand(name, cmd)
}

// DefineVariable binds v under name in the root scope.
func (e *Engine) DefineVariable(name string, v runtime.Value) {
	e.root.DefineVariable(name, v)
}

// Parse turns src into a Script tree (spec §4.1-4.3).
func (e *Engine) Parse(src string) (*ast.Script, error) {
	return parser.New(src).ParseScript()
}

// Compile lowers tree into a Program (spec §4.5).
func (e *Engine) Compile(tree *ast.Script) (*bytecode.Program, error) {
	prog, err := bytecode.Compile(tree)
	if err != nil {
		return nil, err
	}
	return bytecode.Optimize(prog, e.optimize...), nil
}

// PrepareScript compiles tree and returns a Process ready to Run, for a
// host that needs to drive yield/resume itself rather than block until
// completion.
func (e *Engine) PrepareScript(tree *ast.Script) (*vm.Process, error) {
	prog, err := e.Compile(tree)
	if err != nil {
		return nil, err
	}
	proc := vm.NewProcess(e.root, prog)
	if e.trace != nil {
		proc.WithTrace(e.trace)
	}
	return proc, nil
}

// ExecuteScript compiles and runs tree to completion against the Engine's
// root scope. internal/vm.Process.Run already converts an unhandled
// RETURN/BREAK/CONTINUE/PASS reaching the process boundary into the
// canonical ERROR ("unexpected ...") Result spec §7 names; this method
// adds the one conversion Run cannot make itself — a genuine top-level
// YIELD, which Run reports as a legitimate suspension (frames stay live,
// ready for YieldBack) rather than a boundary crossing. ExecuteScript
// promises to run to completion with no interactive resume, so a caller
// that hits this path has no Resumer waiting and the suspension is
// itself the error.
func (e *Engine) ExecuteScript(tree *ast.Script) (command.Result, error) {
	proc, err := e.PrepareScript(tree)
	if err != nil {
		return command.Result{}, err
	}
	result := proc.Run()
	if result.Code == runtime.YIELD {
		return runtime.Err(errcat.UnexpectedYield()), nil
	}
	return result, nil
}

// Eval parses and runs src in one call, the common case for a host with no
// need to inspect the compiled Program or a Script tree.
func (e *Engine) Eval(src string) (command.Result, error) {
	tree, err := e.Parse(src)
	if err != nil {
		return command.Result{}, err
	}
	return e.ExecuteScript(tree)
}
