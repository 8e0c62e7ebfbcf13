package vm

import (
	"testing"

	"github.com/mekotech/loom/internal/bytecode"
	"github.com/mekotech/loom/internal/parser"
	"github.com/mekotech/loom/internal/runtime"
	"github.com/mekotech/loom/internal/scope"
)

func mustCompile(t *testing.T, src string) *bytecode.Program {
	t.Helper()
	script, err := parser.New(src).ParseScript()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	prog, err := bytecode.Compile(script)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	return prog
}

// echoCommand returns Ok(args[1]) when given exactly two arguments, and
// otherwise a wrong-args error; it stands in for a production builtin.
type echoCommand struct{}

func (echoCommand) Execute(args []runtime.Value, ctx runtime.Context) runtime.Result {
	if len(args) != 2 {
		return runtime.Err("wrong # args: should be \"echo value\"")
	}
	return runtime.Ok(args[1])
}

// failCommand always errors, used to exercise error propagation.
type failCommand struct{ msg string }

func (f failCommand) Execute(args []runtime.Value, ctx runtime.Context) runtime.Result {
	return runtime.Err(f.msg)
}

// yieldingCommand yields once with its single argument, then on resume
// returns the value handed back through YieldBack.
type yieldingCommand struct{}

func (yieldingCommand) Execute(args []runtime.Value, ctx runtime.Context) runtime.Result {
	return runtime.Yield(args[1], nil)
}

func (yieldingCommand) Resume(result runtime.Result, ctx runtime.Context) runtime.Result {
	return runtime.Ok(result.Value)
}

// deferringCommand returns a Deferred wrapping a freshly-built Script
// body, the way a control-flow command like "if" would hand off to a
// nested frame rather than running the body itself.
type deferringCommand struct {
	body *runtime.Script
	ctx  runtime.Context
}

func (d deferringCommand) Execute(args []runtime.Value, ctx runtime.Context) runtime.Result {
	return runtime.Ok(runtime.NewDeferred(d.body, d.ctx))
}

// codeCommand always returns a Result of a fixed Code, used to exercise
// what happens when RETURN/BREAK/CONTINUE/PASS reach the process
// boundary unhandled.
type codeCommand struct{ code runtime.Code }

func (c codeCommand) Execute(args []runtime.Value, ctx runtime.Context) runtime.Result {
	return runtime.Result{Code: c.code, Value: runtime.Nil{}}
}

func newTestScope() *scope.Scope { return scope.New() }

func TestRunDispatchesSimpleCommand(t *testing.T) {
	sc := newTestScope()
	sc.DefineCommand("echo", echoCommand{})

	prog := mustCompile(t, `echo hello`)
	result := NewProcess(sc, prog).Run()

	if result.Code != runtime.OK {
		t.Fatalf("Code = %v, want OK", result.Code)
	}
	s, err := result.Value.String()
	if err != nil || s != "hello" {
		t.Fatalf("Value = %v (%v), want %q", result.Value, err, "hello")
	}
}

func TestRunResolvesVariable(t *testing.T) {
	sc := newTestScope()
	sc.DefineVariable("name", runtime.String("world"))
	sc.DefineCommand("echo", echoCommand{})

	prog := mustCompile(t, `echo $name`)
	result := NewProcess(sc, prog).Run()

	if result.Code != runtime.OK {
		t.Fatalf("Code = %v, want OK", result.Code)
	}
	s, _ := result.Value.String()
	if s != "world" {
		t.Fatalf("Value = %q, want %q", s, "world")
	}
}

func TestRunPropagatesCommandError(t *testing.T) {
	sc := newTestScope()
	sc.DefineCommand("boom", failCommand{msg: "kaboom"})

	prog := mustCompile(t, `boom`)
	result := NewProcess(sc, prog).Run()

	if result.Code != runtime.ERROR {
		t.Fatalf("Code = %v, want ERROR", result.Code)
	}
	s, _ := result.Value.String()
	if s != "kaboom" {
		t.Fatalf("Value = %q, want %q", s, "kaboom")
	}
}

func TestRunReportsUnresolvedCommand(t *testing.T) {
	sc := newTestScope()

	prog := mustCompile(t, `nosuchcommand 1 2`)
	result := NewProcess(sc, prog).Run()

	if result.Code != runtime.ERROR {
		t.Fatalf("Code = %v, want ERROR", result.Code)
	}
}

func TestRunSuspendsOnYieldAndResumes(t *testing.T) {
	sc := newTestScope()
	sc.DefineCommand("pause", yieldingCommand{})

	prog := mustCompile(t, `pause hello`)
	proc := NewProcess(sc, prog)

	result := proc.Run()
	if result.Code != runtime.YIELD {
		t.Fatalf("Code = %v, want YIELD", result.Code)
	}
	s, _ := result.Value.String()
	if s != "hello" {
		t.Fatalf("Yield value = %q, want %q", s, "hello")
	}

	final := proc.YieldBack(runtime.String("resumed"))
	if final.Code != runtime.OK {
		t.Fatalf("final Code = %v, want OK", final.Code)
	}
	s, _ = final.Value.String()
	if s != "resumed" {
		t.Fatalf("final Value = %q, want %q", s, "resumed")
	}
}

func TestRunPushesDeferredScriptBody(t *testing.T) {
	bodyScript, err := parser.New(`echo inner`).ParseScript()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	sc := newTestScope()
	sc.DefineCommand("echo", echoCommand{})
	sc.DefineCommand("defer", deferringCommand{
		body: runtime.NewScript(bodyScript, "echo inner"),
		ctx:  sc,
	})

	prog := mustCompile(t, `defer`)
	result := NewProcess(sc, prog).Run()

	if result.Code != runtime.OK {
		t.Fatalf("Code = %v, want OK", result.Code)
	}
	s, _ := result.Value.String()
	if s != "inner" {
		t.Fatalf("Value = %q, want %q", s, "inner")
	}
}

func TestRunAppliesDeferredTranslate(t *testing.T) {
	bodyScript, err := parser.New(`boom`).ParseScript()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	sc := newTestScope()
	sc.DefineCommand("boom", failCommand{msg: "inner failure"})

	deferred := runtime.NewDeferred(runtime.NewScript(bodyScript, "boom"), sc)
	deferred.Translate = func(r runtime.Result) runtime.Result {
		if r.Code == runtime.ERROR {
			return runtime.Ok(runtime.String("swallowed"))
		}
		return r
	}
	sc.DefineCommand("defer", constDeferCommand{deferred})

	prog := mustCompile(t, `defer`)
	result := NewProcess(sc, prog).Run()

	if result.Code != runtime.OK {
		t.Fatalf("Code = %v, want OK", result.Code)
	}
	s, _ := result.Value.String()
	if s != "swallowed" {
		t.Fatalf("Value = %q, want %q", s, "swallowed")
	}
}

// constDeferCommand always returns the same pre-built Deferred, letting a
// test wire up its Translate hook directly.
type constDeferCommand struct{ deferred *runtime.Deferred }

func (c constDeferCommand) Execute(args []runtime.Value, ctx runtime.Context) runtime.Result {
	return runtime.Ok(c.deferred)
}

// TestRunConvertsUnhandledCodesToErrorAtBoundary exercises spec §7/§8's
// testable property 6: RETURN/BREAK/CONTINUE/PASS produced with nothing
// in the frame stack left to interpret them become ERROR with the
// canonical "unexpected ..." message once they reach the process
// boundary.
func TestRunConvertsUnhandledCodesToErrorAtBoundary(t *testing.T) {
	cases := []struct {
		name string
		code runtime.Code
		want string
	}{
		{"return", runtime.RETURN, "unexpected return"},
		{"break", runtime.BREAK, "unexpected break"},
		{"continue", runtime.CONTINUE, "unexpected continue"},
		{"pass", runtime.PASS, "unexpected pass"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			sc := newTestScope()
			sc.DefineCommand("signal", codeCommand{code: c.code})

			prog := mustCompile(t, `signal`)
			result := NewProcess(sc, prog).Run()

			if result.Code != runtime.ERROR {
				t.Fatalf("Code = %v, want ERROR", result.Code)
			}
			s, _ := result.Value.String()
			if s != c.want {
				t.Fatalf("Value = %q, want %q", s, c.want)
			}
		})
	}
}

// TestRunBuildsQualifiedValueForQualifiedWord exercises the Qualified
// word's compilation: "arr(0)" must hand the command a *runtime.
// QualifiedValue carrying the resolved source and an IndexedSelector, not
// an already-dereferenced element — spec §3.2/§4.3.
func TestRunBuildsQualifiedValueForQualifiedWord(t *testing.T) {
	sc := newTestScope()
	sc.DefineVariable("arr", runtime.NewList(runtime.String("a"), runtime.String("b")))

	var captured runtime.Value
	sc.DefineCommand("capture", commandFunc(func(args []runtime.Value, ctx runtime.Context) runtime.Result {
		captured = args[1]
		return runtime.Ok(runtime.Nil{})
	}))

	prog := mustCompile(t, `capture arr(0)`)
	result := NewProcess(sc, prog).Run()
	if result.Code != runtime.OK {
		t.Fatalf("Code = %v, want OK", result.Code)
	}

	q, ok := captured.(*runtime.QualifiedValue)
	if !ok {
		t.Fatalf("captured argument = %T, want *runtime.QualifiedValue", captured)
	}
	resolved, err := q.Resolve(q.Source)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	s, _ := resolved.String()
	if s != "a" {
		t.Fatalf("Resolve() = %q, want %q", s, "a")
	}
}

// TestRunCoalescesKeyedSelectorsOnQualifiedValue exercises spec §8.3:
// "d(a)(b)" builds one QualifiedValue whose trailing KeyedSelectors are
// merged into a single multi-key selector rather than kept as two.
func TestRunCoalescesKeyedSelectorsOnQualifiedValue(t *testing.T) {
	sc := newTestScope()
	inner := runtime.NewDictionary()
	inner.Set("b", runtime.String("deep"))
	outer := runtime.NewDictionary()
	outer.Set("a", inner)
	sc.DefineVariable("d", outer)

	var captured runtime.Value
	sc.DefineCommand("capture", commandFunc(func(args []runtime.Value, ctx runtime.Context) runtime.Result {
		captured = args[1]
		return runtime.Ok(runtime.Nil{})
	}))

	prog := mustCompile(t, `capture d{a}{b}`)
	result := NewProcess(sc, prog).Run()
	if result.Code != runtime.OK {
		t.Fatalf("Code = %v, want OK", result.Code)
	}

	q, ok := captured.(*runtime.QualifiedValue)
	if !ok {
		t.Fatalf("captured argument = %T, want *runtime.QualifiedValue", captured)
	}
	if len(q.Selectors) != 1 {
		t.Fatalf("len(Selectors) = %d, want 1 (coalesced)", len(q.Selectors))
	}
	if _, ok := q.Selectors[0].(*runtime.KeyedSelector); !ok {
		t.Fatalf("Selectors[0] = %T, want *runtime.KeyedSelector", q.Selectors[0])
	}

	resolved, err := q.Resolve(q.Source)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	s, _ := resolved.String()
	if s != "deep" {
		t.Fatalf("Resolve() = %q, want %q", s, "deep")
	}
}

// commandFunc adapts a plain function to runtime.Command, mirroring
// pkg/command.Func for this package's own fixtures.
type commandFunc func(args []runtime.Value, ctx runtime.Context) runtime.Result

func (f commandFunc) Execute(args []runtime.Value, ctx runtime.Context) runtime.Result {
	return f(args, ctx)
}
