package runtime

// HelpOptions parameterises a Command's optional Help query (spec §4.8).
type HelpOptions struct {
	Prefix string
	Skip   int
}

// Command is the external plug-in boundary of spec §4.8. args[0] is always
// the command's own invocation name; ensembles use args[1] as the
// subcommand key. Execute is mandatory; Resume and Help are optional
// capabilities exposed via Resumer and Helper below, the way the teacher
// expresses optional method sets through small segregated interfaces
// rather than one fat interface every implementer must satisfy in full.
type Command interface {
	Execute(args []Value, ctx Context) Result
}

// Resumer is implemented by commands that can be suspended mid-execution
// (spec §4.6's resume protocol). Resume receives the frozen Result with its
// Value replaced by whatever was passed to Process.YieldBack.
type Resumer interface {
	Resume(result Result, ctx Context) Result
}

// Helper is implemented by commands that answer introspection queries and
// produce "wrong # args" messages at the correct nesting depth (spec
// §4.8).
type Helper interface {
	Help(args []Value, opts HelpOptions, ctx Context) Result
}

// Context is the narrow capability surface a Command sees: scope lookup
// and mutation, and command resolution, without exposing the executor's
// internal stack machinery. *scope.Scope implements Context directly;
// internal/vm type-asserts a Context back to *scope.Scope when it needs
// concrete access to build a nested frame for a deferred body, echoing the
// teacher's adapter_*.go pattern of bridging an abstract interface back to
// the concrete type the executor actually manipulates.
type Context interface {
	// ResolveVariable looks up name per the resolution order of spec §4.7
	// (locals -> constants -> variables -> parent, recursive).
	ResolveVariable(name string) (Value, bool)

	// SetVariable assigns to an existing variable binding, walking the
	// parent chain; it does not create a new binding.
	SetVariable(name string, v Value) error

	// DefineVariable creates or overwrites a variable binding in the
	// current scope.
	DefineVariable(name string, v Value)

	// DefineConstant creates a constant binding in the current scope; it
	// fails if a variable of the same name already exists there.
	DefineConstant(name string, v Value) error

	// ResolveCommand looks up a command by name, local scope first then
	// parent (spec §4.7).
	ResolveCommand(name string) (Command, bool)

	// DefineCommand registers cmd under name in the current scope.
	DefineCommand(name string, cmd Command)

	// Child returns a new Context for a nested lexical scope whose parent
	// is the receiver.
	Child() Context

	// WithLocals returns a Context installing locals as an overlay for the
	// duration of one call (spec §3.3 "Local").
	WithLocals(locals map[string]Value) Context
}
