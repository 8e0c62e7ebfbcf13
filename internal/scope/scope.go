// Package scope implements the lexical Scope tree of spec §3.3/§4.7: three
// name spaces (variables, constants, commands) plus an optional parent and
// an optional locals overlay, with the resolution order locals -> constants
// -> variables -> parent.
//
// The map/parent/Get/Set/Define shape is generalized directly from the
// teacher's internal/interp/runtime/environment.go, which does the same
// thing for one name space (variables); this package triples that shape
// for the three name spaces spec §3.3 requires and adds the locals
// overlay spec §3.3 names.
package scope

import (
	"github.com/mekotech/loom/internal/errcat"
	"github.com/mekotech/loom/internal/runtime"
)

// Scope holds the three maps and a parent pointer (nil at the root). It
// implements runtime.Context directly: a Command sees a *Scope through
// that narrow interface, and internal/vm type-asserts a runtime.Context
// back to *Scope when it needs to build a nested execution frame for a
// deferred body, the same way the teacher's adapter_*.go files bridge an
// abstract interface back to the concrete type the executor manipulates.
type Scope struct {
	parent    *Scope
	variables map[string]runtime.Value
	constants map[string]runtime.Value
	commands  map[string]runtime.Command
	locals    map[string]runtime.Value
}

// New creates a root scope with no parent.
func New() *Scope {
	return &Scope{
		variables: make(map[string]runtime.Value),
		constants: make(map[string]runtime.Value),
		commands:  make(map[string]runtime.Command),
	}
}

// NewChild creates a scope whose parent is s.
func NewChild(parent *Scope) *Scope {
	child := New()
	child.parent = parent
	return child
}

// ResolveVariable implements runtime.Context.
func (s *Scope) ResolveVariable(name string) (runtime.Value, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.locals != nil {
			if v, ok := cur.locals[name]; ok {
				return v, true
			}
		}
		if v, ok := cur.constants[name]; ok {
			return v, true
		}
		if v, ok := cur.variables[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// SetVariable implements runtime.Context: it assigns to an existing
// variable binding found by walking the parent chain, failing if none
// exists or if name is bound as a constant/local.
func (s *Scope) SetVariable(name string, v runtime.Value) error {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.locals != nil {
			if _, ok := cur.locals[name]; ok {
				return errRedefineLocal(name)
			}
		}
		if _, ok := cur.constants[name]; ok {
			return errRedefineConstant(name)
		}
		if _, ok := cur.variables[name]; ok {
			cur.variables[name] = v
			return nil
		}
	}
	return errCannotResolve(name)
}

// DefineVariable implements runtime.Context.
func (s *Scope) DefineVariable(name string, v runtime.Value) {
	s.variables[name] = v
}

// DefineConstant implements runtime.Context.
func (s *Scope) DefineConstant(name string, v runtime.Value) error {
	if _, ok := s.variables[name]; ok {
		return errDefineConstant(name)
	}
	s.constants[name] = v
	return nil
}

// ResolveCommand implements runtime.Context: local scope first, then
// parent (spec §4.7).
func (s *Scope) ResolveCommand(name string) (runtime.Command, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if cmd, ok := cur.commands[name]; ok {
			return cmd, true
		}
	}
	return nil, false
}

// DefineCommand implements runtime.Context.
func (s *Scope) DefineCommand(name string, cmd runtime.Command) {
	s.commands[name] = cmd
}

// Child implements runtime.Context.
func (s *Scope) Child() runtime.Context {
	return NewChild(s)
}

// WithLocals implements runtime.Context: it returns a new Scope sharing
// this scope's maps but installing locals as an overlay, scoped to the
// duration of one call. The overlay is a new Scope frame (not a mutation
// of s) so the locals disappear once the caller discards the returned
// Context.
func (s *Scope) WithLocals(locals map[string]runtime.Value) runtime.Context {
	return &Scope{
		parent:    s.parent,
		variables: s.variables,
		constants: s.constants,
		commands:  s.commands,
		locals:    locals,
	}
}

func errCannotResolve(name string) error {
	return &Error{Msg: errcat.CannotResolveVariable(name)}
}

func errRedefineConstant(name string) error {
	return &Error{Msg: errcat.CannotRedefineConstant(name)}
}

func errDefineConstant(name string) error {
	return &Error{Msg: errcat.CannotDefineConstant(name)}
}

func errRedefineLocal(name string) error {
	return &Error{Msg: "cannot redefine local " + name}
}

// Error is a resolution failure. Its message matches one of spec §4.7's
// canonical strings so callers can surface it directly as a Result{ERROR}.
type Error struct{ Msg string }

func (e *Error) Error() string { return e.Msg }
