// Package command re-exports the Command ABI of spec §4.8/§6.1 for host
// code that implements built-in commands against this engine, plus a set
// of argument-conversion helpers grounded on the teacher's
// internal/interp/external_functions.go and marshal.go typed-conversion
// boundary — the same role those files play for the teacher's reflection-
// based Go-function wrapping, simplified here to direct runtime.Value
// conversions since spec §4.8's Command ABI is already typed in terms of
// []Value, with no Go-function-signature reflection to bridge.
package command

import (
	"github.com/mekotech/loom/internal/errcat"
	"github.com/mekotech/loom/internal/runtime"
)

// Command, Resumer, Helper, Context, Result, Code and HelpOptions are the
// plug-in boundary a concrete built-in command library is written against
// (spec §1's "external collaborator"); re-exported here so host code never
// has to import internal/runtime directly.
type (
	Command     = runtime.Command
	Resumer     = runtime.Resumer
	Helper      = runtime.Helper
	Context     = runtime.Context
	Result      = runtime.Result
	Code        = runtime.Code
	HelpOptions = runtime.HelpOptions
	Value       = runtime.Value
)

const (
	OK       = runtime.OK
	RETURN   = runtime.RETURN
	YIELD    = runtime.YIELD
	ERROR    = runtime.ERROR
	BREAK    = runtime.BREAK
	CONTINUE = runtime.CONTINUE
	PASS     = runtime.PASS
)

// Ok, Err and Yield build a Result the way a command's Execute returns one.
func Ok(v Value) Result              { return runtime.Ok(v) }
func Err(msg string) Result          { return runtime.Err(msg) }
func Yield(v Value, data any) Result { return runtime.Yield(v, data) }

// Func adapts a plain function into a Command, the way the teacher's
// ExternalFunctionWrapper adapts a Go function value — without the
// reflection, since args are already typed runtime.Values here.
type Func func(args []Value, ctx Context) Result

func (f Func) Execute(args []Value, ctx Context) Result { return f(args, ctx) }

// Int converts v to an Integer argument, failing with a type-specific
// error if v is not one.
func Int(v Value) (int64, error) {
	i, ok := v.(runtime.Integer)
	if !ok {
		return 0, &ArgError{Msg: errcat.InvalidInteger(typeName(v))}
	}
	return int64(i), nil
}

// Real converts v to a Real argument, accepting an Integer as well (the
// common numeric-coercion case a "number" command needs).
func Real(v Value) (float64, error) {
	switch n := v.(type) {
	case runtime.Real:
		return float64(n), nil
	case runtime.Integer:
		return float64(n), nil
	default:
		return 0, &ArgError{Msg: errcat.InvalidNumber(typeName(v))}
	}
}

// Bool converts v to a Boolean argument.
func Bool(v Value) (bool, error) {
	b, ok := v.(runtime.Boolean)
	if !ok {
		return false, &ArgError{Msg: errcat.InvalidBoolean(typeName(v))}
	}
	return bool(b), nil
}

// Str converts v to its canonical string form, failing for a value with
// no string form (spec §3.2's invariant).
func Str(v Value) (string, error) {
	s, err := v.String()
	if err != nil {
		return "", &ArgError{Msg: err.Error()}
	}
	return s, nil
}

// ListOf converts v to a *List argument.
func ListOf(v Value) (*runtime.List, error) {
	l, ok := v.(*runtime.List)
	if !ok {
		return nil, &ArgError{Msg: "expected a list, got " + typeName(v)}
	}
	return l, nil
}

// DictOf converts v to a *Dictionary argument.
func DictOf(v Value) (*runtime.Dictionary, error) {
	d, ok := v.(*runtime.Dictionary)
	if !ok {
		return nil, &ArgError{Msg: "expected a dict, got " + typeName(v)}
	}
	return d, nil
}

// TupleOf converts v to a *Tuple argument.
func TupleOf(v Value) (*runtime.Tuple, error) {
	t, ok := v.(*runtime.Tuple)
	if !ok {
		return nil, &ArgError{Msg: "expected a tuple, got " + typeName(v)}
	}
	return t, nil
}

func typeName(v Value) string {
	if v == nil {
		return "nil"
	}
	return v.Type()
}

// ArgError reports an argument-conversion failure, surfaced by a command
// as Err(err.Error()).
type ArgError struct{ Msg string }

func (e *ArgError) Error() string { return e.Msg }
