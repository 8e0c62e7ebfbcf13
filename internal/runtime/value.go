// Package runtime holds the three entities that are mutually referential
// and so live in one package to avoid an import cycle: Value (whose
// CommandValue variant carries a Command), Command (whose Execute signature
// takes a Context), and Context (whose methods return Value). Splitting
// these into separate packages would force at least one of them to import
// back into the others.
//
// This mirrors the teacher's own `internal/interp/runtime` package, which
// groups its value interfaces, environment contract and exception type for
// the same reason.
package runtime

import (
	"strconv"

	"github.com/mekotech/loom/internal/ast"
)

// Value is implemented by every runtime value (spec §3.2). It is
// deliberately narrow; richer behaviour is exposed through optional
// interfaces (Selectable, Stringer is just the String() method below).
type Value interface {
	// Type names the value's kind, used in error messages and by commands
	// that branch on value shape.
	Type() string

	// String renders the value's canonical form. Values with no string
	// form (Nil, List, Dictionary, Tuple, Script) return an error whose
	// message is errcat.NoStringRepresentation().
	String() (string, error)
}

// Selectable is implemented by values that support the selector algebra of
// spec §3.2/§4.4. A Value that does not implement Selectable rejects every
// selector kind with a type-specific error.
type Selectable interface {
	SelectIndex(idx Value) (Value, error)
	SelectKey(key Value) (Value, error)
	SelectRules(rules Value) (Value, error)
}

// Nil is the sole nil value.
type Nil struct{}

func (Nil) Type() string             { return "nil" }
func (Nil) String() (string, error)  { return "", errNoStringForm("nil") }

// Boolean is a true/false value with a canonical "true"/"false" string form.
type Boolean bool

func (b Boolean) Type() string { return "boolean" }
func (b Boolean) String() (string, error) {
	if b {
		return "true", nil
	}
	return "false", nil
}

// Integer is a signed 64-bit integer with a canonical decimal string form.
type Integer int64

func (i Integer) Type() string            { return "integer" }
func (i Integer) String() (string, error) { return strconv.FormatInt(int64(i), 10), nil }

// Real is a 64-bit floating point number.
type Real float64

func (r Real) Type() string { return "real" }
func (r Real) String() (string, error) {
	return strconv.FormatFloat(float64(r), 'g', -1, 64), nil
}

// String encodes its contents verbatim; its string form is itself.
type String string

func (s String) Type() string            { return "string" }
func (s String) String() (string, error) { return string(s), nil }

func (s String) SelectIndex(idx Value) (Value, error) {
	i, ok := idx.(Integer)
	if !ok {
		return nil, errInvalidIndex()
	}
	runes := []rune(string(s))
	if int(i) < 0 || int(i) >= len(runes) {
		return nil, errIndexOutOfRange(idx)
	}
	return String(runes[i]), nil
}

func (s String) SelectKey(Value) (Value, error) { return nil, errNotSelectable("string", "key") }
func (s String) SelectRules(Value) (Value, error) {
	return nil, errNotSelectable("string", "rule")
}

// List is an ordered sequence of Values. Lists have no canonical string
// form; they round-trip only through typed commands (spec §3.2).
type List struct {
	Elements []Value
}

func NewList(elems ...Value) *List { return &List{Elements: elems} }

func (l *List) Type() string            { return "list" }
func (l *List) String() (string, error) { return "", errNoStringForm("list") }

func (l *List) SelectIndex(idx Value) (Value, error) {
	i, ok := idx.(Integer)
	if !ok {
		return nil, errInvalidIndex()
	}
	if int(i) < 0 || int(i) >= len(l.Elements) {
		return nil, errIndexOutOfRange(idx)
	}
	return l.Elements[i], nil
}

func (l *List) SelectKey(Value) (Value, error) { return nil, errNotSelectable("list", "key") }
func (l *List) SelectRules(Value) (Value, error) {
	return nil, errNotSelectable("list", "rule")
}

// Dictionary maps String keys to Values, preserving insertion order (spec
// §3.2). It is implemented with a parallel key slice rather than the
// teacher's pkg/ident.Map since this language's keys are case-sensitive
// and ident.Map is both case-folding and unordered.
type Dictionary struct {
	keys   []string
	values map[string]Value
}

func NewDictionary() *Dictionary {
	return &Dictionary{values: make(map[string]Value)}
}

func (d *Dictionary) Type() string            { return "dict" }
func (d *Dictionary) String() (string, error) { return "", errNoStringForm("dict") }

// Set inserts or updates key, preserving first-insertion order.
func (d *Dictionary) Set(key string, v Value) {
	if _, exists := d.values[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
}

// Get returns the value bound to key, if any.
func (d *Dictionary) Get(key string) (Value, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Keys returns the dictionary's keys in insertion order.
func (d *Dictionary) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

func (d *Dictionary) Len() int { return len(d.keys) }

func (d *Dictionary) SelectIndex(Value) (Value, error) { return nil, errNotSelectable("dict", "index") }

func (d *Dictionary) SelectKey(key Value) (Value, error) {
	s, err := key.String()
	if err != nil {
		return nil, err
	}
	v, ok := d.values[s]
	if !ok {
		return nil, errUnknownKey(s)
	}
	return v, nil
}

func (d *Dictionary) SelectRules(Value) (Value, error) { return nil, errNotSelectable("dict", "rule") }

// Tuple is an ordered sequence of Values. Selectors distribute element-wise
// over a Tuple (spec §3.2).
type Tuple struct {
	Elements []Value
}

func NewTuple(elems ...Value) *Tuple { return &Tuple{Elements: elems} }

func (t *Tuple) Type() string            { return "tuple" }
func (t *Tuple) String() (string, error) { return "", errNoStringForm("tuple") }

func (t *Tuple) SelectIndex(idx Value) (Value, error) {
	out := make([]Value, len(t.Elements))
	for i, elem := range t.Elements {
		v, err := applyIndex(elem, idx)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return NewTuple(out...), nil
}

func (t *Tuple) SelectKey(key Value) (Value, error) {
	out := make([]Value, len(t.Elements))
	for i, elem := range t.Elements {
		v, err := applyKey(elem, key)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return NewTuple(out...), nil
}

func (t *Tuple) SelectRules(rules Value) (Value, error) {
	out := make([]Value, len(t.Elements))
	for i, elem := range t.Elements {
		v, err := applyRules(elem, rules)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return NewTuple(out...), nil
}

// applyIndex/applyKey/applyRules call the corresponding Selectable method
// on v, or fail with a type-specific "not selectable" error.
func applyIndex(v Value, idx Value) (Value, error) {
	s, ok := v.(Selectable)
	if !ok {
		return nil, errNotSelectable(v.Type(), "index")
	}
	return s.SelectIndex(idx)
}

func applyKey(v Value, key Value) (Value, error) {
	s, ok := v.(Selectable)
	if !ok {
		return nil, errNotSelectable(v.Type(), "key")
	}
	return s.SelectKey(key)
}

func applyRules(v Value, rules Value) (Value, error) {
	s, ok := v.(Selectable)
	if !ok {
		return nil, errNotSelectable(v.Type(), "rule")
	}
	return s.SelectRules(rules)
}

// Script wraps a parsed *ast.Script, optionally carrying its original
// source text (e.g. a Block morpheme's body becomes a Script value with
// Source set to the verbatim text between braces).
type Script struct {
	Tree   *ast.Script
	Source string
}

func NewScript(tree *ast.Script, source string) *Script {
	return &Script{Tree: tree, Source: source}
}

func (s *Script) Type() string            { return "script" }
func (s *Script) String() (string, error) { return "", errNoStringForm("script") }

// Deferred names a body (a Script or Tuple value) to be executed in a
// target Context before the command that produced it is considered
// complete (spec §4.6 "deferred bodies"). It is modelled as a tagged Value
// rather than a new Result code since spec §4.6's Result code sum type
// (OK|RETURN|YIELD|ERROR|BREAK|CONTINUE|PASS) is fixed; a command signals
// "run this body for me" by returning Result{Code: OK, Value: *Deferred}
// and the executor recognises the tag and pushes a nested frame (see
// internal/vm).
type Deferred struct {
	Body Value
	Ctx  Context
	// Translate, if non-nil, rewrites the child frame's terminal Result
	// before it is delivered back to the parent (e.g. a namespace body's
	// RETURN surfaces as OK with the same value).
	Translate func(Result) Result
}

func NewDeferred(body Value, ctx Context) *Deferred { return &Deferred{Body: body, Ctx: ctx} }

func (d *Deferred) Type() string            { return "deferred" }
func (d *Deferred) String() (string, error) { return "", errNoStringForm("deferred") }

// CommandValue is an opaque wrapper carrying a Command handle (spec §3.2:
// "Command-bearing object").
type CommandValue struct {
	Command Command
}

func NewCommandValue(cmd Command) *CommandValue { return &CommandValue{Command: cmd} }

func (c *CommandValue) Type() string            { return "command" }
func (c *CommandValue) String() (string, error) { return "", errNoStringForm("command") }
