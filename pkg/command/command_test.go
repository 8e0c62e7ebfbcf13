package command

import (
	"testing"

	"github.com/mekotech/loom/internal/runtime"
)

func TestIntConvertsIntegerAndRejectsOthers(t *testing.T) {
	got, err := Int(runtime.Integer(7))
	if err != nil || got != 7 {
		t.Fatalf("Int(7) = (%v, %v), want (7, nil)", got, err)
	}
	if _, err := Int(runtime.String("7")); err == nil {
		t.Fatalf("Int(String) unexpectedly succeeded")
	}
}

func TestRealAcceptsIntegerOrReal(t *testing.T) {
	if got, err := Real(runtime.Real(1.5)); err != nil || got != 1.5 {
		t.Fatalf("Real(1.5) = (%v, %v), want (1.5, nil)", got, err)
	}
	if got, err := Real(runtime.Integer(4)); err != nil || got != 4 {
		t.Fatalf("Real(4) = (%v, %v), want (4, nil)", got, err)
	}
	if _, err := Real(runtime.Boolean(true)); err == nil {
		t.Fatalf("Real(Boolean) unexpectedly succeeded")
	}
}

func TestBoolConvertsBoolean(t *testing.T) {
	got, err := Bool(runtime.Boolean(true))
	if err != nil || got != true {
		t.Fatalf("Bool(true) = (%v, %v), want (true, nil)", got, err)
	}
	if _, err := Bool(runtime.Integer(1)); err == nil {
		t.Fatalf("Bool(Integer) unexpectedly succeeded")
	}
}

func TestStrUsesCanonicalStringForm(t *testing.T) {
	got, err := Str(runtime.Integer(42))
	if err != nil || got != "42" {
		t.Fatalf("Str(42) = (%v, %v), want (42, nil)", got, err)
	}
	if _, err := Str(runtime.NewList()); err == nil {
		t.Fatalf("Str(List) unexpectedly succeeded, want error per no-canonical-form invariant")
	}
}

func TestListOfDictOfTupleOfTypeCheck(t *testing.T) {
	if _, err := ListOf(runtime.NewList(runtime.Integer(1))); err != nil {
		t.Fatalf("ListOf(List) error: %v", err)
	}
	if _, err := ListOf(runtime.NewDictionary()); err == nil {
		t.Fatalf("ListOf(Dictionary) unexpectedly succeeded")
	}

	if _, err := DictOf(runtime.NewDictionary()); err != nil {
		t.Fatalf("DictOf(Dictionary) error: %v", err)
	}
	if _, err := DictOf(runtime.NewList()); err == nil {
		t.Fatalf("DictOf(List) unexpectedly succeeded")
	}

	if _, err := TupleOf(runtime.NewTuple()); err != nil {
		t.Fatalf("TupleOf(Tuple) error: %v", err)
	}
	if _, err := TupleOf(runtime.NewList()); err == nil {
		t.Fatalf("TupleOf(List) unexpectedly succeeded")
	}
}

func TestFuncAdapterSatisfiesCommand(t *testing.T) {
	var c Command = Func(func(args []Value, ctx Context) Result {
		return Ok(args[0])
	})
	result := c.Execute([]Value{runtime.Integer(9)}, nil)
	if result.Code != OK {
		t.Fatalf("Code = %v, want OK", result.Code)
	}
}

func TestArgErrorMessage(t *testing.T) {
	err := &ArgError{Msg: "bad argument"}
	if err.Error() != "bad argument" {
		t.Fatalf("Error() = %q, want %q", err.Error(), "bad argument")
	}
}
