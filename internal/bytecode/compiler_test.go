package bytecode

import (
	"testing"

	"github.com/mekotech/loom/internal/parser"
	"github.com/mekotech/loom/internal/runtime"
)

func mustCompile(t *testing.T, src string) *Program {
	t.Helper()
	script, err := parser.New(src).ParseScript()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	prog, err := Compile(script)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	return prog
}

func opSequence(prog *Program) []OpCode {
	out := make([]OpCode, len(prog.Instructions))
	for i, instr := range prog.Instructions {
		out[i] = instr.Op
	}
	return out
}

func TestCompileSimpleSentence(t *testing.T) {
	prog := mustCompile(t, "set x 1")
	got := opSequence(prog)
	want := []OpCode{
		OpenFrame, PushLiteral, PushLiteral, PushLiteral, CloseFrameAsTuple, EvaluateSentence,
		PushResult,
	}
	assertOps(t, got, want)
}

func TestCompileEmptyScriptPushesNil(t *testing.T) {
	prog := mustCompile(t, "")
	got := opSequence(prog)
	want := []OpCode{PushNil, PushResult}
	assertOps(t, got, want)
}

func TestCompileCommentOnlySentenceContributesNothing(t *testing.T) {
	prog := mustCompile(t, "# just a comment")
	got := opSequence(prog)
	want := []OpCode{PushNil, PushResult}
	assertOps(t, got, want)
}

func TestCompileCompoundWordEmitsJoinStrings(t *testing.T) {
	prog := mustCompile(t, `puts "hello $name!"`)
	got := opSequence(prog)
	// "puts", then the quoted string's 2 morphemes ("hello " and $name!,
	// since '!' stays in the substitution's Text run) each contribute a
	// push (the substitution also resolving), then JoinStrings(2) joins
	// them into one value.
	want := []OpCode{
		OpenFrame,
		PushLiteral,
		PushLiteral, PushLiteral, ResolveValue, JoinStrings,
		CloseFrameAsTuple, EvaluateSentence, PushResult,
	}
	assertOps(t, got, want)
}

func TestCompileSubstitutionWordResolvesOnce(t *testing.T) {
	prog := mustCompile(t, "puts $name")
	got := opSequence(prog)
	want := []OpCode{
		OpenFrame, PushLiteral, PushLiteral, ResolveValue,
		CloseFrameAsTuple, EvaluateSentence, PushResult,
	}
	assertOps(t, got, want)
}

func TestCompileDoubleDollarResolvesTwice(t *testing.T) {
	prog := mustCompile(t, "puts $$name")
	count := 0
	for _, instr := range prog.Instructions {
		if instr.Op == ResolveValue {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("got %d RESOLVE_VALUE, want 2", count)
	}
}

func TestCompileWordExpansionEmitsExpandValue(t *testing.T) {
	prog := mustCompile(t, "cmd *$t")
	found := false
	for _, instr := range prog.Instructions {
		if instr.Op == ExpandValue {
			found = true
		}
	}
	if !found {
		t.Fatal("expected an EXPAND_VALUE for the expansion word")
	}
}

func TestCompileBlockRootPushesConstant(t *testing.T) {
	prog := mustCompile(t, "proc foo {bar} {set x 1}")
	found := false
	for _, k := range prog.Constants {
		if _, ok := k.(*runtime.Script); ok {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a *runtime.Script constant for the block body")
	}
}

func TestCompileQualifiedWordSelectsIndex(t *testing.T) {
	prog := mustCompile(t, "t(0)")
	got := opSequence(prog)
	want := []OpCode{
		OpenFrame,
		PushLiteral, ResolveValue, MakeQualified, // resolve "t", wrap it
		OpenFrame, OpenFrame, PushLiteral, CloseFrameAsTuple, EvaluateSentence, CloseFrameAsTuple, // "(0)"
		AppendIndexedSelector,
		CloseFrameAsTuple, EvaluateSentence, PushResult,
	}
	assertOps(t, got, want)
}

func assertOps(t *testing.T, got, want []OpCode) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d ops %v, want %d ops %v", len(got), got, len(want), want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("op[%d] = %s, want %s (full: got=%v want=%v)", i, got[i], want[i], got, want)
		}
	}
}
