package render

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/mekotech/loom/internal/ast"
	"github.com/mekotech/loom/internal/parser"
	"github.com/mekotech/loom/internal/runtime"
)

func mustParse(t *testing.T, src string) *ast.Script {
	t.Helper()
	script, err := parser.New(src).ParseScript()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return script
}

// TestScriptRoundTripsBlockSource exercises spec §8.1's property directly:
// for every block source {S}, reparsing the rendered text must reproduce S
// verbatim inside the Block morpheme.
func TestScriptRoundTripsBlockSource(t *testing.T) {
	const src = `if {x > 0} {puts "positive"}`

	tree := mustParse(t, src)
	rendered := Script(tree)

	reparsed := mustParse(t, rendered)
	rerendered := Script(reparsed)

	if rendered != rerendered {
		t.Fatalf("render is not idempotent:\nfirst:  %q\nsecond: %q", rendered, rerendered)
	}
}

// TestScriptRoundTripPreservesCommentsAndWhitespace checks that a block's
// exact source text, including an embedded comment and irregular spacing,
// survives one parse/render/reparse cycle unchanged.
func TestScriptRoundTripPreservesCommentsAndWhitespace(t *testing.T) {
	const src = "proc greet {name} {\n  # say hello\n  puts \"hi  $name\"\n}"

	tree := mustParse(t, src)
	rendered := Script(tree)

	reparsed := mustParse(t, rendered)
	if Script(reparsed) != rendered {
		t.Fatalf("second render diverged from first for %q", src)
	}

	block := tree.Sentences[0].Words[3].Morphemes[0].(*ast.Block)
	if block.Source != "\n  # say hello\n  puts \"hi  $name\"\n" {
		t.Fatalf("Block.Source = %q, want exact body text", block.Source)
	}
}

func TestRenderScriptSnapshot(t *testing.T) {
	tree := mustParse(t, `set total 0; foreach {x} $items {incr total $x}`)
	snaps.MatchSnapshot(t, Script(tree))
}

func TestValueRendersCanonicalForms(t *testing.T) {
	cases := []struct {
		name string
		v    runtime.Value
		want string
	}{
		{"integer", runtime.Integer(42), "42"},
		{"boolean-true", runtime.Boolean(true), "true"},
		{"boolean-false", runtime.Boolean(false), "false"},
		{"string", runtime.String("hello"), "hello"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Value(c.v)
			if err != nil {
				t.Fatalf("Value(%v) error: %v", c.v, err)
			}
			if got != c.want {
				t.Fatalf("Value(%v) = %q, want %q", c.v, got, c.want)
			}
		})
	}
}

func TestValueRejectsNonCanonicalForms(t *testing.T) {
	cases := []struct {
		name string
		v    runtime.Value
	}{
		{"nil", runtime.Nil{}},
		{"list", runtime.NewList()},
		{"dict", runtime.NewDictionary()},
		{"tuple", runtime.NewTuple()},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := Value(c.v); err == nil {
				t.Fatalf("Value(%v) unexpectedly succeeded", c.v)
			}
		})
	}
}
