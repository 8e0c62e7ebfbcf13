package parser

import (
	"testing"

	"github.com/mekotech/loom/internal/ast"
	"github.com/mekotech/loom/internal/errors"
)

func TestParseSimpleSentence(t *testing.T) {
	p := New("set x 42")
	script, err := p.ParseScript()
	if err != nil {
		t.Fatal(err)
	}
	if len(script.Sentences) != 1 {
		t.Fatalf("got %d sentences, want 1", len(script.Sentences))
	}
	words := script.Sentences[0].Words
	if len(words) != 3 {
		t.Fatalf("got %d words, want 3", len(words))
	}
	lit, ok := words[0].Morphemes[0].(*ast.Literal)
	if !ok || lit.Text != "set" {
		t.Fatalf("got %v, want Literal(\"set\")", words[0].Morphemes[0])
	}
}

func TestParseMultipleSentences(t *testing.T) {
	p := New("set x 1; set y 2\nset z 3")
	script, err := p.ParseScript()
	if err != nil {
		t.Fatal(err)
	}
	if len(script.Sentences) != 3 {
		t.Fatalf("got %d sentences, want 3", len(script.Sentences))
	}
}

func TestParseBlockRoundTrip(t *testing.T) {
	src := "proc foo {bar} {\n  set x 1 # a comment\n}"
	p := New(src)
	script, err := p.ParseScript()
	if err != nil {
		t.Fatal(err)
	}
	words := script.Sentences[0].Words
	block := words[len(words)-1].Morphemes[0].(*ast.Block)
	if block.String() != "{\n  set x 1 # a comment\n}" {
		t.Fatalf("got %q", block.String())
	}
}

func TestParseTuple(t *testing.T) {
	p := New("cmd (a b c)")
	script, err := p.ParseScript()
	if err != nil {
		t.Fatal(err)
	}
	words := script.Sentences[0].Words
	tup, ok := words[1].Morphemes[0].(*ast.Tuple)
	if !ok {
		t.Fatalf("got %T, want *ast.Tuple", words[1].Morphemes[0])
	}
	if len(tup.Body.Sentences) != 1 || len(tup.Body.Sentences[0].Words) != 3 {
		t.Fatalf("got %+v", tup.Body)
	}
}

func TestParseExpression(t *testing.T) {
	p := New("set x [get y]")
	script, err := p.ParseScript()
	if err != nil {
		t.Fatal(err)
	}
	words := script.Sentences[0].Words
	_, ok := words[2].Morphemes[0].(*ast.Expression)
	if !ok {
		t.Fatalf("got %T, want *ast.Expression", words[2].Morphemes[0])
	}
}

func TestParseSubstitution(t *testing.T) {
	p := New("puts $name")
	script, err := p.ParseScript()
	if err != nil {
		t.Fatal(err)
	}
	words := script.Sentences[0].Words
	sub, ok := words[1].Morphemes[0].(*ast.SubstituteNext)
	if !ok {
		t.Fatalf("got %T, want *ast.SubstituteNext", words[1].Morphemes[0])
	}
	lit, ok := sub.Target.(*ast.Literal)
	if !ok || lit.Text != "name" {
		t.Fatalf("got %v", sub.Target)
	}
}

func TestParseQualifiedWord(t *testing.T) {
	p := New("t(0)")
	script, err := p.ParseScript()
	if err != nil {
		t.Fatal(err)
	}
	words := script.Sentences[0].Words
	if len(words) != 1 || len(words[0].Morphemes) != 2 {
		t.Fatalf("got %+v", words)
	}
}

func TestParseTupleExpansionWord(t *testing.T) {
	p := New("cmd *$t")
	script, err := p.ParseScript()
	if err != nil {
		t.Fatal(err)
	}
	words := script.Sentences[0].Words
	if !words[1].Expand {
		t.Fatal("expected Expand to be set")
	}
}

func TestParseStringWithSubstitution(t *testing.T) {
	p := New(`"hello $name!"`)
	script, err := p.ParseScript()
	if err != nil {
		t.Fatal(err)
	}
	str, ok := script.Sentences[0].Words[0].Morphemes[0].(*ast.String)
	if !ok {
		t.Fatalf("got %T", script.Sentences[0].Words[0].Morphemes[0])
	}
	if len(str.Morphemes) != 3 {
		t.Fatalf("got %d morphemes, want 3 (\"hello \", sub, \"!\")", len(str.Morphemes))
	}
}

func TestParseUnmatchedBraceIsError(t *testing.T) {
	p := New("proc foo {bar")
	_, err := p.ParseScript()
	if err == nil {
		t.Fatal("expected an unmatched-brace error")
	}
}

func TestParseUnexpectedCloseBraceIsError(t *testing.T) {
	p := New("foo }")
	_, err := p.ParseScript()
	if err == nil {
		t.Fatal("expected an unmatched right brace error")
	}
}

func TestParseKeepsCommentOnlySentenceForTheClassifier(t *testing.T) {
	// The parser builds a faithful tree; deciding that an all-comment word
	// is Ignored is the syntax classifier's job (internal/syntax), not
	// the parser's, so the comment's Sentence/Word nodes are preserved.
	p := New("# just a comment\nset x 1")
	script, err := p.ParseScript()
	if err != nil {
		t.Fatal(err)
	}
	if len(script.Sentences) != 2 {
		t.Fatalf("got %d sentences, want 2 (comment sentence + set sentence)", len(script.Sentences))
	}
	if _, ok := script.Sentences[0].Words[0].Morphemes[0].(*ast.LineComment); !ok {
		t.Fatalf("got %T, want *ast.LineComment", script.Sentences[0].Words[0].Morphemes[0])
	}
}

// TestParseSurfacesAccumulatedLexicalErrors exercises spec §4.1: lexing
// never aborts on a malformed here-string, so the Lexer still produces a
// structurally valid tree, but ParseScript must still report the
// accumulated non-fatal error rather than silently returning success.
func TestParseSurfacesAccumulatedLexicalErrors(t *testing.T) {
	p := New(`"""unterminated`)
	_, err := p.ParseScript()
	if err == nil {
		t.Fatal("expected an unterminated-here-string error")
	}
	multi, ok := err.(*errors.MultiError)
	if !ok {
		t.Fatalf("err = %T, want *errors.MultiError", err)
	}
	if len(multi.Errors) != 1 {
		t.Fatalf("got %d errors, want 1", len(multi.Errors))
	}
	if multi.Errors[0].Message != "unterminated here-string" {
		t.Fatalf("Message = %q, want %q", multi.Errors[0].Message, "unterminated here-string")
	}
}
