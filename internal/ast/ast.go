package ast

import (
	"strconv"
	"strings"

	"github.com/mekotech/loom/internal/token"
)

// Node is implemented by every syntactic entity.
type Node interface {
	// String renders the node back to source form. For a Block this must
	// reproduce the exact source text between delimiters (spec §8.1).
	String() string
	Pos() token.Position
}

// Script is an ordered sequence of Sentences (spec §3.1).
type Script struct {
	Sentences []*Sentence
	position  token.Position
}

func NewScript(pos token.Position, sentences ...*Sentence) *Script {
	return &Script{Sentences: sentences, position: pos}
}

func (s *Script) Pos() token.Position { return s.position }

func (s *Script) String() string {
	var b strings.Builder
	for i, sent := range s.Sentences {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sent.String())
	}
	return b.String()
}

// Sentence is an ordered sequence of Words: one command invocation's worth
// of argument sources.
type Sentence struct {
	Words    []*Word
	position token.Position
}

func NewSentence(pos token.Position, words ...*Word) *Sentence {
	return &Sentence{Words: words, position: pos}
}

func (s *Sentence) Pos() token.Position { return s.position }

func (s *Sentence) String() string {
	parts := make([]string, len(s.Words))
	for i, w := range s.Words {
		parts[i] = w.String()
	}
	return strings.Join(parts, " ")
}

// Word is an ordered sequence of Morphemes (spec §3.1).
type Word struct {
	Morphemes []Morpheme
	// Expand marks a word introduced by a leading '*': when its resolved
	// value is a Tuple, the compiler splices its elements into the
	// surrounding sentence frame instead of pushing one value (spec §4.2,
	// §4.5 EXPAND_VALUE).
	Expand   bool
	position token.Position
}

func NewWord(pos token.Position, morphemes ...Morpheme) *Word {
	return &Word{Morphemes: morphemes, position: pos}
}

func (w *Word) Pos() token.Position { return w.position }

func (w *Word) String() string {
	var b strings.Builder
	if w.Expand {
		b.WriteString("*")
	}
	for _, m := range w.Morphemes {
		b.WriteString(m.String())
	}
	return b.String()
}

// Morpheme is the smallest classifiable syntactic atom inside a word
// (spec §3.1). The sum type is realised as a Go interface implemented by
// exactly the variants spec.md names.
type Morpheme interface {
	Node
	morphemeNode()
}

// Literal is a bare run of text with no further structure.
type Literal struct {
	Text     string
	position token.Position
}

func NewLiteral(pos token.Position, text string) *Literal { return &Literal{Text: text, position: pos} }
func (l *Literal) morphemeNode()                          {}
func (l *Literal) Pos() token.Position                     { return l.position }
func (l *Literal) String() string                          { return l.Text }

// Tuple is a parenthesised sub-script: "(" Script ")".
type Tuple struct {
	Body     *Script
	position token.Position
}

func NewTuple(pos token.Position, body *Script) *Tuple { return &Tuple{Body: body, position: pos} }
func (t *Tuple) morphemeNode()                         {}
func (t *Tuple) Pos() token.Position                   { return t.position }
func (t *Tuple) String() string                        { return "(" + t.Body.String() + ")" }

// Block is a brace-delimited sub-script: "{" Script "}". It carries both
// the parsed Body and the exact Source text between the delimiters,
// required for re-serialisation and for treating blocks as string-like
// literals (spec §3.1 invariant).
type Block struct {
	Body     *Script
	Source   string
	position token.Position
}

func NewBlock(pos token.Position, body *Script, source string) *Block {
	return &Block{Body: body, Source: source, position: pos}
}
func (b *Block) morphemeNode()      {}
func (b *Block) Pos() token.Position { return b.position }
func (b *Block) String() string      { return "{" + b.Source + "}" }

// Expression is a bracket-delimited sub-script: "[" Script "]".
type Expression struct {
	Body     *Script
	position token.Position
}

func NewExpression(pos token.Position, body *Script) *Expression {
	return &Expression{Body: body, position: pos}
}
func (e *Expression) morphemeNode()      {}
func (e *Expression) Pos() token.Position { return e.position }
func (e *Expression) String() string      { return "[" + e.Body.String() + "]" }

// String is a double-quoted run of morphemes: literal text interleaved
// with substitutions.
type String struct {
	Morphemes []Morpheme
	position  token.Position
}

func NewString(pos token.Position, morphemes ...Morpheme) *String {
	return &String{Morphemes: morphemes, position: pos}
}
func (s *String) morphemeNode()      {}
func (s *String) Pos() token.Position { return s.position }
func (s *String) String() string {
	var b strings.Builder
	b.WriteString("\"")
	for _, m := range s.Morphemes {
		b.WriteString(m.String())
	}
	b.WriteString("\"")
	return b.String()
}

// HereString is a """…""" (or longer, matching-length delimiter) literal.
type HereString struct {
	Text      string
	DelimLen  int
	position  token.Position
}

func NewHereString(pos token.Position, text string, delimLen int) *HereString {
	return &HereString{Text: text, DelimLen: delimLen, position: pos}
}
func (h *HereString) morphemeNode()      {}
func (h *HereString) Pos() token.Position { return h.position }
func (h *HereString) String() string {
	d := strings.Repeat("\"", h.DelimLen)
	return d + h.Text + d
}

// TaggedString is a ""TAG … TAG"" literal.
type TaggedString struct {
	Text     string
	Tag      string
	position token.Position
}

func NewTaggedString(pos token.Position, text, tag string) *TaggedString {
	return &TaggedString{Text: text, Tag: tag, position: pos}
}
func (t *TaggedString) morphemeNode()      {}
func (t *TaggedString) Pos() token.Position { return t.position }
func (t *TaggedString) String() string {
	return "\"\"" + t.Tag + " " + t.Text + " " + t.Tag + "\"\""
}

// LineComment is a "#..." comment.
type LineComment struct {
	Text     string
	DelimLen int
	position token.Position
}

func NewLineComment(pos token.Position, text string, delimLen int) *LineComment {
	return &LineComment{Text: text, DelimLen: delimLen, position: pos}
}
func (c *LineComment) morphemeNode()      {}
func (c *LineComment) Pos() token.Position { return c.position }
func (c *LineComment) String() string      { return strings.Repeat("#", c.DelimLen) + c.Text }

// BlockComment is a "#{...}#" (balanced-length) comment.
type BlockComment struct {
	Text     string
	DelimLen int
	position token.Position
}

func NewBlockComment(pos token.Position, text string, delimLen int) *BlockComment {
	return &BlockComment{Text: text, DelimLen: delimLen, position: pos}
}
func (c *BlockComment) morphemeNode()      {}
func (c *BlockComment) Pos() token.Position { return c.position }
func (c *BlockComment) String() string {
	open := "#" + strings.Repeat("{", c.DelimLen)
	close := strings.Repeat("}", c.DelimLen) + "#"
	return open + c.Text + close
}

// SubstituteNext is the "$"-prefixed morpheme: it precedes the morpheme it
// applies to and carries the expansion flag and the dollar-prefix depth,
// from which String() rebuilds the prefix.
type SubstituteNext struct {
	Expand     bool // a leading '*' enables tuple-expansion (spec §4.2)
	DollarDepth int
	Target      Morpheme
	position    token.Position
}

func NewSubstituteNext(pos token.Position, expand bool, depth int, target Morpheme) *SubstituteNext {
	return &SubstituteNext{Expand: expand, DollarDepth: depth, Target: target, position: pos}
}
func (s *SubstituteNext) morphemeNode()      {}
func (s *SubstituteNext) Pos() token.Position { return s.position }
func (s *SubstituteNext) String() string {
	var b strings.Builder
	if s.Expand {
		b.WriteString("*")
	}
	b.WriteString(strings.Repeat("$", s.DollarDepth))
	if s.Target != nil {
		b.WriteString(s.Target.String())
	}
	return b.String()
}

// Quote renders s as a Go string literal; used by error messages that
// embed source fragments.
func Quote(s string) string { return strconv.Quote(s) }
