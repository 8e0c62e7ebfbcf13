// Package parser implements the Parser of spec §4.2: it consumes the
// Lexer's token stream and produces a Script tree of Sentences, Words, and
// Morphemes. Structural validation (brace/paren/bracket matching, string
// termination) lives here; the Lexer itself performs none of it.
package parser

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/mekotech/loom/internal/ast"
	"github.com/mekotech/loom/internal/errors"
	"github.com/mekotech/loom/internal/lexer"
	"github.com/mekotech/loom/internal/token"
)

// Parser turns a token stream into a Script.
type Parser struct {
	lex *lexer.Lexer
	src string
}

// New creates a Parser over src.
func New(src string) *Parser {
	return &Parser{lex: lexer.New(src), src: stripBOM(src)}
}

func stripBOM(src string) string {
	if len(src) >= 3 && src[0] == 0xEF && src[1] == 0xBB && src[2] == 0xBF {
		return src[3:]
	}
	return src
}

// ParseScript parses the entire source as a top-level Script. A
// structural parse failure returns immediately as a single
// *errors.CompilerError; otherwise, any non-fatal lexical errors the
// Lexer accumulated along the way (spec §4.1) are reported together as an
// *errors.MultiError rather than silently dropped.
func (p *Parser) ParseScript() (*ast.Script, error) {
	script, err := p.parseScriptBody(token.ILLEGAL, false)
	if err != nil {
		return nil, err
	}
	if p.cur().Type != token.EOF {
		return nil, p.errorf(p.cur(), "unexpected trailing token %s", p.cur().Type)
	}
	if lexErrs := p.lex.Errors(); len(lexErrs) > 0 {
		compilerErrs := make([]*errors.CompilerError, len(lexErrs))
		for i, e := range lexErrs {
			compilerErrs[i] = errors.NewCompilerError(e.Pos, e.Message, p.src, "")
		}
		return nil, &errors.MultiError{Errors: compilerErrs}
	}
	return script, nil
}

func (p *Parser) cur() token.Token  { return p.lex.Peek(0) }
func (p *Parser) advance() token.Token { return p.lex.NextToken() }

func (p *Parser) errorf(tok token.Token, format string, args ...any) error {
	return errors.NewCompilerError(tok.Pos, fmt.Sprintf(format, args...), p.src, "")
}

func isSeparator(t token.Type) bool {
	return t == token.Whitespace || t == token.Newline || t == token.Semicolon
}

func isCloseToken(t token.Type) bool {
	return t == token.CloseBrace || t == token.CloseParen || t == token.CloseBracket
}

func closeName(t token.Type) string {
	switch t {
	case token.CloseBrace:
		return "brace"
	case token.CloseParen:
		return "parenthesis"
	case token.CloseBracket:
		return "bracket"
	default:
		return "delimiter"
	}
}

// parseScriptBody parses Sentences until EOF, or until closeType is seen
// when expectClose is true (the closing token itself is left unconsumed
// for the caller — e.g. parseTuple — to consume).
func (p *Parser) parseScriptBody(closeType token.Type, expectClose bool) (*ast.Script, error) {
	pos := p.cur().Pos
	var sentences []*ast.Sentence

	for {
		p.skipSentenceSeparators()
		t := p.cur()
		if t.Type == token.EOF {
			break
		}
		if expectClose && t.Type == closeType {
			break
		}
		if !expectClose && isCloseToken(t.Type) {
			return nil, p.errorf(t, "unmatched right %s", closeName(t.Type))
		}

		sent, err := p.parseSentence(closeType, expectClose)
		if err != nil {
			return nil, err
		}
		if len(sent.Words) > 0 {
			sentences = append(sentences, sent)
		}
	}

	return ast.NewScript(pos, sentences...), nil
}

func (p *Parser) skipSentenceSeparators() {
	for isSeparator(p.cur().Type) {
		p.advance()
	}
}

func (p *Parser) parseSentence(closeType token.Type, expectClose bool) (*ast.Sentence, error) {
	pos := p.cur().Pos
	var words []*ast.Word

	for {
		for p.cur().Type == token.Whitespace {
			p.advance()
		}
		t := p.cur()
		if t.Type == token.EOF || t.Type == token.Newline || t.Type == token.Semicolon {
			break
		}
		if expectClose && t.Type == closeType {
			break
		}
		if !expectClose && isCloseToken(t.Type) {
			return nil, p.errorf(t, "unmatched right %s", closeName(t.Type))
		}

		word, err := p.parseWord()
		if err != nil {
			return nil, err
		}
		words = append(words, word)
	}

	return ast.NewSentence(pos, words...), nil
}

func (p *Parser) parseWord() (*ast.Word, error) {
	pos := p.cur().Pos
	expand := false
	if p.cur().Type == token.Asterisk {
		expand = true
		p.advance()
	}

	var morphemes []ast.Morpheme
	for {
		t := p.cur()
		if isSeparator(t.Type) || t.Type == token.EOF || isCloseToken(t.Type) {
			break
		}
		if t.Type == token.ContinuationLine {
			p.advance()
			continue
		}
		m, err := p.parseMorpheme(expand && len(morphemes) == 0)
		if err != nil {
			return nil, err
		}
		morphemes = append(morphemes, m)
	}

	if expand && len(morphemes) == 0 {
		return nil, p.errorf(p.cur(), "invalid word structure: '*' with no following morpheme")
	}

	w := ast.NewWord(pos, morphemes...)
	w.Expand = expand
	return w, nil
}

func (p *Parser) parseMorpheme(leadingExpand bool) (ast.Morpheme, error) {
	t := p.cur()
	switch t.Type {
	case token.Text:
		p.advance()
		return ast.NewLiteral(t.Pos, t.Literal), nil
	case token.EscapedChar:
		p.advance()
		return ast.NewLiteral(t.Pos, unescape(t.Literal)), nil
	case token.Dollar:
		return p.parseSubstitution(leadingExpand)
	case token.OpenParen:
		return p.parseTuple()
	case token.OpenBrace:
		return p.parseBlock()
	case token.OpenBracket:
		return p.parseExpression()
	case token.DoubleQuote:
		return p.parseString()
	case token.HereStringLit:
		p.advance()
		return buildHereString(t)
	case token.TaggedStringLit:
		p.advance()
		return buildTaggedString(t)
	case token.LineComment:
		p.advance()
		return buildLineComment(t), nil
	case token.BlockComment:
		p.advance()
		return buildBlockComment(t)
	default:
		return nil, p.errorf(t, "unexpected token %s", t.Type)
	}
}

func (p *Parser) parseSubstitution(expand bool) (*ast.SubstituteNext, error) {
	pos := p.cur().Pos
	depth := 0
	for p.cur().Type == token.Dollar {
		depth++
		p.advance()
	}

	t := p.cur()
	var target ast.Morpheme
	var err error
	switch t.Type {
	case token.Text:
		p.advance()
		target = ast.NewLiteral(t.Pos, t.Literal)
	case token.OpenParen:
		target, err = p.parseTuple()
	case token.OpenBrace:
		target, err = p.parseBlock()
	case token.OpenBracket:
		target, err = p.parseExpression()
	default:
		return nil, p.errorf(t, "invalid substitution target %s", t.Type)
	}
	if err != nil {
		return nil, err
	}
	return ast.NewSubstituteNext(pos, expand, depth, target), nil
}

func (p *Parser) parseTuple() (*ast.Tuple, error) {
	pos := p.cur().Pos
	p.advance() // consume '('
	body, err := p.parseScriptBody(token.CloseParen, true)
	if err != nil {
		return nil, err
	}
	if p.cur().Type != token.CloseParen {
		return nil, p.errorf(p.cur(), "unmatched left parenthesis")
	}
	p.advance()
	return ast.NewTuple(pos, body), nil
}

func (p *Parser) parseExpression() (*ast.Expression, error) {
	pos := p.cur().Pos
	p.advance() // consume '['
	body, err := p.parseScriptBody(token.CloseBracket, true)
	if err != nil {
		return nil, err
	}
	if p.cur().Type != token.CloseBracket {
		return nil, p.errorf(p.cur(), "unmatched left bracket")
	}
	p.advance()
	return ast.NewExpression(pos, body), nil
}

func (p *Parser) parseBlock() (*ast.Block, error) {
	open := p.cur()
	pos := open.Pos
	startOffset := open.Pos.Offset + 1
	p.advance() // consume '{'
	body, err := p.parseScriptBody(token.CloseBrace, true)
	if err != nil {
		return nil, err
	}
	if p.cur().Type != token.CloseBrace {
		return nil, p.errorf(p.cur(), "unmatched left brace")
	}
	endOffset := p.cur().Pos.Offset
	source := ""
	if startOffset <= endOffset && endOffset <= len(p.src) {
		source = p.src[startOffset:endOffset]
	}
	p.advance()
	return ast.NewBlock(pos, body, source), nil
}

func (p *Parser) parseString() (*ast.String, error) {
	pos := p.cur().Pos
	p.advance() // consume opening '"'

	var morphemes []ast.Morpheme
	var run strings.Builder
	runPos := p.cur().Pos
	flush := func() {
		if run.Len() > 0 {
			morphemes = append(morphemes, ast.NewLiteral(runPos, run.String()))
			run.Reset()
		}
	}

	for {
		t := p.cur()
		if t.Type == token.DoubleQuote {
			flush()
			p.advance()
			break
		}
		if t.Type == token.EOF {
			return nil, p.errorf(t, "unterminated string")
		}
		if t.Type == token.Dollar {
			flush()
			m, err := p.parseSubstitution(false)
			if err != nil {
				return nil, err
			}
			morphemes = append(morphemes, m)
			runPos = p.cur().Pos
			continue
		}
		if run.Len() == 0 {
			runPos = t.Pos
		}
		if t.Type == token.EscapedChar {
			run.WriteString(unescape(t.Literal))
		} else {
			run.WriteString(t.Literal)
		}
		p.advance()
	}

	return ast.NewString(pos, morphemes...), nil
}

func unescape(lit string) string {
	if len(lit) < 2 || lit[0] != '\\' {
		return lit
	}
	switch lit[1] {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case '\\', '"', '$', '{', '}', '[', ']', '(', ')', ';':
		return lit[1:]
	default:
		return lit[1:]
	}
}

func buildHereString(t token.Token) (*ast.HereString, error) {
	lit := t.Literal
	delimLen := 0
	for delimLen < len(lit) && lit[delimLen] == '"' {
		delimLen++
	}
	if len(lit) < 2*delimLen {
		return nil, &errors.CompilerError{Message: "malformed here-string", Pos: t.Pos}
	}
	text := lit[delimLen : len(lit)-delimLen]
	return ast.NewHereString(t.Pos, text, delimLen), nil
}

func buildTaggedString(t token.Token) (*ast.TaggedString, error) {
	lit := t.Literal
	if len(lit) < 4 || lit[0] != '"' || lit[1] != '"' {
		return nil, &errors.CompilerError{Message: "malformed tagged string", Pos: t.Pos}
	}
	rest := lit[2:]
	i := 0
	for i < len(rest) && isTagRune(rune(rest[i])) {
		i++
	}
	tag := rest[:i]
	closer := tag + `""`
	if len(rest) < i+len(closer) {
		return nil, &errors.CompilerError{Message: "malformed tagged string", Pos: t.Pos}
	}
	body := rest[i : len(rest)-len(closer)]
	return ast.NewTaggedString(t.Pos, strings.TrimSpace(body), tag), nil
}

func isTagRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func buildLineComment(t token.Token) *ast.LineComment {
	text := t.Literal
	if len(text) > 0 {
		text = text[1:]
	}
	return ast.NewLineComment(t.Pos, text, 1)
}

func buildBlockComment(t token.Token) (*ast.BlockComment, error) {
	lit := t.Literal
	i := 1
	delimLen := 0
	for i < len(lit) && lit[i] == '{' {
		delimLen++
		i++
	}
	closerLen := delimLen + 1
	if len(lit) < i+closerLen {
		return nil, &errors.CompilerError{Message: "unmatched block comment delimiter", Pos: t.Pos}
	}
	text := lit[i : len(lit)-closerLen]
	return ast.NewBlockComment(t.Pos, text, delimLen), nil
}
