package bytecode

import (
	"fmt"

	"github.com/mekotech/loom/internal/ast"
	"github.com/mekotech/loom/internal/runtime"
	"github.com/mekotech/loom/internal/syntax"
	"github.com/mekotech/loom/internal/token"
)

// CompileError reports a word whose shape the Compiler cannot lower,
// either because internal/syntax rejected it or because a selector/
// substitution target names a morpheme no compilation rule covers.
type CompileError struct {
	Pos token.Position
	Msg string
}

func (e *CompileError) Error() string { return e.Msg }

func compileErrorf(pos token.Position, format string, args ...any) error {
	return &CompileError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Compile lowers a parsed top-level Script into a Program, per spec §4.5's
// compilation rules.
func Compile(script *ast.Script) (*Program, error) {
	c := &compiler{prog: &Program{}}
	if err := c.compileTopLevel(script); err != nil {
		return nil, err
	}
	return c.prog, nil
}

type compiler struct {
	prog *Program
}

// compileTopLevel compiles every non-ignored Sentence in script, emitting
// PushResult after each so the Program's last executed Sentence becomes
// its published result.
func (c *compiler) compileTopLevel(script *ast.Script) error {
	sawLive := false
	for _, sent := range script.Sentences {
		compiled, err := c.compileSentenceIfLive(sent)
		if err != nil {
			return err
		}
		if compiled {
			c.prog.emit(PushResult)
			sawLive = true
		}
	}
	if !sawLive {
		c.prog.emit(PushNil)
		c.prog.emit(PushResult)
	}
	return nil
}

// sentenceIsLive reports whether sent has at least one non-Ignored word.
func sentenceIsLive(sent *ast.Sentence) (bool, error) {
	for _, w := range sent.Words {
		role, err := syntax.Classify(w)
		if err != nil {
			return false, err
		}
		if role != syntax.Ignored {
			return true, nil
		}
	}
	return false, nil
}

// compileSentenceIfLive compiles sent unless every one of its words is
// Ignored (pure comment sentences contribute nothing — spec §4.3).
func (c *compiler) compileSentenceIfLive(sent *ast.Sentence) (bool, error) {
	live, err := sentenceIsLive(sent)
	if err != nil {
		return false, err
	}
	if !live {
		return false, nil
	}
	if err := c.compileSentence(sent); err != nil {
		return false, err
	}
	return true, nil
}

// compileSentence compiles one command invocation: OPEN_FRAME, each live
// word's value (spliced via EXPAND_VALUE when Word.Expand is set),
// CLOSE_FRAME_AS_TUPLE, EVALUATE_SENTENCE (spec §4.5).
func (c *compiler) compileSentence(sent *ast.Sentence) error {
	c.prog.emit(OpenFrame)
	for _, w := range sent.Words {
		role, err := syntax.Classify(w)
		if err != nil {
			return err
		}
		if role == syntax.Ignored {
			continue
		}
		if err := c.compileWordValue(w, role); err != nil {
			return err
		}
		if w.Expand {
			c.prog.emit(ExpandValue)
		}
	}
	c.prog.emit(CloseFrameAsTuple)
	c.prog.emit(EvaluateSentence)
	return nil
}

// compileWordValue pushes exactly one value for w (before any
// Word.Expand splicing, which the caller handles).
func (c *compiler) compileWordValue(w *ast.Word, role syntax.Role) error {
	switch role {
	case syntax.LiteralRole:
		lit := w.Morphemes[0].(*ast.Literal)
		c.prog.emitWithOperand(PushLiteral, c.prog.addConstant(runtime.String(lit.Text)))
		return nil

	case syntax.BlockRole:
		blk := w.Morphemes[0].(*ast.Block)
		c.prog.emitWithOperand(PushConstant, c.prog.addConstant(runtime.NewScript(blk.Body, blk.Source)))
		return nil

	case syntax.TupleRole:
		tup := w.Morphemes[0].(*ast.Tuple)
		return c.compileTupleAsSubscript(tup.Body)

	case syntax.ExpressionRole:
		expr := w.Morphemes[0].(*ast.Expression)
		return c.compileExpressionAsSubscript(expr.Body)

	case syntax.HereStringRole:
		hs := w.Morphemes[0].(*ast.HereString)
		c.prog.emitWithOperand(PushLiteral, c.prog.addConstant(runtime.String(hs.Text)))
		return nil

	case syntax.StringRole:
		switch m := w.Morphemes[0].(type) {
		case *ast.TaggedString:
			c.prog.emitWithOperand(PushLiteral, c.prog.addConstant(runtime.String(m.Text)))
			return nil
		case *ast.String:
			return c.compileQuotedString(m)
		default:
			return compileErrorf(w.Pos(), "invalid string morpheme %T", m)
		}

	case syntax.Compound:
		for _, m := range w.Morphemes {
			if err := c.compileTextualMorpheme(m); err != nil {
				return err
			}
		}
		c.prog.emitWithOperand(JoinStrings, len(w.Morphemes))
		return nil

	case syntax.Substitution:
		return c.compileSubstitutionWord(w)

	case syntax.Qualified:
		return c.compileQualifiedWord(w)

	default:
		return compileErrorf(w.Pos(), "cannot compile word with role %s", role)
	}
}

// compileTextualMorpheme pushes one String value for a Compound word's
// member morpheme (Literal, HereString, TaggedString, or a nested String).
func (c *compiler) compileTextualMorpheme(m ast.Morpheme) error {
	switch v := m.(type) {
	case *ast.Literal:
		c.prog.emitWithOperand(PushLiteral, c.prog.addConstant(runtime.String(v.Text)))
		return nil
	case *ast.HereString:
		c.prog.emitWithOperand(PushLiteral, c.prog.addConstant(runtime.String(v.Text)))
		return nil
	case *ast.TaggedString:
		c.prog.emitWithOperand(PushLiteral, c.prog.addConstant(runtime.String(v.Text)))
		return nil
	case *ast.String:
		return c.compileQuotedString(v)
	default:
		return compileErrorf(m.Pos(), "invalid compound morpheme %T", m)
	}
}

// compileQuotedString pushes one joined String value for s: each
// sub-morpheme contributes a string to JoinStrings, in order.
func (c *compiler) compileQuotedString(s *ast.String) error {
	for _, m := range s.Morphemes {
		switch v := m.(type) {
		case *ast.Literal:
			c.prog.emitWithOperand(PushLiteral, c.prog.addConstant(runtime.String(v.Text)))
		case *ast.SubstituteNext:
			if err := c.compileSubstitutionTarget(v); err != nil {
				return err
			}
		default:
			return compileErrorf(m.Pos(), "invalid string morpheme %T", m)
		}
	}
	c.prog.emitWithOperand(JoinStrings, len(s.Morphemes))
	return nil
}

// compileTupleAsSubscript evaluates a Tuple morpheme's nested Script as a
// script (each Sentence invoked via EVALUATE_SENTENCE) and collects the
// per-Sentence results into one Tuple value — this is the "bare tuple
// subscript" evaluation, used both for a standalone TupleRole word and for
// a Tuple selector-morpheme's operand (see compileSelectorMorpheme).
func (c *compiler) compileTupleAsSubscript(body *ast.Script) error {
	c.prog.emit(OpenFrame)
	for _, sent := range body.Sentences {
		compiled, err := c.compileSentenceIfLive(sent)
		if err != nil {
			return err
		}
		if !compiled {
			c.prog.emit(PushNil)
		}
	}
	c.prog.emit(CloseFrameAsTuple)
	return nil
}

// compileExpressionAsSubscript evaluates every Sentence of body in order,
// discarding every result but the last (spec §4.2's Expression morpheme:
// "[...]" yields the value of the script it encloses). PopDiscard is the
// one opcode this Compiler adds beyond spec §4.5's minimum set — see
// DESIGN.md.
func (c *compiler) compileExpressionAsSubscript(body *ast.Script) error {
	live := make([]*ast.Sentence, 0, len(body.Sentences))
	for _, sent := range body.Sentences {
		ok, err := sentenceIsLive(sent)
		if err != nil {
			return err
		}
		if ok {
			live = append(live, sent)
		}
	}
	if len(live) == 0 {
		c.prog.emit(PushNil)
		return nil
	}
	for i, sent := range live {
		if err := c.compileSentence(sent); err != nil {
			return err
		}
		if i < len(live)-1 {
			c.prog.emit(PopDiscard)
		}
	}
	return nil
}

// compileSubstitutionWord compiles a "$name(selector)..." word: resolve
// the source, then apply each trailing selector morpheme in order.
func (c *compiler) compileSubstitutionWord(w *ast.Word) error {
	sub := w.Morphemes[0].(*ast.SubstituteNext)
	if err := c.compileSubstitutionTarget(sub); err != nil {
		return err
	}
	for _, m := range w.Morphemes[1:] {
		if err := c.compileSelectorMorpheme(m); err != nil {
			return err
		}
	}
	return nil
}

// compileSubstitutionTarget pushes sub's target as a name (or tuple of
// names) and resolves it DollarDepth times, so "$$x" performs two levels
// of indirection.
func (c *compiler) compileSubstitutionTarget(sub *ast.SubstituteNext) error {
	if err := c.compileSourceTarget(sub.Target); err != nil {
		return err
	}
	depth := sub.DollarDepth
	if depth < 1 {
		depth = 1
	}
	for i := 0; i < depth; i++ {
		c.prog.emit(ResolveValue)
	}
	return nil
}

// compileQualifiedWord compiles a "name(selector)..." word with no leading
// "$": the head still undergoes variable-lookup resolution once (spec
// §4.7's qualified-name resolution), then the trailing selector morphemes
// are built — not applied — onto the resulting QualifiedValue (spec
// §3.2/§4.3: a Qualified word *produces* a QualifiedValue; selectors are
// operations performed on that value later, by whatever command receives
// it).
func (c *compiler) compileQualifiedWord(w *ast.Word) error {
	if err := c.compileSourceTarget(w.Morphemes[0]); err != nil {
		return err
	}
	c.prog.emit(ResolveValue)
	c.prog.emit(MakeQualified)
	for _, m := range w.Morphemes[1:] {
		if err := c.compileQualifiedSelectorMorpheme(m); err != nil {
			return err
		}
	}
	return nil
}

// compileQualifiedSelectorMorpheme appends one Selector, built from m's
// operand, onto the QualifiedValue already on the stack — the
// chain-building counterpart to compileSelectorMorpheme's eager
// SELECT_INDEX/SELECT_KEYS/SELECT_RULES, used only for a Qualified word's
// trailing selectors (spec §4.3/§4.4).
func (c *compiler) compileQualifiedSelectorMorpheme(m ast.Morpheme) error {
	switch v := m.(type) {
	case *ast.Tuple:
		if err := c.compileTupleAsSubscript(v.Body); err != nil {
			return err
		}
		c.prog.emit(AppendIndexedSelector)
		return nil
	case *ast.Block:
		if err := c.compileWordsAsFrame(v.Body, CloseFrameAsTuple); err != nil {
			return err
		}
		c.prog.emit(AppendKeyedSelector)
		return nil
	case *ast.Expression:
		if err := c.compileWordsAsFrame(v.Body, CloseFrameAsList); err != nil {
			return err
		}
		c.prog.emit(AppendGenericSelector)
		return nil
	default:
		return compileErrorf(m.Pos(), "invalid selector morpheme %T", m)
	}
}

// compileSourceTarget pushes the name (or computed name) that RESOLVE_VALUE
// will look up, per the source-morpheme cases spec §4.2's grammar allows
// for a substitution/qualified head.
func (c *compiler) compileSourceTarget(m ast.Morpheme) error {
	switch v := m.(type) {
	case *ast.Literal:
		c.prog.emitWithOperand(PushLiteral, c.prog.addConstant(runtime.String(v.Text)))
		return nil
	case *ast.Tuple:
		// Per spec §4.7: a tuple source resolves element-wise, each element
		// being a separate variable name — not a command invocation, unlike
		// compileTupleAsSubscript's "bare tuple" evaluation.
		return c.compileNameTuple(v.Body)
	case *ast.Block:
		// A braced source names a variable via its literal (block-as-string)
		// text, treating the block the way spec §3.2 allows for "certain
		// commands" that use a block's source as a string.
		c.prog.emitWithOperand(PushLiteral, c.prog.addConstant(runtime.String(v.Source)))
		return nil
	case *ast.Expression:
		return c.compileExpressionAsSubscript(v.Body)
	default:
		return compileErrorf(m.Pos(), "invalid substitution target %T", m)
	}
}

// compileNameTuple builds a Tuple of literal name Strings from every word
// in body (flattened across Sentences), for a Tuple source target.
func (c *compiler) compileNameTuple(body *ast.Script) error {
	c.prog.emit(OpenFrame)
	for _, sent := range body.Sentences {
		for _, w := range sent.Words {
			role, err := syntax.Classify(w)
			if err != nil {
				return err
			}
			if role == syntax.Ignored {
				continue
			}
			if role == syntax.LiteralRole {
				lit := w.Morphemes[0].(*ast.Literal)
				c.prog.emitWithOperand(PushLiteral, c.prog.addConstant(runtime.String(lit.Text)))
				continue
			}
			// A computed name (e.g. a nested substitution): fall back to
			// the word's own value.
			if err := c.compileWordValue(w, role); err != nil {
				return err
			}
		}
	}
	c.prog.emit(CloseFrameAsTuple)
	return nil
}

// compileSelectorMorpheme applies one selector morpheme following a
// substitution head ("$name(selector)..."), mapping the three bracket
// shapes onto the three selector kinds of spec §4.4: a Tuple selects by
// index, a Block selects by one-or-more keys (its words, evaluated as
// values), and an Expression selects by an arbitrary rule list. A
// Substitution word's selectors apply eagerly against the already-
// resolved source value, unlike a Qualified word's (see
// compileQualifiedSelectorMorpheme), which builds a QualifiedValue chain
// instead of dereferencing immediately.
func (c *compiler) compileSelectorMorpheme(m ast.Morpheme) error {
	switch v := m.(type) {
	case *ast.Tuple:
		if err := c.compileTupleAsSubscript(v.Body); err != nil {
			return err
		}
		c.prog.emit(SelectIndex)
		return nil
	case *ast.Block:
		if err := c.compileWordsAsFrame(v.Body, CloseFrameAsTuple); err != nil {
			return err
		}
		c.prog.emit(SelectKeys)
		return nil
	case *ast.Expression:
		if err := c.compileWordsAsFrame(v.Body, CloseFrameAsList); err != nil {
			return err
		}
		c.prog.emit(SelectRules)
		return nil
	default:
		return compileErrorf(m.Pos(), "invalid selector morpheme %T", m)
	}
}

// compileWordsAsFrame pushes every live word's value across all of body's
// Sentences (sentence boundaries are not meaningful for a selector
// operand) and closes the frame with closeOp.
func (c *compiler) compileWordsAsFrame(body *ast.Script, closeOp OpCode) error {
	c.prog.emit(OpenFrame)
	for _, sent := range body.Sentences {
		for _, w := range sent.Words {
			role, err := syntax.Classify(w)
			if err != nil {
				return err
			}
			if role == syntax.Ignored {
				continue
			}
			if err := c.compileWordValue(w, role); err != nil {
				return err
			}
		}
	}
	c.prog.emit(closeOp)
	return nil
}
