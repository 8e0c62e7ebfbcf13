// Package syntax implements the Syntax classifier of spec §4.3: given a
// parsed Word, it determines the word role that tells the Compiler
// (internal/bytecode) which evaluation strategy applies.
package syntax

import (
	"fmt"

	"github.com/mekotech/loom/internal/ast"
)

// Role is a word's evaluation strategy, as named in spec §2 item 3.
type Role int

const (
	Ignored Role = iota
	Root
	Compound
	Substitution
	Qualified
	StringRole
	HereStringRole
	BlockRole
	TupleRole
	ExpressionRole
	LiteralRole
)

func (r Role) String() string {
	switch r {
	case Ignored:
		return "Ignored"
	case Root:
		return "Root"
	case Compound:
		return "Compound"
	case Substitution:
		return "Substitution"
	case Qualified:
		return "Qualified"
	case StringRole:
		return "String"
	case HereStringRole:
		return "HereString"
	case BlockRole:
		return "Block"
	case TupleRole:
		return "Tuple"
	case ExpressionRole:
		return "Expression"
	case LiteralRole:
		return "Literal"
	default:
		return "Unknown"
	}
}

// Error is raised for a word whose morpheme sequence does not match any
// recognised shape (spec §4.3: "invalid word structure").
type Error struct {
	Word *ast.Word
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func isComment(m ast.Morpheme) bool {
	switch m.(type) {
	case *ast.LineComment, *ast.BlockComment:
		return true
	default:
		return false
	}
}

func isSelector(m ast.Morpheme) bool {
	switch m.(type) {
	case *ast.Tuple, *ast.Block, *ast.Expression:
		return true
	default:
		return false
	}
}

func isTextual(m ast.Morpheme) bool {
	switch m.(type) {
	case *ast.Literal, *ast.String, *ast.HereString, *ast.TaggedString:
		return true
	default:
		return false
	}
}

// Classify determines the Role of w.
func Classify(w *ast.Word) (Role, error) {
	if len(w.Morphemes) == 0 {
		return Ignored, nil
	}

	allComments := true
	for _, m := range w.Morphemes {
		if !isComment(m) {
			allComments = false
			break
		}
	}
	if allComments {
		return Ignored, nil
	}

	if len(w.Morphemes) == 1 {
		switch m := w.Morphemes[0].(type) {
		case *ast.Literal:
			return LiteralRole, nil
		case *ast.Block:
			return BlockRole, nil
		case *ast.Tuple:
			return TupleRole, nil
		case *ast.Expression:
			return ExpressionRole, nil
		case *ast.HereString:
			return HereStringRole, nil
		case *ast.String, *ast.TaggedString:
			return StringRole, nil
		case *ast.SubstituteNext:
			return Substitution, nil
		default:
			return Ignored, &Error{Word: w, Msg: fmt.Sprintf("invalid word structure: unexpected morpheme %T", m)}
		}
	}

	first := w.Morphemes[0]

	if _, ok := first.(*ast.SubstituteNext); ok {
		// Substitution: SubstituteNext followed only by selector morphemes.
		for _, m := range w.Morphemes[1:] {
			if !isSelector(m) {
				return Ignored, &Error{Word: w, Msg: "invalid word structure: substitution followed by non-selector morpheme"}
			}
		}
		return Substitution, nil
	}

	if isTextual(first) || isSelectorHead(first) {
		allSelectorsAfterHead := true
		anySubstitute := false
		for _, m := range w.Morphemes[1:] {
			if _, ok := m.(*ast.SubstituteNext); ok {
				anySubstitute = true
			}
			if !isSelector(m) {
				allSelectorsAfterHead = false
			}
		}
		if !anySubstitute && allSelectorsAfterHead && len(w.Morphemes) > 1 {
			return Qualified, nil
		}

		allTextual := true
		for _, m := range w.Morphemes {
			if !isTextual(m) {
				allTextual = false
				break
			}
		}
		if allTextual {
			return Compound, nil
		}
	}

	return Ignored, &Error{Word: w, Msg: "invalid word structure"}
}

func isSelectorHead(m ast.Morpheme) bool {
	switch m.(type) {
	case *ast.Literal, *ast.Tuple:
		return true
	default:
		return false
	}
}
