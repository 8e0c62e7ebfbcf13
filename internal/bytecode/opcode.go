// Package bytecode implements the Compiler of spec §4.5: it lowers a
// parsed Script into a flat, position-independent Program of opcodes plus
// a constant pool, ready for internal/vm to execute.
//
// The opcode-as-byte, disassembler-with-writer, and functional-options
// optimizer shapes are carried over from the teacher's
// internal/bytecode package; the opcode set itself is this language's own
// (spec §4.5), not the teacher's stack-machine-for-Pascal-expressions set.
package bytecode

// OpCode identifies a single bytecode instruction.
type OpCode byte

const (
	// PushNil pushes Nil.
	// Stack: [] -> [nil]
	PushNil OpCode = iota

	// PushConstant pushes constant-pool[operand].
	// Stack: [] -> [value]
	PushConstant

	// PushLiteral pushes String(constant-pool[operand]) — the pool entry
	// is always a String for this opcode, kept distinct from PushConstant
	// so the disassembler can tell a literal push from a block/script
	// constant push apart (spec §4.5 lists them separately).
	// Stack: [] -> [string]
	PushLiteral

	// OpenFrame begins collecting a new word-list: it records the current
	// operand-stack depth as a frame mark.
	// Stack: [] -> []
	OpenFrame

	// CloseFrameAsTuple closes the innermost frame, taking every value
	// pushed since the matching OpenFrame and replacing them with one
	// Tuple.
	// Stack: [...frame] -> [tuple]
	CloseFrameAsTuple

	// CloseFrameAsList is CloseFrameAsTuple's List-producing counterpart,
	// used for selector-rule and generic-selector operand lists.
	// Stack: [...frame] -> [list]
	CloseFrameAsList

	// ResolveValue pops a name (String, or Tuple of names resolved
	// element-wise per spec §4.7) and pushes the bound value(s), failing
	// with "cannot resolve variable" if unbound.
	// Stack: [name] -> [value]
	ResolveValue

	// ExpandValue pops the top value; if it is a Tuple, its elements are
	// pushed back individually (splicing them into the enclosing frame);
	// otherwise the value is pushed back unchanged.
	// Stack: [value] -> [value] or [...elements]
	ExpandValue

	// SetSource carries a constant-pool operand but is a no-op in
	// internal/vm: no value is tagged with a source position, and the
	// Compiler never emits it.
	// Stack: [value] -> [value]
	SetSource

	// SelectIndex pops an index, pops a value, and pushes the result of
	// indexed selection.
	// Stack: [value, index] -> [result]
	SelectIndex

	// SelectKeys pops a keys Tuple, pops a value, and pushes the result
	// of keyed selection.
	// Stack: [value, keys] -> [result]
	SelectKeys

	// SelectRules pops a rules List, pops a value, and pushes the result
	// of rule-based selection.
	// Stack: [value, rules] -> [result]
	SelectRules

	// EvaluateSentence pops a frame-as-tuple, resolves its head as a
	// command, invokes it, and pushes the resulting Result's value (or
	// aborts the program if the Result's code is not OK).
	// Stack: [tuple] -> [value]
	EvaluateSentence

	// PushResult pops the top value and publishes it as the program's
	// last Result (code OK).
	// Stack: [value] -> []
	PushResult

	// JoinStrings pops operand values and pushes their concatenated
	// string form.
	// Stack: [v1..vN] -> [string]
	JoinStrings

	// PopDiscard pops and discards the top value. Not part of spec
	// §4.5's minimum opcode list; added to sequence an Expression
	// morpheme's multiple sentences (§4.2) so that only the final
	// sentence's result survives — see DESIGN.md.
	// Stack: [value] -> []
	PopDiscard

	// MakeQualified pops a resolved source value and pushes a
	// QualifiedValue wrapping it with an empty selector chain (spec
	// §3.2/§4.3: a Qualified word produces a QualifiedValue, it does not
	// eagerly dereference through its selectors).
	// Stack: [source] -> [qualified]
	MakeQualified

	// AppendIndexedSelector pops an index, pops a QualifiedValue, and
	// pushes a new QualifiedValue with an IndexedSelector(index)
	// appended to its chain.
	// Stack: [qualified, index] -> [qualified]
	AppendIndexedSelector

	// AppendKeyedSelector pops a keys Tuple, pops a QualifiedValue, and
	// pushes a new QualifiedValue with a KeyedSelector(keys) appended,
	// coalescing with a trailing KeyedSelector already on the chain
	// (spec §4.4/§8.3).
	// Stack: [qualified, keys] -> [qualified]
	AppendKeyedSelector

	// AppendGenericSelector pops a rules List, pops a QualifiedValue,
	// and pushes a new QualifiedValue with a GenericSelector(rules)
	// appended to its chain.
	// Stack: [qualified, rules] -> [qualified]
	AppendGenericSelector
)

var opcodeNames = map[OpCode]string{
	PushNil:               "PUSH_NIL",
	PushConstant:          "PUSH_CONSTANT",
	PushLiteral:           "PUSH_LITERAL",
	OpenFrame:             "OPEN_FRAME",
	CloseFrameAsTuple:     "CLOSE_FRAME_AS_TUPLE",
	CloseFrameAsList:      "CLOSE_FRAME_AS_LIST",
	ResolveValue:          "RESOLVE_VALUE",
	ExpandValue:           "EXPAND_VALUE",
	SetSource:             "SET_SOURCE",
	SelectIndex:           "SELECT_INDEX",
	SelectKeys:            "SELECT_KEYS",
	SelectRules:           "SELECT_RULES",
	EvaluateSentence:      "EVALUATE_SENTENCE",
	PushResult:            "PUSH_RESULT",
	JoinStrings:           "JOIN_STRINGS",
	PopDiscard:            "POP_DISCARD",
	MakeQualified:         "MAKE_QUALIFIED",
	AppendIndexedSelector: "APPEND_INDEXED_SELECTOR",
	AppendKeyedSelector:   "APPEND_KEYED_SELECTOR",
	AppendGenericSelector: "APPEND_GENERIC_SELECTOR",
}

func (op OpCode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "UNKNOWN"
}

// hasOperand reports whether op carries a meaningful int operand, purely
// for the disassembler's formatting.
func (op OpCode) hasOperand() bool {
	switch op {
	case PushConstant, PushLiteral, SetSource, JoinStrings:
		return true
	default:
		return false
	}
}
