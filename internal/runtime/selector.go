package runtime

// Selector is one of the three constructors of spec §4.4: Indexed, Keyed,
// or Generic. Selectors are built at run time by the VM's SELECT_* and
// APPEND_*_SELECTOR opcodes from their evaluated operands, and applied
// against resolved source values.
type Selector interface {
	// Apply performs the selection against v.
	Apply(v Value) (Value, error)
	selectorNode()
}

// IndexedSelector applies select_index. Building one with a Nil operand is
// an error at construction time (spec §4.4).
type IndexedSelector struct {
	Index Value
}

// NewIndexedSelector validates idx before constructing the selector.
func NewIndexedSelector(idx Value) (*IndexedSelector, error) {
	if _, isNil := idx.(Nil); isNil {
		return nil, errInvalidIndex()
	}
	return &IndexedSelector{Index: idx}, nil
}

func (s *IndexedSelector) selectorNode() {}

func (s *IndexedSelector) Apply(v Value) (Value, error) {
	return applyIndex(v, s.Index)
}

// KeyedSelector applies select_key once per key in order; against a
// QualifiedValue, adjacent keyed selectors are coalesced by the caller
// (QualifiedValue.WithSelector), not by Apply itself.
type KeyedSelector struct {
	Keys []Value
}

// NewKeyedSelector validates that keys is non-empty.
func NewKeyedSelector(keys []Value) (*KeyedSelector, error) {
	if len(keys) == 0 {
		return nil, errEmptySelector()
	}
	return &KeyedSelector{Keys: keys}, nil
}

func (s *KeyedSelector) selectorNode() {}

func (s *KeyedSelector) Apply(v Value) (Value, error) {
	cur := v
	for _, k := range s.Keys {
		next, err := applyKey(cur, k)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// GenericSelector applies select_rules with an arbitrary rule vector,
// realised here as a Tuple of rule Values.
type GenericSelector struct {
	Rules []Value
}

// NewGenericSelector validates that rules is non-empty.
func NewGenericSelector(rules []Value) (*GenericSelector, error) {
	if len(rules) == 0 {
		return nil, errEmptySelector()
	}
	return &GenericSelector{Rules: rules}, nil
}

func (s *GenericSelector) selectorNode() {}

func (s *GenericSelector) Apply(v Value) (Value, error) {
	return applyRules(v, NewTuple(s.Rules...))
}

// QualifiedValue pairs a source Value with an ordered list of Selectors
// (spec §3.2). Appending a KeyedSelector onto a QualifiedValue whose last
// selector is also keyed merges the two into one multi-key selector, per
// spec §4.4's canonicalisation rule.
type QualifiedValue struct {
	Source    Value
	Selectors []Selector
}

func NewQualifiedValue(source Value, selectors ...Selector) *QualifiedValue {
	return &QualifiedValue{Source: source, Selectors: selectors}
}

func (q *QualifiedValue) Type() string            { return "qualified" }
func (q *QualifiedValue) String() (string, error) { return "", errNoStringForm("qualified") }

// WithSelector returns a new QualifiedValue with sel appended, coalescing
// with a trailing KeyedSelector when both are keyed.
func (q *QualifiedValue) WithSelector(sel Selector) *QualifiedValue {
	if len(q.Selectors) > 0 {
		if last, ok := q.Selectors[len(q.Selectors)-1].(*KeyedSelector); ok {
			if next, ok := sel.(*KeyedSelector); ok {
				merged := make([]Selector, len(q.Selectors)-1, len(q.Selectors)+1)
				copy(merged, q.Selectors[:len(q.Selectors)-1])
				merged = append(merged, &KeyedSelector{Keys: append(append([]Value{}, last.Keys...), next.Keys...)})
				return &QualifiedValue{Source: q.Source, Selectors: merged}
			}
		}
	}
	out := make([]Selector, len(q.Selectors)+1)
	copy(out, q.Selectors)
	out[len(q.Selectors)] = sel
	return &QualifiedValue{Source: q.Source, Selectors: out}
}

// Resolve applies Selectors in order against a resolved source value.
func (q *QualifiedValue) Resolve(source Value) (Value, error) {
	cur := source
	for _, sel := range q.Selectors {
		next, err := sel.Apply(cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
