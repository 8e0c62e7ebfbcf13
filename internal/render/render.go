// Package render is the Display/string-form component of spec §2.9: a thin,
// host-facing entry point over the canonical rendering already carried by
// internal/ast's Node.String() methods and internal/runtime's Value.String()
// methods. It adds nothing to how either package renders text; it exists so
// a host (or a test) has one place to call instead of reaching into both
// packages directly, and so the re-parse round-trip property (spec §8.1) has
// a single function to exercise.
package render

import (
	"github.com/mekotech/loom/internal/ast"
	"github.com/mekotech/loom/internal/runtime"
)

// Script renders tree back to source text. Every Block morpheme carries its
// exact source text verbatim, so nothing about brace-delimited bodies is
// lost in the round trip. Outside blocks, escape sequences are rendered in
// their unescaped form (`"a\"b"` renders as `"a"b"`), so such a script does
// not reparse to the same tree.
func Script(tree *ast.Script) string { return tree.String() }

// Value renders v's canonical string form, for the subset of the value
// model that has one (spec §3.2): Boolean, Integer, Real, and String. Every
// other variant (Nil, List, Dictionary, Tuple, Script, Deferred,
// CommandValue, QualifiedValue) has no canonical form by spec invariant —
// they round-trip only through typed commands that re-serialise them — so
// Value returns the same "no string representation" error v.String() itself
// would.
func Value(v runtime.Value) (string, error) { return v.String() }
