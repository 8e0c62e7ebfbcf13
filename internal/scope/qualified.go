package scope

import (
	"github.com/mekotech/loom/internal/errcat"
	"github.com/mekotech/loom/internal/runtime"
)

// ResolveQualified resolves q's source component against ctx and then
// applies its selectors in order (spec §4.7): a Literal source (carried as
// a runtime.String naming a variable) resolves through variable lookup; a
// Tuple source resolves element-wise, each element treated the same way,
// producing a Tuple of resolved values before selectors are applied.
func ResolveQualified(ctx runtime.Context, q *runtime.QualifiedValue) (runtime.Value, error) {
	source, err := resolveSource(ctx, q.Source)
	if err != nil {
		return nil, err
	}
	return q.Resolve(source)
}

// ResolveName resolves a single name-or-tuple-of-names against ctx: a
// String resolves through variable lookup, and a Tuple resolves
// element-wise (spec §4.7). internal/vm's RESOLVE_VALUE opcode uses this
// directly, since it is exactly ResolveQualified's source-resolution step
// applied without any trailing selectors.
func ResolveName(ctx runtime.Context, name runtime.Value) (runtime.Value, error) {
	return resolveSource(ctx, name)
}

func resolveSource(ctx runtime.Context, source runtime.Value) (runtime.Value, error) {
	switch v := source.(type) {
	case runtime.String:
		resolved, ok := ctx.ResolveVariable(string(v))
		if !ok {
			return nil, &Error{Msg: errcat.CannotResolveVariable(string(v))}
		}
		return resolved, nil
	case *runtime.Tuple:
		out := make([]runtime.Value, len(v.Elements))
		for i, elem := range v.Elements {
			resolved, err := resolveSource(ctx, elem)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return runtime.NewTuple(out...), nil
	default:
		return source, nil
	}
}
