package runtime

import (
	"fmt"

	"github.com/mekotech/loom/internal/errcat"
)

func errNoStringForm(_ string) error {
	return fmt.Errorf("%s", errcat.NoStringRepresentation())
}

func errInvalidIndex() error {
	return fmt.Errorf("%s", errcat.InvalidIndex())
}

func errIndexOutOfRange(idx Value) error {
	s, strErr := idx.String()
	if strErr != nil {
		s = "?"
	}
	return fmt.Errorf("%s", errcat.IndexOutOfRange(s))
}

func errEmptySelector() error {
	return fmt.Errorf("%s", errcat.EmptySelector())
}

func errUnknownKey(key string) error {
	return fmt.Errorf("unknown key %q", key)
}

func errNotSelectable(kind, selectorKind string) error {
	return fmt.Errorf("value of type %q is not %s-selectable", kind, selectorKind)
}
