package resolve

import (
	"errors"
	"fmt"
)

// Kind categorises a resolution failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindMixedTypes means the keyframes mix numbers and strings.
	KindMixedTypes
	// KindNoCurrentValue means a placeholder had no subject value to read.
	KindNoCurrentValue
	// KindUnresolvedSymbol means a var(--name) keyframe could not be looked up.
	KindUnresolvedSymbol
)

func (k Kind) String() string {
	switch k {
	case KindMixedTypes:
		return "mixed types"
	case KindNoCurrentValue:
		return "no current value"
	case KindUnresolvedSymbol:
		return "unresolved symbol"
	default:
		return "unknown"
	}
}

// Error is a keyframe resolution failure. Failed resolutions are never
// retried.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a resolution Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
