package persist

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind categorizes a persist.Error the way SPEC_FULL.md §7 describes: the
// four failure families a caller might want to branch on.
type Kind uint8

const (
	KindIO Kind = iota
	KindParquet
	KindInvariant
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindParquet:
		return "parquet"
	case KindInvariant:
		return "invariant"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// Error is the single exported error type this package returns. It carries
// a Kind alongside the wrapped cause so callers can branch with a type
// switch or reach the underlying error with errors.As/errors.Is.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("persist: %s error", e.Kind)
	}
	return fmt.Sprintf("persist: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrDisabled is not returned by any operation in this package: a disabled
// TableWriter makes every operation a successful no-op instead
// (SPEC_FULL.md §7). The sentinel exists for callers that check
// TableWriter.Enabled and want an error value to report persistence being
// off.
var ErrDisabled = errors.New("persist: writer is disabled")

func wrapIO(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindIO, Err: errors.WithStack(err)}
}

func wrapParquet(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindParquet, Err: errors.WithStack(err)}
}

// Invariantf builds a KindInvariant error from a formatted message.
func Invariantf(format string, args ...any) error {
	return &Error{Kind: KindInvariant, Err: errors.Errorf(format, args...)}
}

// Otherf builds a KindOther error from a formatted message.
func Otherf(format string, args ...any) error {
	return &Error{Kind: KindOther, Err: errors.Errorf(format, args...)}
}
