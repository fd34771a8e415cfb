package translation

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a remote failure
type Kind int

const (
	KindNone Kind = iota
	KindTransient
	KindFatal
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindTransient:
		return "transient"
	case KindFatal:
		return "fatal"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

var (
	// ErrRetriesExhausted wraps the last transient error once MaxAttempts is reached
	ErrRetriesExhausted = errors.New("retries exhausted")

	// ErrEmptyResponse is returned when the remote answers a non-empty document with nothing
	ErrEmptyResponse = errors.New("empty response from remote")
)

// TransientError marks a failure expected to clear with time (rate limit, quota)
type TransientError struct {
	Err error
}

// NewTransientError tags err as transient
func NewTransientError(err error) error {
	return &TransientError{Err: err}
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// FatalError marks a failure that retrying will not fix
type FatalError struct {
	Err error
}

// NewFatalError tags err as fatal
func NewFatalError(err error) error {
	return &FatalError{Err: err}
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal: %v", e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Classify inspects the tag of err. Tags win over the wrapped error, so a
// remote timeout tagged fatal stays fatal. Untagged context errors are
// cancellations, any other untagged error is fatal.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}

	var transient *TransientError
	var fatal *FatalError
	switch {
	case errors.As(err, &fatal):
		return KindFatal
	case errors.As(err, &transient):
		return KindTransient
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	default:
		return KindFatal
	}
}

// tagContextError turns an untagged context error into a fatal one unless
// ctx itself is done. Only the caller's context decides cancellation; a
// deadline hit inside a remote call is an ordinary remote failure.
func tagContextError(ctx context.Context, err error) error {
	if err == nil || ctx.Err() != nil {
		return err
	}
	if Classify(err) == KindCancelled {
		return NewFatalError(err)
	}
	return err
}
