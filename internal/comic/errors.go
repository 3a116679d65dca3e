package comic

import (
	"errors"
	"fmt"
)

// Kind classifies why a comic could not be fetched.
type Kind int

const (
	KindInvalidTarget Kind = iota
	KindTransport
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindInvalidTarget:
		return "invalid target"
	case KindTransport:
		return "transport failure"
	case KindDecode:
		return "decode failure"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is matching against a *FetchError.
var (
	ErrInvalidTarget = errors.New("invalid target")
	ErrTransport     = errors.New("transport failure")
	ErrDecode        = errors.New("decode failure")
)

// FetchError is returned by every Fetcher failure. Number is 0 for the
// latest-comic lookup.
type FetchError struct {
	Kind   Kind
	Number int
	Err    error
}

func (e *FetchError) Error() string {
	target := "latest"
	if e.Number > 0 {
		target = fmt.Sprintf("#%d", e.Number)
	}
	if e.Err == nil {
		return fmt.Sprintf("fetching comic %s: %s", target, e.Kind)
	}
	return fmt.Sprintf("fetching comic %s: %s: %v", target, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrInvalidTarget:
		return e.Kind == KindInvalidTarget
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrDecode:
		return e.Kind == KindDecode
	}
	return false
}

func newFetchError(kind Kind, num int, err error) *FetchError {
	return &FetchError{Kind: kind, Number: num, Err: err}
}
