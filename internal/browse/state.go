package browse

import (
	"fmt"

	"github.com/pders01/panels/internal/comic"
)

type Mode int

const (
	ModeBrowsing Mode = iota
	ModeSearchResults
)

func (m Mode) String() string {
	switch m {
	case ModeBrowsing:
		return "browsing"
	case ModeSearchResults:
		return "search results"
	default:
		return "unknown"
	}
}

type ErrorKind int

const (
	InitializationFailure ErrorKind = iota
	SearchInputInvalid
	ExactLookupFailure
	NoMatches
)

// Error is a failure surfaced to the user through State.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func initializationError(err error) *Error {
	return &Error{Kind: InitializationFailure, Message: "Failed to load latest comic. Please try again later.", Err: err}
}

func inputError() *Error {
	return &Error{Kind: SearchInputInvalid, Message: "Please enter a comic number or title"}
}

func lookupError(num int, err error) *Error {
	return &Error{Kind: ExactLookupFailure, Message: fmt.Sprintf("Failed to find comic #%d", num), Err: err}
}

func noMatchesError(query string) *Error {
	return &Error{Kind: NoMatches, Message: fmt.Sprintf("No comics found matching '%s'", query)}
}

// State is a snapshot of everything the presentation layer renders.
// CurrentPage is 0 while showing search results.
type State struct {
	Mode          Mode
	CurrentPage   int
	TotalPages    int
	Latest        int
	Items         []comic.Comic
	Loading       bool
	Err           *Error
	Progress      string
	Query         string
	RangeText     string
	CanGoPrevious bool
	CanGoNext     bool
}

// ErrorMessage returns the user-facing error text, or "".
func (s State) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Message
}

func (s State) clone() State {
	s.Items = append([]comic.Comic(nil), s.Items...)
	return s
}
