package parser

import (
	"errors"
	"fmt"
)

// Sentinel errors wrapped by ParseError.
var (
	ErrUnterminatedString = errors.New("unterminated string")
	ErrUnmatchedParen     = errors.New("unmatched parenthesis")
	ErrMissingValue       = errors.New("missing filter value")
	ErrUnterminatedList   = errors.New("unterminated list")
	ErrEmptyList          = errors.New("empty list")
	ErrEmptyListItem      = errors.New("empty list item")
	ErrUnexpectedToken    = errors.New("unexpected token")
	ErrTooDeep            = errors.New("nesting too deep")
)

// ParseError provides detailed error information including position.
type ParseError struct {
	Pos     int    // byte offset in input
	Message string // human-readable error message
	Err     error  // underlying sentinel error (for errors.Is)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at position %d: %s", e.Pos, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// newParseError creates a ParseError with the given position and sentinel error.
func newParseError(pos int, err error, msgFmt string, args ...any) *ParseError {
	return &ParseError{
		Pos:     pos,
		Message: fmt.Sprintf(msgFmt, args...),
		Err:     err,
	}
}
