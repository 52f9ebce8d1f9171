package format

import (
	"errors"
	"fmt"
)

var ErrMissingParams = errors.New("format: not enough parameters")

// FormatError reports a malformed compact document. Want names the expected
// keyword; Err, when set, is a sentinel such as ErrMissingParams.
type FormatError struct {
	Line int
	Want string
	Msg  string
	Err  error
}

func (e *FormatError) Error() string {
	if e.Msg == "" && e.Want != "" {
		return fmt.Sprintf("Line %d must start with '%s'", e.Line, e.Want)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func (e *FormatError) Unwrap() error { return e.Err }

// DecodeError reports a structured document that could not be decoded.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "decode score: " + e.Err.Error() }

func (e *DecodeError) Unwrap() error { return e.Err }
