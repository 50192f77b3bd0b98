package toc

import (
	"errors"
	"fmt"
)

// ErrNoTOC is the terminal condition for a scan that finished with an empty
// candidate set.
var ErrNoTOC = errors.New("no table of contents found")

// OracleResponseError means the oracle's raw text could not be parsed as the
// expected JSON shape. Distinct from OracleDeclinedError: here we could not
// understand the oracle at all.
type OracleResponseError struct {
	Stage string // "detect" or "parse"
	Raw   string
	Err   error
}

func (e *OracleResponseError) Error() string {
	return fmt.Sprintf("oracle %s response malformed: %v", e.Stage, e.Err)
}

func (e *OracleResponseError) Unwrap() error { return e.Err }

// OracleDeclinedError means the oracle answered with a well-formed failure
// status. We understood the oracle, and it declined; its message is kept
// verbatim.
type OracleDeclinedError struct {
	StatusCode int
	Message    string
}

func (e *OracleDeclinedError) Error() string {
	return fmt.Sprintf("oracle declined (status %d): %s", e.StatusCode, e.Message)
}
