package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingColumns is returned by Load when a required column is absent
	// from the header.
	ErrMissingColumns = errors.New("dataset: missing required columns")
	// ErrNoHeader is returned by Load for an empty file.
	ErrNoHeader = errors.New("dataset: missing header row")
	// ErrTooManyFields reports a row with more fields than the header.
	ErrTooManyFields = errors.New("too many fields")
	// ErrColumnLength is returned by Write when columns differ in length.
	ErrColumnLength = errors.New("dataset: columns differ in length")
)

// ParseError describes malformed content in a chunk file.
type ParseError struct {
	Path   string
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("dataset: %s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("dataset: %s:%d: column %s: invalid value %q: %v", e.Path, e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
