package report

import (
	"errors"
	"fmt"
)

// InputError means a report file does not exist or could not be opened.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input error: %s: %v", e.Path, e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *InputError) Unwrap() error {
	return e.Err
}

// NewInputError creates a new InputError
func NewInputError(path string, err error) *InputError {
	return &InputError{Path: path, Err: err}
}

// IsInputError checks if the error is or wraps an InputError
func IsInputError(err error) bool {
	var inputErr *InputError
	return err != nil && errors.As(err, &inputErr)
}

// ParseError means a report file is not well-formed XML.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s: %v", e.Path, e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(path string, err error) *ParseError {
	return &ParseError{Path: path, Err: err}
}

// IsParseError checks if the error is or wraps a ParseError
func IsParseError(err error) bool {
	var parseErr *ParseError
	return err != nil && errors.As(err, &parseErr)
}

// MalformedRecordError means a test element is missing a required attribute
// or carries a time that is not a non-negative number.
type MalformedRecordError struct {
	Path   string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record: %s: %s", e.Path, e.Reason)
}

// NewMalformedRecordError creates a new MalformedRecordError
func NewMalformedRecordError(path string, reason string) *MalformedRecordError {
	return &MalformedRecordError{Path: path, Reason: reason}
}

// IsMalformedRecordError checks if the error is or wraps a MalformedRecordError
func IsMalformedRecordError(err error) bool {
	var recordErr *MalformedRecordError
	return err != nil && errors.As(err, &recordErr)
}
