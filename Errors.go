package enulog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when the input log does not exist.
	ErrNotFound = errors.New("file not found")
	// ErrEmptyDataset is returned when statistics are requested over no rows.
	ErrEmptyDataset = errors.New("empty dataset")
)

// SchemaError reports required columns missing from the header.
type SchemaError struct {
	Expected []string
	Missing  []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns %v. Expected: [%s]", e.Missing, strings.Join(e.Expected, ", "))
}

// ParseError reports a value that could not be converted.
type ParseError struct {
	Column string
	Row    int // 1-based data row
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("column %s, row %d: cannot parse %q: %v", e.Column, e.Row, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
