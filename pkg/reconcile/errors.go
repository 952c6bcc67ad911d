package reconcile

import (
	"fmt"
	"strings"
)

// RowFieldMissingError is returned when a row has no field at a required
// index.
type RowFieldMissingError struct {
	Source string
	Line   int
	Index  int
	Kind   string
}

func (e *RowFieldMissingError) Error() string {
	return fmt.Sprintf("a %s column at index %d in row at %s could not be found", e.Kind, e.Index, position(e.Source, e.Line))
}

// InvalidDateEncodingError is returned when date bytes are not valid UTF-8.
type InvalidDateEncodingError struct {
	Source string
	Line   int
	Date   string
}

func (e *InvalidDateEncodingError) Error() string {
	return fmt.Sprintf("date %q at %s contained invalid UTF-8", strings.ToValidUTF8(e.Date, "�"), position(e.Source, e.Line))
}

// DateParseError is returned when a date does not match its grammar.
type DateParseError struct {
	Source   string
	Line     int
	DateTime string
	Grammar  Grammar
	Err      error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("failed to parse %s time %q at %s: %v", e.Grammar, e.DateTime, position(e.Source, e.Line), e.Err)
}

func (e *DateParseError) Unwrap() error {
	return e.Err
}

func position(source string, line int) string {
	if source == "" {
		return fmt.Sprintf("line %d", line)
	}
	return fmt.Sprintf("%s line %d", source, line)
}
