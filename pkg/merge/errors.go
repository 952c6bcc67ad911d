package merge

import "fmt"

// SchemaChangeError is returned when a later table's header differs from the
// first one.
type SchemaChangeError struct {
	Previous string
	Current  string
}

func (e *SchemaChangeError) Error() string {
	return fmt.Sprintf("the schema changed between files as seen in change in the head line: %s != %s", e.Previous, e.Current)
}

// ColumnMissingInRowError is returned when a row has no field at a key index.
type ColumnMissingInRowError struct {
	Source string
	Line   int
	Index  int
}

func (e *ColumnMissingInRowError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("row in line %d did not have a column at index %d", e.Line, e.Index)
	}
	return fmt.Sprintf("row in %s line %d did not have a column at index %d", e.Source, e.Line, e.Index)
}
