// Package table is the record model shared by the merger and the reconciler:
// a header plus rows of raw string fields, with enough provenance on every row
// to point back at the file and line it came from.
package table

import (
	"strconv"
)

// Row is one data record. Fields are raw bytes held in Go strings; no
// encoding validation is performed when rows are read.
type Row struct {
	Fields []string
	// Source names the file the row was read from.
	Source string
	// Line is the 1-based line (or sheet row) of the row in Source.
	Line int
}

// Get returns the field at index i, reporting whether it exists.
func (r Row) Get(i int) (string, bool) {
	if i < 0 || i >= len(r.Fields) {
		return "", false
	}
	return r.Fields[i], true
}

// Len returns the number of fields.
func (r Row) Len() int {
	return len(r.Fields)
}

// Append returns a copy of r extended with fields. The receiver is left
// untouched so rows shared with other tables never grow behind their back.
func (r Row) Append(fields ...string) Row {
	out := make([]string, 0, len(r.Fields)+len(fields))
	out = append(out, r.Fields...)
	out = append(out, fields...)
	return Row{Fields: out, Source: r.Source, Line: r.Line}
}

// Table is an ordered header plus rows.
type Table struct {
	Header []string
	Rows   []Row
	// Source names the file the table was read from, if any.
	Source string
}

// New creates an empty table with the given header.
func New(header []string) *Table {
	return &Table{Header: header}
}

// Add appends a row built from fields. Provenance is taken from the
// position of the row in the table, as if the table had been read from a
// file with a single header line.
func (t *Table) Add(fields ...string) {
	t.Rows = append(t.Rows, Row{
		Fields: fields,
		Source: t.Source,
		Line:   len(t.Rows) + 2,
	})
}

// Width returns the number of header columns.
func (t *Table) Width() int {
	return len(t.Header)
}

// Column resolves selector against the header. kind describes the role of
// the column ("key", "sort", "date", ...) and ends up in the error message.
func (t *Table) Column(selector, kind string) (int, error) {
	idx, ok := Select(t.Header, selector)
	if !ok {
		return 0, &MissingColumnError{Name: selector, Kind: kind}
	}
	return idx, nil
}

// Select returns the position of selector in header. A selector that parses
// as a non-negative integer is always treated as an index, never as a name.
func Select(header []string, selector string) (int, bool) {
	if idx, err := strconv.ParseUint(selector, 10, 0); err == nil {
		if idx >= uint64(len(header)) {
			return 0, false
		}
		return int(idx), true
	}
	for i, name := range header {
		if name == selector {
			return i, true
		}
	}
	return 0, false
}
