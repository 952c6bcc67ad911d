package table

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Delimiter parses a configured delimiter. Besides a literal character it
// accepts a few spelled-out names.
func Delimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "", "comma":
		return ',', nil
	case `\t`, "tab":
		return '\t', nil
	case "pipe":
		return '|', nil
	case "semicolon":
		return ';', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) {
		return 0, &InvalidDelimiterError{Value: s}
	}
	if err := ValidDelimiter(r); err != nil {
		return 0, err
	}
	return r, nil
}

// ValidDelimiter reports whether r can be used as a single-byte field
// delimiter.
func ValidDelimiter(r rune) error {
	if r <= 0 || r >= utf8.RuneSelf || r == '"' || r == '\r' || r == '\n' {
		return &InvalidDelimiterError{Delimiter: r}
	}
	return nil
}

// byteOrderMark is written by spreadsheet tools at the start of UTF-8 exports.
const byteOrderMark = "\ufeff"

// Read parses delimited text into a table. The first record is the header;
// every following record must have as many fields as the header. Bare quotes
// inside unquoted fields are kept literally and a leading byte order mark is
// skipped.
func Read(r io.Reader, delimiter rune, source string) (*Table, error) {
	if err := ValidDelimiter(delimiter); err != nil {
		return nil, err
	}

	br := bufio.NewReader(r)
	if bom, err := br.Peek(len(byteOrderMark)); err == nil && string(bom) == byteOrderMark {
		_, _ = br.Discard(len(byteOrderMark))
	}

	cr := csv.NewReader(br)
	cr.Comma = delimiter
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: missing header line", source)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	t := &Table{Header: header, Source: source}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		line, _ := cr.FieldPos(0)
		t.Rows = append(t.Rows, Row{Fields: record, Source: source, Line: line})
	}
	return t, nil
}

// Write emits t as comma-delimited text, header first.
func Write(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(row.Fields); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatRecord renders fields as a single comma-delimited line without the
// trailing newline.
func FormatRecord(fields []string) string {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	_ = cw.Write(fields)
	cw.Flush()
	return strings.TrimRight(buf.String(), "\r\n")
}

// InvalidDelimiterError is returned for delimiters that cannot be encoded as
// a single byte. Value holds the configured text when it is not a single
// character.
type InvalidDelimiterError struct {
	Delimiter rune
	Value     string
}

func (e *InvalidDelimiterError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("delimiter %q must be a single character", e.Value)
	}
	return fmt.Sprintf("cannot use %q as delimiter", e.Delimiter)
}

// MissingColumnError is returned when a column selector does not resolve
// against a header.
type MissingColumnError struct {
	Name string
	Kind string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("a %s column of index or name %q could not be found in the header line", e.Kind, e.Name)
}

// IsMissingColumn reports whether err is or wraps a MissingColumnError.
func IsMissingColumn(err error) bool {
	var mc *MissingColumnError
	return errors.As(err, &mc)
}
