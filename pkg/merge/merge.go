// Package merge collapses overlapping exports of the same table into one
// stream without duplicates.
//
// Rows are identified by the concatenation of their key columns. A row seen
// later replaces any earlier row with the same key, so exports downloaded
// regularly can be merged without losing older rows that the provider may
// have dropped since. The result is sorted by the raw bytes of a sort column.
package merge

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/yurifrl/tally/pkg/table"
)

// ErrNoInput is returned when no table was given to merge.
var ErrNoInput = errors.New("no input was provided")

// Outcome describes how the column selectors were resolved.
type Outcome struct {
	// KeyColumnIndices holds the index of every key column, in selector order.
	KeyColumnIndices []int
	// SortColumnIndex is the index of the sort column.
	SortColumnIndex int
}

// Options configures MergeReaders.
type Options struct {
	SortColumn string
	Delimiter  rune
}

type slot struct {
	key string
	row table.Row
}

// Merge deduplicates tables by keyColumns and sorts the survivors by
// sortColumn. Selectors are resolved against the first table's header and all
// tables must share that header exactly.
func Merge(tables []*table.Table, keyColumns []string, sortColumn string) (*table.Table, Outcome, error) {
	if len(tables) == 0 {
		return nil, Outcome{}, ErrNoInput
	}
	first := tables[0]

	keyIdx := make([]int, 0, len(keyColumns))
	for _, sel := range keyColumns {
		idx, err := first.Column(sel, "key")
		if err != nil {
			return nil, Outcome{}, err
		}
		keyIdx = append(keyIdx, idx)
	}
	sortIdx, err := first.Column(sortColumn, "sort")
	if err != nil {
		return nil, Outcome{}, err
	}

	var (
		slots []slot
		index = make(map[string]int)
		key   strings.Builder
	)
	for _, t := range tables {
		if !slices.Equal(first.Header, t.Header) {
			return nil, Outcome{}, &SchemaChangeError{
				Previous: table.FormatRecord(first.Header),
				Current:  table.FormatRecord(t.Header),
			}
		}
		for _, row := range t.Rows {
			key.Reset()
			for _, idx := range keyIdx {
				field, ok := row.Get(idx)
				if !ok {
					return nil, Outcome{}, &ColumnMissingInRowError{Source: row.Source, Line: row.Line, Index: idx}
				}
				key.WriteString(field)
			}
			k := key.String()
			if pos, seen := index[k]; seen {
				slots[pos].row = row
				continue
			}
			index[k] = len(slots)
			slots = append(slots, slot{key: k, row: row})
		}
	}

	slices.SortFunc(slots, func(a, b slot) int {
		av, _ := a.row.Get(sortIdx)
		bv, _ := b.row.Get(sortIdx)
		return cmp.Or(strings.Compare(av, bv), strings.Compare(a.key, b.key))
	})

	out := &table.Table{Header: first.Header, Rows: make([]table.Row, len(slots))}
	for i, s := range slots {
		out.Rows[i] = s.row
	}
	return out, Outcome{KeyColumnIndices: keyIdx, SortColumnIndex: sortIdx}, nil
}

// MergeReaders reads every input as delimited text, merges them and writes
// the result comma-delimited to out. Nothing is written if any step fails.
func MergeReaders(inputs []io.Reader, keyColumns []string, opts Options, out io.Writer) (Outcome, error) {
	tables := make([]*table.Table, 0, len(inputs))
	for i, r := range inputs {
		t, err := table.Read(r, opts.Delimiter, fmt.Sprintf("input #%d", i+1))
		if err != nil {
			return Outcome{}, err
		}
		tables = append(tables, t)
	}
	merged, outcome, err := Merge(tables, keyColumns, opts.SortColumn)
	if err != nil {
		return Outcome{}, err
	}
	if err := table.Write(out, merged); err != nil {
		return Outcome{}, fmt.Errorf("failed to write merged table: %w", err)
	}
	return outcome, nil
}
