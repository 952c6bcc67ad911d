package reconcile

import (
	"slices"
	"time"

	"github.com/yurifrl/tally/pkg/table"
)

// LookupEntry is a payment row with the timestamp derived from it.
type LookupEntry struct {
	Time time.Time
	Row  table.Row
}

// LookupTable is a time-sorted index over payment rows. Entries are removed
// once claimed, and removal never reorders the remaining entries.
type LookupTable struct {
	entries []LookupEntry
}

// NewLookupTable parses the date and time columns of every payment row and
// sorts the rows by the resulting timestamp. Rows with equal timestamps keep
// their table order.
func NewLookupTable(payments *table.Table, dateIdx, timeIdx int, layout string) (*LookupTable, error) {
	entries := make([]LookupEntry, 0, len(payments.Rows))
	for _, row := range payments.Rows {
		date, ok := row.Get(dateIdx)
		if !ok {
			return nil, &RowFieldMissingError{Source: row.Source, Line: row.Line, Index: dateIdx, Kind: "date"}
		}
		clock, ok := row.Get(timeIdx)
		if !ok {
			return nil, &RowFieldMissingError{Source: row.Source, Line: row.Line, Index: timeIdx, Kind: "time"}
		}
		value := date + clock
		if err := checkEncoding(row.Source, row.Line, value); err != nil {
			return nil, err
		}
		t, err := ParsePaymentDate(value, layout)
		if err != nil {
			return nil, &DateParseError{Source: row.Source, Line: row.Line, DateTime: value, Grammar: GrammarPayment, Err: err}
		}
		entries = append(entries, LookupEntry{Time: t, Row: row})
	}
	slices.SortStableFunc(entries, func(a, b LookupEntry) int {
		return a.Time.Compare(b.Time)
	})
	return &LookupTable{entries: entries}, nil
}

// Len returns the number of unclaimed entries.
func (l *LookupTable) Len() int {
	return len(l.entries)
}

// Entry returns the entry at index i.
func (l *LookupTable) Entry(i int) LookupEntry {
	return l.entries[i]
}

// Nearest finds the best entry for a ledger timestamp. An entry with exactly
// the same time always wins. Otherwise only the entries around the insertion
// point that lie strictly after t are considered, and the closest one is
// returned if it is at most maxDistance seconds away. Among equally distant
// entries the one with the lower index wins.
func (l *LookupTable) Nearest(t time.Time, maxDistance uint64) (idx int, distance uint64, ok bool) {
	i, found := slices.BinarySearchFunc(l.entries, t, func(e LookupEntry, target time.Time) int {
		return e.Time.Compare(target)
	})
	if found {
		return i, 0, true
	}

	best := -1
	for _, c := range [...]int{i, i - 1, i + 1} {
		if c < 0 || c >= len(l.entries) {
			continue
		}
		// a settlement can only happen after the ledger event
		if !l.entries[c].Time.After(t) {
			continue
		}
		d := seconds(l.entries[c].Time.Sub(t))
		if best == -1 || d < distance || (d == distance && c < best) {
			best, distance = c, d
		}
	}
	if best == -1 || distance > maxDistance {
		return 0, 0, false
	}
	return best, distance, true
}

// Remove deletes the entry at index i so later searches never see it again.
func (l *LookupTable) Remove(i int) {
	l.entries = slices.Delete(l.entries, i, i+1)
}

// seconds returns the whole seconds of a positive duration.
func seconds(d time.Duration) uint64 {
	return uint64(d / time.Second)
}
