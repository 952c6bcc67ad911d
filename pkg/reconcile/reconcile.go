// Package reconcile pairs ledger rows (date-only precision) with the
// settlement rows of a payment provider (date and time precision).
//
// Payment rows are indexed by time once. Every ledger row, in table order,
// claims the closest payment row that was settled after it, provided it lies
// within the configured distance. A claimed payment row is never offered to
// another ledger row, which makes the result depend on the ledger order; feed
// it the chronologically merged ledger.
package reconcile

import (
	"strconv"

	"github.com/yurifrl/tally/pkg/table"
)

// Columns appended between the ledger and the payment fields.
const (
	ReceivedDateColumn = "Received Date"
	DistanceColumn     = "Distance [s]"
)

// Options configures Reconcile.
type Options struct {
	// LedgerDateColumn selects the ledger date by index or name.
	LedgerDateColumn string
	// PaymentDateColumn and PaymentTimeColumn select the payment date and
	// time, which are concatenated before parsing.
	PaymentDateColumn string
	PaymentTimeColumn string
	// PaymentLayout is the time layout of the concatenated payment value.
	// DefaultPaymentLayout is used when empty.
	PaymentLayout string
	// MaxDistanceSeconds is the largest accepted gap between a ledger row
	// and its payment row.
	MaxDistanceSeconds uint64
}

// Reconcile joins every ledger row with at most one payment row. The result
// has one row per ledger row, in ledger order: the ledger fields, the
// received date and distance of the match, then the payment fields. Unmatched
// rows carry empty fields instead.
func Reconcile(ledger, payments *table.Table, opts Options) (*table.Table, *Report, error) {
	dateIdx, err := ledger.Column(opts.LedgerDateColumn, "ledger date")
	if err != nil {
		return nil, nil, err
	}
	payDateIdx, err := payments.Column(opts.PaymentDateColumn, "payment date")
	if err != nil {
		return nil, nil, err
	}
	payTimeIdx, err := payments.Column(opts.PaymentTimeColumn, "payment time")
	if err != nil {
		return nil, nil, err
	}

	lut, err := NewLookupTable(payments, payDateIdx, payTimeIdx, opts.PaymentLayout)
	if err != nil {
		return nil, nil, err
	}

	header := make([]string, 0, ledger.Width()+2+payments.Width())
	header = append(header, ledger.Header...)
	header = append(header, ReceivedDateColumn, DistanceColumn)
	header = append(header, payments.Header...)

	out := &table.Table{Header: header, Rows: make([]table.Row, 0, len(ledger.Rows))}
	report := &Report{Items: make([]Entry, 0, len(ledger.Rows))}
	blank := make([]string, payments.Width()+2)

	for _, row := range ledger.Rows {
		value, ok := row.Get(dateIdx)
		if !ok {
			return nil, nil, &RowFieldMissingError{Source: row.Source, Line: row.Line, Index: dateIdx, Kind: "ledger date"}
		}
		if err := checkEncoding(row.Source, row.Line, value); err != nil {
			return nil, nil, err
		}
		at, err := ParseLedgerDate(value)
		if err != nil {
			return nil, nil, &DateParseError{Source: row.Source, Line: row.Line, DateTime: value, Grammar: GrammarLedger, Err: err}
		}

		idx, distance, ok := lut.Nearest(at, opts.MaxDistanceSeconds)
		if !ok {
			out.Rows = append(out.Rows, row.Append(blank...))
			report.add(Entry{Source: row.Source, Line: row.Line, Status: Unmatched})
			continue
		}

		match := lut.Entry(idx)
		joined := row.Append(match.Time.Format(ReceivedLayout), strconv.FormatUint(distance, 10))
		joined.Fields = append(joined.Fields, match.Row.Fields...)
		out.Rows = append(out.Rows, joined)
		report.add(Entry{
			Source:   row.Source,
			Line:     row.Line,
			Status:   Matched,
			Distance: distance,
			Payment:  match.Row,
		})
		lut.Remove(idx)
	}

	report.UnclaimedPayments = lut.Len()
	return out, report, nil
}
