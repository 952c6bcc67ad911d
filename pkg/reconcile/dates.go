package reconcile

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/araddon/dateparse"
)

// DefaultPaymentLayout is the layout of a payment export's date and time
// columns written back to back, e.g. "March 1, 2021" + "00:00:05 UTC".
const DefaultPaymentLayout = "January 2, 200615:04:05 UTC"

// gitDefaultLayout is the default date format of git log.
const gitDefaultLayout = "Mon Jan 2 15:04:05 2006 -0700"

// ReceivedLayout formats the timestamp of the matched payment row.
const ReceivedLayout = "2006-01-02 15:04:05 -0700"

// Grammar names the date grammar that failed to parse a value.
type Grammar string

const (
	// GrammarLedger is the flexible grammar used for ledger dates.
	GrammarLedger Grammar = "ledger"
	// GrammarPayment is the fixed layout used for payment date and time.
	GrammarPayment Grammar = "payment"
)

// ParseLedgerDate parses a ledger date. ISO, RFC and most human formats as
// well as unix timestamps are accepted; values without an offset are taken
// as UTC. The git formats "Mon Mar 1 10:00:00 2021 +0000" and
// "1614592800 +0000" are accepted too. The result is normalized to UTC.
func ParseLedgerDate(value string) (time.Time, error) {
	t, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		gt, ok := parseGitDate(value)
		if !ok {
			return time.Time{}, err
		}
		t = gt
	}
	return t.UTC(), nil
}

func parseGitDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(gitDefaultLayout, value); err == nil {
		return t, true
	}

	// raw form: unix seconds and an offset
	secs, offset, ok := strings.Cut(value, " ")
	if !ok {
		return time.Time{}, false
	}
	n, err := strconv.ParseInt(secs, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	if _, err := time.Parse("-0700", offset); err != nil {
		return time.Time{}, false
	}
	return time.Unix(n, 0), true
}

// ParsePaymentDate parses a payment timestamp with the fixed layout. The
// result is always UTC.
func ParsePaymentDate(value, layout string) (time.Time, error) {
	if layout == "" {
		layout = DefaultPaymentLayout
	}
	return time.ParseInLocation(layout, value, time.UTC)
}

func checkEncoding(source string, line int, value string) error {
	if !utf8.ValidString(value) {
		return &InvalidDateEncodingError{Source: source, Line: line, Date: value}
	}
	return nil
}
