package reconcile

import "github.com/yurifrl/tally/pkg/table"

// Status is the reconciliation result of a single ledger row.
type Status int

const (
	Matched Status = iota
	Unmatched
)

func (s Status) String() string {
	switch s {
	case Matched:
		return "matched"
	case Unmatched:
		return "unmatched"
	default:
		return "unknown"
	}
}

// Entry records what happened to one ledger row.
type Entry struct {
	Source   string
	Line     int
	Status   Status
	Distance uint64
	// Payment is the claimed payment row; zero when unmatched.
	Payment table.Row
}

// Report summarizes a reconciliation run so callers can display it without
// inspecting the joined table.
type Report struct {
	Items []Entry
	// UnclaimedPayments is the number of payment rows no ledger row claimed.
	UnclaimedPayments int

	unmatched int
}

func (r *Report) add(e Entry) {
	if e.Status == Unmatched {
		r.unmatched++
	}
	r.Items = append(r.Items, e)
}

// MatchedCount returns how many ledger rows found a payment row.
func (r *Report) MatchedCount() int {
	return len(r.Items) - r.unmatched
}

// UnmatchedCount returns how many ledger rows were left without a payment.
func (r *Report) UnmatchedCount() int {
	return r.unmatched
}

// MaxDistance returns the largest distance among matched rows.
func (r *Report) MaxDistance() uint64 {
	var max uint64
	for _, e := range r.Items {
		if e.Status == Matched && e.Distance > max {
			max = e.Distance
		}
	}
	return max
}
