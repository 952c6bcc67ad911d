package reconcile

import (
	"testing"
	"time"
)

func TestLookupTableSortsAndRemoves(t *testing.T) {
	payments := paymentTable(
		[3]string{"March 2, 2021", "08:00:00 UTC", "late"},
		[3]string{"March 1, 2021", "08:00:00 UTC", "early"},
		[3]string{"March 1, 2021", "09:00:00 UTC", "middle"},
	)
	lut, err := NewLookupTable(payments, 0, 1, "")
	if err != nil {
		t.Fatalf("NewLookupTable failed: %v", err)
	}
	if lut.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", lut.Len())
	}
	order := []string{"early", "middle", "late"}
	for i, id := range order {
		if got := lut.Entry(i).Row.Fields[2]; got != id {
			t.Errorf("entry %d = %s, want %s", i, got, id)
		}
	}

	at := time.Date(2021, 3, 1, 8, 30, 0, 0, time.UTC)
	idx, d, ok := lut.Nearest(at, 3600)
	if !ok || idx != 1 || d != 1800 {
		t.Fatalf("Nearest = %d, %d, %v", idx, d, ok)
	}
	lut.Remove(idx)
	if lut.Len() != 2 {
		t.Fatalf("expected 2 entries after removal, got %d", lut.Len())
	}
	if _, _, ok := lut.Nearest(at, 3600); ok {
		t.Error("a removed entry was found again")
	}
	if lut.Entry(0).Row.Fields[2] != "early" || lut.Entry(1).Row.Fields[2] != "late" {
		t.Errorf("removal reordered entries: %v, %v", lut.Entry(0).Row.Fields, lut.Entry(1).Row.Fields)
	}
}

func TestLookupTableNearestEmpty(t *testing.T) {
	lut, err := NewLookupTable(paymentTable(), 0, 1, "")
	if err != nil {
		t.Fatalf("NewLookupTable failed: %v", err)
	}
	if _, _, ok := lut.Nearest(time.Now(), 10); ok {
		t.Error("empty table produced a match")
	}
}

func TestParsePaymentDateCustomLayout(t *testing.T) {
	got, err := ParsePaymentDate("2021-03-01 10:00:00", "2006-01-02 15:04:05")
	if err != nil {
		t.Fatalf("ParsePaymentDate failed: %v", err)
	}
	if !got.Equal(time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)) || got.Location() != time.UTC {
		t.Errorf("unexpected time %v", got)
	}
}

func TestParseLedgerDate(t *testing.T) {
	want := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2021-03-01T00:00:00Z", "2021-03-01", "2021-03-01 00:00:00", "2021-03-01T01:00:00+01:00"} {
		got, err := ParseLedgerDate(in)
		if err != nil {
			t.Errorf("ParseLedgerDate(%q) failed: %v", in, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseLedgerDate(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseLedgerDateGitFormats(t *testing.T) {
	want := time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)
	tests := []string{
		"Mon Mar 1 10:00:00 2021 +0000",
		"Mon Mar 1 12:00:00 2021 +0200",
		"1614592800 +0000",
		"1614592800 -0300",
	}
	for _, in := range tests {
		got, err := ParseLedgerDate(in)
		if err != nil {
			t.Errorf("ParseLedgerDate(%q) failed: %v", in, err)
			continue
		}
		if !got.Equal(want) || got.Location() != time.UTC {
			t.Errorf("ParseLedgerDate(%q) = %v, want %v", in, got, want)
		}
	}

	for _, in := range []string{"soon +0000", "1614592800 +0000x"} {
		if _, err := ParseLedgerDate(in); err == nil {
			t.Errorf("ParseLedgerDate(%q) should fail", in)
		}
	}
}
