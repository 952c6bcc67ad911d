package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/tally/pkg/config"
	"github.com/yurifrl/tally/pkg/normalize"
	"github.com/yurifrl/tally/pkg/reconcile"
	"github.com/yurifrl/tally/pkg/rules"
	"github.com/yurifrl/tally/pkg/table"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func testConfig(notes string) *config.Config {
	return &config.Config{
		Log:     config.LogConfig{Level: "info"},
		Ledger:  config.LedgerConfig{Delimiter: ",", DateColumn: "Transaction Date"},
		Payment: config.PaymentConfig{Delimiter: ",", DateColumn: "Date", TimeColumn: "Time", Layout: reconcile.DefaultPaymentLayout},
		Match:   config.MatchConfig{MaxDistanceSeconds: 5},
		Normalize: config.NormalizeConfig{
			Markers:            "€$",
			ThousandsSeparator: ".",
			DecimalSeparator:   ",",
		},
		Notes: notes,
	}
}

func newProcessor(cfg *config.Config) *Processor {
	return NewProcessor(cfg, log.New(io.Discard))
}

type fixture struct {
	ledger   []string
	payments []string
	notes    string
}

func newFixture(t *testing.T) fixture {
	dir := t.TempDir()
	return fixture{
		ledger: []string{
			writeFile(t, dir, "ledger-jan.csv", "Sponsor,Transaction Date,Amount\n"+
				"acme,2021-03-01T10:00:00Z,\"$1,000.00\"\n"+
				"bolt,2021-03-02T10:00:00Z,$5.00\n"),
			writeFile(t, dir, "ledger-feb.csv", "Sponsor,Transaction Date,Amount\n"+
				"bolt,2021-03-02T10:00:00Z,$7.50\n"+
				"cato,2021-03-03T10:00:00Z,$12.00\n"),
		},
		payments: []string{
			writeFile(t, dir, "payments.csv", "Date,Time,ID\n"+
				"\"March 1, 2021\",10:00:03 UTC,ch_1\n"+
				"\"March 2, 2021\",10:00:20 UTC,ch_2\n"+
				"\"March 3, 2021\",10:00:01 UTC,ch_3\n"),
		},
		notes: writeFile(t, dir, "notes.yaml", `rules:
  - statements:
      - column: 0
        operation: equals
        value: acme
    value: Acme corp
  - value: other
`),
	}
}

func TestMergeAccounts(t *testing.T) {
	f := newFixture(t)
	p := newProcessor(testConfig(f.notes))

	var out bytes.Buffer
	report, err := p.MergeAccounts(f.ledger, f.payments, &out)
	if err != nil {
		t.Fatalf("MergeAccounts failed: %v", err)
	}

	got, err := table.Read(&out, ',', "out")
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	wantHeader := "Sponsor,Transaction Date,Amount,Received Date,Distance [s],Date,Time,ID,Note"
	if table.FormatRecord(got.Header) != wantHeader {
		t.Errorf("header = %q", table.FormatRecord(got.Header))
	}

	want := [][]string{
		{"acme", "2021-03-01T10:00:00Z", "$1.000,00", "2021-03-01 10:00:03 +0000", "3", "March 1, 2021", "10:00:03 UTC", "ch_1", "Acme corp"},
		{"bolt", "2021-03-02T10:00:00Z", "$7,50", "", "", "", "", "", "other"},
		{"cato", "2021-03-03T10:00:00Z", "$12,00", "2021-03-03 10:00:01 +0000", "1", "March 3, 2021", "10:00:01 UTC", "ch_3", "other"},
	}
	if len(got.Rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(got.Rows), len(want))
	}
	for i, row := range got.Rows {
		if table.FormatRecord(row.Fields) != table.FormatRecord(want[i]) {
			t.Errorf("row %d = %q, want %q", i, row.Fields, want[i])
		}
	}

	if report.MatchedCount() != 2 || report.UnmatchedCount() != 1 || report.UnclaimedPayments != 1 {
		t.Errorf("unexpected report: matched=%d unmatched=%d unclaimed=%d",
			report.MatchedCount(), report.UnmatchedCount(), report.UnclaimedPayments)
	}
}

func TestMergeAccountsWithoutNotes(t *testing.T) {
	f := newFixture(t)
	cfg := testConfig("")
	cfg.Normalize.Markers = ""
	p := newProcessor(cfg)

	var out bytes.Buffer
	if _, err := p.MergeAccounts(f.ledger, f.payments, &out); err != nil {
		t.Fatalf("MergeAccounts failed: %v", err)
	}
	got, err := table.Read(&out, ',', "out")
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if got.Width() != 8 {
		t.Errorf("expected 8 columns without notes, got %v", got.Header)
	}
	if amount := got.Rows[0].Fields[2]; amount != "$1,000.00" {
		t.Errorf("amount rewritten with normalization disabled: %q", amount)
	}
}

func TestMergeAccountsWritesNothingOnError(t *testing.T) {
	f := newFixture(t)

	tests := map[string]*config.Config{
		"missing rules file": testConfig(filepath.Join(t.TempDir(), "absent.yaml")),
		"missing column": func() *config.Config {
			cfg := testConfig("")
			cfg.Ledger.DateColumn = "Booked"
			return cfg
		}(),
		"bad layout": func() *config.Config {
			cfg := testConfig("")
			cfg.Payment.Layout = "2006-01-02 15:04:05"
			return cfg
		}(),
	}
	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			if _, err := newProcessor(cfg).MergeAccounts(f.ledger, f.payments, &out); err == nil {
				t.Fatal("expected an error")
			}
			if out.Len() != 0 {
				t.Errorf("wrote %d bytes despite failing", out.Len())
			}
		})
	}
}

func TestMergeAccountsErrorKinds(t *testing.T) {
	f := newFixture(t)

	var cfgErr *rules.ConfigError
	_, err := newProcessor(testConfig(filepath.Join(t.TempDir(), "absent.yaml"))).MergeAccounts(f.ledger, f.payments, io.Discard)
	if !errors.As(err, &cfgErr) {
		t.Errorf("expected a rules config error, got %v", err)
	}

	cfg := testConfig("")
	cfg.Payment.TimeColumn = "Hour"
	var missing *table.MissingColumnError
	_, err = newProcessor(cfg).MergeAccounts(f.ledger, f.payments, io.Discard)
	if !errors.As(err, &missing) || missing.Name != "Hour" {
		t.Errorf("expected a missing column error for Hour, got %v", err)
	}
}

func TestMerge(t *testing.T) {
	f := newFixture(t)
	p := newProcessor(testConfig(""))

	var out bytes.Buffer
	if err := p.Merge(f.ledger, []string{"Transaction Date"}, "Transaction Date", ',', &out); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	want := "Sponsor,Transaction Date,Amount\n" +
		"acme,2021-03-01T10:00:00Z,\"$1,000.00\"\n" +
		"bolt,2021-03-02T10:00:00Z,$7.50\n" +
		"cato,2021-03-03T10:00:00Z,$12.00\n"
	if out.String() != want {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

type staticAnnotator string

func (s staticAnnotator) Annotate([]string) (string, bool) { return string(s), s != "" }

func TestFinish(t *testing.T) {
	tbl := table.New([]string{"Amount"})
	tbl.Add("€1,5")
	tbl.Add("2.000,00")

	n, err := normalize.New("€", ".", ",")
	if err != nil {
		t.Fatalf("normalize.New failed: %v", err)
	}
	Finish(tbl, n, staticAnnotator(""))

	if table.FormatRecord(tbl.Header) != "Amount,Note" {
		t.Errorf("header = %v", tbl.Header)
	}
	if tbl.Rows[1].Fields[0] != "2.000,00" {
		t.Errorf("unmarked field was rewritten: %q", tbl.Rows[1].Fields[0])
	}
	for _, row := range tbl.Rows {
		if row.Len() != 2 || row.Fields[1] != "" {
			t.Errorf("expected an empty note, got %q", row.Fields)
		}
	}

	plain := table.New([]string{"Amount"})
	plain.Add("$1")
	Finish(plain, nil, nil)
	if plain.Width() != 1 || plain.Rows[0].Len() != 1 {
		t.Error("Finish changed the table without collaborators")
	}
}

func TestRenderSummary(t *testing.T) {
	f := newFixture(t)
	report, err := newProcessor(testConfig("")).MergeAccounts(f.ledger, f.payments, io.Discard)
	if err != nil {
		t.Fatalf("MergeAccounts failed: %v", err)
	}

	var buf bytes.Buffer
	RenderSummary(&buf, report)
	out := buf.String()
	for _, want := range []string{"matched:   2", "unmatched: 1", "unclaimed payments: 1", "largest distance: 3s", "ledger-feb.csv:2 no payment found"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary is missing %q:\n%s", want, out)
		}
	}

	// each matched row names the payment row it claimed
	for _, e := range report.Items {
		if e.Status != reconcile.Matched {
			continue
		}
		claimed := fmt.Sprintf("%s:%d (%ds)", e.Payment.Source, e.Payment.Line, e.Distance)
		if !strings.Contains(out, claimed) {
			t.Errorf("summary is missing %q:\n%s", claimed, out)
		}
	}
	if !strings.Contains(out, "payments.csv:2 (3s)") || !strings.Contains(out, "payments.csv:4 (1s)") {
		t.Errorf("summary does not name the claimed payment rows:\n%s", out)
	}
}
