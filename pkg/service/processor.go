package service

import (
	"bytes"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/yurifrl/tally/pkg/config"
	"github.com/yurifrl/tally/pkg/merge"
	"github.com/yurifrl/tally/pkg/normalize"
	"github.com/yurifrl/tally/pkg/reconcile"
	"github.com/yurifrl/tally/pkg/rules"
	"github.com/yurifrl/tally/pkg/source"
	"github.com/yurifrl/tally/pkg/table"
)

// NoteColumn is appended to the output when annotation is enabled.
const NoteColumn = "Note"

// Annotator returns an optional note for a finished output row.
type Annotator interface {
	Annotate(fields []string) (string, bool)
}

type Processor struct {
	config *config.Config
	logger *log.Logger
	loader *source.Loader
}

func NewProcessor(config *config.Config, logger *log.Logger) *Processor {
	logger = logger.With("run", uuid.NewString())
	return &Processor{
		config: config,
		logger: logger,
		loader: source.New(logger),
	}
}

// Merge merges overlapping exports of the same kind into out.
func (p *Processor) Merge(paths []string, keyColumns []string, sortColumn string, delimiter rune, out io.Writer) error {
	tables, err := p.loader.LoadAll(paths, delimiter)
	if err != nil {
		return err
	}
	merged, outcome, err := merge.Merge(tables, keyColumns, sortColumn)
	if err != nil {
		return fmt.Errorf("failed to merge: %w", err)
	}
	p.logger.Info("merged files", "files", len(paths), "rows", len(merged.Rows), "key_columns", outcome.KeyColumnIndices, "sort_column", outcome.SortColumnIndex)
	return write(out, merged)
}

// MergeAccounts merges the ledger and payment exports, pairs every ledger
// row with its payment and writes the joined table to out. Nothing is written
// unless every step succeeds.
func (p *Processor) MergeAccounts(ledgerPaths, paymentPaths []string, out io.Writer) (*reconcile.Report, error) {
	cfg := p.config

	ledger, err := p.mergeStream("ledger", ledgerPaths, cfg.LedgerDelimiter(), []string{cfg.Ledger.DateColumn}, cfg.Ledger.DateColumn)
	if err != nil {
		return nil, err
	}
	payments, err := p.mergeStream("payment", paymentPaths, cfg.PaymentDelimiter(), []string{cfg.Payment.DateColumn, cfg.Payment.TimeColumn}, cfg.Payment.DateColumn)
	if err != nil {
		return nil, err
	}

	joined, report, err := reconcile.Reconcile(ledger, payments, cfg.ReconcileOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile: %w", err)
	}
	p.logger.Info("reconciliation complete", "matched", report.MatchedCount(), "unmatched", report.UnmatchedCount(), "unclaimed_payments", report.UnclaimedPayments)

	normalizer, err := cfg.Normalizer()
	if err != nil {
		return nil, err
	}
	var annotator Annotator
	if cfg.Notes != "" {
		engine, err := rules.Load(cfg.Notes)
		if err != nil {
			return nil, err
		}
		p.logger.Debug("loaded rules", "file", cfg.Notes, "rules", len(engine.Rules))
		annotator = engine
	}

	Finish(joined, normalizer, annotator)
	if err := write(out, joined); err != nil {
		return nil, err
	}
	return report, nil
}

func (p *Processor) mergeStream(kind string, paths []string, delimiter rune, keyColumns []string, sortColumn string) (*table.Table, error) {
	tables, err := p.loader.LoadAll(paths, delimiter)
	if err != nil {
		return nil, err
	}
	merged, _, err := merge.Merge(tables, keyColumns, sortColumn)
	if err != nil {
		return nil, fmt.Errorf("failed to merge %s files: %w", kind, err)
	}
	p.logger.Debug("merged stream", "kind", kind, "files", len(paths), "rows", len(merged.Rows))
	return merged, nil
}

// Finish normalizes currency fields and appends the note column. Either step
// is skipped when its collaborator is nil or disabled.
func Finish(t *table.Table, normalizer *normalize.Normalizer, annotator Annotator) {
	if normalizer.Enabled() {
		for _, row := range t.Rows {
			normalizer.Row(row.Fields)
		}
	}
	if annotator == nil {
		return
	}
	t.Header = append(t.Header[:len(t.Header):len(t.Header)], NoteColumn)
	for i, row := range t.Rows {
		note, _ := annotator.Annotate(row.Fields)
		t.Rows[i] = row.Append(note)
	}
}

// write renders t completely before touching out.
func write(out io.Writer, t *table.Table) error {
	var buf bytes.Buffer
	if err := table.Write(&buf, t); err != nil {
		return fmt.Errorf("failed to render output: %w", err)
	}
	if _, err := buf.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
