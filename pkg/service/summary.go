package service

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/yurifrl/tally/pkg/reconcile"
)

// RenderSummary prints a short human-readable report of a reconciliation.
func RenderSummary(w io.Writer, report *reconcile.Report) {
	matchedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))   // green
	unmatchedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))      // gray

	for _, e := range report.Items {
		switch e.Status {
		case reconcile.Matched:
			fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("= %s:%d -> %s:%d (%ds)", e.Source, e.Line, e.Payment.Source, e.Payment.Line, e.Distance)))
		case reconcile.Unmatched:
			fmt.Fprintln(w, unmatchedStyle.Render(fmt.Sprintf("? %s:%d no payment found", e.Source, e.Line)))
		}
	}

	fmt.Fprintln(w, matchedStyle.Render(fmt.Sprintf("matched:   %d", report.MatchedCount())))
	fmt.Fprintln(w, unmatchedStyle.Render(fmt.Sprintf("unmatched: %d", report.UnmatchedCount())))
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("unclaimed payments: %d, largest distance: %ds", report.UnclaimedPayments, report.MaxDistance())))
}
