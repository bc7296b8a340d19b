// Package report renders batch outcomes for the console.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jengzang/tracemap-backend-go/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Margin(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FBBF24"))

	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#34D399"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FBBF24"))
	badStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171"))
)

// maxDiagnostics bounds the diagnostics listed in a report
const maxDiagnostics = 10

// Batch renders a batch summary with one line per route
func Batch(summary *models.BatchSummary, policy string) string {
	title := titleStyle.Render("Tracemap batch report")

	totals := fmt.Sprintf("Routes:   %d attempted, %d loaded, %d empty, %d failed\n"+
		"Points:   %d created, %d merged\n"+
		"Segments: %d drawn (dedup: %s)",
		summary.Attempted, summary.Parsed, summary.Empty, summary.Failed,
		summary.PointsCreated, summary.PointsUpdated,
		summary.SegmentsDrawn, policy)
	if summary.Cancelled {
		totals += "\n" + warnStyle.Render("Batch cancelled before all routes were processed")
	}
	if summary.Parsed == 0 {
		totals += "\n" + badStyle.Render("No routes were successfully loaded and processed")
	}

	lines := []string{headerStyle.Render(fmt.Sprintf("%-18s %-12s %7s %7s %8s %10s",
		"ROUTE", "STATUS", "RECORDS", "POINTS", "SEGMENTS", "PATH KM"))}
	for _, r := range summary.Routes {
		lines = append(lines, fmt.Sprintf("%-18s %-12s %7d %7d %8d %10.1f",
			r.RouteID, status(r.Status), r.Records, len(r.Points), len(r.Segments), r.PathMeters/1000))
	}
	routes := boxStyle.Render(strings.Join(lines, "\n"))

	blocks := []string{title, boxStyle.Render(totals), routes}

	if n := len(summary.Diagnostics); n > 0 {
		diag := []string{headerStyle.Render(fmt.Sprintf("Diagnostics (%d)", n))}
		for i, d := range summary.Diagnostics {
			if i == maxDiagnostics {
				diag = append(diag, fmt.Sprintf("... %d more", n-maxDiagnostics))
				break
			}
			diag = append(diag, Diagnostic(d))
		}
		blocks = append(blocks, boxStyle.Render(strings.Join(diag, "\n")))
	}

	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

// Diagnostic formats one diagnostic as a single line
func Diagnostic(d models.Diagnostic) string {
	loc := d.Route
	if d.Row > 0 {
		loc = fmt.Sprintf("%s:%d", d.Route, d.Row)
	}
	return fmt.Sprintf("%s %s %s", loc, d.Kind, d.Message)
}

func status(s string) string {
	padded := fmt.Sprintf("%-12s", s)
	switch s {
	case models.StatusProcessed:
		return okStyle.Render(padded)
	case models.StatusEmpty:
		return warnStyle.Render(padded)
	default:
		return badStyle.Render(padded)
	}
}
