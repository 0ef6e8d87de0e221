package report

import (
	"fmt"
	"strings"

	"github.com/brightops/adpulse/internal/intelligence"
	"github.com/brightops/adpulse/internal/metrics"
	"github.com/brightops/adpulse/internal/pipeline"
	"github.com/brightops/adpulse/internal/window"
)

const divider = "============================================================"

// RenderText renders the fixed-section plain-text report.
func RenderText(s Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\nMARKETING PULSE — %s\nRun %s\n%s\n\n",
		divider, s.GeneratedAt.UTC().Format("Mon, 02 Jan 2006"), s.RunID, divider)

	// Executive summary
	b.WriteString("EXECUTIVE SUMMARY (last 30 days)\n")
	fmt.Fprintf(&b, "  Spend:           %s\n", Money(s.Primary.Spend))
	fmt.Fprintf(&b, "  Demos booked:    %s\n", Count(s.Primary.Demos))
	fmt.Fprintf(&b, "  Cost per demo:   %s\n", Money(s.Primary.CostPerDemo()))
	fmt.Fprintf(&b, "  CTR:             %s\n", Pct(s.Primary.CTR()))
	fmt.Fprintf(&b, "  CPM:             %s\n", Money(s.Primary.CPM()))
	fmt.Fprintf(&b, "  Meetings booked: %d  (show rate %s)\n", s.Pipeline30.Booked, Pct(s.Pipeline30.ShowRate))
	fmt.Fprintf(&b, "  Closed won:      %d  (%s revenue)\n", s.Pipeline30.ClosedWon, Money2(s.Pipeline30.Revenue))
	fmt.Fprintf(&b, "  Budget pacing:   %s of %s monthly budget\n\n", Pct(s.BudgetPacing), Money(s.MonthlyBudget))

	// Per-window trends
	b.WriteString("WINDOW TRENDS\n")
	fmt.Fprintf(&b, "  %-14s %-24s %10s %8s %9s %10s\n", "Window", "Dates", "Spend", "Demos", "Meetings", "Show rate")
	writeTrendRow(&b, s.Windows.Last7Days, &s.Week, s.Pipeline7)
	writeTrendRow(&b, s.Windows.Last30Days, &s.Primary, s.Pipeline30)
	writeTrendRow(&b, s.Windows.MonthToDate, nil, s.PipelineMTD)
	writeTrendRow(&b, s.Windows.PriorMonth, &s.PriorSpend, s.PriorMonth)
	b.WriteString("\n")

	writeFindingSection(&b, "ALERTS", s.Findings.Alerts)
	writeFindingSection(&b, "WARNINGS", s.Findings.Warnings)
	writeFindingSection(&b, "OPPORTUNITIES", s.Findings.Opportunities)
	writeFindingSection(&b, "WINS", s.Findings.Wins)

	// Campaign table
	b.WriteString("CAMPAIGNS (by spend)\n")
	if len(s.Campaigns) == 0 {
		b.WriteString("  no campaign data\n")
	} else {
		fmt.Fprintf(&b, "  %-36s %10s %8s %12s %8s\n", "Campaign", "Spend", "Demos", "Cost/Demo", "CTR")
		for _, c := range s.Campaigns {
			fmt.Fprintf(&b, "  %-36s %10s %8s %12s %8s\n",
				truncate(c.Name, 36), Money(c.Spend), Count(c.Demos), Money(c.CostPerDemo()), Pct(c.CTR()))
		}
	}
	b.WriteString("\n")

	// Recommendations
	b.WriteString("RECOMMENDED ACTIONS\n")
	if len(s.Recommendations) == 0 {
		b.WriteString("  none\n")
	}
	for _, r := range s.Recommendations {
		fmt.Fprintf(&b, "  [%s] %s\n", strings.ToUpper(string(r.Type)), r.Message)
	}
	b.WriteString("\n")

	// Cross-channel comparison
	b.WriteString("CROSS-CHANNEL COMPARISON (last 30 days)\n")
	fmt.Fprintf(&b, "  %-24s %10s %8s %12s\n", "Channel", "Spend", "Demos", "Cost/Demo")
	fmt.Fprintf(&b, "  %-24s %10s %8s %12s\n",
		s.Primary.Name, Money(s.Primary.Spend), Count(s.Primary.Demos), Money(s.Primary.CostPerDemo()))
	for _, c := range s.Comparisons {
		fmt.Fprintf(&b, "  %-24s %10s %8s %12s\n",
			c.Name, Money(c.Spend), Count(c.Demos), Money(c.CostPerDemo()))
	}
	b.WriteString("\n")

	// Disqualification breakdown
	b.WriteString("DISQUALIFICATION BREAKDOWN (last 30 days)\n")
	reasons := s.Pipeline30.TopDisqualReasons()
	if len(reasons) == 0 {
		b.WriteString("  no disqualified meetings\n")
	}
	for _, rc := range reasons {
		fmt.Fprintf(&b, "  %3dx %s\n", rc.Count, rc.Reason)
	}
	b.WriteString("\n")

	b.WriteString(targetingPlaybook)

	return b.String()
}

// writeTrendRow writes one window's spend and funnel line. Spend is nil
// for windows with no dedicated spend query (month-to-date).
func writeTrendRow(b *strings.Builder, w window.Range, spend *metrics.Aggregated, pl pipeline.Metrics) {
	spendCol, demosCol := "-", "-"
	if spend != nil {
		spendCol, demosCol = Money(spend.Spend), Count(spend.Demos)
	}
	fmt.Fprintf(b, "  %-14s %-24s %10s %8s %9d %10s\n",
		w.Label, w.From+".."+w.To, spendCol, demosCol, pl.Booked, Pct(pl.ShowRate))
}

func writeFindingSection(b *strings.Builder, title string, items []intelligence.Finding) {
	fmt.Fprintf(b, "%s (%d)\n", title, len(items))
	if len(items) == 0 {
		b.WriteString("  none\n")
	}
	for _, f := range items {
		fmt.Fprintf(b, "  - %s\n", f.Message)
	}
	b.WriteString("\n")
}

// truncate shortens s to at most max runes. Byte slicing would split
// multi-byte campaign names mid-rune.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// targetingPlaybook is the static playbook section appended to every
// text and HTML report.
const targetingPlaybook = `TARGETING PLAYBOOK
  1. Exclude disqualified segments: feed recurring disqualification
     reasons back into campaign exclusion audiences.
  2. Mirror closed-won titles: build lookalike audiences from contacts
     attached to closed-won deals, not from raw meeting bookers.
  3. Cap frequency before refreshing creative: rising CPM with flat CTR
     usually means saturation, not creative fatigue.
  4. Shift budget toward the cheapest qualified demo, not the cheapest
     click.
`
