// Package report assembles the computed run snapshot and renders it as a
// plain-text report, an HTML dashboard, and a condensed chat summary. The
// renderers are presentation-only: everything they show comes from the
// snapshot, with no further data fetches.
package report

import (
	"time"

	"github.com/brightops/adpulse/internal/intelligence"
	"github.com/brightops/adpulse/internal/metrics"
	"github.com/brightops/adpulse/internal/pipeline"
	"github.com/brightops/adpulse/internal/window"
)

// Snapshot is the single computed input all three renderers share.
type Snapshot struct {
	RunID       string
	GeneratedAt time.Time
	Windows     window.Windows

	// Primary is the primary channel's last-30-day aggregate.
	Primary metrics.Aggregated
	// Week and PriorSpend are the primary channel's trailing-7-day and
	// prior-calendar-month aggregates, for the window trend views.
	Week       metrics.Aggregated
	PriorSpend metrics.Aggregated
	// Comparisons are the other channels over the same period.
	Comparisons []metrics.Aggregated
	// Campaigns are the primary channel's campaigns, spend-descending.
	Campaigns []metrics.Aggregated

	Pipeline7   pipeline.Metrics
	Pipeline30  pipeline.Metrics
	PipelineMTD pipeline.Metrics
	PriorMonth  pipeline.Metrics

	MonthlyBudget float64
	BudgetPacing  float64
	ExpectedPace  float64

	Findings        intelligence.Findings
	Recommendations []intelligence.Recommendation
}

// Status returns the roll-up health indicator for the chat summary.
func (s Snapshot) Status() string {
	if len(s.Findings.Alerts) > 0 {
		return "needs attention"
	}
	if len(s.Findings.Warnings) > 0 {
		return "watch closely"
	}
	return "healthy"
}
