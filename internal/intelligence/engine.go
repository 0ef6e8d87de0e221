// Package intelligence maps a computed metrics snapshot onto categorized,
// human-readable findings and per-campaign action recommendations. Both
// engines are pure: all thresholds arrive as explicit config and nothing
// is persisted between runs.
package intelligence

import (
	"fmt"

	"github.com/brightops/adpulse/internal/config"
	"github.com/brightops/adpulse/internal/metrics"
	"github.com/brightops/adpulse/internal/pipeline"
)

// Category classifies a finding.
type Category string

const (
	CategoryAlert       Category = "alert"
	CategoryWarning     Category = "warning"
	CategoryOpportunity Category = "opportunity"
	CategoryWin         Category = "win"
)

// Finding is one rule-engine output.
type Finding struct {
	Category Category
	Message  string
}

// Findings are the four ordered category lists. Rules append in a fixed
// evaluation order; nothing is sorted or deduplicated afterwards.
type Findings struct {
	Alerts        []Finding
	Warnings      []Finding
	Opportunities []Finding
	Wins          []Finding
}

// HasIssues reports whether any alert or warning fired.
func (f Findings) HasIssues() bool {
	return len(f.Alerts) > 0 || len(f.Warnings) > 0
}

func (f *Findings) alert(format string, args ...interface{}) {
	f.Alerts = append(f.Alerts, Finding{CategoryAlert, fmt.Sprintf(format, args...)})
}

func (f *Findings) warn(format string, args ...interface{}) {
	f.Warnings = append(f.Warnings, Finding{CategoryWarning, fmt.Sprintf(format, args...)})
}

func (f *Findings) opportunity(format string, args ...interface{}) {
	f.Opportunities = append(f.Opportunities, Finding{CategoryOpportunity, fmt.Sprintf(format, args...)})
}

func (f *Findings) win(format string, args ...interface{}) {
	f.Wins = append(f.Wins, Finding{CategoryWin, fmt.Sprintf(format, args...)})
}

// Snapshot is everything the rule engine looks at for one run.
type Snapshot struct {
	// Channel is the primary channel's last-30-day aggregate.
	Channel metrics.Aggregated
	// Comparisons are the other channels' aggregates over the same period.
	Comparisons []metrics.Aggregated
	// Pipeline is the last-30-day funnel snapshot.
	Pipeline pipeline.Metrics
	// PriorPipeline is the prior full calendar month's funnel snapshot.
	PriorPipeline pipeline.Metrics
	// BudgetPacing is 30-day spend divided by the fixed monthly budget.
	// ExpectedPace (elapsed share of the month) is carried alongside but
	// deliberately not folded into the pacing rule.
	BudgetPacing float64
	ExpectedPace float64
}

// Analyze runs the fixed rule table over the snapshot. Tiered rules fire
// only the highest applicable severity for a metric; independent rules
// never suppress one another.
func Analyze(snap Snapshot, th config.ThresholdConfig) Findings {
	var f Findings

	target := th.TargetCostPerDemo
	cpd := snap.Channel.CostPerDemo()

	// Cost per demo vs target
	if cpd > 0 {
		if cpd > target*1.5 {
			f.alert("Cost per demo is $%.0f — more than 1.5x the $%.0f target. Review targeting and bids immediately.", cpd, target)
		} else if cpd > target*1.2 {
			f.warn("Cost per demo is $%.0f, trending above the $%.0f target.", cpd, target)
		} else if cpd <= target {
			f.win("Cost per demo is $%.0f, at or under the $%.0f target.", cpd, target)
		}
	}

	// Cross-channel efficiency
	for _, other := range snap.Comparisons {
		otherCPD := other.CostPerDemo()
		if cpd <= 0 || otherCPD <= 0 {
			continue
		}
		if cpd > otherCPD*2 {
			savings := (cpd - otherCPD) * snap.Channel.Demos
			f.warn("%s demos cost $%.0f vs $%.0f on %s — shifting budget could save ~$%.0f/month.",
				snap.Channel.Name, cpd, otherCPD, other.Name, savings)
		} else if otherCPD < cpd {
			f.opportunity("%s is converting cheaper ($%.0f vs $%.0f) — consider testing more budget there.",
				other.Name, otherCPD, cpd)
		}
	}

	// Click-through rate
	if snap.Channel.Impressions > 0 {
		ctr := snap.Channel.CTR()
		if ctr < th.CTRWarning {
			f.warn("CTR is %.2f%%, below the %.2f%% floor — creative may be fatiguing.", ctr*100, th.CTRWarning*100)
		} else if ctr >= th.CTRWin {
			f.win("CTR is %.2f%%, comfortably above the %.2f%% high bar.", ctr*100, th.CTRWin*100)
		}
	}

	// Cost per mille
	cpm := snap.Channel.CPM()
	if cpm > th.CPMAlert {
		f.alert("CPM is $%.0f — audience is saturated or auction pressure is high.", cpm)
	} else if cpm > th.CPMWarning {
		f.warn("CPM is $%.0f, above the $%.0f comfort level.", cpm, th.CPMWarning)
	}

	// Disqualification rate
	dq := snap.Pipeline.DisqualRate
	if dq > th.DisqualAlert {
		wasted := snap.Channel.Spend * dq
		f.alert("%.0f%% of booked meetings are disqualified — roughly $%.0f of spend is going to unqualified leads.", dq*100, wasted)
	} else if dq > th.DisqualWarning {
		f.warn("Disqualification rate is %.0f%% — tighten targeting or qualification questions.", dq*100)
	} else if dq > 0 && dq < 0.25 {
		f.win("Disqualification rate is only %.0f%% — lead quality is holding up.", dq*100)
	}

	// Budget pacing: spend vs the fixed monthly budget.
	if snap.BudgetPacing > 1.0 {
		f.alert("Spend is at %.0f%% of the monthly budget — over-pacing, cap campaigns now.", snap.BudgetPacing*100)
	} else if snap.BudgetPacing > 0.85 {
		f.warn("Spend is at %.0f%% of the monthly budget — watch pacing through month end.", snap.BudgetPacing*100)
	} else if snap.BudgetPacing < 0.4 {
		f.opportunity("Only %.0f%% of the monthly budget is deployed — room to scale what works.", snap.BudgetPacing*100)
	}

	// Period-over-period booked meetings. Skipped entirely when the prior
	// period had zero bookings.
	if snap.PriorPipeline.Booked > 0 {
		delta := float64(snap.Pipeline.Booked-snap.PriorPipeline.Booked) / float64(snap.PriorPipeline.Booked)
		if delta < -0.20 {
			f.warn("Booked meetings down %.0f%% vs prior month (%d vs %d).", -delta*100, snap.Pipeline.Booked, snap.PriorPipeline.Booked)
		} else if delta > 0.20 {
			f.win("Booked meetings up %.0f%% vs prior month (%d vs %d).", delta*100, snap.Pipeline.Booked, snap.PriorPipeline.Booked)
		}
	}

	// Show rate
	if snap.Pipeline.Booked > 0 {
		sr := snap.Pipeline.ShowRate
		if sr < 0.55 {
			f.warn("Show rate is %.0f%% — add reminder sequences or tighten booking flow.", sr*100)
		} else if sr >= 0.75 {
			f.win("Show rate is %.0f%% — booked meetings are showing up.", sr*100)
		}
	}

	// Recurring disqualification reason
	if reasons := snap.Pipeline.TopDisqualReasons(); len(reasons) > 0 && reasons[0].Count >= 3 {
		f.opportunity("\"%s\" disqualified %d meetings — build an exclusion audience for this segment.",
			reasons[0].Reason, reasons[0].Count)
	}

	return f
}
