package intelligence

import (
	"fmt"

	"github.com/brightops/adpulse/internal/config"
	"github.com/brightops/adpulse/internal/metrics"
	"github.com/brightops/adpulse/internal/pipeline"
)

// RecommendationType tags a campaign action.
type RecommendationType string

const (
	RecPause    RecommendationType = "pause"
	RecReduce   RecommendationType = "reduce"
	RecScale    RecommendationType = "scale"
	RecCreative RecommendationType = "creative"
	RecRisk     RecommendationType = "risk"
	RecInfo     RecommendationType = "info"
)

// Recommendation is one typed campaign action.
type Recommendation struct {
	Type     RecommendationType
	Campaign string
	Message  string
}

// Recommend evaluates every campaign independently (multiple checks may
// fire per campaign), in descending-spend order, then runs one portfolio
// concentration check last. Campaigns must arrive sorted by spend
// descending.
func Recommend(campaigns []metrics.Aggregated, pl pipeline.Metrics, th config.ThresholdConfig) []Recommendation {
	if len(campaigns) == 0 {
		return []Recommendation{{
			Type:    RecInfo,
			Message: "No campaign-level spend data available for this period.",
		}}
	}

	target := th.TargetCostPerDemo
	var totalSpend float64
	for _, c := range campaigns {
		totalSpend += c.Spend
	}

	var recs []Recommendation
	for _, c := range campaigns {
		share := 0.0
		if totalSpend > 0 {
			share = c.Spend / totalSpend
		}
		cpd := c.CostPerDemo()

		if share > 0.30 && cpd > target*1.5 && c.Demos < 3 {
			recs = append(recs, Recommendation{
				Type:     RecPause,
				Campaign: c.Name,
				Message: fmt.Sprintf("Pause %q: %.0f%% of spend at $%.0f per demo (target $%.0f) with only %.0f demos.",
					c.Name, share*100, cpd, target, c.Demos),
			})
		} else if share > 0.15 && cpd > target*1.2 {
			recs = append(recs, Recommendation{
				Type:     RecReduce,
				Campaign: c.Name,
				Message: fmt.Sprintf("Reduce %q by ~25%%: cost per demo $%.0f is above target $%.0f.",
					c.Name, cpd, target),
			})
		}

		if cpd > 0 && cpd < target*0.8 && c.Demos >= 3 {
			recs = append(recs, Recommendation{
				Type:     RecScale,
				Campaign: c.Name,
				Message: fmt.Sprintf("Scale %q: $%.0f per demo with %.0f demos — %d meetings booked this period overall, this campaign is earning more budget.",
					c.Name, cpd, c.Demos, pl.Booked),
			})
		}

		if c.CTR() < 0.003 && c.Impressions > 5000 {
			recs = append(recs, Recommendation{
				Type:     RecCreative,
				Campaign: c.Name,
				Message: fmt.Sprintf("Refresh creative on %q: CTR %.2f%% across %.0f impressions.",
					c.Name, c.CTR()*100, c.Impressions),
			})
		}
	}

	// Portfolio concentration check runs last, on the top spender.
	if totalSpend > 0 {
		top := campaigns[0]
		if top.Spend/totalSpend > 0.60 {
			recs = append(recs, Recommendation{
				Type:     RecRisk,
				Campaign: top.Name,
				Message: fmt.Sprintf("%.0f%% of spend is concentrated in %q — diversify to reduce single-campaign risk.",
					top.Spend/totalSpend*100, top.Name),
			})
		}
	}

	return recs
}
