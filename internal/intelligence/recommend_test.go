package intelligence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightops/adpulse/internal/metrics"
	"github.com/brightops/adpulse/internal/pipeline"
)

func typesOf(recs []Recommendation) []RecommendationType {
	out := make([]RecommendationType, len(recs))
	for i, r := range recs {
		out[i] = r.Type
	}
	return out
}

func findRec(recs []Recommendation, typ RecommendationType, campaign string) *Recommendation {
	for i := range recs {
		if recs[i].Type == typ && recs[i].Campaign == campaign {
			return &recs[i]
		}
	}
	return nil
}

func TestRecommendEmpty(t *testing.T) {
	recs := Recommend(nil, pipeline.Metrics{}, testThresholds())
	require.Len(t, recs, 1)
	assert.Equal(t, RecInfo, recs[0].Type)
}

func TestRecommendPauseAndConcentrationRisk(t *testing.T) {
	// One campaign holds 70% of spend at $350/demo with 2 demos: pause.
	// The same concentration also trips the portfolio risk check.
	campaigns := []metrics.Aggregated{
		{Name: "Big Spender", Spend: 700, Demos: 2},
		{Name: "Small", Spend: 300, Demos: 3},
	}

	recs := Recommend(campaigns, pipeline.Metrics{Booked: 5}, testThresholds())

	require.NotNil(t, findRec(recs, RecPause, "Big Spender"))
	risk := findRec(recs, RecRisk, "Big Spender")
	require.NotNil(t, risk)
	// The portfolio check always comes last.
	assert.Equal(t, RecRisk, recs[len(recs)-1].Type)
}

func TestRecommendReduce(t *testing.T) {
	// 40% of spend at $200/demo (target $150): above 1.2x but the demo
	// count disqualifies a pause.
	campaigns := []metrics.Aggregated{
		{Name: "Steady", Spend: 600, Demos: 4},
		{Name: "Pricey", Spend: 400, Demos: 2},
	}

	recs := Recommend(campaigns, pipeline.Metrics{}, testThresholds())
	assert.NotNil(t, findRec(recs, RecReduce, "Pricey"))
	assert.Nil(t, findRec(recs, RecPause, "Pricey"))
}

func TestRecommendScale(t *testing.T) {
	// $100/demo with 5 demos is under 0.8x target: earns more budget.
	campaigns := []metrics.Aggregated{
		{Name: "Winner", Spend: 500, Demos: 5},
	}

	recs := Recommend(campaigns, pipeline.Metrics{Booked: 8}, testThresholds())
	scale := findRec(recs, RecScale, "Winner")
	require.NotNil(t, scale)
	assert.Contains(t, scale.Message, "8 meetings")
}

func TestRecommendScaleRequiresVolume(t *testing.T) {
	// Cheap demos but only 2 of them: too little signal to scale on.
	campaigns := []metrics.Aggregated{
		{Name: "Thin", Spend: 200, Demos: 2},
	}

	recs := Recommend(campaigns, pipeline.Metrics{}, testThresholds())
	assert.Nil(t, findRec(recs, RecScale, "Thin"))
}

func TestRecommendCreative(t *testing.T) {
	// CTR 0.2% across 10k impressions: creative refresh.
	campaigns := []metrics.Aggregated{
		{Name: "Fatigued", Spend: 100, Clicks: 20, Impressions: 10000},
		{Name: "Fresh", Spend: 900, Clicks: 20, Impressions: 2000},
	}

	recs := Recommend(campaigns, pipeline.Metrics{}, testThresholds())
	assert.NotNil(t, findRec(recs, RecCreative, "Fatigued"))
	assert.Nil(t, findRec(recs, RecCreative, "Fresh"))
}

func TestRecommendMultipleChecksPerCampaign(t *testing.T) {
	// A campaign can draw both a spend action and a creative action.
	campaigns := []metrics.Aggregated{
		{Name: "Troubled", Spend: 800, Demos: 1, Clicks: 10, Impressions: 20000},
		{Name: "Other", Spend: 200, Demos: 2},
	}

	recs := Recommend(campaigns, pipeline.Metrics{}, testThresholds())
	assert.NotNil(t, findRec(recs, RecPause, "Troubled"))
	assert.NotNil(t, findRec(recs, RecCreative, "Troubled"))
	assert.Contains(t, typesOf(recs), RecRisk)
}

func TestRecommendZeroSpend(t *testing.T) {
	campaigns := []metrics.Aggregated{
		{Name: "Dormant"},
	}

	recs := Recommend(campaigns, pipeline.Metrics{}, testThresholds())
	// Nothing fires: no spend share, no cost per demo, no impressions.
	assert.Empty(t, recs)
}
