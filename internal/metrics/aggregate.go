// Package metrics reduces raw reporting rows into per-entity spend totals
// and derived efficiency ratios.
package metrics

import (
	"sort"
	"strings"

	"github.com/brightops/adpulse/internal/databox"
)

// Sentinel groups for rows whose grouping key is blank.
const (
	UnknownCampaign = "Unknown Campaign"
	UnknownChannel  = "unattributed"
)

// Aggregated holds per-entity totals. Ratios are never stored; they are
// always derived from the totals so the two cannot drift apart.
type Aggregated struct {
	Name        string
	Spend       float64
	Clicks      float64
	Impressions float64
	Demos       float64
}

// CTR is clicks per impression, 0 when there are no impressions.
func (a Aggregated) CTR() float64 {
	return safeDivide(a.Clicks, a.Impressions)
}

// CPM is spend per thousand impressions, 0 when there are no impressions.
func (a Aggregated) CPM() float64 {
	return safeDivide(a.Spend, a.Impressions) * 1000
}

// CostPerDemo is spend per conversion, 0 when there are no conversions.
func (a Aggregated) CostPerDemo() float64 {
	return safeDivide(a.Spend, a.Demos)
}

// CPC is spend per click, 0 when there are no clicks.
func (a Aggregated) CPC() float64 {
	return safeDivide(a.Spend, a.Clicks)
}

func safeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// KeyFunc maps a row to its group key and display name.
type KeyFunc func(row databox.Row) (key, name string)

// ByChannel groups rows by source connector, case-insensitively; blank
// sources collapse into the unattributed sentinel group.
func ByChannel(row databox.Row) (string, string) {
	source := strings.TrimSpace(row.Source)
	if source == "" {
		return UnknownChannel, UnknownChannel
	}
	return strings.ToLower(source), source
}

// ByCampaign groups rows by campaign name; blank campaigns collapse into
// the Unknown Campaign sentinel group.
func ByCampaign(row databox.Row) (string, string) {
	name := strings.TrimSpace(row.Campaign)
	if name == "" {
		return UnknownCampaign, UnknownCampaign
	}
	return name, name
}

// Aggregate reduces rows into per-group totals. Summation is associative
// and commutative, so row order never matters. No row is dropped: every
// row contributes to exactly one group.
func Aggregate(rows []databox.Row, key KeyFunc) map[string]Aggregated {
	groups := make(map[string]Aggregated)
	for _, row := range rows {
		k, name := key(row)
		agg := groups[k]
		if agg.Name == "" {
			agg.Name = name
		}
		agg.Spend += row.Spend.Float()
		agg.Clicks += row.Clicks.Float()
		agg.Impressions += row.Impressions.Float()
		agg.Demos += row.Conversions.Float()
		groups[k] = agg
	}
	return groups
}

// Total sums spend across all groups.
func Total(groups map[string]Aggregated) float64 {
	var total float64
	for _, g := range groups {
		total += g.Spend
	}
	return total
}

// SortedBySpend flattens a group map into a slice ordered by spend,
// highest first, with name as the tiebreaker for stable output.
func SortedBySpend(groups map[string]Aggregated) []Aggregated {
	out := make([]Aggregated, 0, len(groups))
	for _, g := range groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Spend != out[j].Spend {
			return out[i].Spend > out[j].Spend
		}
		return out[i].Name < out[j].Name
	})
	return out
}
