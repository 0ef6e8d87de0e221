package report

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightops/adpulse/internal/intelligence"
	"github.com/brightops/adpulse/internal/metrics"
	"github.com/brightops/adpulse/internal/pipeline"
	"github.com/brightops/adpulse/internal/window"
)

func testSnapshot() Snapshot {
	return Snapshot{
		RunID:       "run-123",
		GeneratedAt: time.Date(2024, 3, 15, 7, 0, 0, 0, time.UTC),
		Windows:     window.Compute(time.Date(2024, 3, 15, 7, 0, 0, 0, time.UTC)),
		Primary: metrics.Aggregated{
			Name: "linkedin_ads", Spend: 8432.50, Clicks: 310, Impressions: 41200, Demos: 52,
		},
		Week: metrics.Aggregated{
			Name: "linkedin_ads", Spend: 1980, Clicks: 74, Impressions: 9800, Demos: 11,
		},
		PriorSpend: metrics.Aggregated{
			Name: "linkedin_ads", Spend: 9100, Clicks: 350, Impressions: 45000, Demos: 58,
		},
		Comparisons: []metrics.Aggregated{
			{Name: "google_ads", Spend: 2100, Demos: 18},
		},
		Campaigns: []metrics.Aggregated{
			{Name: "ABM Tier 1", Spend: 5000, Clicks: 200, Impressions: 25000, Demos: 40},
			{Name: "Retargeting", Spend: 3432.50, Clicks: 110, Impressions: 16200, Demos: 12},
		},
		Pipeline7: pipeline.Metrics{Booked: 12, Happened: 9, ShowRate: 0.75},
		Pipeline30: pipeline.Metrics{
			Booked: 52, Happened: 38, NoShow: 6, Disqualified: 8,
			ClosedWon: 4, Revenue: 96000,
			ShowRate: 0.7308, DisqualRate: 0.1538,
			DisqualReasons: map[string]int{"wrong industry": 5, "budget": 3},
		},
		PipelineMTD: pipeline.Metrics{Booked: 24, Happened: 18, ShowRate: 0.75},
		PriorMonth:  pipeline.Metrics{Booked: 61, Happened: 44, ShowRate: 0.7213},
		MonthlyBudget: 10000,
		BudgetPacing:  0.8432,
		Findings: intelligence.Findings{
			Alerts:        []intelligence.Finding{{Category: intelligence.CategoryAlert, Message: "CPM is $205"}},
			Warnings:      []intelligence.Finding{{Category: intelligence.CategoryWarning, Message: "Show rate slipping"}},
			Opportunities: []intelligence.Finding{{Category: intelligence.CategoryOpportunity, Message: "google_ads is converting cheaper"}},
			Wins:          []intelligence.Finding{{Category: intelligence.CategoryWin, Message: "Cost per demo under target"}},
		},
		Recommendations: []intelligence.Recommendation{
			{Type: intelligence.RecScale, Campaign: "ABM Tier 1", Message: "Scale ABM Tier 1"},
		},
	}
}

func TestRenderersAgreeOnHeadlineNumbers(t *testing.T) {
	snap := testSnapshot()

	text := RenderText(snap)
	html, err := RenderHTML(snap)
	require.NoError(t, err)
	chat := RenderChat(snap, "")

	// The formatting helpers are shared, so the same formatted strings
	// must show up in all three renderings.
	spend := Money(snap.Primary.Spend)
	cpd := Money(snap.Primary.CostPerDemo())
	ctr := Pct(snap.Primary.CTR())

	for name, out := range map[string]string{"text": text, "html": html, "chat": chat} {
		assert.Contains(t, out, spend, "spend missing from %s", name)
		assert.Contains(t, out, cpd, "cost per demo missing from %s", name)
		assert.Contains(t, out, ctr, "ctr missing from %s", name)
	}
}

func TestRenderTextSections(t *testing.T) {
	text := RenderText(testSnapshot())

	for _, section := range []string{
		"EXECUTIVE SUMMARY", "WINDOW TRENDS", "ALERTS", "WARNINGS",
		"OPPORTUNITIES", "WINS", "CAMPAIGNS", "RECOMMENDED ACTIONS",
		"CROSS-CHANNEL COMPARISON", "DISQUALIFICATION BREAKDOWN",
		"TARGETING PLAYBOOK",
	} {
		assert.Contains(t, text, section)
	}

	assert.Contains(t, text, "run-123")
	assert.Contains(t, text, "CPM is $205")
	assert.Contains(t, text, "ABM Tier 1")
	assert.Contains(t, text, "[SCALE]")
	assert.Contains(t, text, "5x wrong industry")
	// Revenue carries cents while other money columns round.
	assert.Contains(t, text, "$96,000.00")
}

func TestRenderTextWindowTrends(t *testing.T) {
	text := RenderText(testSnapshot())

	// Every report window appears with its date range.
	assert.Contains(t, text, "Last 7 Days")
	assert.Contains(t, text, "2024-03-08..2024-03-14")
	assert.Contains(t, text, "Last 30 Days")
	assert.Contains(t, text, "Month to Date")
	assert.Contains(t, text, "Prior Month")
	assert.Contains(t, text, "2024-02-01..2024-02-29")

	// 7-day and prior-month spend come from their own aggregates.
	assert.Contains(t, text, "$1,980")
	assert.Contains(t, text, "$9,100")

	// Month-to-date has no dedicated spend query, only pipeline counts.
	mtdLine := ""
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, "Month to Date") {
			mtdLine = line
			break
		}
	}
	require.NotEmpty(t, mtdLine)
	assert.Contains(t, mtdLine, "-")
	assert.Contains(t, mtdLine, "24")
}

func TestRenderTextEmptySections(t *testing.T) {
	snap := Snapshot{
		RunID:       "run-empty",
		GeneratedAt: time.Date(2024, 3, 15, 7, 0, 0, 0, time.UTC),
	}

	text := RenderText(snap)
	assert.Contains(t, text, "no campaign data")
	assert.Contains(t, text, "no disqualified meetings")
	// Finding sections render explicit zero counts rather than vanishing.
	assert.Contains(t, text, "ALERTS (0)")
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML(testSnapshot())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "run-123")
	assert.Contains(t, html, "CPM is $205")
	assert.Contains(t, html, "ABM Tier 1")
	assert.Contains(t, html, "google_ads")
	assert.Contains(t, html, "Targeting Playbook")
	assert.Contains(t, html, "Window Trends")
	assert.Contains(t, html, "2024-03-08..2024-03-14")
	assert.Contains(t, html, "$1,980")
	assert.Contains(t, html, "$96,000.00")
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	name := strings.Repeat("ü", 40)
	out := truncate(name, 36)

	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, 36, utf8.RuneCountInString(out))
	assert.True(t, strings.HasSuffix(out, "…"))

	// At or under the cap the name passes through untouched.
	assert.Equal(t, "Retargeting", truncate("Retargeting", 36))
}

func TestRenderChat(t *testing.T) {
	snap := testSnapshot()

	chat := RenderChat(snap, "https://acme.github.io/dashboards/index.html")
	assert.Contains(t, chat, ":red_circle:")
	assert.Contains(t, chat, "needs attention")
	assert.Contains(t, chat, "CPM is $205")
	assert.Contains(t, chat, "https://acme.github.io/dashboards/index.html")

	// Without a publish URL the link line is dropped.
	chat = RenderChat(snap, "")
	assert.NotContains(t, chat, "Full dashboard")
}

func TestRenderChatCapsAlerts(t *testing.T) {
	snap := testSnapshot()
	snap.Findings.Alerts = []intelligence.Finding{
		{Message: "alert one"}, {Message: "alert two"}, {Message: "alert three"}, {Message: "alert four"},
	}

	chat := RenderChat(snap, "")
	assert.Contains(t, chat, "alert one")
	assert.Contains(t, chat, "alert two")
	assert.NotContains(t, chat, "alert three")
	assert.Contains(t, chat, "2 more alerts")
}

func TestStatus(t *testing.T) {
	snap := Snapshot{}
	assert.Equal(t, "healthy", snap.Status())

	snap.Findings.Warnings = []intelligence.Finding{{Message: "w"}}
	assert.Equal(t, "watch closely", snap.Status())

	snap.Findings.Alerts = []intelligence.Finding{{Message: "a"}}
	assert.Equal(t, "needs attention", snap.Status())
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "$8,432", Money(8432.25))
	assert.Equal(t, "$8,432.50", Money2(8432.50))
	assert.Equal(t, "$0", Money(0))
	assert.Equal(t, "$-1,200", Money(-1200))
	assert.Equal(t, "1.5%", Pct(0.015))
	assert.Equal(t, "0.0%", Pct(0))
	assert.Equal(t, "1,234,567", Count(1234567))
	assert.Equal(t, "52", Count(52))
}
