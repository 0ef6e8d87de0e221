package report

import (
	"fmt"
	"strings"

	"github.com/osteele/liquid"

	"github.com/brightops/adpulse/internal/intelligence"
	"github.com/brightops/adpulse/internal/metrics"
	"github.com/brightops/adpulse/internal/pipeline"
	"github.com/brightops/adpulse/internal/window"
)

var htmlEngine = liquid.NewEngine()

// RenderHTML renders the styled HTML dashboard from the snapshot.
func RenderHTML(s Snapshot) (string, error) {
	bindings := map[string]interface{}{
		"title":         "Marketing Pulse",
		"generated_at":  s.GeneratedAt.UTC().Format("Mon, 02 Jan 2006 15:04 UTC"),
		"run_id":        s.RunID,
		"status":        s.Status(),
		"spend":         Money(s.Primary.Spend),
		"demos":         Count(s.Primary.Demos),
		"cost_per_demo": Money(s.Primary.CostPerDemo()),
		"ctr":           Pct(s.Primary.CTR()),
		"cpm":           Money(s.Primary.CPM()),
		"booked":        s.Pipeline30.Booked,
		"show_rate":     Pct(s.Pipeline30.ShowRate),
		"closed_won":    s.Pipeline30.ClosedWon,
		"revenue":       Money2(s.Pipeline30.Revenue),
		"pacing":        Pct(s.BudgetPacing),
		"budget":        Money(s.MonthlyBudget),
		"alerts":        findingMessages(s.Findings.Alerts),
		"warnings":      findingMessages(s.Findings.Warnings),
		"opportunities": findingMessages(s.Findings.Opportunities),
		"wins":          findingMessages(s.Findings.Wins),
		"trends":        trendRows(s),
		"campaigns":     campaignRows(s),
		"channels":      channelRows(s),
		"recs":          recRows(s),
		"reasons":       reasonRows(s),
		"playbook":      playbookLines(),
	}

	out, err := htmlEngine.ParseAndRenderString(dashboardTemplate, bindings)
	if err != nil {
		return "", fmt.Errorf("rendering dashboard template: %w", err)
	}
	return out, nil
}

func findingMessages(items []intelligence.Finding) []string {
	msgs := make([]string, 0, len(items))
	for _, f := range items {
		msgs = append(msgs, f.Message)
	}
	return msgs
}

func trendRows(s Snapshot) []map[string]interface{} {
	row := func(w window.Range, spend *metrics.Aggregated, pl pipeline.Metrics) map[string]interface{} {
		spendCol, demosCol := "-", "-"
		if spend != nil {
			spendCol, demosCol = Money(spend.Spend), Count(spend.Demos)
		}
		return map[string]interface{}{
			"label":     w.Label,
			"dates":     w.From + ".." + w.To,
			"spend":     spendCol,
			"demos":     demosCol,
			"booked":    pl.Booked,
			"show_rate": Pct(pl.ShowRate),
		}
	}
	return []map[string]interface{}{
		row(s.Windows.Last7Days, &s.Week, s.Pipeline7),
		row(s.Windows.Last30Days, &s.Primary, s.Pipeline30),
		row(s.Windows.MonthToDate, nil, s.PipelineMTD),
		row(s.Windows.PriorMonth, &s.PriorSpend, s.PriorMonth),
	}
}

func campaignRows(s Snapshot) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(s.Campaigns))
	for _, c := range s.Campaigns {
		rows = append(rows, map[string]interface{}{
			"name":          c.Name,
			"spend":         Money(c.Spend),
			"demos":         Count(c.Demos),
			"cost_per_demo": Money(c.CostPerDemo()),
			"ctr":           Pct(c.CTR()),
		})
	}
	return rows
}

func channelRows(s Snapshot) []map[string]interface{} {
	rows := []map[string]interface{}{{
		"name":          s.Primary.Name,
		"spend":         Money(s.Primary.Spend),
		"demos":         Count(s.Primary.Demos),
		"cost_per_demo": Money(s.Primary.CostPerDemo()),
		"primary":       true,
	}}
	for _, c := range s.Comparisons {
		rows = append(rows, map[string]interface{}{
			"name":          c.Name,
			"spend":         Money(c.Spend),
			"demos":         Count(c.Demos),
			"cost_per_demo": Money(c.CostPerDemo()),
			"primary":       false,
		})
	}
	return rows
}

func recRows(s Snapshot) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(s.Recommendations))
	for _, r := range s.Recommendations {
		rows = append(rows, map[string]interface{}{
			"type":    strings.ToUpper(string(r.Type)),
			"message": r.Message,
		})
	}
	return rows
}

func reasonRows(s Snapshot) []map[string]interface{} {
	reasons := s.Pipeline30.TopDisqualReasons()
	rows := make([]map[string]interface{}, 0, len(reasons))
	for _, rc := range reasons {
		rows = append(rows, map[string]interface{}{
			"reason": rc.Reason,
			"count":  rc.Count,
		})
	}
	return rows
}

func playbookLines() []string {
	var lines []string
	for _, line := range strings.Split(targetingPlaybook, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "TARGETING PLAYBOOK" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

const dashboardTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{ title }}</title>
<style>
  body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; margin: 0; background: #f4f6f8; color: #1c2733; }
  header { background: #101d2c; color: #fff; padding: 24px 32px; }
  header h1 { margin: 0 0 4px; font-size: 22px; }
  header .meta { color: #9fb0c3; font-size: 13px; }
  main { max-width: 1080px; margin: 0 auto; padding: 24px 16px 48px; }
  .kpis { display: grid; grid-template-columns: repeat(auto-fit, minmax(160px, 1fr)); gap: 12px; margin-bottom: 24px; }
  .kpi { background: #fff; border-radius: 8px; padding: 16px; box-shadow: 0 1px 3px rgba(16,29,44,.08); }
  .kpi .label { font-size: 12px; text-transform: uppercase; letter-spacing: .04em; color: #66788c; }
  .kpi .value { font-size: 24px; font-weight: 600; margin-top: 4px; }
  section { background: #fff; border-radius: 8px; padding: 20px 24px; margin-bottom: 16px; box-shadow: 0 1px 3px rgba(16,29,44,.08); }
  section h2 { margin: 0 0 12px; font-size: 15px; text-transform: uppercase; letter-spacing: .04em; color: #66788c; }
  ul { margin: 0; padding-left: 20px; }
  li { margin: 6px 0; }
  .alert li { color: #b42318; }
  .warning li { color: #b54708; }
  .opportunity li { color: #175cd3; }
  .win li { color: #067647; }
  table { width: 100%; border-collapse: collapse; font-size: 14px; }
  th, td { text-align: left; padding: 8px 10px; border-bottom: 1px solid #e8ecf1; }
  th { color: #66788c; font-weight: 600; font-size: 12px; text-transform: uppercase; }
  tr.primary td { font-weight: 600; }
  .tag { display: inline-block; font-size: 11px; font-weight: 700; padding: 2px 8px; border-radius: 10px; background: #eef2f6; margin-right: 8px; }
  .status { display: inline-block; padding: 2px 10px; border-radius: 10px; background: #233b55; font-size: 12px; }
</style>
</head>
<body>
<header>
  <h1>{{ title }}</h1>
  <div class="meta">{{ generated_at }} · run {{ run_id }} · <span class="status">{{ status }}</span></div>
</header>
<main>
  <div class="kpis">
    <div class="kpi"><div class="label">Spend (30d)</div><div class="value">{{ spend }}</div></div>
    <div class="kpi"><div class="label">Demos</div><div class="value">{{ demos }}</div></div>
    <div class="kpi"><div class="label">Cost / Demo</div><div class="value">{{ cost_per_demo }}</div></div>
    <div class="kpi"><div class="label">CTR</div><div class="value">{{ ctr }}</div></div>
    <div class="kpi"><div class="label">CPM</div><div class="value">{{ cpm }}</div></div>
    <div class="kpi"><div class="label">Meetings</div><div class="value">{{ booked }}</div></div>
    <div class="kpi"><div class="label">Show Rate</div><div class="value">{{ show_rate }}</div></div>
    <div class="kpi"><div class="label">Revenue</div><div class="value">{{ revenue }}</div></div>
  </div>

  <section>
    <h2>Window Trends</h2>
    <table>
      <tr><th>Window</th><th>Dates</th><th>Spend</th><th>Demos</th><th>Meetings</th><th>Show Rate</th></tr>
      {% for t in trends %}
      <tr><td>{{ t.label }}</td><td>{{ t.dates }}</td><td>{{ t.spend }}</td><td>{{ t.demos }}</td><td>{{ t.booked }}</td><td>{{ t.show_rate }}</td></tr>
      {% endfor %}
    </table>
  </section>

  {% if alerts != empty %}
  <section class="alert"><h2>Alerts</h2><ul>{% for m in alerts %}<li>{{ m }}</li>{% endfor %}</ul></section>
  {% endif %}
  {% if warnings != empty %}
  <section class="warning"><h2>Warnings</h2><ul>{% for m in warnings %}<li>{{ m }}</li>{% endfor %}</ul></section>
  {% endif %}
  {% if opportunities != empty %}
  <section class="opportunity"><h2>Opportunities</h2><ul>{% for m in opportunities %}<li>{{ m }}</li>{% endfor %}</ul></section>
  {% endif %}
  {% if wins != empty %}
  <section class="win"><h2>Wins</h2><ul>{% for m in wins %}<li>{{ m }}</li>{% endfor %}</ul></section>
  {% endif %}

  <section>
    <h2>Campaigns</h2>
    <table>
      <tr><th>Campaign</th><th>Spend</th><th>Demos</th><th>Cost / Demo</th><th>CTR</th></tr>
      {% for c in campaigns %}
      <tr><td>{{ c.name }}</td><td>{{ c.spend }}</td><td>{{ c.demos }}</td><td>{{ c.cost_per_demo }}</td><td>{{ c.ctr }}</td></tr>
      {% endfor %}
    </table>
  </section>

  <section>
    <h2>Recommended Actions</h2>
    <ul>
      {% for r in recs %}<li><span class="tag">{{ r.type }}</span>{{ r.message }}</li>{% endfor %}
    </ul>
  </section>

  <section>
    <h2>Cross-Channel Comparison</h2>
    <table>
      <tr><th>Channel</th><th>Spend</th><th>Demos</th><th>Cost / Demo</th></tr>
      {% for ch in channels %}
      <tr{% if ch.primary %} class="primary"{% endif %}><td>{{ ch.name }}</td><td>{{ ch.spend }}</td><td>{{ ch.demos }}</td><td>{{ ch.cost_per_demo }}</td></tr>
      {% endfor %}
    </table>
  </section>

  <section>
    <h2>Disqualification Breakdown</h2>
    {% if reasons == empty %}<p>No disqualified meetings in this period.</p>{% endif %}
    <table>
      {% for rc in reasons %}
      <tr><td>{{ rc.count }}x</td><td>{{ rc.reason }}</td></tr>
      {% endfor %}
    </table>
  </section>

  <section>
    <h2>Targeting Playbook</h2>
    <ul>{% for p in playbook %}<li>{{ p }}</li>{% endfor %}</ul>
  </section>

  <section>
    <h2>Pacing</h2>
    <p>Spend is at {{ pacing }} of the {{ budget }} monthly budget.</p>
  </section>
</main>
</body>
</html>
`
