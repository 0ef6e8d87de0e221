package report

import (
	"fmt"
	"strings"
)

// RenderChat renders the condensed summary posted to the chat webhook.
// publicURL links to the published dashboard and is omitted when empty.
func RenderChat(s Snapshot, publicURL string) string {
	var b strings.Builder

	icon := ":large_green_circle:"
	switch s.Status() {
	case "needs attention":
		icon = ":red_circle:"
	case "watch closely":
		icon = ":large_yellow_circle:"
	}

	fmt.Fprintf(&b, "%s *Marketing Pulse* — %s (%s)\n",
		icon, s.GeneratedAt.UTC().Format("Jan 2"), s.Status())
	fmt.Fprintf(&b, "Spend %s | %s demos @ %s | CTR %s | %d meetings (%s show)\n",
		Money(s.Primary.Spend), Count(s.Primary.Demos), Money(s.Primary.CostPerDemo()),
		Pct(s.Primary.CTR()), s.Pipeline30.Booked, Pct(s.Pipeline30.ShowRate))
	fmt.Fprintf(&b, "Closed won: %d (%s) | Pacing %s of %s\n",
		s.Pipeline30.ClosedWon, Money(s.Pipeline30.Revenue), Pct(s.BudgetPacing), Money(s.MonthlyBudget))

	// At most two alerts and the single top opportunity keep the message
	// scannable on mobile.
	for i, a := range s.Findings.Alerts {
		if i == 2 {
			fmt.Fprintf(&b, ":rotating_light: ...and %d more alerts\n", len(s.Findings.Alerts)-2)
			break
		}
		fmt.Fprintf(&b, ":rotating_light: %s\n", a.Message)
	}
	if len(s.Findings.Opportunities) > 0 {
		fmt.Fprintf(&b, ":bulb: %s\n", s.Findings.Opportunities[0].Message)
	}

	if publicURL != "" {
		fmt.Fprintf(&b, "Full dashboard: %s\n", publicURL)
	}

	return strings.TrimRight(b.String(), "\n")
}
