package hubspot

import (
	"strconv"
	"time"
)

// Contact property names the report depends on.
const (
	PropBookedAt      = "meeting_booked_at"
	PropOutcome       = "meeting_outcome"
	PropDisqualReason = "disqualification_reason"
	PropLeadSource    = "lead_source"
	PropOriginalSrc   = "hs_analytics_source"
)

// Meeting outcome values as recorded by the CRM.
const (
	OutcomeCompleted = "COMPLETED"
	OutcomeNoShow    = "NO_SHOW"
	OutcomeCanceled  = "CANCELED"
)

// Deal property names.
const (
	PropAmount    = "amount"
	PropCloseDate = "closedate"
	PropDealStage = "dealstage"
)

// StageClosedWon is the only deal stage the report fetches.
const StageClosedWon = "closedwon"

// Contact is a CRM contact record representing a booked meeting.
// Records are fetched once per run and filtered, never mutated.
type Contact struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

// Prop returns a property value, or "" when absent.
func (c Contact) Prop(name string) string {
	return c.Properties[name]
}

// BookedAt returns the booking timestamp. A missing or unparseable value
// yields the epoch, which falls before every real report window and so
// excludes the contact from every slice.
func (c Contact) BookedAt() time.Time {
	return parseEpochMillis(c.Properties[PropBookedAt])
}

// Deal is a CRM deal record representing closed revenue.
type Deal struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

// Amount returns the deal amount, coercing non-numeric values to 0.
func (d Deal) Amount() float64 {
	v, err := strconv.ParseFloat(d.Properties[PropAmount], 64)
	if err != nil {
		return 0
	}
	return v
}

// ClosedAt returns the close timestamp, epoch when missing or unparseable.
func (d Deal) ClosedAt() time.Time {
	return parseEpochMillis(d.Properties[PropCloseDate])
}

func parseEpochMillis(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.UnixMilli(0).UTC()
	}
	return time.UnixMilli(ms).UTC()
}

// Filter is one comparison inside a filter group.
type Filter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value,omitempty"`
}

// FilterGroup combines filters with AND semantics.
type FilterGroup struct {
	Filters []Filter `json:"filters"`
}

// Sort orders search results.
type Sort struct {
	PropertyName string `json:"propertyName"`
	Direction    string `json:"direction"`
}

// SearchRequest is the CRM search API request body.
type SearchRequest struct {
	FilterGroups []FilterGroup `json:"filterGroups"`
	Properties   []string      `json:"properties"`
	Sorts        []Sort        `json:"sorts,omitempty"`
	Limit        int           `json:"limit"`
	After        string        `json:"after,omitempty"`
}

type searchResponse[T any] struct {
	Total   int `json:"total"`
	Results []T `json:"results"`
	Paging  *struct {
		Next struct {
			After string `json:"after"`
		} `json:"next"`
	} `json:"paging"`
}
