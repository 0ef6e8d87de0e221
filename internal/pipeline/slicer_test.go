package pipeline

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightops/adpulse/internal/hubspot"
	"github.com/brightops/adpulse/internal/window"
)

func ms(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func contact(booked time.Time, outcome, disqualReason string) hubspot.Contact {
	props := map[string]string{
		hubspot.PropBookedAt: ms(booked),
	}
	if outcome != "" {
		props[hubspot.PropOutcome] = outcome
	}
	if disqualReason != "" {
		props[hubspot.PropDisqualReason] = disqualReason
	}
	return hubspot.Contact{Properties: props}
}

func deal(closed time.Time, amount string) hubspot.Deal {
	return hubspot.Deal{Properties: map[string]string{
		hubspot.PropCloseDate: ms(closed),
		hubspot.PropAmount:    amount,
	}}
}

func TestSlice(t *testing.T) {
	w := window.Range{Label: "Last 30 Days", From: "2024-02-14", To: "2024-03-14"}
	inWindow := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	outside := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)

	ds := Dataset{
		Contacts: []hubspot.Contact{
			contact(inWindow, hubspot.OutcomeCompleted, ""),
			contact(inWindow, hubspot.OutcomeCompleted, ""),
			contact(inWindow, hubspot.OutcomeNoShow, ""),
			contact(inWindow, hubspot.OutcomeCanceled, "wrong industry"),
			contact(inWindow, "", "too small"),
			contact(outside, hubspot.OutcomeCompleted, ""),
		},
		Deals: []hubspot.Deal{
			deal(inWindow, "12000"),
			deal(inWindow, "8000.50"),
			deal(outside, "99999"),
		},
	}

	m := Slice(ds, w)

	assert.Equal(t, 5, m.Booked)
	assert.Equal(t, 2, m.Happened)
	assert.Equal(t, 1, m.NoShow)
	assert.Equal(t, 1, m.Cancelled)
	assert.Equal(t, 2, m.Disqualified)
	assert.Equal(t, 2, m.ClosedWon)
	assert.InDelta(t, 20000.50, m.Revenue, 1e-9)
	assert.InDelta(t, 0.4, m.ShowRate, 1e-9)
	assert.InDelta(t, 0.4, m.DisqualRate, 1e-9)
	assert.Equal(t, map[string]int{"wrong industry": 1, "too small": 1}, m.DisqualReasons)
}

func TestSliceIdempotent(t *testing.T) {
	w := window.Range{Label: "Last 7 Days", From: "2024-03-08", To: "2024-03-14"}
	ds := Dataset{
		Contacts: []hubspot.Contact{
			contact(time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC), hubspot.OutcomeCompleted, ""),
		},
	}

	first := Slice(ds, w)
	second := Slice(ds, w)
	assert.Equal(t, first, second)
}

func TestSliceZeroBookedRates(t *testing.T) {
	w := window.Range{Label: "Last 7 Days", From: "2024-03-08", To: "2024-03-14"}
	m := Slice(Dataset{}, w)

	assert.Equal(t, 0, m.Booked)
	assert.Equal(t, 0.0, m.ShowRate)
	assert.Equal(t, 0.0, m.DisqualRate)
}

func TestSliceMissingTimestampExcluded(t *testing.T) {
	w := window.Range{Label: "Last 30 Days", From: "2024-02-14", To: "2024-03-14"}
	ds := Dataset{
		Contacts: []hubspot.Contact{
			{Properties: map[string]string{hubspot.PropOutcome: hubspot.OutcomeCompleted}},
			{Properties: map[string]string{hubspot.PropBookedAt: "not-a-timestamp"}},
		},
	}

	m := Slice(ds, w)
	assert.Equal(t, 0, m.Booked)
}

func TestSliceNonNumericAmount(t *testing.T) {
	w := window.Range{Label: "Last 30 Days", From: "2024-02-14", To: "2024-03-14"}
	ds := Dataset{
		Deals: []hubspot.Deal{
			deal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "TBD"),
		},
	}

	m := Slice(ds, w)
	assert.Equal(t, 1, m.ClosedWon)
	assert.Equal(t, 0.0, m.Revenue)
}

func TestSliceEmptyWindow(t *testing.T) {
	// Month-to-date on the 1st: To precedes From, nothing matches.
	w := window.Range{Label: "Month to Date", From: "2024-04-01", To: "2024-03-31"}
	require.True(t, w.Empty())

	ds := Dataset{
		Contacts: []hubspot.Contact{
			contact(time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC), hubspot.OutcomeCompleted, ""),
		},
	}

	m := Slice(ds, w)
	assert.Equal(t, 0, m.Booked)
}

func TestTopDisqualReasons(t *testing.T) {
	m := Metrics{DisqualReasons: map[string]int{
		"budget":         2,
		"wrong industry": 5,
		"competitor":     2,
	}}

	reasons := m.TopDisqualReasons()
	require.Len(t, reasons, 3)
	assert.Equal(t, ReasonCount{"wrong industry", 5}, reasons[0])
	// Equal counts tie-break alphabetically for stable output.
	assert.Equal(t, ReasonCount{"budget", 2}, reasons[1])
	assert.Equal(t, ReasonCount{"competitor", 2}, reasons[2])
}
