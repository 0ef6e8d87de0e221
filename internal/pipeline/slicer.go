// Package pipeline slices a single wide CRM fetch into per-window funnel
// snapshots. The search API is expensive to page through, so the run
// fetches once for the union of all needed windows and filters locally.
// Slicing is referentially transparent: the same dataset and window always
// produce the same metrics.
package pipeline

import (
	"sort"

	"github.com/brightops/adpulse/internal/hubspot"
	"github.com/brightops/adpulse/internal/window"
)

// Dataset is the full CRM fetch covering the widest required window.
type Dataset struct {
	Contacts []hubspot.Contact
	Deals    []hubspot.Deal
}

// Metrics is the derived funnel snapshot for one window.
type Metrics struct {
	Booked         int
	Happened       int
	NoShow         int
	Cancelled      int
	Disqualified   int
	ClosedWon      int
	Revenue        float64
	DisqualReasons map[string]int
	ShowRate       float64
	DisqualRate    float64
}

// ReasonCount is one disqualification reason with its frequency.
type ReasonCount struct {
	Reason string
	Count  int
}

// TopDisqualReasons returns the reason breakdown sorted by count
// descending, reason string as tiebreaker. The taxonomy is open-ended
// free text; insertion order is irrelevant.
func (m Metrics) TopDisqualReasons() []ReasonCount {
	out := make([]ReasonCount, 0, len(m.DisqualReasons))
	for reason, count := range m.DisqualReasons {
		out = append(out, ReasonCount{Reason: reason, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Reason < out[j].Reason
	})
	return out
}

// Slice filters the dataset to the window's full-day span and reduces the
// result into funnel counts and rates. Contacts with a missing or
// unparseable booking timestamp resolve to the epoch and fall outside
// every real window.
func Slice(ds Dataset, w window.Range) Metrics {
	m := Metrics{DisqualReasons: make(map[string]int)}

	for _, c := range ds.Contacts {
		if !w.Contains(c.BookedAt()) {
			continue
		}
		m.Booked++

		switch c.Prop(hubspot.PropOutcome) {
		case hubspot.OutcomeCompleted:
			m.Happened++
		case hubspot.OutcomeNoShow:
			m.NoShow++
		case hubspot.OutcomeCanceled:
			m.Cancelled++
		}

		if reason := c.Prop(hubspot.PropDisqualReason); reason != "" {
			m.Disqualified++
			m.DisqualReasons[reason]++
		}
	}

	for _, d := range ds.Deals {
		if !w.Contains(d.ClosedAt()) {
			continue
		}
		m.ClosedWon++
		m.Revenue += d.Amount()
	}

	if m.Booked > 0 {
		m.ShowRate = float64(m.Happened) / float64(m.Booked)
		m.DisqualRate = float64(m.Disqualified) / float64(m.Booked)
	}

	return m
}
