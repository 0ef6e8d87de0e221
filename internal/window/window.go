// Package window derives the rolling date ranges a report run covers.
// All arithmetic is in UTC, and every range is capped at yesterday because
// the ad-spend source reports with a one-day lag.
package window

import "time"

const dateLayout = "2006-01-02"

// Range is a closed calendar-date interval [From, To] with a display label.
// Dates are ISO calendar dates (YYYY-MM-DD); no time of day is retained.
type Range struct {
	Label string
	From  string
	To    string
}

// Span reconstructs the full-day UTC span of the range: 00:00:00.000 on the
// From date through 23:59:59.999 on the To date, inclusive both ends.
func (r Range) Span() (time.Time, time.Time) {
	from, _ := time.ParseInLocation(dateLayout, r.From, time.UTC)
	to, _ := time.ParseInLocation(dateLayout, r.To, time.UTC)
	end := to.Add(24*time.Hour - time.Millisecond)
	return from, end
}

// Contains reports whether the instant t falls within the range's
// full-day span.
func (r Range) Contains(t time.Time) bool {
	from, to := r.Span()
	return !t.Before(from) && !t.After(to)
}

// Empty reports whether the range covers no days (To precedes From).
// This happens for month-to-date on the 1st of a month and callers must
// tolerate it rather than treating it as an error.
func (r Range) Empty() bool {
	return r.To < r.From
}

// Windows is the fixed set of ranges every report run computes.
type Windows struct {
	Yesterday   Range
	Last7Days   Range
	Last30Days  Range
	MonthToDate Range
	PriorMonth  Range
}

// Compute derives the five report windows anchored to now.
func Compute(now time.Time) Windows {
	today := now.UTC().Truncate(24 * time.Hour)
	yesterday := today.AddDate(0, 0, -1)

	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	priorMonthStart := monthStart.AddDate(0, -1, 0)
	priorMonthEnd := monthStart.AddDate(0, 0, -1)

	return Windows{
		Yesterday: Range{
			Label: "Yesterday",
			From:  yesterday.Format(dateLayout),
			To:    yesterday.Format(dateLayout),
		},
		Last7Days: Range{
			Label: "Last 7 Days",
			From:  today.AddDate(0, 0, -7).Format(dateLayout),
			To:    yesterday.Format(dateLayout),
		},
		Last30Days: Range{
			Label: "Last 30 Days",
			From:  today.AddDate(0, 0, -30).Format(dateLayout),
			To:    yesterday.Format(dateLayout),
		},
		MonthToDate: Range{
			Label: "Month to Date",
			From:  monthStart.Format(dateLayout),
			To:    yesterday.Format(dateLayout),
		},
		PriorMonth: Range{
			Label: "Prior Month",
			From:  priorMonthStart.Format(dateLayout),
			To:    priorMonthEnd.Format(dateLayout),
		},
	}
}
