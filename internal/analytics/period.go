package analytics

import (
	"time"

	"expensetrack/internal/core"
)

// InPeriod reports whether the transaction falls inside the rolling window
// ending at now. Records without a parseable timestamp are never in any
// window.
func InPeriod(tx core.Transaction, period core.Period, now time.Time) bool {
	if !tx.HasTimestamp() {
		return false
	}
	start := now.Add(-windowLength(period))
	return !tx.Timestamp.Before(start)
}

// InPreviousPeriod reports whether the transaction falls inside the window of
// equal length immediately preceding the current one. The interval is
// half-open, [now-2w, now-w), so the two windows are disjoint by
// construction.
func InPreviousPeriod(tx core.Transaction, period core.Period, now time.Time) bool {
	if !tx.HasTimestamp() {
		return false
	}
	w := windowLength(period)
	start := now.Add(-2 * w)
	end := now.Add(-w)
	return !tx.Timestamp.Before(start) && tx.Timestamp.Before(end)
}

func windowLength(period core.Period) time.Duration {
	return time.Duration(period.Days()) * 24 * time.Hour
}
