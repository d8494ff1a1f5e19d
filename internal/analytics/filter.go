package analytics

import (
	"time"

	"expensetrack/internal/core"
)

// FilterTransactions applies a report query to a snapshot and returns the
// matching transactions in their original order. Custom ranges compare the
// date key, not the timestamp, so a row stays inside the day the user typed
// regardless of timezone.
func FilterTransactions(snapshot *core.Snapshot, query core.AnalyticsQuery, now time.Time) []core.Transaction {
	typeSet := make(map[core.EntryType]struct{}, len(query.EntryTypes))
	for _, et := range query.EntryTypes {
		typeSet[et] = struct{}{}
	}
	categorySet := make(map[string]struct{}, len(query.CategoryIDs))
	for _, id := range query.CategoryIDs {
		categorySet[id] = struct{}{}
	}

	var out []core.Transaction
	for _, tx := range snapshot.Transactions {
		if !inQueryRange(tx, query, now) {
			continue
		}
		if len(typeSet) > 0 {
			if _, ok := typeSet[tx.EntryType]; !ok {
				continue
			}
		}
		if len(categorySet) > 0 {
			if _, ok := categorySet[tx.CategoryID]; !ok {
				continue
			}
		}
		if !tx.MatchesSearch(query.SearchText) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// BuildFilteredReportSummary filters the snapshot by the query and summarizes
// the result. The period re-filtering of BuildReportSummary is skipped here
// because the query already bounded the set.
func BuildFilteredReportSummary(snapshot *core.Snapshot, query core.AnalyticsQuery, now time.Time) *core.ReportSummary {
	filtered := FilterTransactions(snapshot, query, now)
	return summarize(filtered, snapshot.Categories, query.Period, snapshot.Currency)
}

func inQueryRange(tx core.Transaction, query core.AnalyticsQuery, now time.Time) bool {
	if query.Period != core.Custom {
		return InPeriod(tx, query.Period, now)
	}
	if query.StartDate != "" && (tx.DateKey == "" || tx.DateKey < query.StartDate) {
		return false
	}
	if query.EndDate != "" && (tx.DateKey == "" || tx.DateKey > query.EndDate) {
		return false
	}
	return true
}
