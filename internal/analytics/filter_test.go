package analytics

import (
	"testing"
	"time"

	"expensetrack/internal/core"
)

var filterNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func filterSnapshot() *core.Snapshot {
	day := func(n int) time.Time { return filterNow.Add(-time.Duration(n) * 24 * time.Hour) }
	txs := []core.Transaction{
		{Amount: 250, EntryType: core.Income, CategoryID: "cat-salary", Description: "June salary", DateKey: day(5).Format("2006-01-02"), Timestamp: day(5)},
		{Amount: 80, EntryType: core.Expense, CategoryID: "cat-groceries", Description: "Weekly groceries", DateKey: day(4).Format("2006-01-02"), Timestamp: day(4)},
		{Amount: 15, EntryType: core.Expense, CategoryID: "cat-transport", Description: "Bus ticket", DateKey: day(2).Format("2006-01-02"), Timestamp: day(2)},
		{Amount: 500, EntryType: core.Expense, CategoryID: "cat-groceries", Description: "Old purchase", DateKey: day(60).Format("2006-01-02"), Timestamp: day(60)},
	}
	return &core.Snapshot{
		Transactions: txs,
		Categories: map[string]core.CategoryEntry{
			"cat-salary":    {Name: "Salary", Color: "#111111"},
			"cat-groceries": {Name: "Groceries", Color: "#222222"},
			"cat-transport": {Name: "Transport", Color: "#333333"},
		},
		CategoryCount: 3,
		Currency:      "EUR",
	}
}

func TestFilterTransactionsByPeriod(t *testing.T) {
	snap := filterSnapshot()

	got := FilterTransactions(snap, core.AnalyticsQuery{Period: core.Month}, filterNow)
	if len(got) != 3 {
		t.Fatalf("month filter matched %d transactions, want 3", len(got))
	}

	got = FilterTransactions(snap, core.AnalyticsQuery{Period: core.Year}, filterNow)
	if len(got) != 4 {
		t.Fatalf("year filter matched %d transactions, want 4", len(got))
	}
}

func TestFilterTransactionsByTypeAndCategory(t *testing.T) {
	snap := filterSnapshot()

	got := FilterTransactions(snap, core.AnalyticsQuery{
		Period:     core.Month,
		EntryTypes: []core.EntryType{core.Income},
	}, filterNow)
	if len(got) != 1 || got[0].CategoryID != "cat-salary" {
		t.Fatalf("income filter = %+v, want the salary record", got)
	}

	got = FilterTransactions(snap, core.AnalyticsQuery{
		Period:      core.Month,
		CategoryIDs: []string{"cat-groceries", "cat-transport"},
	}, filterNow)
	if len(got) != 2 {
		t.Fatalf("category filter matched %d, want 2", len(got))
	}
}

func TestFilterTransactionsBySearch(t *testing.T) {
	snap := filterSnapshot()

	got := FilterTransactions(snap, core.AnalyticsQuery{
		Period:     core.Month,
		SearchText: "GROCERIES",
	}, filterNow)
	if len(got) != 1 || got[0].Description != "Weekly groceries" {
		t.Fatalf("search filter = %+v, want the groceries record", got)
	}
}

func TestFilterCustomRange(t *testing.T) {
	snap := filterSnapshot()
	day := func(n int) string { return filterNow.Add(-time.Duration(n) * 24 * time.Hour).Format("2006-01-02") }

	// Bounds are inclusive on both sides.
	got := FilterTransactions(snap, core.AnalyticsQuery{
		Period:    core.Custom,
		StartDate: day(4),
		EndDate:   day(2),
	}, filterNow)
	if len(got) != 2 {
		t.Fatalf("custom range matched %d, want 2", len(got))
	}

	// Open start bound.
	got = FilterTransactions(snap, core.AnalyticsQuery{
		Period:  core.Custom,
		EndDate: day(5),
	}, filterNow)
	if len(got) != 2 {
		t.Fatalf("open start matched %d, want 2", len(got))
	}

	// A record with no date key fails any set bound.
	snap.Transactions = append(snap.Transactions, core.Transaction{Amount: 1, EntryType: core.Expense})
	got = FilterTransactions(snap, core.AnalyticsQuery{
		Period:    core.Custom,
		StartDate: "1900-01-01",
	}, filterNow)
	for _, tx := range got {
		if tx.DateKey == "" {
			t.Error("record without date key should not match a bounded custom range")
		}
	}

	// With no bounds at all, everything matches, dateless records included.
	got = FilterTransactions(snap, core.AnalyticsQuery{Period: core.Custom}, filterNow)
	if len(got) != len(snap.Transactions) {
		t.Fatalf("unbounded custom range matched %d, want %d", len(got), len(snap.Transactions))
	}
}

func TestBuildFilteredReportSummary(t *testing.T) {
	snap := filterSnapshot()

	summary := BuildFilteredReportSummary(snap, core.AnalyticsQuery{
		Period:     core.Month,
		EntryTypes: []core.EntryType{core.Expense},
		SearchText: "bus",
	}, filterNow)

	if summary.ExpenseTotal != 15 || summary.Count != 1 {
		t.Errorf("filtered summary = %v/%d, want 15/1", summary.ExpenseTotal, summary.Count)
	}
	if summary.Currency != "EUR" {
		t.Errorf("currency = %s, want snapshot currency EUR", summary.Currency)
	}
	if len(summary.ByType) != 2 {
		t.Errorf("by_type has %d entries, want 2 even when filtered", len(summary.ByType))
	}
}
