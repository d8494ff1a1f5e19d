package analytics

import (
	"math"
	"sort"
	"time"

	"expensetrack/internal/core"
)

// SplitTotals partitions a transaction list into income and expense sides.
// Every transaction lands on exactly one side, so the two totals always sum
// to the list's total.
func SplitTotals(transactions []core.Transaction) core.Totals {
	var t core.Totals
	for _, tx := range transactions {
		if tx.EntryType == core.Income {
			t.IncomeTotal += tx.Amount
			t.IncomeCount++
			continue
		}
		t.ExpenseTotal += tx.Amount
		t.ExpenseCount++
	}
	t.NetTotal = t.IncomeTotal - t.ExpenseTotal
	t.TotalCount = len(transactions)
	return t
}

// BuildReportSummary aggregates all transactions inside the rolling window
// into the full report shape: split totals, per-(type,category) breakdown and
// an ascending daily trend.
func BuildReportSummary(transactions []core.Transaction, categories map[string]core.CategoryEntry, period core.Period, currency string, now time.Time) *core.ReportSummary {
	inWindow := make([]core.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if InPeriod(tx, period, now) {
			inWindow = append(inWindow, tx)
		}
	}
	return summarize(inWindow, categories, period, currency)
}

// summarize builds a ReportSummary over an already-filtered transaction set.
func summarize(transactions []core.Transaction, categories map[string]core.CategoryEntry, period core.Period, currency string) *core.ReportSummary {
	totals := SplitTotals(transactions)

	type dayTotals struct{ income, expense float64 }
	byCategory := make(map[string]*core.CategorySummary)
	categoryOrder := make([]string, 0)
	byDay := make(map[string]*dayTotals)

	for _, tx := range transactions {
		key := string(tx.EntryType) + ":" + tx.CategoryID
		bucket, ok := byCategory[key]
		if !ok {
			entry, known := categories[tx.CategoryID]
			if !known {
				// The category may have been deleted after the transaction
				// was recorded; keep the bucket under the default label.
				entry = core.CategoryEntry{Name: core.DefaultCategoryName, Color: core.DefaultCategoryColor}
			}
			bucket = &core.CategorySummary{
				CategoryID: tx.CategoryID,
				Name:       entry.Name,
				Color:      entry.Color,
				EntryType:  tx.EntryType,
			}
			byCategory[key] = bucket
			categoryOrder = append(categoryOrder, key)
		}
		bucket.Total += tx.Amount
		bucket.Count++

		if tx.DateKey == "" {
			continue
		}
		day, ok := byDay[tx.DateKey]
		if !ok {
			day = &dayTotals{}
			byDay[tx.DateKey] = day
		}
		if tx.EntryType == core.Income {
			day.income += tx.Amount
		} else {
			day.expense += tx.Amount
		}
	}

	byCategoryList := make([]core.CategorySummary, 0, len(categoryOrder))
	for _, key := range categoryOrder {
		byCategoryList = append(byCategoryList, *byCategory[key])
	}

	trend := make([]core.TrendPoint, 0, len(byDay))
	for date, day := range byDay {
		net := day.income - day.expense
		trend = append(trend, core.TrendPoint{
			Date:    date,
			Income:  day.income,
			Expense: day.expense,
			Net:     net,
			Amount:  net,
		})
	}
	// Lexicographic order is chronological because date keys are zero-padded
	// ISO prefixes.
	sort.Slice(trend, func(i, j int) bool { return trend[i].Date < trend[j].Date })

	if currency == "" {
		currency = core.DefaultCurrency
	}
	return &core.ReportSummary{
		Total:        totals.ExpenseTotal,
		Count:        totals.TotalCount,
		IncomeTotal:  totals.IncomeTotal,
		ExpenseTotal: totals.ExpenseTotal,
		NetTotal:     totals.NetTotal,
		IncomeCount:  totals.IncomeCount,
		ExpenseCount: totals.ExpenseCount,
		ByType: []core.TypeSummary{
			{EntryType: core.Income, Total: totals.IncomeTotal, Count: totals.IncomeCount},
			{EntryType: core.Expense, Total: totals.ExpenseTotal, Count: totals.ExpenseCount},
		},
		ByCategory: byCategoryList,
		DailyTrend: trend,
		Period:     period,
		Currency:   currency,
	}
}

// BuildDashboardStats computes the current, previous and all-time windows
// plus the month-over-month trend percentages. Windows are rolling day
// counts anchored to now, not calendar months.
func BuildDashboardStats(transactions []core.Transaction, categoryCount int, currency string, period core.Period, now time.Time) *core.DashboardStats {
	var currentSet, previousSet []core.Transaction
	for _, tx := range transactions {
		if InPeriod(tx, period, now) {
			currentSet = append(currentSet, tx)
		}
		if InPreviousPeriod(tx, period, now) {
			previousSet = append(previousSet, tx)
		}
	}

	current := SplitTotals(currentSet)
	previous := SplitTotals(previousSet)
	allTime := SplitTotals(transactions)

	var change float64
	switch {
	case previous.ExpenseTotal > 0:
		change = (current.ExpenseTotal - previous.ExpenseTotal) / previous.ExpenseTotal * 100
	case current.ExpenseTotal > 0:
		change = 100
	}

	var netChange float64
	switch {
	case previous.NetTotal != 0:
		netChange = (current.NetTotal - previous.NetTotal) / math.Abs(previous.NetTotal) * 100
	case current.NetTotal > 0:
		netChange = 100
	}

	if currency == "" {
		currency = core.DefaultCurrency
	}
	return &core.DashboardStats{
		ThisMonth:        core.WindowTotals{Total: current.ExpenseTotal, Count: current.ExpenseCount},
		LastMonth:        core.WindowTotals{Total: previous.ExpenseTotal, Count: previous.ExpenseCount},
		AllTime:          core.WindowTotals{Total: allTime.ExpenseTotal, Count: allTime.ExpenseCount},
		ThisMonthIncome:  core.WindowTotals{Total: current.IncomeTotal, Count: current.IncomeCount},
		ThisMonthExpense: core.WindowTotals{Total: current.ExpenseTotal, Count: current.ExpenseCount},
		ThisMonthNet:     current.NetTotal,
		LastMonthIncome:  core.WindowTotals{Total: previous.IncomeTotal, Count: previous.IncomeCount},
		LastMonthExpense: core.WindowTotals{Total: previous.ExpenseTotal, Count: previous.ExpenseCount},
		LastMonthNet:     previous.NetTotal,
		AllTimeIncome:    core.WindowTotals{Total: allTime.IncomeTotal, Count: allTime.IncomeCount},
		AllTimeExpense:   core.WindowTotals{Total: allTime.ExpenseTotal, Count: allTime.ExpenseCount},
		AllTimeNet:       allTime.NetTotal,
		ChangePercentage: roundOneDecimal(change),
		NetChangePct:     roundOneDecimal(netChange),
		CategoriesCount:  categoryCount,
		Currency:         currency,
	}
}

// roundOneDecimal rounds half away from zero on the scaled integer.
func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
