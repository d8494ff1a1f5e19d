package core

type (
	// Totals is the income/expense split over a transaction set.
	Totals struct {
		IncomeTotal  float64 `json:"income_total"`
		ExpenseTotal float64 `json:"expense_total"`
		NetTotal     float64 `json:"net_total"`
		IncomeCount  int     `json:"income_count"`
		ExpenseCount int     `json:"expense_count"`
		TotalCount   int     `json:"total_count"`
	}

	// TypeSummary is one side of the income/expense breakdown.
	TypeSummary struct {
		EntryType EntryType `json:"entry_type"`
		Total     float64   `json:"total"`
		Count     int       `json:"count"`
	}

	// CategorySummary is one (entry type, category) bucket of a report.
	CategorySummary struct {
		CategoryID string    `json:"category_id"`
		Name       string    `json:"name"`
		Color      string    `json:"color"`
		EntryType  EntryType `json:"entry_type"`
		Total      float64   `json:"total"`
		Count      int       `json:"count"`
	}

	// TrendPoint is one day of the daily trend. Amount duplicates Net for
	// legacy chart consumers.
	TrendPoint struct {
		Date    string  `json:"date"`
		Income  float64 `json:"income"`
		Expense float64 `json:"expense"`
		Net     float64 `json:"net"`
		Amount  float64 `json:"amount"`
	}

	// ReportSummary is the full-period report shape. Total keeps the legacy
	// meaning of "expense total" for older consumers.
	ReportSummary struct {
		Total        float64           `json:"total"`
		Count        int               `json:"count"`
		IncomeTotal  float64           `json:"income_total"`
		ExpenseTotal float64           `json:"expense_total"`
		NetTotal     float64           `json:"net_total"`
		IncomeCount  int               `json:"income_count"`
		ExpenseCount int               `json:"expense_count"`
		ByType       []TypeSummary     `json:"by_type"`
		ByCategory   []CategorySummary `json:"by_category"`
		DailyTrend   []TrendPoint      `json:"daily_trend"`
		Period       Period            `json:"period"`
		Currency     string            `json:"currency"`
	}

	// WindowTotals is one rolling window side of the dashboard stats.
	WindowTotals struct {
		Total float64 `json:"total"`
		Count int     `json:"count"`
	}

	// DashboardStats carries the three rolling windows plus trend
	// percentages. The this_month/last_month/all_time trio duplicates the
	// expense windows for older dashboard cards.
	DashboardStats struct {
		ThisMonth        WindowTotals `json:"this_month"`
		LastMonth        WindowTotals `json:"last_month"`
		AllTime          WindowTotals `json:"all_time"`
		ThisMonthIncome  WindowTotals `json:"this_month_income"`
		ThisMonthExpense WindowTotals `json:"this_month_expense"`
		ThisMonthNet     float64      `json:"this_month_net"`
		LastMonthIncome  WindowTotals `json:"last_month_income"`
		LastMonthExpense WindowTotals `json:"last_month_expense"`
		LastMonthNet     float64      `json:"last_month_net"`
		AllTimeIncome    WindowTotals `json:"all_time_income"`
		AllTimeExpense   WindowTotals `json:"all_time_expense"`
		AllTimeNet       float64      `json:"all_time_net"`
		ChangePercentage float64      `json:"change_percentage"`
		NetChangePct     float64      `json:"net_change_percentage"`
		CategoriesCount  int          `json:"categories_count"`
		Currency         string       `json:"currency"`
	}
)
