package core

const (
	Week   Period = "week"
	Month  Period = "month"
	Year   Period = "year"
	Custom Period = "custom"
)

type (
	// Period is a named rolling window, or "custom" for an explicit range.
	Period string

	// AnalyticsQuery narrows a snapshot down to a filtered report: a period
	// or explicit date range, optional entry-type and category sets, and an
	// optional free-text search on descriptions. Empty sets mean "no
	// filtering". Granularity is reserved for future grouping options.
	AnalyticsQuery struct {
		Period      Period      `json:"period"`
		StartDate   string      `json:"start_date,omitempty"`
		EndDate     string      `json:"end_date,omitempty"`
		EntryTypes  []EntryType `json:"entry_types,omitempty"`
		CategoryIDs []string    `json:"category_ids,omitempty"`
		SearchText  string      `json:"search_text,omitempty"`
		Granularity string      `json:"granularity,omitempty"`
	}
)

// Valid reports whether the period is one of the rolling windows. The custom
// pseudo-period is only meaningful inside an AnalyticsQuery.
func (p Period) Valid() bool {
	switch p {
	case Week, Month, Year:
		return true
	default:
		return false
	}
}

// Days returns the fixed day count of a rolling window. A month is always
// exactly 30 days; windows are anchored to "now", not calendar boundaries.
func (p Period) Days() int {
	switch p {
	case Week:
		return 7
	case Year:
		return 365
	default:
		return 30
	}
}

// Validate checks the query for shapes the filter engine cannot interpret.
func (q AnalyticsQuery) Validate() error {
	if q.Period != Custom && !q.Period.Valid() {
		return ErrInvalidPeriod
	}
	for _, et := range q.EntryTypes {
		if !et.Valid() {
			return ErrInvalidEntryType
		}
	}
	return nil
}
