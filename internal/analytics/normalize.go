package analytics

import (
	"math"
	"time"

	"expensetrack/internal/core"
)

// dateLayouts are tried in order when parsing raw date strings. The backend
// normally sends RFC 3339, but imported rows can carry bare dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// PrepareTransactions converts raw records into the canonical in-memory
// shape. It is total over any input and order-preserving: malformed amounts
// become 0, unknown entry types become expense, and unparseable dates leave
// the zero timestamp so the record stays invisible to period windows instead
// of failing the batch.
func PrepareTransactions(raw []core.RawTransaction) []core.Transaction {
	out := make([]core.Transaction, len(raw))
	for i, r := range raw {
		ts := parseTimestamp(r.Date)
		out[i] = core.Transaction{
			Amount:      finiteOrZero(r.Amount),
			EntryType:   core.NormalizeEntryType(r.EntryType),
			CategoryID:  r.CategoryID,
			Description: r.Description,
			DateKey:     dateKey(r.Date, ts),
			Timestamp:   ts,
		}
	}
	return out
}

// BuildCategoryLookup indexes categories by id, applying display defaults for
// missing names and colors. Duplicate ids should not occur but must not
// break the build; last write wins.
func BuildCategoryLookup(categories []core.RawCategory) map[string]core.CategoryEntry {
	lookup := make(map[string]core.CategoryEntry, len(categories))
	for _, c := range categories {
		entry := core.CategoryEntry{Name: c.Name, Color: c.Color}
		if entry.Name == "" {
			entry.Name = core.DefaultCategoryName
		}
		if entry.Color == "" {
			entry.Color = core.DefaultCategoryColor
		}
		lookup[c.CategoryID] = entry
	}
	return lookup
}

// NewSnapshot materializes one immutable snapshot from a completed raw fetch.
func NewSnapshot(transactions []core.RawTransaction, categories []core.RawCategory, currency string) *core.Snapshot {
	if currency == "" {
		currency = core.DefaultCurrency
	}
	return &core.Snapshot{
		Transactions:  PrepareTransactions(transactions),
		Categories:    BuildCategoryLookup(categories),
		CategoryCount: len(categories),
		Currency:      currency,
	}
}

func parseTimestamp(value string) time.Time {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// dateKey prefers the raw string's ISO prefix so the day bucket matches what
// the user typed, regardless of timezone; the parsed timestamp is only the
// fallback for short but parseable values.
func dateKey(value string, ts time.Time) string {
	if len(value) >= 10 {
		return value[:10]
	}
	if !ts.IsZero() {
		return ts.UTC().Format("2006-01-02")
	}
	return ""
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
