package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  EntryType = "income"
	Expense EntryType = "expense"
)

const (
	DefaultCategoryName  = "Other"
	DefaultCategoryColor = "#064E3B"
	DefaultCurrency      = "USD"
)

type (
	// EntryType classifies a transaction as income or expense.
	EntryType string

	// RawTransaction is a transaction record exactly as the backend returns it.
	// Fields may be absent or malformed; normalization never rejects a record.
	RawTransaction struct {
		ID            string    `json:"expense_id"`
		UserID        string    `json:"user_id"`
		CategoryID    string    `json:"category_id"`
		SubcategoryID string    `json:"subcategory_id,omitempty"`
		EntryType     string    `json:"entry_type"`
		Amount        float64   `json:"amount"`
		Currency      string    `json:"currency"`
		Description   string    `json:"description"`
		Date          string    `json:"date"`
		CreatedAt     time.Time `json:"created_at"`
	}

	// RawCategory is a category record as the backend returns it.
	RawCategory struct {
		CategoryID string `json:"category_id"`
		Name       string `json:"name"`
		Color      string `json:"color"`
		EntryType  string `json:"entry_type,omitempty"`
		Icon       string `json:"icon,omitempty"`
	}

	// Transaction is the normalized in-memory shape every aggregate consumes.
	// Timestamp is the zero time when the raw date failed to parse; such
	// records are excluded from every period-bounded computation.
	Transaction struct {
		Amount      float64
		EntryType   EntryType
		CategoryID  string
		Description string
		DateKey     string // YYYY-MM-DD, empty when underivable
		Timestamp   time.Time
	}

	// CategoryEntry is the display information resolved per category id.
	CategoryEntry struct {
		Name  string
		Color string
	}

	// Snapshot is one immutable, fully-paginated pull of transactions,
	// categories and currency. It is the unit of caching and invalidation;
	// derived results are always computed fresh from it, never mutated in.
	Snapshot struct {
		Transactions  []Transaction
		Categories    map[string]CategoryEntry
		CategoryCount int
		Currency      string
	}

	// RawPage is one page of the backend's raw analytics feed.
	RawPage struct {
		Transactions []RawTransaction `json:"expenses"`
		Categories   []RawCategory    `json:"categories"`
		Currency     string           `json:"currency"`
		HasMore      bool             `json:"has_more"`
		NextCursor   string           `json:"next_cursor"`
	}
)

var (
	ErrInvalidPeriod    = errors.New("invalid period")
	ErrInvalidEntryType = errors.New("invalid entry type")
)

// NormalizeEntryType maps arbitrary input to a valid entry type. Only the
// literal "income" stays income; everything else, including empty or garbage
// values, becomes expense.
func NormalizeEntryType(value string) EntryType {
	if value == string(Income) {
		return Income
	}
	return Expense
}

// Valid reports whether the entry type is one of the two known values.
func (t EntryType) Valid() bool {
	return t == Income || t == Expense
}

// HasTimestamp reports whether the transaction carries a parseable timestamp.
func (tx Transaction) HasTimestamp() bool {
	return !tx.Timestamp.IsZero()
}

// MatchesSearch reports a case-insensitive substring match on the description.
func (tx Transaction) MatchesSearch(term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(tx.Description), strings.ToLower(term))
}
