// Package memory provides an in-process PageFetcher used as the default
// backend for local development and as the test double everywhere else.
package memory

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"expensetrack/internal/core"
)

type Store struct {
	mu           sync.Mutex
	transactions []core.RawTransaction
	categories   []core.RawCategory
	currency     string
}

// New creates a store over the given records.
func New(transactions []core.RawTransaction, categories []core.RawCategory, currency string) *Store {
	return &Store{
		transactions: append([]core.RawTransaction(nil), transactions...),
		categories:   append([]core.RawCategory(nil), categories...),
		currency:     currency,
	}
}

// NewFromFiles seeds a store from transactions.json and categories.json in
// the given directory. Missing or malformed files leave that part empty; a
// dev machine without seed data still gets a working, empty backend.
func NewFromFiles(base string) *Store {
	var transactions []core.RawTransaction
	var categories []core.RawCategory
	readJSON(filepath.Join(base, "transactions.json"), &transactions)
	readJSON(filepath.Join(base, "categories.json"), &categories)
	return New(transactions, categories, "")
}

// FetchPage implements source.PageFetcher. The cursor is the integer offset
// of the next record; categories and currency ride on the first page only,
// matching the shape of the remote feed.
func (s *Store) FetchPage(_ context.Context, limit int, cursor string) (core.RawPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = len(s.transactions)
	}
	offset := 0
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil || parsed < 0 {
			return core.RawPage{}, &CursorError{Cursor: cursor}
		}
		offset = parsed
	}
	if offset > len(s.transactions) {
		offset = len(s.transactions)
	}

	end := offset + limit
	if end > len(s.transactions) {
		end = len(s.transactions)
	}

	page := core.RawPage{
		Transactions: append([]core.RawTransaction(nil), s.transactions[offset:end]...),
		HasMore:      end < len(s.transactions),
	}
	if page.HasMore {
		page.NextCursor = strconv.Itoa(end)
	}
	if cursor == "" {
		page.Categories = append([]core.RawCategory(nil), s.categories...)
		page.Currency = s.currency
	}
	return page, nil
}

// Replace swaps the store contents, used by seeds and tests.
func (s *Store) Replace(transactions []core.RawTransaction, categories []core.RawCategory, currency string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append([]core.RawTransaction(nil), transactions...)
	s.categories = append([]core.RawCategory(nil), categories...)
	s.currency = currency
}

// CursorError reports a cursor the store cannot interpret.
type CursorError struct {
	Cursor string
}

func (e *CursorError) Error() string {
	return "invalid page cursor: " + strconv.Quote(e.Cursor)
}

func readJSON(path string, out any) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	_ = json.Unmarshal(data, out)
}
