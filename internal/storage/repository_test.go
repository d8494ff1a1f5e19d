package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"expensetrack/internal/core"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	repo, err := NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func seedFixture(t *testing.T, repo *SQLiteRepository, txCount int) {
	t.Helper()

	var transactions []core.RawTransaction
	for i := 1; i <= txCount; i++ {
		transactions = append(transactions, core.RawTransaction{
			ID:          fmt.Sprintf("tx-%03d", i),
			UserID:      "u1",
			CategoryID:  "food",
			EntryType:   "expense",
			Amount:      float64(i * 10),
			Currency:    "EUR",
			Description: fmt.Sprintf("purchase %d", i),
			Date:        "2025-06-10",
		})
	}
	categories := []core.RawCategory{
		{CategoryID: "food", Name: "Food", Color: "#FF0000"},
		{CategoryID: "rent", Name: "Rent", Color: "#0000FF"},
	}
	if err := repo.Seed(context.Background(), transactions, categories); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestFetchPagePagination(t *testing.T) {
	repo := newTestRepository(t)
	seedFixture(t, repo, 5)
	ctx := context.Background()

	first, err := repo.FetchPage(ctx, 2, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Transactions) != 2 {
		t.Fatalf("first page len = %d, want 2", len(first.Transactions))
	}
	if !first.HasMore || first.NextCursor == "" {
		t.Fatalf("first page HasMore = %v, cursor = %q", first.HasMore, first.NextCursor)
	}
	if len(first.Categories) != 2 {
		t.Errorf("categories on first page = %d, want 2", len(first.Categories))
	}
	if first.Currency != "" {
		t.Errorf("currency = %q, want empty (identity preference applies)", first.Currency)
	}

	second, err := repo.FetchPage(ctx, 2, first.NextCursor)
	if err != nil {
		t.Fatal(err)
	}
	if len(second.Transactions) != 2 || !second.HasMore {
		t.Fatalf("second page len = %d, HasMore = %v", len(second.Transactions), second.HasMore)
	}
	if len(second.Categories) != 0 {
		t.Errorf("categories should ride only on the first page, got %d", len(second.Categories))
	}

	third, err := repo.FetchPage(ctx, 2, second.NextCursor)
	if err != nil {
		t.Fatal(err)
	}
	if len(third.Transactions) != 1 || third.HasMore {
		t.Fatalf("third page len = %d, HasMore = %v", len(third.Transactions), third.HasMore)
	}

	seen := map[string]bool{}
	for _, page := range []core.RawPage{first, second, third} {
		for _, tx := range page.Transactions {
			if seen[tx.ID] {
				t.Errorf("transaction %s appeared twice", tx.ID)
			}
			seen[tx.ID] = true
		}
	}
	if len(seen) != 5 {
		t.Errorf("distinct transactions = %d, want 5", len(seen))
	}
}

func TestFetchPageExactLimit(t *testing.T) {
	repo := newTestRepository(t)
	seedFixture(t, repo, 4)

	page, err := repo.FetchPage(context.Background(), 4, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Transactions) != 4 {
		t.Fatalf("page len = %d, want 4", len(page.Transactions))
	}
	if page.HasMore {
		t.Error("HasMore should be false when the page drains the table")
	}
}

func TestFetchPageBadCursor(t *testing.T) {
	repo := newTestRepository(t)

	if _, err := repo.FetchPage(context.Background(), 10, "not-a-number"); err == nil {
		t.Error("malformed cursor should error")
	}
}

func TestInsertTransactionUpsert(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	tx := core.RawTransaction{
		ID: "tx-1", CategoryID: "food", EntryType: "expense",
		Amount: 10, Description: "first", Date: "2025-06-01",
		CreatedAt: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
	}
	if err := repo.InsertTransaction(ctx, tx); err != nil {
		t.Fatal(err)
	}

	tx.Amount = 25
	tx.Description = "revised"
	if err := repo.InsertTransaction(ctx, tx); err != nil {
		t.Fatal(err)
	}

	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("count = %d, want 1 after upsert", n)
	}

	page, err := repo.FetchPage(ctx, 10, "")
	if err != nil {
		t.Fatal(err)
	}
	got := page.Transactions[0]
	if got.Amount != 25 || got.Description != "revised" {
		t.Errorf("stored row = %+v, want revised values", got)
	}
	if !got.CreatedAt.Equal(tx.CreatedAt) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, tx.CreatedAt)
	}
}

func TestUpsertCategory(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if err := repo.UpsertCategory(ctx, core.RawCategory{CategoryID: "food", Name: "Food", Color: "#FF0000"}); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpsertCategory(ctx, core.RawCategory{CategoryID: "food", Name: "Groceries", Color: "#00FF00"}); err != nil {
		t.Fatal(err)
	}

	page, err := repo.FetchPage(ctx, 10, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Categories) != 1 {
		t.Fatalf("categories = %d, want 1", len(page.Categories))
	}
	if page.Categories[0].Name != "Groceries" {
		t.Errorf("name = %q, want Groceries", page.Categories[0].Name)
	}
}

func TestFormatCreatedAt(t *testing.T) {
	if got := formatCreatedAt(time.Time{}); got != "" {
		t.Errorf("zero time = %q, want empty", got)
	}

	ts := time.Date(2025, 6, 1, 10, 30, 0, 0, time.FixedZone("CEST", 2*60*60))
	if got := formatCreatedAt(ts); got != "2025-06-01T08:30:00Z" {
		t.Errorf("formatCreatedAt = %q", got)
	}
}
