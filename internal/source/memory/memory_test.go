package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"expensetrack/internal/core"
)

func seedStore(n int) *Store {
	txs := make([]core.RawTransaction, n)
	for i := range txs {
		txs[i] = core.RawTransaction{ID: fmt.Sprintf("tx-%d", i), EntryType: "expense", Amount: float64(i + 1)}
	}
	cats := []core.RawCategory{{CategoryID: "cat-1", Name: "Groceries", Color: "#222222"}}
	return New(txs, cats, "EUR")
}

func TestFetchPagePagination(t *testing.T) {
	store := seedStore(5)
	ctx := context.Background()

	page1, err := store.FetchPage(ctx, 2, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(page1.Transactions) != 2 || !page1.HasMore || page1.NextCursor == "" {
		t.Fatalf("page1 = %+v", page1)
	}
	// Categories and currency only ride on the first page.
	if len(page1.Categories) != 1 || page1.Currency != "EUR" {
		t.Errorf("page1 should carry categories and currency, got %+v", page1)
	}

	page2, err := store.FetchPage(ctx, 2, page1.NextCursor)
	if err != nil {
		t.Fatal(err)
	}
	if len(page2.Transactions) != 2 || !page2.HasMore {
		t.Fatalf("page2 = %+v", page2)
	}
	if len(page2.Categories) != 0 || page2.Currency != "" {
		t.Errorf("later pages must not repeat categories or currency, got %+v", page2)
	}

	page3, err := store.FetchPage(ctx, 2, page2.NextCursor)
	if err != nil {
		t.Fatal(err)
	}
	if len(page3.Transactions) != 1 || page3.HasMore || page3.NextCursor != "" {
		t.Fatalf("page3 = %+v", page3)
	}

	// Order across pages matches insertion order.
	if page1.Transactions[0].ID != "tx-0" || page3.Transactions[0].ID != "tx-4" {
		t.Error("pages out of order")
	}
}

func TestFetchPageZeroLimitReturnsAll(t *testing.T) {
	store := seedStore(4)
	page, err := store.FetchPage(context.Background(), 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Transactions) != 4 || page.HasMore {
		t.Fatalf("page = %+v", page)
	}
}

func TestFetchPageBadCursor(t *testing.T) {
	store := seedStore(2)

	_, err := store.FetchPage(context.Background(), 10, "not-a-number")
	var cursorErr *CursorError
	if !errors.As(err, &cursorErr) {
		t.Fatalf("error = %v, want CursorError", err)
	}
	if cursorErr.Cursor != "not-a-number" {
		t.Errorf("cursor in error = %q", cursorErr.Cursor)
	}
}

func TestFetchPageCursorPastEnd(t *testing.T) {
	store := seedStore(2)
	page, err := store.FetchPage(context.Background(), 10, "99")
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Transactions) != 0 || page.HasMore {
		t.Fatalf("page past end = %+v", page)
	}
}

func TestReplace(t *testing.T) {
	store := seedStore(3)
	store.Replace([]core.RawTransaction{{ID: "new"}}, nil, "USD")

	page, err := store.FetchPage(context.Background(), 10, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Transactions) != 1 || page.Transactions[0].ID != "new" || page.Currency != "USD" {
		t.Fatalf("page after replace = %+v", page)
	}
}

func TestNewFromFilesMissingDirectory(t *testing.T) {
	store := NewFromFiles(t.TempDir())
	page, err := store.FetchPage(context.Background(), 10, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Transactions) != 0 || page.HasMore {
		t.Fatalf("empty store page = %+v", page)
	}
}
