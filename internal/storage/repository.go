package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"expensetrack/internal/core"
	applog "expensetrack/internal/log"
	"expensetrack/internal/source"

	_ "modernc.org/sqlite"
)

// SQLiteRepository serves the raw analytics feed from a local SQLite
// database. Pages use a keyset cursor over the autoincrement row id, so
// a cursor stays valid across inserts.
type SQLiteRepository struct {
	db *sql.DB
}

var _ source.PageFetcher = (*SQLiteRepository)(nil)

// NewSQLiteRepository opens (and migrates) the database at dbPath.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// FetchPage returns one page of raw transactions ordered by row id.
// Categories ride along only on the first page; currency is left empty so
// the engine falls back to the identity preference.
func (r *SQLiteRepository) FetchPage(ctx context.Context, limit int, cursor string) (core.RawPage, error) {
	afterID := int64(0)
	if cursor != "" {
		id, err := strconv.ParseInt(cursor, 10, 64)
		if err != nil {
			return core.RawPage{}, fmt.Errorf("parse cursor %q: %w", cursor, err)
		}
		afterID = id
	}
	if limit <= 0 {
		limit = 100
	}

	// Fetch one extra row to learn whether another page exists.
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, expense_id, user_id, category_id, subcategory_id,
		       entry_type, amount, currency, description, date, created_at
		FROM transactions
		WHERE id > ?
		ORDER BY id
		LIMIT ?`, afterID, limit+1)
	if err != nil {
		return core.RawPage{}, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var (
		page   core.RawPage
		lastID int64
	)
	for rows.Next() {
		var (
			id        int64
			createdAt string
			tx        core.RawTransaction
		)
		if err := rows.Scan(&id, &tx.ID, &tx.UserID, &tx.CategoryID, &tx.SubcategoryID,
			&tx.EntryType, &tx.Amount, &tx.Currency, &tx.Description, &tx.Date, &createdAt); err != nil {
			return core.RawPage{}, fmt.Errorf("scan transaction: %w", err)
		}
		if createdAt != "" {
			if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
				tx.CreatedAt = ts
			}
		}
		if len(page.Transactions) == limit {
			page.HasMore = true
			page.NextCursor = strconv.FormatInt(lastID, 10)
			break
		}
		page.Transactions = append(page.Transactions, tx)
		lastID = id
	}
	if err := rows.Err(); err != nil {
		return core.RawPage{}, fmt.Errorf("iterate transactions: %w", err)
	}

	if afterID == 0 {
		categories, err := r.listCategories(ctx)
		if err != nil {
			return core.RawPage{}, err
		}
		page.Categories = categories
	}

	return page, nil
}

func (r *SQLiteRepository) listCategories(ctx context.Context) ([]core.RawCategory, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, color FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []core.RawCategory
	for rows.Next() {
		var c core.RawCategory
		if err := rows.Scan(&c.CategoryID, &c.Name, &c.Color); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

// InsertTransaction stores one raw transaction, replacing any existing row
// with the same expense id.
func (r *SQLiteRepository) InsertTransaction(ctx context.Context, tx core.RawTransaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (expense_id, user_id, category_id, subcategory_id,
		                          entry_type, amount, currency, description, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(expense_id) DO UPDATE SET
			user_id = excluded.user_id,
			category_id = excluded.category_id,
			subcategory_id = excluded.subcategory_id,
			entry_type = excluded.entry_type,
			amount = excluded.amount,
			currency = excluded.currency,
			description = excluded.description,
			date = excluded.date,
			created_at = excluded.created_at`,
		tx.ID, tx.UserID, tx.CategoryID, tx.SubcategoryID,
		tx.EntryType, tx.Amount, tx.Currency, tx.Description, tx.Date, formatCreatedAt(tx.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert transaction %s: %w", tx.ID, err)
	}
	return nil
}

// UpsertCategory stores one category definition.
func (r *SQLiteRepository) UpsertCategory(ctx context.Context, c core.RawCategory) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, color) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, color = excluded.color`,
		c.CategoryID, c.Name, c.Color)
	if err != nil {
		return fmt.Errorf("upsert category %s: %w", c.CategoryID, err)
	}
	return nil
}

// Seed bulk-loads transactions and categories inside one database
// transaction.
func (r *SQLiteRepository) Seed(ctx context.Context, transactions []core.RawTransaction, categories []core.RawCategory) error {
	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer dbtx.Rollback()

	for _, c := range categories {
		if _, err := dbtx.ExecContext(ctx, `
			INSERT INTO categories (id, name, color) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name, color = excluded.color`,
			c.CategoryID, c.Name, c.Color); err != nil {
			return fmt.Errorf("seed category %s: %w", c.CategoryID, err)
		}
	}
	for _, tx := range transactions {
		if _, err := dbtx.ExecContext(ctx, `
			INSERT INTO transactions (expense_id, user_id, category_id, subcategory_id,
			                          entry_type, amount, currency, description, date, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(expense_id) DO UPDATE SET
				user_id = excluded.user_id,
				category_id = excluded.category_id,
				subcategory_id = excluded.subcategory_id,
				entry_type = excluded.entry_type,
				amount = excluded.amount,
				currency = excluded.currency,
				description = excluded.description,
				date = excluded.date,
				created_at = excluded.created_at`,
			tx.ID, tx.UserID, tx.CategoryID, tx.SubcategoryID,
			tx.EntryType, tx.Amount, tx.Currency, tx.Description, tx.Date, formatCreatedAt(tx.CreatedAt)); err != nil {
			return fmt.Errorf("seed transaction %s: %w", tx.ID, err)
		}
	}

	if err := dbtx.Commit(); err != nil {
		return fmt.Errorf("commit seed transaction: %w", err)
	}
	slog.InfoContext(ctx, "Seeded local database",
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldOperation, applog.OpSeed,
		applog.FieldTxCount, len(transactions),
		applog.FieldCatCount, len(categories))
	return nil
}

// Count returns the number of stored transactions.
func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func formatCreatedAt(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
