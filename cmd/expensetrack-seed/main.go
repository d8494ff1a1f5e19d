package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"expensetrack/internal/amqp"
	"expensetrack/internal/config"
	"expensetrack/internal/core"
	applog "expensetrack/internal/log"
	"expensetrack/internal/storage"
)

// expensetrack-seed loads raw transactions and categories from JSON files
// into the local SQLite backend so the server can page over them offline.
func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	dataDir := flag.String("data", "data", "directory holding transactions.json and categories.json")
	dbPath := flag.String("db", "", "SQLite database path (defaults to SQLITE_DB_PATH)")
	flag.Parse()

	cfg := config.Load()
	if *dbPath == "" {
		*dbPath = cfg.SQLiteDBPath
	}

	if err := run(*dataDir, *dbPath); err != nil {
		logger.Error("Seed failed", "error", err)
		os.Exit(1)
	}

	// Tell a running server to drop its cached analytics so the fresh data
	// shows up before TTL expiry.
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Skipping seed announcement, AMQP unavailable", "error", err)
			return
		}
		defer client.Close()
		if err := announceSeed(context.Background(), client); err != nil {
			logger.Warn("Failed to announce seed import", "error", err)
			return
		}
		logger.Info("Announced seed import",
			"exchange", cfg.AMQPExchange,
			"queue", cfg.AMQPQueue)
	}
}

// mutationPublisher is the slice of the AMQP client the announcement needs.
type mutationPublisher interface {
	PublishMutation(ctx context.Context, entity, action, id string) error
}

func announceSeed(ctx context.Context, pub mutationPublisher) error {
	return pub.PublishMutation(ctx, "expense", "import", "")
}

func run(dataDir, dbPath string) error {
	transactions, err := readJSONFile[[]core.RawTransaction](filepath.Join(dataDir, "transactions.json"))
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	categories, err := readJSONFile[[]core.RawCategory](filepath.Join(dataDir, "categories.json"))
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}

	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}
	defer repo.Close()

	ctx := context.Background()
	if err := repo.Seed(ctx, transactions, categories); err != nil {
		return err
	}

	total, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("seeded %d transactions and %d categories into %s (total rows: %d)\n",
		len(transactions), len(categories), dbPath, total)
	return nil
}

// readJSONFile decodes a JSON file, treating a missing file as empty.
func readJSONFile[T any](path string) (T, error) {
	var out T
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("parse %s: %w", path, err)
	}
	return out, nil
}
