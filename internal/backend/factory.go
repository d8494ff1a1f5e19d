package backend

import (
	"context"
	"fmt"
	"log/slog"

	"expensetrack/internal/identity"
	"expensetrack/internal/source/httpapi"
	"expensetrack/internal/source/memory"
	"expensetrack/internal/storage"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	identity identity.Provider
	logger   *slog.Logger
}

// NewFactory creates a backend factory. The identity provider is handed to
// backends that authenticate upstream.
func NewFactory(id identity.Provider, logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		identity: id,
		logger:   logger,
	}
}

// CreateBackend implements Factory.CreateBackend.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case HTTPBackend:
		return f.createHTTPBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createHTTPBackend(config Config) (*BackendResult, error) {
	client, err := httpapi.New(config.APIBaseURL, f.identity)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize HTTP backend: %w", err)
	}

	f.logger.Info("Initialized HTTP backend", "base_url", config.APIBaseURL)

	return &BackendResult{
		Fetcher: client,
		Cleanup: nil,
	}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Fetcher: repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}

	store := memory.NewFromFiles(dataDir)

	f.logger.Info("Initialized memory backend", "data_directory", dataDir)

	return &BackendResult{
		Fetcher: store,
		Cleanup: nil,
	}, nil
}
