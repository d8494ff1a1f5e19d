package backend

import (
	"context"

	"expensetrack/internal/source"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// BackendResult bundles the page fetcher with its optional cleanup.
type BackendResult struct {
	Fetcher source.PageFetcher
	Cleanup CleanupFunc
}

// Factory creates raw-feed backends from configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds the settings each backend type may need.
type Config struct {
	Type BackendType

	// HTTP specific
	APIBaseURL string

	// SQLite specific
	SQLiteDBPath string

	// Memory backend specific
	DataDirectory string
}

// BackendType selects where the raw analytics feed comes from.
type BackendType string

const (
	HTTPBackend   BackendType = "http"
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer.
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid.
func (bt BackendType) IsValid() bool {
	switch bt {
	case HTTPBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
