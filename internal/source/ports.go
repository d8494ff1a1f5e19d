package source

import (
	"context"

	"expensetrack/internal/core"
)

// PageFetcher is the outbound port to the raw analytics feed. Fetching must
// be idempotent and side-effect free; the engine pages with the returned
// cursor until HasMore turns false.
type PageFetcher interface {
	// FetchPage returns one page of raw transactions and categories. An
	// empty cursor requests the first page.
	FetchPage(ctx context.Context, limit int, cursor string) (core.RawPage, error)
}
