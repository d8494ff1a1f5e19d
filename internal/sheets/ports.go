package sheets

import (
	"context"

	"expensetrack/internal/core"
)

// Ports for outbound adapters.
type (
	// SummaryExporter writes a computed report summary to an external sheet.
	SummaryExporter interface {
		// ExportSummary writes the summary and returns a reference to the
		// written range.
		ExportSummary(ctx context.Context, summary *core.ReportSummary) (rangeRef string, err error)
	}
)
