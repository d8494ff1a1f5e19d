package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"expensetrack/internal/core"
	applog "expensetrack/internal/log"

	ports "expensetrack/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client exports report summaries to a Google spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.SummaryExporter = (*Client)(nil)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Optional: GOOGLE_SHEET_NAME (default "Reports"); credentials via
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Reports"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return service, nil
}

// ExportSummary writes the summary as rows starting at A1, overwriting the
// previous export: a header block with totals, then one row per category,
// then the daily trend.
func (c *Client) ExportSummary(ctx context.Context, summary *core.ReportSummary) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if summary == nil {
		return "", errors.New("nil summary")
	}

	values := SummaryRows(summary)

	rng := fmt.Sprintf("%s!A1", c.sheetName)
	vr := &gsheet.ValueRange{Values: values}

	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to update sheet %s: %w", c.sheetName, err)
	}

	ref := fmt.Sprintf("%s!A1:E%d", c.sheetName, len(values))
	slog.InfoContext(ctx, "Exported report summary to Google Sheets",
		applog.FieldComponent, applog.ComponentSheets,
		"spreadsheet_id", c.spreadsheetID,
		"sheet", c.sheetName,
		"rows", len(values),
		"period", summary.Period)
	return ref, nil
}

// SummaryRows flattens a report summary into spreadsheet rows.
func SummaryRows(summary *core.ReportSummary) [][]any {
	values := [][]any{
		{"Period", string(summary.Period), "Currency", summary.Currency},
		{"Income", summary.IncomeTotal, "Expense", summary.ExpenseTotal, "Net", summary.NetTotal},
		{},
		{"Category", "Type", "Amount", "Count", "Color"},
	}
	for _, cat := range summary.ByCategory {
		values = append(values, []any{cat.Name, string(cat.EntryType), cat.Total, cat.Count, cat.Color})
	}
	values = append(values, []any{}, []any{"Date", "Income", "Expense", "Net"})
	for _, point := range summary.DailyTrend {
		values = append(values, []any{point.Date, point.Income, point.Expense, point.Net})
	}
	return values
}
