package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"expensetrack/internal/analytics"
	"expensetrack/internal/core"
	"expensetrack/internal/identity"
	applog "expensetrack/internal/log"
	"expensetrack/internal/sheets"
	"expensetrack/internal/source"
	"expensetrack/internal/source/memory"
)

var handlerNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{
		Handler:   slog.NewTextHandler(io.Discard, nil),
		Component: applog.ComponentHTTP,
	})
}

func fixtureStore() *memory.Store {
	transactions := []core.RawTransaction{
		{ID: "t1", CategoryID: "food", EntryType: "expense", Amount: 40, Description: "Groceries", Date: "2025-06-10"},
		{ID: "t2", CategoryID: "food", EntryType: "expense", Amount: 10, Description: "Coffee", Date: "2025-06-12"},
		{ID: "t3", CategoryID: "salary", EntryType: "income", Amount: 200, Description: "Paycheck", Date: "2025-06-01"},
	}
	categories := []core.RawCategory{
		{CategoryID: "food", Name: "Food", Color: "#FF0000"},
		{CategoryID: "salary", Name: "Salary", Color: "#00FF00"},
	}
	return memory.New(transactions, categories, "EUR")
}

func newTestServer(t *testing.T, fetcher source.PageFetcher, exporter *stubExporter) *Server {
	t.Helper()

	engine := analytics.NewEngine(fetcher, identity.NewStatic("test-token", ""),
		analytics.WithClock(func() time.Time { return handlerNow }),
		analytics.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	// A typed-nil stub would make the interface non-nil and break the 503 path.
	var exp sheets.SummaryExporter
	if exporter != nil {
		exp = exporter
	}
	srv := NewServer(":0", engine, exp, quietLogger())
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

type stubExporter struct {
	lastSummary *core.ReportSummary
	rangeRef    string
	err         error
}

func (s *stubExporter) ExportSummary(_ context.Context, summary *core.ReportSummary) (string, error) {
	s.lastSummary = summary
	if s.err != nil {
		return "", s.err
	}
	return s.rangeRef, nil
}

type failingFetcher struct{}

func (failingFetcher) FetchPage(context.Context, int, string) (core.RawPage, error) {
	return core.RawPage{}, errors.New("backend unreachable")
}

func doRequest(srv *Server, method, target string, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func TestDashboardStats(t *testing.T) {
	srv := newTestServer(t, fixtureStore(), nil)

	rec := doRequest(srv, http.MethodGet, "/dashboard/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var stats core.DashboardStats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	if stats.ThisMonthExpense.Total != 50 {
		t.Errorf("this month expense = %v, want 50", stats.ThisMonthExpense.Total)
	}
	if stats.ThisMonthIncome.Total != 200 {
		t.Errorf("this month income = %v, want 200", stats.ThisMonthIncome.Total)
	}
	if stats.Currency != "EUR" {
		t.Errorf("currency = %q, want EUR", stats.Currency)
	}
}

func TestDashboardStatsInvalidPeriod(t *testing.T) {
	srv := newTestServer(t, fixtureStore(), nil)

	rec := doRequest(srv, http.MethodGet, "/dashboard/stats?period=decade", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error == "" {
		t.Error("expected a non-empty error message")
	}
}

func TestReportSummary(t *testing.T) {
	srv := newTestServer(t, fixtureStore(), nil)

	rec := doRequest(srv, http.MethodGet, "/reports/summary?period=month", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var summary core.ReportSummary
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatal(err)
	}
	if summary.Total != 50 {
		t.Errorf("legacy total = %v, want expense total 50", summary.Total)
	}
	if summary.IncomeTotal != 200 {
		t.Errorf("income total = %v, want 200", summary.IncomeTotal)
	}
	if len(summary.ByType) != 2 {
		t.Errorf("by_type len = %d, want 2", len(summary.ByType))
	}
	if summary.Period != core.Month {
		t.Errorf("period = %q, want month", summary.Period)
	}
}

func TestReportSummaryMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, fixtureStore(), nil)

	rec := doRequest(srv, http.MethodPost, "/reports/summary", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestReportSummaryUpstreamFailure(t *testing.T) {
	srv := newTestServer(t, failingFetcher{}, nil)

	rec := doRequest(srv, http.MethodGet, "/reports/summary", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}

	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp.Error, "upstream") {
		t.Errorf("error = %q, want upstream failure message", resp.Error)
	}
}

func TestFilteredReport(t *testing.T) {
	srv := newTestServer(t, fixtureStore(), nil)

	body := `{"period":"month","entry_types":["expense"],"search_text":"coffee"}`
	rec := doRequest(srv, http.MethodPost, "/reports/filtered", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var summary core.ReportSummary
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatal(err)
	}
	if summary.ExpenseTotal != 10 {
		t.Errorf("expense total = %v, want 10", summary.ExpenseTotal)
	}
	if summary.Count != 1 {
		t.Errorf("count = %d, want 1", summary.Count)
	}
}

func TestFilteredReportDefaultsPeriod(t *testing.T) {
	srv := newTestServer(t, fixtureStore(), nil)

	rec := doRequest(srv, http.MethodPost, "/reports/filtered", `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var summary core.ReportSummary
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatal(err)
	}
	if summary.Period != core.Month {
		t.Errorf("period = %q, want default month", summary.Period)
	}
}

func TestFilteredReportBadBody(t *testing.T) {
	srv := newTestServer(t, fixtureStore(), nil)

	rec := doRequest(srv, http.MethodPost, "/reports/filtered", `{broken`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestFilteredReportInvalidEntryType(t *testing.T) {
	srv := newTestServer(t, fixtureStore(), nil)

	body := `{"period":"month","entry_types":["transfer"]}`
	rec := doRequest(srv, http.MethodPost, "/reports/filtered", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestInvalidate(t *testing.T) {
	srv := newTestServer(t, fixtureStore(), nil)

	rec := doRequest(srv, http.MethodPost, "/cache/invalidate", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp["status"] != "invalidated" {
		t.Errorf("status field = %q", resp["status"])
	}
}

func TestInvalidateMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, fixtureStore(), nil)

	rec := doRequest(srv, http.MethodGet, "/cache/invalidate", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestExportWithoutExporter(t *testing.T) {
	srv := newTestServer(t, fixtureStore(), nil)

	rec := doRequest(srv, http.MethodPost, "/reports/export", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestExport(t *testing.T) {
	exporter := &stubExporter{rangeRef: "Reports!A1:E10"}
	srv := newTestServer(t, fixtureStore(), exporter)

	rec := doRequest(srv, http.MethodPost, "/reports/export?period=month", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp["status"] != "exported" || resp["range"] != "Reports!A1:E10" {
		t.Errorf("response = %v", resp)
	}
	if exporter.lastSummary == nil {
		t.Fatal("exporter never received a summary")
	}
	if exporter.lastSummary.Period != core.Month {
		t.Errorf("exported period = %q, want month", exporter.lastSummary.Period)
	}
}

func TestExportFailure(t *testing.T) {
	exporter := &stubExporter{err: errors.New("spreadsheet gone")}
	srv := newTestServer(t, fixtureStore(), exporter)

	rec := doRequest(srv, http.MethodPost, "/reports/export", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, fixtureStore(), nil)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doRequest(srv, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t, fixtureStore(), nil)

	rec := doRequest(srv, http.MethodGet, "/dashboard/stats", "")
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < 60; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Error("request 61 should be rejected")
	}
	if !rl.allow("10.0.0.2") {
		t.Error("other clients are not affected")
	}
}
