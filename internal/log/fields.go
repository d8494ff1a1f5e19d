package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldPeriod       = "period"
	FieldCursor       = "cursor"
	FieldPages        = "pages"
	FieldTxCount      = "transaction_count"
	FieldCatCount     = "category_count"
	FieldCurrency     = "currency"
	FieldCacheSlot    = "cache_slot"
	FieldForceRefresh = "force_refresh"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentAnalytics = "analytics"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentBackend   = "backend"
)

// Operations defines standard operation names
const (
	OpSnapshot   = "snapshot"
	OpReport     = "report"
	OpDashboard  = "dashboard"
	OpFilter     = "filter"
	OpInvalidate = "invalidate"
	OpExport     = "export"
	OpSeed       = "seed"
	OpStartup    = "startup"
	OpShutdown   = "shutdown"
)
