package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldQuery       = "query"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldTxID        = "transaction_id"
	FieldKind        = "kind"
	FieldAmountCents = "amount_cents"
	FieldCategory    = "category"
	FieldDate        = "date"
	FieldBillID      = "bill_id"
	FieldSheetsRef   = "sheets_ref"
	FieldMessageID   = "message_id"
	FieldVersion     = "ledger_version"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentLedger    = "ledger"
	ComponentAnalytics = "analytics"
	ComponentBills     = "bills"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
)

// Operations defines standard operation names
const (
	OpAppend   = "append"
	OpList     = "list"
	OpRestore  = "restore"
	OpSchedule = "schedule"
	OpCompute  = "compute"
	OpPublish  = "publish"
	OpExport   = "export"
	OpSync     = "sync"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError adds the error message; nil errors are skipped.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithTransaction adds ledger transaction fields
func (f LogFields) WithTransaction(id int64, kind string, amountCents int64, category string) LogFields {
	f[FieldTxID] = id
	f[FieldKind] = kind
	f[FieldAmountCents] = amountCents
	f[FieldCategory] = category
	return f
}

func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	f[FieldUserAgent] = userAgent
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
