package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldDate          = "date"
	FieldStartDate     = "start_date"
	FieldEndDate       = "end_date"
	FieldCategory      = "category"
	FieldAmountCents   = "amount_cents"
	FieldInsertedCount = "inserted_count"
	FieldDeletedCount  = "deleted_count"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStorage = "storage"
	ComponentBackend = "backend"
	ComponentConfig  = "config"
)
