package log

// Common field names for structured logging
const (
	FieldComponent       = "component"
	FieldRequestID       = "request_id"
	FieldClientIP        = "client_ip"
	FieldMethod          = "method"
	FieldPath            = "path"
	FieldQuery           = "query"
	FieldStatusCode      = "status_code"
	FieldDuration        = "duration_ms"
	FieldUserAgent       = "user_agent"
	FieldSuccess         = "success"
	FieldError           = "error"
	FieldOperation       = "operation"
	FieldUserID          = "user_id"
	FieldTransactionID   = "transaction_id"
	FieldTransactionType = "transaction_type"
	FieldCategory        = "category"
	FieldAmount          = "amount"
	FieldPeriod          = "period"
	FieldStorageKey      = "storage_key"
	FieldBackend         = "backend"
)

// Components defines standard component names
const (
	ComponentApp         = "app"
	ComponentHTTP        = "http"
	ComponentTransaction = "transaction"
	ComponentReport      = "report"
	ComponentStorage     = "storage"
	ComponentCache       = "cache"
	ComponentAMQP        = "amqp"
	ComponentWorker      = "worker"
	ComponentSheets      = "sheets"
	ComponentBackend     = "backend"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpList     = "list"
	OpAppend   = "append"
	OpExport   = "export"
	OpValidate = "validate"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	if requestID != "" {
		f[FieldRequestID] = requestID
	}
	return f
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError adds the error message; a nil error adds nothing.
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

func (f LogFields) WithUser(userID string) LogFields {
	f[FieldUserID] = userID
	return f
}

// WithTransaction adds transaction-related fields
func (f LogFields) WithTransaction(id, txType, category, amount string) LogFields {
	f[FieldTransactionID] = id
	f[FieldTransactionType] = txType
	f[FieldCategory] = category
	f[FieldAmount] = amount
	return f
}

func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	f[FieldUserAgent] = userAgent
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = statusCode < 400
	return f
}

// ToSlice converts LogFields to key/value pairs for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
