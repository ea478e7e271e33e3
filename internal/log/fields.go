package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldYear        = "year"
	FieldRecipientID = "recipient_id"
	FieldItemID      = "item_id"
	FieldPurchaseID  = "purchase_id"
	FieldAmountCents = "amount_cents"
	FieldItemStatus  = "status"
)

// Components defines standard component names, one per binary.
const (
	ComponentApp    = "app"
	ComponentWorker = "worker"
)
