package i18n

// Error message translation keys. Keys of ledger rejections are derived from
// their error code with ErrorKey.
const (
	ErrKeyInvalidRequest     = "error.invalid_request"
	ErrKeyInvalidRequestBody = "error.invalid_request_body"
	ErrKeyInvalidOrderID     = "error.invalid_order_id"
	ErrKeyInvalidLeaveID     = "error.invalid_leave_id"
	ErrKeyInternalError      = "error.internal_error"
	ErrKeyNotFound           = "error.not_found"
	ErrKeyRateLimitExceeded  = "error.rate_limit_exceeded"
	ErrKeyConflict           = "error.conflict"
	ErrKeyTimeout            = "error.timeout"
	ErrKeyUnavailable        = "error.service_unavailable"
	ErrKeyVersionConflict    = "error.version_conflict"
	ErrKeySweepInProgress    = "error.sweep_in_progress"
)

// Success message translation keys.
const (
	SuccessKeySweepCompleted = "success.sweep_completed"
)

// ErrorKey returns the translation key of an API error code.
func ErrorKey(code string) string {
	return "error." + code
}
