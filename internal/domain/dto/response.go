package dto

import (
	"net/http"
	"time"

	"github.com/guttosm/meal-ledger/internal/domain/model"
	"github.com/guttosm/meal-ledger/internal/ledger"
)

const (
	// ErrCodeInvalidRequest indicates an invalid request.
	ErrCodeInvalidRequest = "invalid_request"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal = "internal_error"
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound = "not_found"
	// ErrCodeRateLimit indicates rate limit exceeded.
	ErrCodeRateLimit = "rate_limit_exceeded"
	// ErrCodeConflict indicates a conflict with current state.
	ErrCodeConflict = "conflict"
	// ErrCodeTimeout indicates a request timeout.
	ErrCodeTimeout = "timeout"
	// ErrCodeUnavailable indicates the order store cannot be reached.
	ErrCodeUnavailable = "service_unavailable"

	ErrCodeInvalidRange      = "invalid_range"
	ErrCodeOutOfRange        = "out_of_range"
	ErrCodeOverlappingLeave  = "overlapping_leave"
	ErrCodeLeaveCapExceeded  = "leave_cap_exceeded"
	ErrCodeConflictingLeave  = "conflicting_leave"
	ErrCodeUnknownDate       = "unknown_date"
	ErrCodeInvalidTransition = "invalid_transition"
	ErrCodeAlreadyDelivered  = "already_delivered"
	ErrCodeOverlappingOrder  = "overlapping_order"
	// ErrCodeVersionConflict means the order changed concurrently; retrying is safe.
	ErrCodeVersionConflict = "version_conflict"
	// ErrCodeSweepInProgress is returned when a sweep is already running.
	ErrCodeSweepInProgress = "sweep_in_progress"
	// ErrCodeIdempotencyKeyReused means the key was used for a different request.
	ErrCodeIdempotencyKeyReused = "idempotency_key_reused"
	// ErrCodeIdempotencyInFlight means a request with the same key is still running.
	ErrCodeIdempotencyInFlight = "idempotency_in_flight"
)

// SuccessResponse wraps successful API responses with metadata.
// @Description Successful API response wrapper
type SuccessResponse struct {
	// Data contains the actual response data (an order, a leave, a sweep report...)
	Data any `json:"data" swaggertype:"object"`
	// RequestID is the unique request identifier
	RequestID string `json:"request_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	// Timestamp is when the response was generated
	Timestamp time.Time `json:"timestamp" example:"2025-01-28T10:00:00Z"`
} // @name SuccessResponse

// ErrorResponse represents a standardized error response for the API.
// @Description Standardized error response
type ErrorResponse struct {
	Error   string `json:"error" example:"leave_cap_exceeded"`
	Message string `json:"message,omitempty" example:"total leave days 9 exceed the maximum of 8"`
	// Details contains additional error details (optional)
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	Timestamp time.Time         `json:"timestamp" example:"2025-01-28T10:00:00Z"`
} // @name ErrorResponse

// NewError creates a new ErrorResponse with the given code and message.
func NewError(code, message string) ErrorResponse {
	return ErrorResponse{
		Error:     code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// WithRequestID adds a request ID to the error response.
func (e ErrorResponse) WithRequestID(requestID string) ErrorResponse {
	e.RequestID = requestID
	return e
}

// ErrCodeFromStatus returns the appropriate error code for an HTTP status.
func ErrCodeFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return ErrCodeInvalidRequest
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusConflict:
		return ErrCodeConflict
	case http.StatusTooManyRequests:
		return ErrCodeRateLimit
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		return ErrCodeTimeout
	case http.StatusServiceUnavailable:
		return ErrCodeUnavailable
	default:
		return ErrCodeInternal
	}
}

// kindStatus gives every ledger error kind its HTTP status and error code.
var kindStatus = map[ledger.Kind]struct {
	status int
	code   string
}{
	ledger.KindInvalidInput:      {http.StatusBadRequest, ErrCodeInvalidRequest},
	ledger.KindInvalidRange:      {http.StatusBadRequest, ErrCodeInvalidRange},
	ledger.KindOutOfRange:        {http.StatusUnprocessableEntity, ErrCodeOutOfRange},
	ledger.KindOverlappingLeave:  {http.StatusConflict, ErrCodeOverlappingLeave},
	ledger.KindLeaveCapExceeded:  {http.StatusUnprocessableEntity, ErrCodeLeaveCapExceeded},
	ledger.KindConflictingLeave:  {http.StatusConflict, ErrCodeConflictingLeave},
	ledger.KindUnknownDate:       {http.StatusUnprocessableEntity, ErrCodeUnknownDate},
	ledger.KindNotFound:          {http.StatusNotFound, ErrCodeNotFound},
	ledger.KindInvalidTransition: {http.StatusUnprocessableEntity, ErrCodeInvalidTransition},
	ledger.KindAlreadyDelivered:  {http.StatusConflict, ErrCodeAlreadyDelivered},
	ledger.KindOverlappingOrder:  {http.StatusConflict, ErrCodeOverlappingOrder},
}

// StatusFromKind returns the HTTP status and error code for a ledger error kind.
func StatusFromKind(kind ledger.Kind) (int, string) {
	if m, ok := kindStatus[kind]; ok {
		return m.status, m.code
	}
	return http.StatusInternalServerError, ErrCodeInternal
}

// LeaveResponse returns a changed leave together with the order that holds it.
//
// @Description Leave and the updated order
type LeaveResponse struct {
	Leave model.Leave  `json:"leave"`
	Order *model.Order `json:"order"`
} // @name LeaveResponse
