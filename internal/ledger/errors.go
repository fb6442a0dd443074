package ledger

import (
	"errors"
	"fmt"
)

// Kind classifies a rejected ledger operation.
type Kind string

const (
	KindInvalidInput      Kind = "invalid_input"
	KindInvalidRange      Kind = "invalid_range"
	KindOutOfRange        Kind = "out_of_range"
	KindOverlappingLeave  Kind = "overlapping_leave"
	KindLeaveCapExceeded  Kind = "leave_cap_exceeded"
	KindConflictingLeave  Kind = "conflicting_leave"
	KindUnknownDate       Kind = "unknown_date"
	KindNotFound          Kind = "not_found"
	KindInvalidTransition Kind = "invalid_transition"
	KindAlreadyDelivered  Kind = "already_delivered"
	KindOverlappingOrder  Kind = "overlapping_order"
)

// Error is returned by every ledger operation that rejects its input.
// It matches the sentinel of the same kind under errors.Is.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is a ledger error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrInvalidInput      = &Error{Kind: KindInvalidInput, Message: "invalid input"}
	ErrInvalidRange      = &Error{Kind: KindInvalidRange, Message: "start date is after end date"}
	ErrOutOfRange        = &Error{Kind: KindOutOfRange, Message: "leave is outside the order period"}
	ErrOverlappingLeave  = &Error{Kind: KindOverlappingLeave, Message: "leave overlaps an existing leave"}
	ErrLeaveCapExceeded  = &Error{Kind: KindLeaveCapExceeded, Message: "total leave days exceed the allowed maximum"}
	ErrConflictingLeave  = &Error{Kind: KindConflictingLeave, Message: "order has conflicting leaves"}
	ErrUnknownDate       = &Error{Kind: KindUnknownDate, Message: "no attendance record for date"}
	ErrNotFound          = &Error{Kind: KindNotFound, Message: "not found"}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition, Message: "attendance change not allowed"}
	ErrAlreadyDelivered  = &Error{Kind: KindAlreadyDelivered, Message: "meal already delivered"}
	ErrOverlappingOrder  = &Error{Kind: KindOverlappingOrder, Message: "period overlaps another order of the subscriber"}
)

// Errorf builds a ledger error of the given kind with a formatted message.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind of a ledger error. The second result is false for
// errors that did not originate in the ledger.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
