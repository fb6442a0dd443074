package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityKind separates served requests from ledger mutations.
type ActivityKind string

const (
	// ActivityRequest is one HTTP request served by the API.
	ActivityRequest ActivityKind = "request"
	// ActivityMutation is one attempted change to the ledger.
	ActivityMutation ActivityKind = "mutation"
)

// Severity levels stored with an activity.
const (
	SeverityInfo  = "info"
	SeverityWarn  = "warn"
	SeverityError = "error"
)

// Activity is one entry of the activity log. Request entries carry the
// status and latency of the response; mutation entries carry the action
// and, when it failed, the error.
type Activity struct {
	ID           primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	At           time.Time              `bson:"at" json:"at"`
	Kind         ActivityKind           `bson:"kind" json:"kind"`
	Severity     string                 `bson:"severity" json:"severity"`
	Action       string                 `bson:"action,omitempty" json:"action,omitempty"`
	OrderID      string                 `bson:"order_id,omitempty" json:"order_id,omitempty"`
	SubscriberID string                 `bson:"subscriber_id,omitempty" json:"subscriber_id,omitempty"`
	RequestID    string                 `bson:"request_id,omitempty" json:"request_id,omitempty"`
	Method       string                 `bson:"method,omitempty" json:"method,omitempty"`
	Route        string                 `bson:"route,omitempty" json:"route,omitempty"`
	Path         string                 `bson:"path,omitempty" json:"path,omitempty"`
	Status       int                    `bson:"status,omitempty" json:"status,omitempty"`
	LatencyMS    int64                  `bson:"latency_ms,omitempty" json:"latency_ms,omitempty"`
	ClientIP     string                 `bson:"client_ip,omitempty" json:"client_ip,omitempty"`
	UserAgent    string                 `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	Error        string                 `bson:"error,omitempty" json:"error,omitempty"`
	Details      map[string]interface{} `bson:"details,omitempty" json:"details,omitempty"`
}

// Detail sets one detail value.
func (a *Activity) Detail(key string, value interface{}) *Activity {
	if a.Details == nil {
		a.Details = make(map[string]interface{})
	}
	a.Details[key] = value
	return a
}

// Fail records err as the outcome of the activity. A nil err leaves it
// untouched.
func (a *Activity) Fail(err error) *Activity {
	if err == nil {
		return a
	}
	a.Error = err.Error()
	if a.Severity == "" || a.Severity == SeverityInfo {
		a.Severity = SeverityWarn
	}
	return a
}

// Failed reports whether the activity ended with an error.
func (a *Activity) Failed() bool {
	return a.Error != ""
}

// ActivityFilter selects activity entries. Zero fields match everything;
// entries come back newest first.
type ActivityFilter struct {
	Kind         ActivityKind
	Action       string
	OrderID      string
	SubscriberID string
	RequestID    string
	Severity     string
	From         *time.Time
	To           *time.Time
	Limit        int
	Skip         int
}
