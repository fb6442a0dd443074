package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/meal-ledger/internal/domain/model"
	"github.com/guttosm/meal-ledger/internal/logger"
)

// Audit action types recorded for ledger mutations.
const (
	ActionOrderCreate    = "order.create"
	ActionOrderEdit      = "order.edit"
	ActionOrderRenew     = "order.renew"
	ActionOrderDelete    = "order.delete"
	ActionOrderBilled    = "order.billed"
	ActionLeaveAdd       = "leave.add"
	ActionLeaveEdit      = "leave.edit"
	ActionLeaveRemove    = "leave.remove"
	ActionAttendanceMark = "attendance.mark"
	ActionSweepRun       = "sweep.run"
)

// AuditLog records a ledger mutation made through c. err is the outcome of
// the mutation; a nil err records a successful change. orderID may be empty
// when the action is not tied to one order. A "subscriber_id" detail is
// promoted to the entry so the subscriber's activity can be searched.
func AuditLog(c *gin.Context, action, orderID string, err error, details map[string]interface{}) {
	entry := &model.Activity{
		At:        time.Now().UTC(),
		Kind:      model.ActivityMutation,
		Severity:  model.SeverityInfo,
		Action:    action,
		OrderID:   orderID,
		RequestID: GetRequestID(c),
		Method:    c.Request.Method,
		Route:     c.FullPath(),
		Path:      c.Request.URL.Path,
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	for k, v := range details {
		if k == "subscriber_id" {
			if id, ok := v.(string); ok {
				entry.SubscriberID = id
				continue
			}
		}
		entry.Detail(k, v)
	}
	entry.Fail(err)

	log := logger.Logger()
	event := log.Info()
	if entry.Failed() {
		event = log.Warn().Err(err)
	}
	event.
		Str("request_id", entry.RequestID).
		Str("action", action).
		Str("order_id", orderID).
		Msg("Ledger mutation")

	GetAsyncLogger().Log(entry)
}
