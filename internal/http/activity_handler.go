package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/meal-ledger/internal/domain/dto"
	"github.com/guttosm/meal-ledger/internal/domain/model"
	"github.com/guttosm/meal-ledger/internal/i18n"
	"github.com/guttosm/meal-ledger/internal/service"
)

// ActivityPage is one page of activity log entries.
//
// @Description Page of activity log entries, newest first
type ActivityPage struct {
	Entries []model.Activity `json:"entries"`
	Total   int64            `json:"total" example:"120"`
	Limit   int              `json:"limit" example:"50"`
	Skip    int              `json:"skip" example:"0"`
} // @name ActivityPage

// ActivityHandler serves the activity log.
type ActivityHandler struct {
	activity service.ActivityLog
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(activity service.ActivityLog) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

// OrderHistory handles GET /api/v1/orders/:id/history.
//
// @Summary      Order history
// @Description  Lists the changes made to an order, newest first: creation, edits, leaves, attendance marks and billing, failed attempts included.
// @Tags         Activity
// @Produce      json
// @Param        id path string true "Order ID"
// @Param        limit query int false "Maximum entries (default 50, at most 500)"
// @Success      200 {object} dto.SuccessResponse{data=[]model.Activity}
// @Failure      400 {object} dto.ErrorResponse "Invalid order ID or limit"
// @Failure      503 {object} dto.ErrorResponse "Activity store unavailable"
// @Router       /api/v1/orders/{id}/history [get]
func (h *ActivityHandler) OrderHistory(c *gin.Context) {
	id, ok := ObjectIDParam(c, "id", i18n.ErrKeyInvalidOrderID)
	if !ok {
		return
	}
	builder := NewResponseBuilder(c)

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequest, err)
			return
		}
		limit = n
	}

	entries, err := h.activity.OrderHistory(c.Request.Context(), id, limit)
	if err != nil {
		builder.Fail(err)
		return
	}
	builder.SuccessOK(entries)
}

// Search handles GET /api/v1/activity.
//
// @Summary      Search the activity log
// @Description  Filters served requests and ledger mutations. An action ending in a dot matches every action with that prefix.
// @Tags         Activity
// @Produce      json
// @Param        query query dto.ActivityQuery false "Filters"
// @Success      200 {object} dto.SuccessResponse{data=ActivityPage}
// @Failure      400 {object} dto.ErrorResponse "Invalid filter"
// @Failure      503 {object} dto.ErrorResponse "Activity store unavailable"
// @Router       /api/v1/activity [get]
func (h *ActivityHandler) Search(c *gin.Context) {
	builder := NewResponseBuilder(c)

	var query dto.ActivityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		builder.BindError(err)
		return
	}
	filter, err := query.ToFilter()
	if err != nil {
		builder.Fail(err)
		return
	}

	entries, total, err := h.activity.Search(c.Request.Context(), filter)
	if err != nil {
		builder.Fail(err)
		return
	}
	builder.SuccessOK(ActivityPage{
		Entries: entries,
		Total:   total,
		Limit:   service.ClampActivityLimit(filter.Limit),
		Skip:    max(filter.Skip, 0),
	})
}
