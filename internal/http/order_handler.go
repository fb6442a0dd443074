package http

import (
	"github.com/gin-gonic/gin"

	"github.com/guttosm/meal-ledger/internal/domain/dto"
	"github.com/guttosm/meal-ledger/internal/i18n"
	"github.com/guttosm/meal-ledger/internal/middleware"
	"github.com/guttosm/meal-ledger/internal/service"
)

// OrderHandler serves the order, leave, attendance and statistics routes.
type OrderHandler struct {
	orders service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// CreateOrder handles POST /api/v1/orders.
//
// @Summary      Open an order
// @Description  Opens a subscription order for a subscriber, plan and date range. Every day of the range starts pending for the planned meals. The range may not overlap another order of the same subscriber.
// @Tags         Orders
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Idempotency key for request deduplication"
// @Param        request body dto.CreateOrderRequest true "Order to open"
// @Success      201 {object} dto.SuccessResponse{data=model.Order} "Order opened"
// @Failure      400 {object} dto.ErrorResponse "Invalid body, plan or range"
// @Failure      409 {object} dto.ErrorResponse "Overlaps another order of the subscriber"
// @Failure      503 {object} dto.ErrorResponse "Order store unavailable"
// @Router       /api/v1/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	builder := NewResponseBuilder(c)

	req, err := BuildRequest[dto.CreateOrderRequest](c)
	if err != nil {
		builder.BindError(err)
		return
	}
	newOrder, err := req.ToLedger()
	if err != nil {
		builder.Fail(err)
		return
	}

	order, err := h.orders.Create(c.Request.Context(), newOrder)
	orderID := ""
	if order != nil {
		orderID = order.ID.Hex()
	}
	middleware.AuditLog(c, middleware.ActionOrderCreate, orderID, err, map[string]interface{}{
		"subscriber_id": req.SubscriberID,
		"start":         req.Start,
		"end":           req.End,
	})
	if err != nil {
		builder.Fail(err)
		return
	}
	builder.SuccessCreated(order)
}

// GetOrder handles GET /api/v1/orders/:id.
//
// @Summary      Get an order
// @Description  Returns an order with its leaves and its attendance ledger.
// @Tags         Orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.SuccessResponse{data=model.Order}
// @Failure      400 {object} dto.ErrorResponse "Invalid order ID"
// @Failure      404 {object} dto.ErrorResponse "Order not found"
// @Router       /api/v1/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := ObjectIDParam(c, "id", i18n.ErrKeyInvalidOrderID)
	if !ok {
		return
	}
	builder := NewResponseBuilder(c)
	order, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		builder.Fail(err)
		return
	}
	builder.SuccessOK(order)
}

// ListSubscriberOrders handles GET /api/v1/subscribers/:subscriberId/orders.
//
// @Summary      List a subscriber's orders
// @Description  Lists the orders of a subscriber, oldest first, and names the one covering today.
// @Tags         Orders
// @Produce      json
// @Param        subscriberId path string true "Subscriber ID"
// @Success      200 {object} dto.SuccessResponse{data=service.SubscriberOrders}
// @Router       /api/v1/subscribers/{subscriberId}/orders [get]
func (h *OrderHandler) ListSubscriberOrders(c *gin.Context) {
	builder := NewResponseBuilder(c)
	orders, err := h.orders.ListBySubscriber(c.Request.Context(), c.Param("subscriberId"))
	if err != nil {
		builder.Fail(err)
		return
	}
	builder.SuccessOK(orders)
}

// EditOrder handles PUT /api/v1/orders/:id.
//
// @Summary      Change plan and period
// @Description  Replaces the plan and the period of an order. Past days keep their history, days that leave the period are dropped and new days start pending. Rejected when a delivered meal would be lost or a leave would fall outside the new period.
// @Tags         Orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID"
// @Param        request body dto.EditOrderRequest true "New plan and period"
// @Success      200 {object} dto.SuccessResponse{data=model.Order}
// @Failure      400 {object} dto.ErrorResponse "Invalid body, plan or range"
// @Failure      404 {object} dto.ErrorResponse "Order not found"
// @Failure      409 {object} dto.ErrorResponse "Conflicts with leaves, deliveries or a concurrent change"
// @Router       /api/v1/orders/{id} [put]
func (h *OrderHandler) EditOrder(c *gin.Context) {
	id, ok := ObjectIDParam(c, "id", i18n.ErrKeyInvalidOrderID)
	if !ok {
		return
	}
	builder := NewResponseBuilder(c)

	req, err := BuildRequest[dto.EditOrderRequest](c)
	if err != nil {
		builder.BindError(err)
		return
	}
	edit, err := req.ToLedger()
	if err != nil {
		builder.Fail(err)
		return
	}

	order, err := h.orders.Edit(c.Request.Context(), id, edit)
	middleware.AuditLog(c, middleware.ActionOrderEdit, id.Hex(), err, map[string]interface{}{
		"plan":  req.Plan,
		"start": req.Start,
		"end":   req.End,
	})
	if err != nil {
		builder.Fail(err)
		return
	}
	builder.SuccessOK(order)
}

// RenewOrder handles POST /api/v1/orders/:id/renew.
//
// @Summary      Renew an order
// @Description  Opens the order that follows an existing one. Without a body the plan is kept and the new period starts the day after the current one ends, with the same length.
// @Tags         Orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID"
// @Param        request body dto.RenewOrderRequest false "Overrides for the renewed order"
// @Success      201 {object} dto.SuccessResponse{data=model.Order}
// @Failure      400 {object} dto.ErrorResponse "Invalid body, plan or range"
// @Failure      404 {object} dto.ErrorResponse "Order not found"
// @Failure      409 {object} dto.ErrorResponse "Overlaps another order of the subscriber"
// @Router       /api/v1/orders/{id}/renew [post]
func (h *OrderHandler) RenewOrder(c *gin.Context) {
	id, ok := ObjectIDParam(c, "id", i18n.ErrKeyInvalidOrderID)
	if !ok {
		return
	}
	builder := NewResponseBuilder(c)

	var req dto.RenewOrderRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			builder.BindError(err)
			return
		}
	}
	renew, err := req.ToLedger()
	if err != nil {
		builder.Fail(err)
		return
	}

	order, err := h.orders.Renew(c.Request.Context(), id, renew)
	fields := map[string]interface{}{"renewed_from": id.Hex()}
	orderID := ""
	if order != nil {
		orderID = order.ID.Hex()
	}
	middleware.AuditLog(c, middleware.ActionOrderRenew, orderID, err, fields)
	if err != nil {
		builder.Fail(err)
		return
	}
	builder.SuccessCreated(order)
}

// DeleteOrder handles DELETE /api/v1/orders/:id.
//
// @Summary      Delete an order
// @Description  Deletes an order together with its leaves and attendance ledger.
// @Tags         Orders
// @Param        id path string true "Order ID"
// @Success      204 "Order deleted"
// @Failure      400 {object} dto.ErrorResponse "Invalid order ID"
// @Failure      404 {object} dto.ErrorResponse "Order not found"
// @Router       /api/v1/orders/{id} [delete]
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id, ok := ObjectIDParam(c, "id", i18n.ErrKeyInvalidOrderID)
	if !ok {
		return
	}
	builder := NewResponseBuilder(c)

	err := h.orders.Delete(c.Request.Context(), id)
	middleware.AuditLog(c, middleware.ActionOrderDelete, id.Hex(), err, nil)
	if err != nil {
		builder.Fail(err)
		return
	}
	builder.NoContent()
}

// MarkBilled handles POST /api/v1/orders/:id/billed.
//
// @Summary      Mark an order billed
// @Description  Records that an expired order has been invoiced. Marking twice is a no-op.
// @Tags         Orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.SuccessResponse{data=model.Order}
// @Failure      404 {object} dto.ErrorResponse "Order not found"
// @Failure      422 {object} dto.ErrorResponse "Order has not expired"
// @Router       /api/v1/orders/{id}/billed [post]
func (h *OrderHandler) MarkBilled(c *gin.Context) {
	id, ok := ObjectIDParam(c, "id", i18n.ErrKeyInvalidOrderID)
	if !ok {
		return
	}
	builder := NewResponseBuilder(c)

	order, err := h.orders.MarkBilled(c.Request.Context(), id)
	middleware.AuditLog(c, middleware.ActionOrderBilled, id.Hex(), err, nil)
	if err != nil {
		builder.Fail(err)
		return
	}
	builder.SuccessOK(order)
}

// AddLeave handles POST /api/v1/orders/:id/leaves.
//
// @Summary      Add a leave
// @Description  Suspends the affected meals over a date range inside the order period. Leaves of one order may not overlap and their days are capped.
// @Tags         Leaves
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID"
// @Param        request body dto.LeaveRequest true "Leave period"
// @Success      201 {object} dto.SuccessResponse{data=dto.LeaveResponse}
// @Failure      400 {object} dto.ErrorResponse "Invalid body or range"
// @Failure      404 {object} dto.ErrorResponse "Order not found"
// @Failure      409 {object} dto.ErrorResponse "Overlaps another leave or a delivered meal"
// @Failure      422 {object} dto.ErrorResponse "Outside the order period or over the leave cap"
// @Router       /api/v1/orders/{id}/leaves [post]
func (h *OrderHandler) AddLeave(c *gin.Context) {
	id, ok := ObjectIDParam(c, "id", i18n.ErrKeyInvalidOrderID)
	if !ok {
		return
	}
	builder := NewResponseBuilder(c)

	req, err := BuildRequest[dto.LeaveRequest](c)
	if err != nil {
		builder.BindError(err)
		return
	}
	leaveReq, err := req.ToLedger()
	if err != nil {
		builder.Fail(err)
		return
	}

	order, leave, err := h.orders.AddLeave(c.Request.Context(), id, leaveReq)
	fields := map[string]interface{}{"start": req.Start, "end": req.End}
	if err == nil {
		fields["leave_id"] = leave.ID.Hex()
	}
	middleware.AuditLog(c, middleware.ActionLeaveAdd, id.Hex(), err, fields)
	if err != nil {
		builder.Fail(err)
		return
	}
	builder.SuccessCreated(dto.LeaveResponse{Leave: leave, Order: order})
}

// EditLeave handles PUT /api/v1/orders/:id/leaves/:leaveId.
//
// @Summary      Change a leave
// @Description  Replaces the range and affected meals of a leave. Days the leave no longer covers are restored to pending.
// @Tags         Leaves
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID"
// @Param        leaveId path string true "Leave ID"
// @Param        request body dto.LeaveRequest true "New leave period"
// @Success      200 {object} dto.SuccessResponse{data=dto.LeaveResponse}
// @Failure      400 {object} dto.ErrorResponse "Invalid body, range or ID"
// @Failure      404 {object} dto.ErrorResponse "Order or leave not found"
// @Failure      409 {object} dto.ErrorResponse "Overlaps another leave or a delivered meal"
// @Failure      422 {object} dto.ErrorResponse "Outside the order period or over the leave cap"
// @Router       /api/v1/orders/{id}/leaves/{leaveId} [put]
func (h *OrderHandler) EditLeave(c *gin.Context) {
	id, ok := ObjectIDParam(c, "id", i18n.ErrKeyInvalidOrderID)
	if !ok {
		return
	}
	leaveID, ok := ObjectIDParam(c, "leaveId", i18n.ErrKeyInvalidLeaveID)
	if !ok {
		return
	}
	builder := NewResponseBuilder(c)

	req, err := BuildRequest[dto.LeaveRequest](c)
	if err != nil {
		builder.BindError(err)
		return
	}
	leaveReq, err := req.ToLedger()
	if err != nil {
		builder.Fail(err)
		return
	}

	order, leave, err := h.orders.EditLeave(c.Request.Context(), id, leaveID, leaveReq)
	middleware.AuditLog(c, middleware.ActionLeaveEdit, id.Hex(), err, map[string]interface{}{
		"leave_id": leaveID.Hex(),
		"start":    req.Start,
		"end":      req.End,
	})
	if err != nil {
		builder.Fail(err)
		return
	}
	builder.SuccessOK(dto.LeaveResponse{Leave: leave, Order: order})
}

// RemoveLeave handles DELETE /api/v1/orders/:id/leaves/:leaveId.
//
// @Summary      Remove a leave
// @Description  Deletes a leave and restores the meals it suspended to pending.
// @Tags         Leaves
// @Produce      json
// @Param        id path string true "Order ID"
// @Param        leaveId path string true "Leave ID"
// @Success      200 {object} dto.SuccessResponse{data=model.Order}
// @Failure      400 {object} dto.ErrorResponse "Invalid ID"
// @Failure      404 {object} dto.ErrorResponse "Order or leave not found"
// @Router       /api/v1/orders/{id}/leaves/{leaveId} [delete]
func (h *OrderHandler) RemoveLeave(c *gin.Context) {
	id, ok := ObjectIDParam(c, "id", i18n.ErrKeyInvalidOrderID)
	if !ok {
		return
	}
	leaveID, ok := ObjectIDParam(c, "leaveId", i18n.ErrKeyInvalidLeaveID)
	if !ok {
		return
	}
	builder := NewResponseBuilder(c)

	order, err := h.orders.RemoveLeave(c.Request.Context(), id, leaveID)
	middleware.AuditLog(c, middleware.ActionLeaveRemove, id.Hex(), err, map[string]interface{}{
		"leave_id": leaveID.Hex(),
	})
	if err != nil {
		builder.Fail(err)
		return
	}
	builder.SuccessOK(order)
}

// MarkAttendance handles PATCH /api/v1/orders/:id/attendance.
//
// @Summary      Record a delivery state
// @Description  Sets the state of one meal on one day of the order.
// @Tags         Attendance
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID"
// @Param        request body dto.AttendanceMarkRequest true "Meal state"
// @Success      200 {object} dto.SuccessResponse{data=model.Order}
// @Failure      400 {object} dto.ErrorResponse "Invalid body"
// @Failure      404 {object} dto.ErrorResponse "Order not found"
// @Failure      422 {object} dto.ErrorResponse "Date outside the ledger or meal not planned"
// @Router       /api/v1/orders/{id}/attendance [patch]
func (h *OrderHandler) MarkAttendance(c *gin.Context) {
	id, ok := ObjectIDParam(c, "id", i18n.ErrKeyInvalidOrderID)
	if !ok {
		return
	}
	builder := NewResponseBuilder(c)

	req, err := BuildRequest[dto.AttendanceMarkRequest](c)
	if err != nil {
		builder.BindError(err)
		return
	}
	mark, err := req.ToLedger()
	if err != nil {
		builder.Fail(err)
		return
	}

	order, err := h.orders.MarkAttendance(c.Request.Context(), id, mark)
	middleware.AuditLog(c, middleware.ActionAttendanceMark, id.Hex(), err, map[string]interface{}{
		"date":   req.Date,
		"meal":   req.Meal,
		"status": req.Status,
	})
	if err != nil {
		builder.Fail(err)
		return
	}
	builder.SuccessOK(order)
}

// MarkAttendanceBatch handles PATCH /api/v1/orders/:id/attendance/batch.
//
// @Summary      Record several delivery states
// @Description  Applies several meal states at once. Either every mark is applied or none is.
// @Tags         Attendance
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID"
// @Param        request body dto.AttendanceBatchRequest true "Meal states"
// @Success      200 {object} dto.SuccessResponse{data=model.Order}
// @Failure      400 {object} dto.ErrorResponse "Invalid body"
// @Failure      404 {object} dto.ErrorResponse "Order not found"
// @Failure      422 {object} dto.ErrorResponse "A date outside the ledger or a meal not planned"
// @Router       /api/v1/orders/{id}/attendance/batch [patch]
func (h *OrderHandler) MarkAttendanceBatch(c *gin.Context) {
	id, ok := ObjectIDParam(c, "id", i18n.ErrKeyInvalidOrderID)
	if !ok {
		return
	}
	builder := NewResponseBuilder(c)

	req, err := BuildRequest[dto.AttendanceBatchRequest](c)
	if err != nil {
		builder.BindError(err)
		return
	}
	marks, err := req.ToLedger()
	if err != nil {
		builder.Fail(err)
		return
	}

	order, err := h.orders.MarkAttendanceBatch(c.Request.Context(), id, marks)
	middleware.AuditLog(c, middleware.ActionAttendanceMark, id.Hex(), err, map[string]interface{}{
		"marks": len(marks),
	})
	if err != nil {
		builder.Fail(err)
		return
	}
	builder.SuccessOK(order)
}

// DailyStatistics handles GET /api/v1/statistics/daily.
//
// @Summary      Daily meal counts
// @Description  Counts every meal state across all orders for one day. Defaults to today.
// @Tags         Statistics
// @Produce      json
// @Param        date query string false "Day in YYYY-MM-DD format"
// @Success      200 {object} dto.SuccessResponse{data=model.DailyStatistics}
// @Failure      400 {object} dto.ErrorResponse "Invalid date"
// @Router       /api/v1/statistics/daily [get]
func (h *OrderHandler) DailyStatistics(c *gin.Context) {
	builder := NewResponseBuilder(c)

	day, err := dto.ParseDay("date", c.Query("date"))
	if err != nil {
		builder.Fail(err)
		return
	}
	stats, err := h.orders.DailyStatistics(c.Request.Context(), day)
	if err != nil {
		builder.Fail(err)
		return
	}
	builder.SuccessOK(stats)
}
