//go:build contract

package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/meal-ledger/internal/domain/dto"
)

// decodeObject decodes the data member of a success response as a JSON object.
func decodeObject(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp dto.SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	assert.NotEmpty(t, resp.RequestID, "Response must include request_id")
	assert.NotZero(t, resp.Timestamp, "Response must include timestamp")

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "data must be an object")
	return data
}

func assertOrderShape(t *testing.T, order map[string]interface{}) {
	t.Helper()
	for _, field := range []string{
		"id", "subscriber_id", "plan", "period_start", "period_end", "status",
		"leaves", "attendances", "billed", "version", "created_at", "updated_at",
	} {
		assert.Contains(t, order, field)
	}

	days, ok := order["attendances"].([]interface{})
	require.True(t, ok)
	require.NotEmpty(t, days)
	day, ok := days[0].(map[string]interface{})
	require.True(t, ok)
	for _, field := range []string{"date", "breakfast", "lunch", "dinner"} {
		assert.Contains(t, day, field)
	}
}

// TestAPI_ContractCompliance validates that success responses match the documented contract.
func TestAPI_ContractCompliance(t *testing.T) {
	api := newTestAPI(t)
	order := api.createOrder(t, "sub-1")
	base := "/orders/" + order.ID.Hex()

	tests := []struct {
		name             string
		method           string
		path             string
		body             interface{}
		expectedStatus   int
		validateResponse func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:           "POST /orders - Success 201",
			method:         http.MethodPost,
			path:           "/orders",
			body:           dto.CreateOrderRequest{SubscriberID: "sub-2", Plan: []string{"lunch"}, Start: "2024-01-02", End: "2024-01-05"},
			expectedStatus: http.StatusCreated,
			validateResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				data := decodeObject(t, w)
				assertOrderShape(t, data)
				assert.Equal(t, "upcoming", data["status"])
				assert.Equal(t, []interface{}{"lunch"}, data["plan"])
			},
		},
		{
			name:           "GET /orders/:id - Success 200",
			method:         http.MethodGet,
			path:           base,
			expectedStatus: http.StatusOK,
			validateResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				assertOrderShape(t, decodeObject(t, w))
			},
		},
		{
			name:           "POST /orders/:id/leaves - Success 201",
			method:         http.MethodPost,
			path:           base + "/leaves",
			body:           dto.LeaveRequest{Start: "2024-01-20", End: "2024-01-21", AffectedMeals: []string{"dinner"}},
			expectedStatus: http.StatusCreated,
			validateResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				data := decodeObject(t, w)
				leave, ok := data["leave"].(map[string]interface{})
				require.True(t, ok)
				for _, field := range []string{"id", "start", "end", "affected_meals", "leave_day_count"} {
					assert.Contains(t, leave, field)
				}
				assert.Equal(t, float64(2), leave["leave_day_count"])

				order, ok := data["order"].(map[string]interface{})
				require.True(t, ok)
				assertOrderShape(t, order)
			},
		},
		{
			name:           "GET /subscribers/:id/orders - Success 200",
			method:         http.MethodGet,
			path:           "/subscribers/sub-1/orders",
			expectedStatus: http.StatusOK,
			validateResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				data := decodeObject(t, w)
				orders, ok := data["orders"].([]interface{})
				require.True(t, ok)
				require.Len(t, orders, 1)
				summary := orders[0].(map[string]interface{})
				for _, field := range []string{"id", "subscriber_id", "plan", "period_start", "period_end", "status", "billed", "leave_days"} {
					assert.Contains(t, summary, field)
				}
				assert.NotContains(t, data, "active_order_id")
			},
		},
		{
			name:           "GET /statistics/daily - Success 200",
			method:         http.MethodGet,
			path:           "/statistics/daily?date=2024-01-02",
			expectedStatus: http.StatusOK,
			validateResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				data := decodeObject(t, w)
				assert.Contains(t, data, "date")
				meals, ok := data["meals"].(map[string]interface{})
				require.True(t, ok)
				assert.Len(t, meals, 3)
			},
		},
		{
			name:           "POST /sweep - Success 200",
			method:         http.MethodPost,
			path:           "/sweep",
			expectedStatus: http.StatusOK,
			validateResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				data := decodeObject(t, w)
				assert.NotEmpty(t, data["message"])
				report, ok := data["report"].(map[string]interface{})
				require.True(t, ok)
				for _, field := range []string{"day", "started_at", "scanned", "updated", "unchanged", "failed", "skipped", "duration_ms", "canceled"} {
					assert.Contains(t, report, field)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(t, tt.method, tt.path, tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"), "Response must include X-Request-ID header")

			if tt.validateResponse != nil {
				tt.validateResponse(t, w)
			}
		})
	}
}

// TestAPI_ErrorContract pins the status and code of every ledger rule violation.
func TestAPI_ErrorContract(t *testing.T) {
	api := newTestAPI(t)
	order := api.createOrder(t, "sub-1")
	base := "/orders/" + order.ID.Hex()

	w := api.do(t, http.MethodPost, base+"/leaves", dto.LeaveRequest{Start: "2024-01-10", End: "2024-01-12"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = api.do(t, http.MethodPatch, base+"/attendance", dto.AttendanceMarkRequest{Date: "2024-01-02", Meal: "lunch", Status: "delivered"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	tests := []struct {
		name           string
		method         string
		path           string
		body           interface{}
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "malformed body",
			method:         http.MethodPost,
			path:           "/orders",
			body:           map[string]interface{}{"subscriber_id": 42},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   dto.ErrCodeInvalidRequest,
		},
		{
			name:           "start after end",
			method:         http.MethodPost,
			path:           "/orders",
			body:           dto.CreateOrderRequest{SubscriberID: "sub-9", Plan: []string{"lunch"}, Start: "2024-02-10", End: "2024-02-01"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   dto.ErrCodeInvalidRange,
		},
		{
			name:           "overlapping order",
			method:         http.MethodPost,
			path:           "/orders",
			body:           dto.CreateOrderRequest{SubscriberID: "sub-1", Plan: []string{"lunch"}, Start: "2024-01-31", End: "2024-02-05"},
			expectedStatus: http.StatusConflict,
			expectedCode:   dto.ErrCodeOverlappingOrder,
		},
		{
			name:           "leave outside the period",
			method:         http.MethodPost,
			path:           base + "/leaves",
			body:           dto.LeaveRequest{Start: "2024-01-30", End: "2024-02-02"},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   dto.ErrCodeOutOfRange,
		},
		{
			name:           "overlapping leave",
			method:         http.MethodPost,
			path:           base + "/leaves",
			body:           dto.LeaveRequest{Start: "2024-01-12", End: "2024-01-14"},
			expectedStatus: http.StatusConflict,
			expectedCode:   dto.ErrCodeOverlappingLeave,
		},
		{
			name:           "leave cap",
			method:         http.MethodPost,
			path:           base + "/leaves",
			body:           dto.LeaveRequest{Start: "2024-01-20", End: "2024-01-25"},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   dto.ErrCodeLeaveCapExceeded,
		},
		{
			name:           "edit strands a leave",
			method:         http.MethodPut,
			path:           base,
			body:           dto.EditOrderRequest{Plan: []string{"breakfast", "lunch", "dinner"}, Start: "2024-01-02", End: "2024-01-09"},
			expectedStatus: http.StatusConflict,
			expectedCode:   dto.ErrCodeConflictingLeave,
		},
		{
			name:           "date without a record",
			method:         http.MethodPatch,
			path:           base + "/attendance",
			body:           dto.AttendanceMarkRequest{Date: "2024-03-01", Meal: "lunch", Status: "delivered"},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   dto.ErrCodeUnknownDate,
		},
		{
			name:           "marking a meal on leave",
			method:         http.MethodPatch,
			path:           base + "/attendance",
			body:           dto.AttendanceMarkRequest{Date: "2024-01-11", Meal: "lunch", Status: "delivered"},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   dto.ErrCodeInvalidTransition,
		},
		{
			name:           "delivered meals are final",
			method:         http.MethodPatch,
			path:           base + "/attendance",
			body:           dto.AttendanceMarkRequest{Date: "2024-01-02", Meal: "lunch", Status: "packed"},
			expectedStatus: http.StatusConflict,
			expectedCode:   dto.ErrCodeAlreadyDelivered,
		},
		{
			name:           "unknown order",
			method:         http.MethodGet,
			path:           "/orders/65a000000000000000000000",
			expectedStatus: http.StatusNotFound,
			expectedCode:   dto.ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(t, tt.method, tt.path, tt.body)

			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			resp := decodeError(t, w)
			assert.Equal(t, tt.expectedCode, resp.Error)
			assert.NotEmpty(t, resp.Message)
			assert.NotEmpty(t, resp.RequestID)
			assert.NotZero(t, resp.Timestamp)
		})
	}
}
