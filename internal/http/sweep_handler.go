package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/meal-ledger/internal/i18n"
	"github.com/guttosm/meal-ledger/internal/middleware"
	"github.com/guttosm/meal-ledger/internal/service"
)

// SweepRunner runs the reconciliation sweep on demand.
type SweepRunner interface {
	Run(ctx context.Context) (service.SweepReport, error)
	LastReport() (service.SweepReport, bool)
}

// SweepResponse is the body returned by a manual sweep.
//
// @Description Outcome of a reconciliation sweep
type SweepResponse struct {
	Message string              `json:"message" example:"Reconciliation sweep completed"`
	Report  service.SweepReport `json:"report"`
} // @name SweepResponse

// SweepHandler serves the manual sweep routes.
type SweepHandler struct {
	sweeper SweepRunner
}

// NewSweepHandler creates a new SweepHandler.
func NewSweepHandler(sweeper SweepRunner) *SweepHandler {
	return &SweepHandler{sweeper: sweeper}
}

// RunSweep handles POST /api/v1/sweep.
//
// @Summary      Run the reconciliation sweep
// @Description  Recomputes the status of every order for today, the same work the daily schedule does. A failing order is counted and skipped. Only one sweep runs at a time.
// @Tags         Sweep
// @Produce      json
// @Success      200 {object} dto.SuccessResponse{data=SweepResponse} "Sweep finished"
// @Failure      409 {object} dto.ErrorResponse "A sweep is already running"
// @Failure      429 {object} dto.ErrorResponse "Too many requests - rate limit exceeded"
// @Failure      500 {object} dto.ErrorResponse "Orders could not be listed"
// @Router       /api/v1/sweep [post]
func (h *SweepHandler) RunSweep(c *gin.Context) {
	builder := NewResponseBuilder(c)

	// A client that hangs up does not stop a sweep that is already paging.
	ctx := context.WithoutCancel(c.Request.Context())
	report, err := h.sweeper.Run(ctx)
	middleware.AuditLog(c, middleware.ActionSweepRun, "", err, map[string]interface{}{
		"scanned": report.Scanned,
		"updated": report.Updated,
		"failed":  report.Failed,
	})
	if err != nil {
		builder.Fail(err)
		return
	}

	builder.SuccessOK(SweepResponse{
		Message: i18n.GetTranslator().Translate(i18n.SuccessKeySweepCompleted, i18n.GetLocale(c)),
		Report:  report,
	})
}

// LastSweep handles GET /api/v1/sweep/last.
//
// @Summary      Last sweep report
// @Description  Returns the report of the most recent finished sweep.
// @Tags         Sweep
// @Produce      json
// @Success      200 {object} dto.SuccessResponse{data=service.SweepReport}
// @Failure      404 {object} dto.ErrorResponse "No sweep has run yet"
// @Router       /api/v1/sweep/last [get]
func (h *SweepHandler) LastSweep(c *gin.Context) {
	builder := NewResponseBuilder(c)
	report, ok := h.sweeper.LastReport()
	if !ok {
		builder.Error(http.StatusNotFound, i18n.ErrKeyNotFound, nil)
		return
	}
	builder.SuccessOK(report)
}
