package handlers

import (
	"context"

	"bankcore/internal/services/settlement"
	"bankcore/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// ReportSource returns the report of the most recent settlement run.
type ReportSource interface {
	LastReport(ctx context.Context) (*settlement.Report, error)
}

type SettlementHandler struct {
	reports ReportSource
}

func NewSettlementHandler(reports ReportSource) *SettlementHandler {
	return &SettlementHandler{reports: reports}
}

// Last handles GET /admin/settlement/last.
func (h *SettlementHandler) Last(c *fiber.Ctx) error {
	report, err := h.reports.LastReport(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	if report == nil {
		return response.Error(c, fiber.StatusNotFound, "REPORT_NOT_FOUND", "no settlement run recorded yet")
	}
	return response.Success(c, "settlement report retrieved", report)
}
