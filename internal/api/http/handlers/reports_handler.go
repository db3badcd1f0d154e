package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/servicedesk-io/servicedesk/internal/service"
)

// ReportsHandler serves admin-only ticket aggregates.
type ReportsHandler struct {
	reports *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reports *service.ReportService) *ReportsHandler {
	return &ReportsHandler{reports: reports}
}

// Statistics GET /reports/statistics.
func (h *ReportsHandler) Statistics(c *fiber.Ctx) error {
	counts, err := h.reports.StatusCounts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": counts})
}

// AverageResolutionTime GET /reports/average-resolution-time.
func (h *ReportsHandler) AverageResolutionTime(c *fiber.Ctx) error {
	hours, err := h.reports.AverageResolutionHours(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"average_hours": hours}})
}
