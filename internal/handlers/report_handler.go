package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/qboxhq/qbox/internal/dto"
	"github.com/qboxhq/qbox/internal/middleware"
	"github.com/qboxhq/qbox/internal/services"
)

type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Create files a report against a published answer. Open to any visitor;
// the reporter's id (when authenticated) and IP are captured for audit.
func (h *ReportHandler) Create(c *fiber.Ctx) error {
	answerID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid answer ID",
		})
	}

	var req dto.ReportAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	reporterID := middleware.OptionalUserID(c)
	ip := middleware.ClientIP(c)

	report, err := h.reportService.CreateReport(answerID, reporterID, ip, req.Reason)
	if err != nil {
		if errors.Is(err, services.ErrAnswerNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(report)
}
