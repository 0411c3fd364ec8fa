package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/qboxhq/qbox/internal/dto"
	"github.com/qboxhq/qbox/internal/services"
)

type AdminHandler struct {
	reportService *services.ReportService
	abuseService  *services.AbuseService
}

func NewAdminHandler(reportService *services.ReportService, abuseService *services.AbuseService) *AdminHandler {
	return &AdminHandler{reportService: reportService, abuseService: abuseService}
}

// Moderation returns the admin overview: flagged questions, unresolved
// reports, all blocks, and the computed flag alerts.
func (h *AdminHandler) Moderation(c *fiber.Ctx) error {
	overview, err := h.reportService.Overview()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch moderation overview",
		})
	}
	return c.JSON(overview)
}

func (h *AdminHandler) ResolveReport(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}

	if err := h.reportService.ResolveReport(reportID); err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to resolve report",
		})
	}

	return c.JSON(fiber.Map{"message": "Report resolved"})
}

func (h *AdminHandler) CreateBlock(c *fiber.Ctx) error {
	var req dto.CreateBlockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if req.UserID == nil && req.IPAddress == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "A block needs a user id or an IP address",
		})
	}

	block, err := h.abuseService.CreateBlock(req.UserID, req.IPAddress, req.Reason, req.Hours)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create block",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(block)
}

func (h *AdminHandler) DeactivateBlock(c *fiber.Ctx) error {
	blockID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid block ID",
		})
	}

	if err := h.abuseService.DeactivateBlock(blockID); err != nil {
		if errors.Is(err, services.ErrBlockNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to deactivate block",
		})
	}

	return c.JSON(fiber.Map{"message": "Block deactivated"})
}
