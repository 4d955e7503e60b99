package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-router/internal/api/dto"
	"github.com/spec-kit/support-router/internal/service"
	apperrors "github.com/spec-kit/support-router/pkg/util"
)

// EscalationsHandler exposes manual and scheduled escalation entry points.
type EscalationsHandler struct {
	escalation *service.EscalationService
}

// NewEscalationsHandler constructs handler.
func NewEscalationsHandler(escalation *service.EscalationService) *EscalationsHandler {
	return &EscalationsHandler{escalation: escalation}
}

// EscalateItem POST /items/:id/escalate.
func (h *EscalationsHandler) EscalateItem(c *fiber.Ctx) error {
	var req dto.EscalateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Reason) == "" {
		return apperrors.NewValidationError("reason required", nil)
	}

	outcome, err := h.escalation.EscalateByID(c.UserContext(), c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.EscalationOutcomeResponse{
		ItemID:  c.Params("id"),
		Outcome: string(outcome),
	}})
}

// RunBatch POST /escalations/run.
func (h *EscalationsHandler) RunBatch(c *fiber.Ctx) error {
	escalated, err := h.escalation.RunBatch(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"escalated": escalated}})
}
