package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-router/internal/api/dto"
	"github.com/spec-kit/support-router/internal/domain"
	"github.com/spec-kit/support-router/internal/service"
	apperrors "github.com/spec-kit/support-router/pkg/util"
)

// ItemsHandler exposes the lifecycle entry points.
type ItemsHandler struct {
	lifecycle *service.LifecycleService
}

// NewItemsHandler constructs handler.
func NewItemsHandler(lifecycle *service.LifecycleService) *ItemsHandler {
	return &ItemsHandler{lifecycle: lifecycle}
}

// CreateItems POST /items.
func (h *ItemsHandler) CreateItems(c *fiber.Ctx) error {
	var req dto.CreateItemsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.Items) == 0 {
		return apperrors.NewValidationError("items required", nil)
	}

	items := make([]*domain.WorkItem, 0, len(req.Items))
	for _, payload := range req.Items {
		items = append(items, payload.ToDomain())
	}
	if err := h.lifecycle.OnItemsCreated(c.UserContext(), items); err != nil {
		return err
	}

	summaries := make([]dto.ItemSummary, 0, len(items))
	for _, item := range items {
		summaries = append(summaries, dto.SummaryFromDomain(item))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": summaries})
}

// UpdateItems PUT /items.
func (h *ItemsHandler) UpdateItems(c *fiber.Ctx) error {
	var req dto.UpdateItemsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.Items) == 0 {
		return apperrors.NewValidationError("items required", nil)
	}

	items := make([]*domain.WorkItem, 0, len(req.Items))
	for _, payload := range req.Items {
		items = append(items, payload.ToDomain())
	}
	previous := make(map[string]*domain.WorkItem, len(req.Previous))
	for _, payload := range req.Previous {
		previous[payload.ID] = payload.ToDomain()
	}
	if err := h.lifecycle.OnItemsUpdated(c.UserContext(), items, previous); err != nil {
		return err
	}

	summaries := make([]dto.ItemSummary, 0, len(items))
	for _, item := range items {
		summaries = append(summaries, dto.SummaryFromDomain(item))
	}
	return c.JSON(fiber.Map{"data": summaries})
}
