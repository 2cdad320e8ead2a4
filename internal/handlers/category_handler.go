package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/gigflow/internal/services/marketplace"
)

type CategoryHandler struct {
	Svc *marketplace.Service
}

func NewCategoryHandler(svc *marketplace.Service) *CategoryHandler {
	return &CategoryHandler{Svc: svc}
}

// GetCategories lists the distinct categories of open gigs.
func (h *CategoryHandler) GetCategories(c *fiber.Ctx) error {
	categories, err := h.Svc.Categories(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", categories)
}
