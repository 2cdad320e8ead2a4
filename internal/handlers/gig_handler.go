package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/gigflow/internal/services/marketplace"
)

type GigHandler struct {
	Svc *marketplace.Service
}

func NewGigHandler(svc *marketplace.Service) *GigHandler {
	return &GigHandler{Svc: svc}
}

// List serves the public board: GET /api/gigs?search=&category=&budget=
func (h *GigHandler) List(c *fiber.Ctx) error {
	gigs, err := h.Svc.ListOpenGigs(c.UserContext(), marketplace.ListGigsInput{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Budget:   c.Query("budget"),
	})
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", gigs)
}

func (h *GigHandler) Get(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	gig, err := h.Svc.GetGig(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", gig)
}

func (h *GigHandler) Mine(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return fiber.ErrUnauthorized
	}
	gigs, err := h.Svc.ListMyGigs(c.UserContext(), uid)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", gigs)
}

func (h *GigHandler) Create(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return fiber.ErrUnauthorized
	}
	var in marketplace.CreateGigInput
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	gig, err := h.Svc.CreateGig(c.UserContext(), uid, in)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusCreated, "gig created", gig)
}

func (h *GigHandler) Update(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return fiber.ErrUnauthorized
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var in marketplace.UpdateGigInput
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	gig, err := h.Svc.UpdateGig(c.UserContext(), id, uid, in)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "gig updated", gig)
}

func (h *GigHandler) Delete(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return fiber.ErrUnauthorized
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.Svc.DeleteGig(c.UserContext(), id, uid); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "gig deleted", nil)
}
