package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/gigflow/internal/apperr"
	"github.com/Windi-Fikriyansyah/gigflow/internal/services/hiring"
	"github.com/Windi-Fikriyansyah/gigflow/internal/services/marketplace"
)

type BidHandler struct {
	Svc    *marketplace.Service
	Hiring *hiring.Coordinator
}

func NewBidHandler(svc *marketplace.Service, coord *hiring.Coordinator) *BidHandler {
	return &BidHandler{Svc: svc, Hiring: coord}
}

func (h *BidHandler) Create(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return fiber.ErrUnauthorized
	}
	var in marketplace.PlaceBidInput
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	bid, err := h.Svc.PlaceBid(c.UserContext(), uid, in)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusCreated, "bid submitted", bid)
}

func (h *BidHandler) ForGig(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return fiber.ErrUnauthorized
	}
	gigID, err := paramUUID(c, "gigId")
	if err != nil {
		return fail(c, err)
	}
	bids, err := h.Svc.BidsForGig(c.UserContext(), gigID, uid)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", bids)
}

func (h *BidHandler) Mine(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return fiber.ErrUnauthorized
	}
	bids, err := h.Svc.MyBids(c.UserContext(), uid)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", bids)
}

// Hire: PATCH /api/bids/:bidId/hire
func (h *BidHandler) Hire(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return fiber.ErrUnauthorized
	}
	bidID, err := paramUUID(c, "bidId")
	if err != nil {
		return fail(c, err)
	}
	res, err := h.Hiring.Hire(c.UserContext(), bidID, uid)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "freelancer hired successfully", res)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// Reject: PATCH /api/bids/:bidId/reject, body {"reason": "..."} optional.
func (h *BidHandler) Reject(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return fiber.ErrUnauthorized
	}
	bidID, err := paramUUID(c, "bidId")
	if err != nil {
		return fail(c, err)
	}
	var req rejectRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fail(c, apperr.Invalid("invalid request body"))
		}
	}
	bid, err := h.Hiring.Reject(c.UserContext(), bidID, uid, req.Reason)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "bid rejected", bid)
}
