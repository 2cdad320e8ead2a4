package handlers

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/gigflow/internal/apperr"
)

var kindStatus = map[apperr.Kind]int{
	apperr.KindInvalid:     fiber.StatusBadRequest,
	apperr.KindNotFound:    fiber.StatusNotFound,
	apperr.KindForbidden:   fiber.StatusForbidden,
	apperr.KindConflict:    fiber.StatusConflict,
	apperr.KindTransient:   fiber.StatusServiceUnavailable,
	apperr.KindRateLimited: fiber.StatusTooManyRequests,
}

// statusKind is the reverse lookup used for errors raised by fiber itself.
var statusKind = map[int]apperr.Kind{
	fiber.StatusBadRequest:          apperr.KindInvalid,
	fiber.StatusUnauthorized:        "unauthorized",
	fiber.StatusNotFound:            apperr.KindNotFound,
	fiber.StatusForbidden:           apperr.KindForbidden,
	fiber.StatusConflict:            apperr.KindConflict,
	fiber.StatusTooManyRequests:     apperr.KindRateLimited,
	fiber.StatusServiceUnavailable:  apperr.KindTransient,
	fiber.StatusUnprocessableEntity: apperr.KindInvalid,
}

func ok(c *fiber.Ctx, status int, message string, data any) error {
	body := fiber.Map{"success": true, "data": data}
	if message != "" {
		body["message"] = message
	}
	return c.Status(status).JSON(body)
}

func fail(c *fiber.Ctx, err error) error {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		log.Printf("[http] %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"code":    apperr.KindInternal,
			"message": "internal server error",
		})
	}
	status, found := kindStatus[ae.Kind]
	if !found {
		status = fiber.StatusInternalServerError
	}
	body := fiber.Map{
		"success": false,
		"code":    ae.Kind,
		"message": ae.Message,
	}
	if ae.Retryable() {
		body["retryable"] = true
	}
	return c.Status(status).JSON(body)
}

// ErrorHandler renders errors that escape a handler, including the
// *fiber.Error values returned by middleware, in the common envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		kind, found := statusKind[fe.Code]
		if !found {
			kind = apperr.KindInternal
		}
		return c.Status(fe.Code).JSON(fiber.Map{
			"success": false,
			"code":    kind,
			"message": fe.Message,
		})
	}
	return fail(c, err)
}

func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"success": false,
		"code":    apperr.KindNotFound,
		"message": fmt.Sprintf("not found - %s", c.OriginalURL()),
	})
}

func getUserUUID(c *fiber.Ctx) (uuid.UUID, error) {
	v := c.Locals("userId")
	if v == nil {
		return uuid.Nil, fiber.ErrUnauthorized
	}

	switch t := v.(type) {
	case uuid.UUID:
		return t, nil
	case string:
		return uuid.Parse(t)
	default:
		return uuid.Nil, fmt.Errorf("invalid userId type: %T", v)
	}
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperr.Invalid("invalid %s", name)
	}
	return id, nil
}
