package handlers

import (
	"github.com/gofiber/fiber/v2"

	"betting-exchange/pkg/book"
	"betting-exchange/schemas"
)

func betRef(id book.BetId) schemas.BetRef {
	return schemas.BetRef{User: id.User, Market: id.Market, Counter: id.Counter}
}

func betRefs(ids []book.BetId) []schemas.BetRef {
	out := make([]schemas.BetRef, len(ids))
	for i, id := range ids {
		out[i] = betRef(id)
	}
	return out
}

func toBetId(ref schemas.BetRef) book.BetId {
	return book.BetId{User: ref.User, Market: ref.Market, Counter: ref.Counter}
}

func jsonResponse(c *fiber.Ctx, status int, payload interface{}) error {
	return c.Status(status).JSON(payload)
}

func badRequest(c *fiber.Ctx, err error) error {
	return jsonResponse(c, fiber.StatusBadRequest, fiber.Map{
		"error": err.Error(),
	})
}

func notFound(c *fiber.Ctx, err error) error {
	return jsonResponse(c, fiber.StatusNotFound, fiber.Map{
		"error": err.Error(),
	})
}

func internalServerError(c *fiber.Ctx) error {
	return jsonResponse(c, fiber.StatusInternalServerError, fiber.Map{
		"error": "Something went wrong",
	})
}

// errToResponse maps a typed exchange error onto an HTTP status code,
// discriminating by Kind() rather than string matching.
func errToResponse(c *fiber.Ctx, err error) error {
	e, ok := err.(*book.Error)
	if !ok {
		return internalServerError(c)
	}
	switch e.Kind() {
	case book.KindNotFound:
		return notFound(c, e)
	case book.KindDuplicateID, book.KindInvalidAmount, book.KindInvalidState, book.KindAlreadyRunning:
		return badRequest(c, e)
	default:
		return internalServerError(c)
	}
}
