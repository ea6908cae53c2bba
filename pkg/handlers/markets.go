package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"betting-exchange/pkg/book"
	"betting-exchange/pkg/market"
	"betting-exchange/schemas"
)

func marketResponse(info market.Info) schemas.MarketResponse {
	return schemas.MarketResponse{
		ID:          info.ID,
		Name:        info.Name,
		Description: info.Description,
		Status:      info.Status.String(),
		Result:      info.Result,
	}
}

func (h *Handler) MarketCreate(c *fiber.Ctx) error {
	var req schemas.MarketCreateRequest
	ctx := c.UserContext()
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, errors.New("invalid request body"))
	}
	if req.Name == "" {
		return badRequest(c, errors.New("name is required"))
	}

	id, err := h.exchange.MarketCreate(ctx, req.Name, req.Description)
	if err != nil {
		h.obs.LogErr(ctx, "market.create failed: name=%s err=%v", req.Name, err)
		return errToResponse(c, err)
	}
	return h.marketGet(c, id)
}

func (h *Handler) MarketList(c *fiber.Ctx) error {
	ctx := c.UserContext()
	return jsonResponse(c, fiber.StatusOK, schemas.MarketListResponse{Markets: h.exchange.MarketList(ctx)})
}

func (h *Handler) MarketListActive(c *fiber.Ctx) error {
	ctx := c.UserContext()
	return jsonResponse(c, fiber.StatusOK, schemas.MarketListResponse{Markets: h.exchange.MarketListActive(ctx)})
}

func (h *Handler) MarketGet(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, errors.New("id is required"))
	}
	return h.marketGet(c, id)
}

func (h *Handler) marketGet(c *fiber.Ctx, id string) error {
	ctx := c.UserContext()
	info, err := h.exchange.MarketGet(ctx, id)
	if err != nil {
		return errToResponse(c, err)
	}
	return jsonResponse(c, fiber.StatusOK, marketResponse(info))
}

func (h *Handler) MarketBets(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, errors.New("id is required"))
	}

	ctx := c.UserContext()
	bets, err := h.exchange.MarketBets(ctx, id)
	if err != nil {
		return errToResponse(c, err)
	}
	return jsonResponse(c, fiber.StatusOK, schemas.MarketBetsResponse{Bets: betRefs(bets)})
}

func levelsResponse(levels []book.Level) schemas.LevelsResponse {
	out := make([]schemas.Level, len(levels))
	for i, l := range levels {
		out[i] = schemas.Level{Odds: l.Odds, Bet: betRef(l.ID)}
	}
	return schemas.LevelsResponse{Levels: out}
}

func (h *Handler) MarketPendingBacks(c *fiber.Ctx) error {
	id := c.Params("id")
	ctx := c.UserContext()
	levels, err := h.exchange.MarketPendingBacks(ctx, id)
	if err != nil {
		return errToResponse(c, err)
	}
	return jsonResponse(c, fiber.StatusOK, levelsResponse(levels))
}

func (h *Handler) MarketPendingLays(c *fiber.Ctx) error {
	id := c.Params("id")
	ctx := c.UserContext()
	levels, err := h.exchange.MarketPendingLays(ctx, id)
	if err != nil {
		return errToResponse(c, err)
	}
	return jsonResponse(c, fiber.StatusOK, levelsResponse(levels))
}

func (h *Handler) MarketMatch(c *fiber.Ctx) error {
	id := c.Params("id")
	ctx := c.UserContext()
	if err := h.exchange.MarketMatch(ctx, id); err != nil {
		h.obs.LogErr(ctx, "market.match failed: id=%s err=%v", id, err)
		return errToResponse(c, err)
	}
	return jsonResponse(c, fiber.StatusOK, fiber.Map{"message": "Success"})
}

func (h *Handler) MarketFreeze(c *fiber.Ctx) error {
	id := c.Params("id")
	ctx := c.UserContext()
	if err := h.exchange.MarketFreeze(ctx, id); err != nil {
		h.obs.LogErr(ctx, "market.freeze failed: id=%s err=%v", id, err)
		return errToResponse(c, err)
	}
	return jsonResponse(c, fiber.StatusOK, fiber.Map{"message": "Success"})
}

func (h *Handler) MarketCancel(c *fiber.Ctx) error {
	id := c.Params("id")
	ctx := c.UserContext()
	if err := h.exchange.MarketCancel(ctx, id); err != nil {
		h.obs.LogErr(ctx, "market.cancel failed: id=%s err=%v", id, err)
		return errToResponse(c, err)
	}
	return jsonResponse(c, fiber.StatusOK, fiber.Map{"message": "Success"})
}

func (h *Handler) MarketSettle(c *fiber.Ctx) error {
	id := c.Params("id")
	ctx := c.UserContext()

	var req schemas.SettleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, errors.New("invalid request body"))
	}

	if err := h.exchange.MarketSettle(ctx, id, req.Result); err != nil {
		h.obs.LogErr(ctx, "market.settle failed: id=%s err=%v", id, err)
		return errToResponse(c, err)
	}
	return jsonResponse(c, fiber.StatusOK, fiber.Map{"message": "Success"})
}
