package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"betting-exchange/pkg/book"
	"betting-exchange/schemas"
)

func betResponse(b book.Bet) schemas.BetResponse {
	var status string
	switch b.Status {
	case book.BetActive:
		status = "active"
	case book.BetCancelled:
		status = "cancelled"
	case book.BetMarketCancelled:
		status = "market_cancelled"
	case book.BetMarketSettled:
		status = "market_settled"
	}
	return schemas.BetResponse{
		ID:             betRef(b.ID),
		Type:           b.Type.String(),
		Odds:           b.Odds,
		OriginalStake:  b.OriginalStake,
		RemainingStake: b.RemainingStake,
		MatchedAmount:  b.MatchedAmount,
		Status:         status,
		Matched:        betRefs(b.Matched),
	}
}

func (h *Handler) placeBet(c *fiber.Ctx, back bool) error {
	var req schemas.BetPlaceRequest
	ctx := c.UserContext()
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, errors.New("invalid request body"))
	}
	if req.User == "" || req.Market == "" {
		return badRequest(c, errors.New("user and market are required"))
	}

	var (
		id  book.BetId
		err error
	)
	if back {
		id, err = h.exchange.BetBack(ctx, req.User, req.Market, req.Stake, req.Odds)
	} else {
		id, err = h.exchange.BetLay(ctx, req.User, req.Market, req.Stake, req.Odds)
	}
	if err != nil {
		h.obs.LogErr(ctx, "bet.place failed: user=%s market=%s err=%v", req.User, req.Market, err)
		return errToResponse(c, err)
	}

	return h.betGet(c, id)
}

func (h *Handler) BetBack(c *fiber.Ctx) error { return h.placeBet(c, true) }
func (h *Handler) BetLay(c *fiber.Ctx) error  { return h.placeBet(c, false) }

func (h *Handler) BetCancel(c *fiber.Ctx) error {
	var req schemas.BetRef
	ctx := c.UserContext()
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, errors.New("invalid request body"))
	}

	id := toBetId(req)
	if err := h.exchange.BetCancel(ctx, id); err != nil {
		h.obs.LogErr(ctx, "bet.cancel failed: bet=%s err=%v", id, err)
		return errToResponse(c, err)
	}
	return h.betGet(c, id)
}

func (h *Handler) BetGet(c *fiber.Ctx) error {
	counter, err := strconv.ParseUint(c.Params("counter"), 10, 64)
	if err != nil {
		return badRequest(c, errors.New("counter must be a non-negative integer"))
	}
	id := book.BetId{User: c.Params("user"), Market: c.Params("market"), Counter: counter}
	return h.betGet(c, id)
}

func (h *Handler) betGet(c *fiber.Ctx, id book.BetId) error {
	ctx := c.UserContext()
	bet, err := h.exchange.BetGet(ctx, id)
	if err != nil {
		return errToResponse(c, err)
	}
	return jsonResponse(c, fiber.StatusOK, betResponse(bet))
}
