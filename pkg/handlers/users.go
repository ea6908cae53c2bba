package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"betting-exchange/schemas"
)

func userResponse(id, name string, balance int64, bets []schemas.BetRef) schemas.UserResponse {
	return schemas.UserResponse{ID: id, Name: name, Balance: balance, Bets: bets}
}

func (h *Handler) UserCreate(c *fiber.Ctx) error {
	var req schemas.UserCreateRequest
	ctx := c.UserContext()
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, errors.New("invalid request body"))
	}
	if req.ID == "" {
		return badRequest(c, errors.New("id is required"))
	}

	if err := h.exchange.UserCreate(ctx, req.ID, req.Name); err != nil {
		h.obs.LogErr(ctx, "user.create failed: id=%s err=%v", req.ID, err)
		return errToResponse(c, err)
	}
	return jsonResponse(c, fiber.StatusOK, userResponse(req.ID, req.Name, 0, nil))
}

func (h *Handler) UserDeposit(c *fiber.Ctx) error {
	var req schemas.UserAmountRequest
	ctx := c.UserContext()
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, errors.New("invalid request body"))
	}

	if err := h.exchange.UserDeposit(ctx, req.ID, req.Amount); err != nil {
		h.obs.LogErr(ctx, "user.deposit failed: id=%s err=%v", req.ID, err)
		return errToResponse(c, err)
	}
	return h.userGet(c, req.ID)
}

func (h *Handler) UserWithdraw(c *fiber.Ctx) error {
	var req schemas.UserAmountRequest
	ctx := c.UserContext()
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, errors.New("invalid request body"))
	}

	if err := h.exchange.UserWithdraw(ctx, req.ID, req.Amount); err != nil {
		h.obs.LogErr(ctx, "user.withdraw failed: id=%s err=%v", req.ID, err)
		return errToResponse(c, err)
	}
	return h.userGet(c, req.ID)
}

func (h *Handler) UserGet(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, errors.New("id is required"))
	}
	return h.userGet(c, id)
}

func (h *Handler) userGet(c *fiber.Ctx, id string) error {
	ctx := c.UserContext()
	acc, err := h.exchange.UserGet(ctx, id)
	if err != nil {
		return errToResponse(c, err)
	}
	return jsonResponse(c, fiber.StatusOK, userResponse(acc.ID, acc.Name, acc.Balance, betRefs(acc.Bets)))
}

func (h *Handler) UserBets(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, errors.New("id is required"))
	}

	ctx := c.UserContext()
	bets, err := h.exchange.UserBets(ctx, id)
	if err != nil {
		return errToResponse(c, err)
	}
	return jsonResponse(c, fiber.StatusOK, schemas.UserBetsResponse{Bets: betRefs(bets)})
}
