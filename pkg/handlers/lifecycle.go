package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"betting-exchange/schemas"
)

func (h *Handler) Start(c *fiber.Ctx) error {
	var req schemas.StartRequest
	ctx := c.UserContext()
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, errors.New("invalid request body"))
	}
	if req.Name == "" {
		return badRequest(c, errors.New("name is required"))
	}

	if err := h.exchange.Start(ctx, req.Name); err != nil {
		h.obs.LogErr(ctx, "exchange.start failed: name=%s err=%v", req.Name, err)
		return errToResponse(c, err)
	}
	return jsonResponse(c, fiber.StatusOK, schemas.NameResponse{Name: req.Name})
}

func (h *Handler) Stop(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if err := h.exchange.Stop(ctx); err != nil {
		h.obs.LogErr(ctx, "exchange.stop failed: err=%v", err)
		return errToResponse(c, err)
	}
	return jsonResponse(c, fiber.StatusOK, fiber.Map{"message": "Success"})
}

func (h *Handler) Clean(c *fiber.Ctx) error {
	var req schemas.StartRequest
	ctx := c.UserContext()
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, errors.New("invalid request body"))
	}
	if req.Name == "" {
		return badRequest(c, errors.New("name is required"))
	}

	if err := h.exchange.Clean(ctx, req.Name); err != nil {
		h.obs.LogErr(ctx, "exchange.clean failed: name=%s err=%v", req.Name, err)
		return errToResponse(c, err)
	}
	return jsonResponse(c, fiber.StatusOK, schemas.NameResponse{Name: req.Name})
}

func (h *Handler) Reconcile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	report := h.exchange.Reconcile(ctx)
	return jsonResponse(c, fiber.StatusOK, schemas.ReconcileResponse{
		Balances:        report.Balances,
		UnmatchedStake:  report.UnmatchedStake,
		MatchedExposure: report.MatchedExposure,
		Custody:         report.Custody,
		ExposureRatio:   report.ExposureRatio.String(),
	})
}
