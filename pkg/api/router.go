package api

import (
	"github.com/gofiber/fiber/v2"

	"betting-exchange/pkg/handlers"
	"betting-exchange/pkg/obs"
)

func New(router fiber.Router, handler *handlers.Handler, obsClient *obs.Client) {
	router.Use(requestIDMiddleware)

	router.Get("/metrics", obs.MetricsHandler())

	router.Post("/start", handler.Start)
	router.Post("/stop", handler.Stop)
	router.Post("/clean", handler.Clean)
	router.Get("/reconcile", handler.Reconcile)

	users := router.Group("/users")
	users.Post("/", handler.UserCreate)
	users.Post("/deposit", handler.UserDeposit)
	users.Post("/withdraw", handler.UserWithdraw)
	users.Get("/:id", handler.UserGet)
	users.Get("/:id/bets", handler.UserBets)

	markets := router.Group("/markets")
	markets.Post("/", handler.MarketCreate)
	markets.Get("/", handler.MarketList)
	markets.Get("/active", handler.MarketListActive)
	markets.Get("/:id", handler.MarketGet)
	markets.Get("/:id/bets", handler.MarketBets)
	markets.Get("/:id/pending_backs", handler.MarketPendingBacks)
	markets.Get("/:id/pending_lays", handler.MarketPendingLays)
	markets.Post("/:id/match", handler.MarketMatch)
	markets.Post("/:id/freeze", handler.MarketFreeze)
	markets.Post("/:id/cancel", handler.MarketCancel)
	markets.Post("/:id/settle", handler.MarketSettle)

	bets := router.Group("/bets")
	bets.Post("/back", handler.BetBack)
	bets.Post("/lay", handler.BetLay)
	bets.Post("/cancel", handler.BetCancel)
	bets.Get("/:user/:market/:counter", handler.BetGet)
}
