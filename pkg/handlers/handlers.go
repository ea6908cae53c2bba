package handlers

import (
	"betting-exchange/pkg/exchange"
	"betting-exchange/pkg/obs"
)

type Handler struct {
	exchange *exchange.Exchange
	obs      *obs.Client
}

func New(obsClient *obs.Client, x *exchange.Exchange) *Handler {
	return &Handler{
		obs:      obsClient,
		exchange: x,
	}
}
