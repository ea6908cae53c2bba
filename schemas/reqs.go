// Package schemas holds the wire request/response shapes for the exchange's
// public HTTP API, wrapped in JSON transport.
package schemas

type StartRequest struct {
	Name string `json:"name"`
}

type NameResponse struct {
	Name string `json:"name"`
}

type UserCreateRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type UserAmountRequest struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
}

type UserResponse struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Balance int64    `json:"balance"`
	Bets    []BetRef `json:"bets"`
}

type BetRef struct {
	User    string `json:"user"`
	Market  string `json:"market"`
	Counter uint64 `json:"counter"`
}

type UserBetsResponse struct {
	Bets []BetRef `json:"bets"`
}

type MarketCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type MarketResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Result      bool   `json:"result,omitempty"`
}

type MarketListResponse struct {
	Markets []string `json:"markets"`
}

type SettleRequest struct {
	Result bool `json:"result"`
}

type Level struct {
	Odds int64  `json:"odds"`
	Bet  BetRef `json:"bet"`
}

type LevelsResponse struct {
	Levels []Level `json:"levels"`
}

type MarketBetsResponse struct {
	Bets []BetRef `json:"bets"`
}

type BetPlaceRequest struct {
	User   string `json:"user"`
	Market string `json:"market"`
	Stake  int64  `json:"stake"`
	Odds   int64  `json:"odds"`
}

type BetResponse struct {
	ID             BetRef   `json:"id"`
	Type           string   `json:"type"`
	Odds           int64    `json:"odds"`
	OriginalStake  int64    `json:"original_stake"`
	RemainingStake int64    `json:"remaining_stake"`
	MatchedAmount  int64    `json:"matched_amount"`
	Status         string   `json:"status"`
	Matched        []BetRef `json:"matched"`
}

type ReconcileResponse struct {
	Balances        int64  `json:"balances"`
	UnmatchedStake  int64  `json:"unmatched_stake"`
	MatchedExposure int64  `json:"matched_exposure"`
	Custody         int64  `json:"custody"`
	ExposureRatio   string `json:"exposure_ratio"`
}
