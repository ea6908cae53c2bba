// Package book implements the per-market Bet Record Store and Order Book,
// and the matching algorithm that runs over them. All monetary values and
// odds are fixed-width integers — never float64 — per the exchange's
// truncation-sensitive arithmetic.
package book

import "fmt"

// BetId identifies one bet within an exchange. Counter is strictly
// monotonic per-exchange, assigned by the exchange supervisor.
type BetId struct {
	User    string `json:"user"`
	Market  string `json:"market"`
	Counter uint64 `json:"counter"`
}

func (b BetId) String() string {
	return fmt.Sprintf("%s:%s:%d", b.User, b.Market, b.Counter)
}

// BetType distinguishes a back (outcome will occur) from a lay (outcome
// will not occur).
type BetType int

const (
	Back BetType = iota
	Lay
)

func (t BetType) String() string {
	if t == Lay {
		return "lay"
	}
	return "back"
}

// BetStatusKind is the terminal-or-not lifecycle state of one bet.
type BetStatusKind int

const (
	BetActive BetStatusKind = iota
	BetCancelled
	BetMarketCancelled
	BetMarketSettled
)

// Bet is one resting or historical bet record. OriginalStake and
// RemainingStake are in minor currency units; Odds is the decimal
// multiplier scaled by 100 (150 == 1.50x).
//
// MatchedAmount accumulates the stake (Back) or liability (Lay) actually
// crossed by Match, and is never touched by cancellation — see DESIGN.md
// for why this must be tracked separately from RemainingStake.
// AbsorbedStake is meaningful only for Lay bets: the cumulative back
// stake this lay has absorbed across all of its matches, which can span
// multiple counterparties at different odds and so cannot be derived from
// MatchedAmount alone.
type Bet struct {
	ID             BetId         `json:"id"`
	Type           BetType       `json:"type"`
	Odds           int64         `json:"odds"`
	OriginalStake  int64         `json:"original_stake"`
	RemainingStake int64         `json:"remaining_stake"`
	MatchedAmount  int64         `json:"matched_amount"`
	AbsorbedStake  int64         `json:"absorbed_stake"`
	Matched        []BetId       `json:"matched"`
	Status         BetStatusKind `json:"status"`
	Result         bool          `json:"result"`
}

// Exposure is the portion of a bet's original stake currently crossed
// with a counterparty, used by custody reconciliation.
func (b *Bet) Exposure() int64 {
	return b.MatchedAmount
}
