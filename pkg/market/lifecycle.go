package market

import (
	"context"

	"betting-exchange/pkg/book"
)

// Payout is money owed back to a user's ledger balance as the result of
// a market-wide lifecycle transition.
type Payout struct {
	ID     book.BetId
	Amount int64
}

// Freeze stops new bets from being accepted and refunds every bet's
// unmatched portion, emptying the book so a later Match crosses nothing;
// matched portions remain live and settle when the market later settles.
func (e *Engine) Freeze(ctx context.Context) ([]Payout, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.info.Status != Active {
		return nil, book.ErrInvalidState
	}

	var payouts []Payout
	for _, b := range e.store.All() {
		if b.RemainingStake == 0 {
			continue
		}
		refund := b.RemainingStake
		b.RemainingStake = 0
		e.book.Remove(b.ID)
		payouts = append(payouts, Payout{ID: b.ID, Amount: refund})
	}

	e.setStatus(Frozen, false)
	e.obs.LogNotice(ctx, "market.freeze: market=%s payouts=%d", e.info.ID, len(payouts))
	return payouts, nil
}

// Cancel voids every bet in the market, matched or not, refunding full
// stake to each. Valid from Active or Frozen.
func (e *Engine) Cancel(ctx context.Context) ([]Payout, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.info.Status.Terminal() {
		return nil, book.ErrInvalidState
	}

	var payouts []Payout
	for _, b := range e.store.All() {
		if b.RemainingStake == 0 && b.MatchedAmount == 0 {
			continue
		}
		e.book.Remove(b.ID)
		refund := b.RemainingStake + b.MatchedAmount
		b.RemainingStake = 0
		b.Status = book.BetMarketCancelled
		if refund > 0 {
			payouts = append(payouts, Payout{ID: b.ID, Amount: refund})
		}
	}

	e.setStatus(Cancelled, false)
	e.obs.LogNotice(ctx, "market.cancel: market=%s payouts=%d", e.info.ID, len(payouts))
	return payouts, nil
}

// Settle resolves the market to a final binary result, paying out every
// bet per the formulas in settlement.go. Valid from Active or Frozen.
func (e *Engine) Settle(ctx context.Context, result bool) ([]Payout, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.info.Status.Terminal() {
		return nil, book.ErrInvalidState
	}

	var payouts []Payout
	for _, b := range e.store.All() {
		e.book.Remove(b.ID)
		amount := payout(b, result)
		b.Result = (b.Type == book.Back) == result
		b.Status = book.BetMarketSettled
		if amount > 0 {
			payouts = append(payouts, Payout{ID: b.ID, Amount: amount})
		}
	}

	e.setStatus(Settled, result)
	e.obs.LogNotice(ctx, "market.settle: market=%s result=%v payouts=%d", e.info.ID, result, len(payouts))
	return payouts, nil
}
