// Package market implements the per-market engine: one engine per market,
// owning that market's order book and bet record store, with every
// mutating operation serialized behind a single mutex so one market's
// placements, cancels, and matches never race with another's.
package market

import (
	"context"
	"sync"

	"betting-exchange/pkg/book"
	"betting-exchange/pkg/obs"
)

// Status is the market's lifecycle state.
type Status int

const (
	Active Status = iota
	Frozen
	Cancelled
	Settled
)

func (s Status) String() string {
	switch s {
	case Active:
		return "active"
	case Frozen:
		return "frozen"
	case Cancelled:
		return "cancelled"
	case Settled:
		return "settled"
	default:
		return "unknown"
	}
}

func (s Status) Terminal() bool {
	return s == Cancelled || s == Settled
}

// Info is the externally-visible market record returned by market_get.
type Info struct {
	ID          string
	Name        string
	Description string
	Status      Status
	Result      bool // valid iff Status == Settled
}

// Engine owns one market's order book and bet record store.
type Engine struct {
	mu    sync.Mutex
	obs   *obs.Client
	info  Info
	book  *book.OrderBook
	store *book.Store
}

func New(obsClient *obs.Client, id, description string) *Engine {
	return &Engine{
		obs:   obsClient,
		info:  Info{ID: id, Name: id, Description: description, Status: Active},
		book:  book.NewOrderBook(),
		store: book.NewStore(),
	}
}

// Get returns the market's current info.
func (e *Engine) Get() Info {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.info
}

// Place inserts a new bet. Preconditions: market is Active, stake > 0,
// odds > 100. The caller (exchange supervisor) must already have
// withdrawn stake from the user's ledger balance before calling this.
func (e *Engine) Place(ctx context.Context, id book.BetId, t book.BetType, stake, odds int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.info.Status != Active {
		e.obs.LogErr(ctx, "market.place: market=%s not active status=%s", e.info.ID, e.info.Status)
		return book.ErrInvalidState
	}
	if stake <= 0 || odds <= 100 {
		e.obs.LogErr(ctx, "market.place: invalid stake=%d odds=%d", stake, odds)
		return book.ErrInvalidAmount
	}

	bet := &book.Bet{
		ID:             id,
		Type:           t,
		Odds:           odds,
		OriginalStake:  stake,
		RemainingStake: stake,
		Status:         book.BetActive,
	}
	e.store.Put(bet)
	e.book.Insert(bet)

	obs.BetsPlaced.WithLabelValues(t.String()).Inc()
	e.obs.LogInfo(ctx, "market.place: market=%s bet=%s type=%s stake=%d odds=%d", e.info.ID, id, t, stake, odds)
	return nil
}

// CancelUnmatched returns the bet's current remaining stake and zeroes it,
// removing it from the order book. The matched portion, if any, remains
// live. Idempotent: a no-op returning zero if remaining_stake is already
// zero.
func (e *Engine) CancelUnmatched(ctx context.Context, id book.BetId) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.info.Status.Terminal() {
		return 0, book.ErrInvalidState
	}

	bet, ok := e.store.Get(id)
	if !ok {
		return 0, book.ErrNotFound
	}
	if bet.RemainingStake == 0 {
		return 0, nil
	}

	refund := bet.RemainingStake
	bet.RemainingStake = 0
	e.book.Remove(id)

	obs.BetsCancelled.Inc()
	e.obs.LogInfo(ctx, "market.cancel_unmatched: market=%s bet=%s refund=%d", e.info.ID, id, refund)
	return refund, nil
}

// CancelWhole withdraws a bet from active play entirely: remaining stake
// plus matched stake both refund, for the market-wide cancellation
// lifecycle transition. Unlike CancelUnmatched this is never called
// directly by the public API.
func (e *Engine) CancelWhole(ctx context.Context, id book.BetId) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	bet, ok := e.store.Get(id)
	if !ok {
		return 0, book.ErrNotFound
	}

	e.book.Remove(id)
	refund := bet.RemainingStake + bet.MatchedAmount
	bet.RemainingStake = 0
	bet.Status = book.BetMarketCancelled

	e.obs.LogInfo(ctx, "market.cancel_whole: market=%s bet=%s refund=%d", e.info.ID, id, refund)
	return refund, nil
}

// GetBet returns the bet record or not-found.
func (e *Engine) GetBet(id book.BetId) (book.Bet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	bet, ok := e.store.Get(id)
	if !ok {
		return book.Bet{}, book.ErrNotFound
	}
	return *bet, nil
}

// Bets returns every bet id ever placed in this market, insertion order.
func (e *Engine) Bets() []book.BetId {
	e.mu.Lock()
	defer e.mu.Unlock()

	all := e.store.All()
	out := make([]book.BetId, len(all))
	for i, b := range all {
		out[i] = b.ID
	}
	return out
}

// PendingBacks / PendingLays return the resting order book.
func (e *Engine) PendingBacks() []book.Level {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.Backs()
}

func (e *Engine) PendingLays() []book.Level {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.Lays()
}

// Match runs the matching algorithm over this market's book.
func (e *Engine) Match(ctx context.Context) ([]book.MatchEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.info.Status.Terminal() {
		return nil, book.ErrInvalidState
	}

	events := book.Match(e.book, e.store)
	if len(events) > 0 {
		obs.MatchesExecuted.Add(float64(len(events)))
	}
	for _, ev := range events {
		e.obs.LogInfo(ctx, "market.match: market=%s back=%s lay=%s back_stake=%d lay_liability=%d odds=%d",
			e.info.ID, ev.Back, ev.Lay, ev.BackStake, ev.LayLiability, ev.Odds)
	}
	return events, nil
}

// setStatus transitions the market's lifecycle state. Internal: called
// only by lifecycle.go under e.mu already held.
func (e *Engine) setStatus(status Status, result bool) {
	e.info.Status = status
	e.info.Result = result
}

// allBets splits every bet record by type, for snapshotting.
func (e *Engine) allBets() (backs, lays []book.Bet) {
	for _, b := range e.store.All() {
		if b.Type == book.Back {
			backs = append(backs, *b)
		} else {
			lays = append(lays, *b)
		}
	}
	return
}

// Snapshot returns the data needed to persist and later restore this
// market.
func (e *Engine) Snapshot() (info Info, backs, lays []book.Bet) {
	e.mu.Lock()
	defer e.mu.Unlock()
	backs, lays = e.allBets()
	return e.info, backs, lays
}

// Restore rebuilds an Engine from persisted state: every bet record is
// restored into the store, and those still Active with remaining stake
// are reinserted into the order book.
func Restore(obsClient *obs.Client, info Info, backs, lays []book.Bet) *Engine {
	e := &Engine{
		obs:   obsClient,
		info:  info,
		book:  book.NewOrderBook(),
		store: book.NewStore(),
	}

	for _, b := range backs {
		bet := b
		e.store.Put(&bet)
		if bet.Status == book.BetActive && bet.RemainingStake > 0 {
			e.book.Insert(&bet)
		}
	}
	for _, b := range lays {
		bet := b
		e.store.Put(&bet)
		if bet.Status == book.BetActive && bet.RemainingStake > 0 {
			e.book.Insert(&bet)
		}
	}

	return e
}
