package exchange

import (
	"context"
	"testing"

	"betting-exchange/pkg/book"
	"betting-exchange/pkg/obs"
	"betting-exchange/pkg/persist"
)

func newTestExchange(t *testing.T) (*Exchange, persist.Snapshotter) {
	t.Helper()
	store := persist.NewMemoryStore()
	x := New(obs.New(), store)
	ctx := context.Background()
	if err := x.Start(ctx, "test"); err != nil {
		t.Fatalf("start: %v", err)
	}
	return x, store
}

// TestExactCrossAndMatch covers two backs and two lays where the first
// back and second lay cross exactly, end to end through the exchange.
func TestExactCrossAndMatch(t *testing.T) {
	x, _ := newTestExchange(t)
	ctx := context.Background()

	x.UserCreate(ctx, "u1", "Alice")
	x.UserCreate(ctx, "u2", "Bob")
	x.UserDeposit(ctx, "u1", 2000)
	x.UserDeposit(ctx, "u2", 2000)
	x.MarketCreate(ctx, "m1", "test market")

	bb1, err := x.BetBack(ctx, "u1", "m1", 1000, 150)
	if err != nil {
		t.Fatalf("bet_back bb1: %v", err)
	}
	if _, err := x.BetBack(ctx, "u1", "m1", 1000, 153); err != nil {
		t.Fatalf("bet_back bb2: %v", err)
	}
	if _, err := x.BetLay(ctx, "u2", "m1", 500, 140); err != nil {
		t.Fatalf("bet_lay bl1: %v", err)
	}
	bl2, err := x.BetLay(ctx, "u2", "m1", 500, 150)
	if err != nil {
		t.Fatalf("bet_lay bl2: %v", err)
	}

	backs, _ := x.MarketPendingBacks(ctx, "m1")
	if len(backs) != 2 || backs[0].ID != bb1 {
		t.Fatalf("unexpected pending backs: %+v", backs)
	}
	lays, _ := x.MarketPendingLays(ctx, "m1")
	if len(lays) != 2 || lays[0].ID != bl2 {
		t.Fatalf("unexpected pending lays: %+v", lays)
	}

	if err := x.MarketMatch(ctx, "m1"); err != nil {
		t.Fatalf("match: %v", err)
	}

	b1, _ := x.BetGet(ctx, bb1)
	if b1.RemainingStake != 0 {
		t.Fatalf("expected bb1.remaining = 0, got %d", b1.RemainingStake)
	}
	l2, _ := x.BetGet(ctx, bl2)
	if l2.RemainingStake != 0 {
		t.Fatalf("expected bl2.remaining = 0, got %d", l2.RemainingStake)
	}
}

// TestSettlementConservesMoney checks that whichever way the market
// settles, the total credited back to users equals the total staked.
func TestSettlementConservesMoney(t *testing.T) {
	for _, result := range []bool{true, false} {
		x, _ := newTestExchange(t)
		ctx := context.Background()

		x.UserCreate(ctx, "u1", "Alice")
		x.UserCreate(ctx, "u2", "Bob")
		x.UserDeposit(ctx, "u1", 2000)
		x.UserDeposit(ctx, "u2", 2000)
		x.MarketCreate(ctx, "m1", "test market")

		x.BetBack(ctx, "u1", "m1", 1000, 150)
		x.BetBack(ctx, "u1", "m1", 1000, 153)
		x.BetLay(ctx, "u2", "m1", 500, 140)
		x.BetLay(ctx, "u2", "m1", 500, 150)
		x.MarketMatch(ctx, "m1")

		if err := x.MarketSettle(ctx, "m1", result); err != nil {
			t.Fatalf("settle(%v): %v", result, err)
		}

		u1, _ := x.UserGet(ctx, "u1")
		u2, _ := x.UserGet(ctx, "u2")
		if u1.Balance+u2.Balance != 4000 {
			t.Fatalf("result=%v: expected conserved total 4000, got u1=%d u2=%d", result, u1.Balance, u2.Balance)
		}
	}
}

// TestFreezeRefundsUnmatchedOnly checks that freezing a market refunds
// only unmatched stake, leaving matched exposure live until settlement.
func TestFreezeRefundsUnmatchedOnly(t *testing.T) {
	x, _ := newTestExchange(t)
	ctx := context.Background()

	x.UserCreate(ctx, "u1", "Alice")
	x.UserCreate(ctx, "u2", "Bob")
	x.UserDeposit(ctx, "u1", 2000)
	x.UserDeposit(ctx, "u2", 2000)
	x.MarketCreate(ctx, "m1", "test market")

	x.BetBack(ctx, "u1", "m1", 1000, 150)
	x.BetLay(ctx, "u2", "m1", 500, 150)
	x.MarketMatch(ctx, "m1")

	u1Before, _ := x.UserGet(ctx, "u1")

	if err := x.MarketFreeze(ctx, "m1"); err != nil {
		t.Fatalf("freeze: %v", err)
	}

	if _, err := x.BetLay(ctx, "u2", "m1", 100, 150); err == nil {
		t.Fatalf("expected bet_lay to fail on a frozen market")
	}

	u1After, _ := x.UserGet(ctx, "u1")
	if u1After.Balance != u1Before.Balance {
		t.Fatalf("expected no unmatched stake to refund to u1 (fully matched), before=%d after=%d", u1Before.Balance, u1After.Balance)
	}

	if err := x.MarketSettle(ctx, "m1", false); err != nil {
		t.Fatalf("settle after freeze: %v", err)
	}
	u1Final, _ := x.UserGet(ctx, "u1")
	u2Final, _ := x.UserGet(ctx, "u2")
	if u1Final.Balance+u2Final.Balance != 4000 {
		t.Fatalf("expected conserved total after freeze+settle, got u1=%d u2=%d", u1Final.Balance, u2Final.Balance)
	}
}

// TestPersistenceRoundTrip checks that a stopped exchange's state is
// fully recoverable by a fresh Exchange starting against the same store.
func TestPersistenceRoundTrip(t *testing.T) {
	store := persist.NewMemoryStore()
	ctx := context.Background()

	x := New(obs.New(), store)
	if err := x.Start(ctx, "exch1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	x.UserCreate(ctx, "u1", "Alice")
	x.UserDeposit(ctx, "u1", 2000)
	x.MarketCreate(ctx, "m1", "test market")
	bb1, err := x.BetBack(ctx, "u1", "m1", 1000, 150)
	if err != nil {
		t.Fatalf("bet_back: %v", err)
	}
	if err := x.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	y := New(obs.New(), store)
	if err := y.Start(ctx, "exch1"); err != nil {
		t.Fatalf("restart start: %v", err)
	}

	u1, err := y.UserGet(ctx, "u1")
	if err != nil {
		t.Fatalf("user_get after restart: %v", err)
	}
	if u1.Balance != 1000 {
		t.Fatalf("expected restored balance 1000, got %d", u1.Balance)
	}

	active := y.MarketListActive(ctx)
	found := false
	for _, id := range active {
		if id == "m1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected m1 among active markets after restart, got %+v", active)
	}

	bet, err := y.BetGet(ctx, bb1)
	if err != nil {
		t.Fatalf("bet_get after restart: %v", err)
	}
	if bet.OriginalStake != 1000 {
		t.Fatalf("expected restored bet stake 1000, got %d", bet.OriginalStake)
	}
}

func TestStartTwiceFailsWithAlreadyRunning(t *testing.T) {
	x, _ := newTestExchange(t)
	ctx := context.Background()

	err := x.Start(ctx, "test")
	if err == nil {
		t.Fatalf("expected second start to fail")
	}
	e, ok := err.(*book.Error)
	if !ok || e.Kind() != book.KindAlreadyRunning {
		t.Fatalf("expected AlreadyRunning kind, got %v", err)
	}
}

func TestCancelUnmatchedBetRefundsLedger(t *testing.T) {
	x, _ := newTestExchange(t)
	ctx := context.Background()

	x.UserCreate(ctx, "u1", "Alice")
	x.UserDeposit(ctx, "u1", 1000)
	x.MarketCreate(ctx, "m1", "test market")
	bet, err := x.BetBack(ctx, "u1", "m1", 1000, 150)
	if err != nil {
		t.Fatalf("bet_back: %v", err)
	}

	if err := x.BetCancel(ctx, bet); err != nil {
		t.Fatalf("bet_cancel: %v", err)
	}

	u1, _ := x.UserGet(ctx, "u1")
	if u1.Balance != 1000 {
		t.Fatalf("expected balance restored to 1000, got %d", u1.Balance)
	}

	// idempotent: second cancel is a no-op
	if err := x.BetCancel(ctx, bet); err != nil {
		t.Fatalf("second bet_cancel: %v", err)
	}
	u1Again, _ := x.UserGet(ctx, "u1")
	if u1Again.Balance != 1000 {
		t.Fatalf("expected no double-credit, got %d", u1Again.Balance)
	}
}
