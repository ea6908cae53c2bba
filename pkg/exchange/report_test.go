package exchange

import (
	"context"
	"testing"
)

func TestReconcileConservesCustodyAcrossMatch(t *testing.T) {
	x, _ := newTestExchange(t)
	ctx := context.Background()

	x.UserCreate(ctx, "u1", "Alice")
	x.UserCreate(ctx, "u2", "Bob")
	x.UserDeposit(ctx, "u1", 2000)
	x.UserDeposit(ctx, "u2", 2000)
	x.MarketCreate(ctx, "m1", "test market")

	before := x.Reconcile(ctx)
	if before.Custody != 4000 {
		t.Fatalf("expected custody 4000 before betting, got %d", before.Custody)
	}

	x.BetBack(ctx, "u1", "m1", 1000, 150)
	x.BetLay(ctx, "u2", "m1", 500, 150)

	afterPlace := x.Reconcile(ctx)
	if afterPlace.Custody != 4000 {
		t.Fatalf("expected custody conserved after placement, got %d", afterPlace.Custody)
	}

	x.MarketMatch(ctx, "m1")

	afterMatch := x.Reconcile(ctx)
	if afterMatch.Custody != 4000 {
		t.Fatalf("expected custody conserved after match, got %d", afterMatch.Custody)
	}
	if afterMatch.MatchedExposure == 0 {
		t.Fatalf("expected non-zero matched exposure after a cross")
	}
}
