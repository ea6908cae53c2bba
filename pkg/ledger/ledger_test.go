package ledger

import (
	"context"
	"testing"

	"betting-exchange/pkg/book"
	"betting-exchange/pkg/obs"
)

func TestDepositWithdrawRoundTrip(t *testing.T) {
	l := New(obs.New())
	ctx := context.Background()

	if err := l.Create(ctx, "u1", "Alice"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := l.Deposit(ctx, "u1", 2000); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := l.Withdraw(ctx, "u1", 1000); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	acc, err := l.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if acc.Balance != 1000 {
		t.Fatalf("expected balance 1000, got %d", acc.Balance)
	}
}

func TestWithdrawOverdraftFails(t *testing.T) {
	l := New(obs.New())
	ctx := context.Background()
	l.Create(ctx, "u1", "Alice")
	l.Deposit(ctx, "u1", 100)

	if err := l.Withdraw(ctx, "u1", 200); err == nil {
		t.Fatalf("expected overdraft to fail")
	}
}

func TestDepositRequiresStrictlyPositiveAmount(t *testing.T) {
	l := New(obs.New())
	ctx := context.Background()
	l.Create(ctx, "u1", "Alice")

	if err := l.Deposit(ctx, "u1", 0); err == nil {
		t.Fatalf("expected zero-amount deposit to fail")
	}
	if err := l.Deposit(ctx, "u1", -5); err == nil {
		t.Fatalf("expected negative deposit to fail")
	}
}

func TestDuplicateUserCreateFails(t *testing.T) {
	l := New(obs.New())
	ctx := context.Background()
	if err := l.Create(ctx, "u1", "Alice"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := l.Create(ctx, "u1", "Alice again"); err == nil {
		t.Fatalf("expected duplicate create to fail")
	}
}

func TestBetsReturnedNewestFirst(t *testing.T) {
	l := New(obs.New())
	ctx := context.Background()
	l.Create(ctx, "u1", "Alice")

	b1 := book.BetId{User: "u1", Market: "m1", Counter: 1}
	b2 := book.BetId{User: "u1", Market: "m1", Counter: 2}
	l.AppendBet(ctx, "u1", b1)
	l.AppendBet(ctx, "u1", b2)

	bets, err := l.Bets(ctx, "u1")
	if err != nil {
		t.Fatalf("bets: %v", err)
	}
	if len(bets) != 2 || bets[0] != b2 || bets[1] != b1 {
		t.Fatalf("expected newest-first order, got %+v", bets)
	}
}
