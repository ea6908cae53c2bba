// Package ledger implements the exchange-wide monetary ledger: a
// single-writer mapping from user id to balance and bet history. Every
// movement of money between users and bets flows through it.
package ledger

import (
	"context"
	"sync"

	"betting-exchange/pkg/book"
	"betting-exchange/pkg/obs"
)

// Account is a snapshot of one user's ledger state.
type Account struct {
	ID      string
	Name    string
	Balance int64
	Bets    []book.BetId
}

// Ledger is owned exclusively by the exchange supervisor; its own mutex
// serializes concurrent access across all users.
type Ledger struct {
	mu       sync.Mutex
	obs      *obs.Client
	accounts map[string]*Account
}

func New(obsClient *obs.Client) *Ledger {
	return &Ledger{
		obs:      obsClient,
		accounts: make(map[string]*Account),
	}
}

func (l *Ledger) Create(ctx context.Context, id, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.accounts[id]; exists {
		l.obs.LogErr(ctx, "ledger.create: duplicate id=%s", id)
		return book.ErrDuplicateID
	}
	l.accounts[id] = &Account{ID: id, Name: name}
	l.obs.LogInfo(ctx, "ledger.create: id=%s name=%s", id, name)
	return nil
}

func (l *Ledger) Deposit(ctx context.Context, id string, amount int64) error {
	if amount <= 0 {
		return book.ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[id]
	if !ok {
		l.obs.LogErr(ctx, "ledger.deposit: unknown user=%s", id)
		return book.ErrNotFound
	}
	acc.Balance += amount
	l.obs.LogInfo(ctx, "ledger.deposit: user=%s amount=%d balance=%d", id, amount, acc.Balance)
	return nil
}

func (l *Ledger) Withdraw(ctx context.Context, id string, amount int64) error {
	if amount <= 0 {
		return book.ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[id]
	if !ok {
		l.obs.LogErr(ctx, "ledger.withdraw: unknown user=%s", id)
		return book.ErrNotFound
	}
	if amount > acc.Balance {
		l.obs.LogErr(ctx, "ledger.withdraw: overdraft user=%s amount=%d balance=%d", id, amount, acc.Balance)
		return book.ErrInvalidAmount
	}
	acc.Balance -= amount
	l.obs.LogInfo(ctx, "ledger.withdraw: user=%s amount=%d balance=%d", id, amount, acc.Balance)
	return nil
}

func (l *Ledger) Get(ctx context.Context, id string) (Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[id]
	if !ok {
		return Account{}, book.ErrNotFound
	}
	return cloneAccount(acc), nil
}

// Bets returns the user's bet ids newest-first.
func (l *Ledger) Bets(ctx context.Context, id string) ([]book.BetId, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[id]
	if !ok {
		return nil, book.ErrNotFound
	}
	out := make([]book.BetId, len(acc.Bets))
	for i, b := range acc.Bets {
		out[len(acc.Bets)-1-i] = b
	}
	return out, nil
}

// AppendBet records a newly placed bet against the user's history.
// Internal: called by the exchange supervisor on placement.
func (l *Ledger) AppendBet(ctx context.Context, id string, bet book.BetId) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[id]
	if !ok {
		return book.ErrNotFound
	}
	acc.Bets = append(acc.Bets, bet)
	return nil
}

// SnapshotAccounts returns a deep copy of every account, for persistence.
func (l *Ledger) SnapshotAccounts() map[string]Account {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]Account, len(l.accounts))
	for id, acc := range l.accounts {
		out[id] = cloneAccount(acc)
	}
	return out
}

// RestoreAccount rebuilds one account from a persisted snapshot. Internal:
// called only by the exchange supervisor while assembling restored state,
// never concurrently with normal operation.
func (l *Ledger) RestoreAccount(id, name string, balance int64, bets []book.BetId) {
	l.mu.Lock()
	defer l.mu.Unlock()

	betsCopy := make([]book.BetId, len(bets))
	copy(betsCopy, bets)
	l.accounts[id] = &Account{ID: id, Name: name, Balance: balance, Bets: betsCopy}
}

func cloneAccount(acc *Account) Account {
	betsCopy := make([]book.BetId, len(acc.Bets))
	copy(betsCopy, acc.Bets)
	return Account{ID: acc.ID, Name: acc.Name, Balance: acc.Balance, Bets: betsCopy}
}
