// Package persist implements the exchange's persistence adapter: a single
// JSON snapshot per exchange, loaded on start, saved on stop and deleted
// on clean.
package persist

import (
	"context"

	"betting-exchange/pkg/book"
	"betting-exchange/pkg/market"
)

// UserRecord is one ledger account as it appears in a snapshot.
type UserRecord struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Balance int64        `json:"balance"`
	Bets    []book.BetId `json:"bets"`
}

// MarketRecord is one market's full state as it appears in a snapshot.
type MarketRecord struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      market.Status `json:"status"`
	Result      bool          `json:"result"`
	Backs       []book.Bet    `json:"backs"`
	Lays        []book.Bet    `json:"lays"`
}

// Snapshot is the single blob persisted for an exchange.
type Snapshot struct {
	Name    string         `json:"name"`
	Counter uint64         `json:"counter"`
	Users   []UserRecord   `json:"users"`
	Markets []MarketRecord `json:"markets"`
}

// Snapshotter persists and retrieves an exchange's entire state under its
// name. Implementations must treat a missing key as a non-error "not
// found" (via the returned bool), not an error.
type Snapshotter interface {
	Save(ctx context.Context, name string, snap Snapshot) error
	Load(ctx context.Context, name string) (Snapshot, bool, error)
	Delete(ctx context.Context, name string) error
}
