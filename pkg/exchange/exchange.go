// Package exchange implements the exchange supervisor: the process-wide
// registry of markets, the sole owner of the ledger, and the coordinator
// of start-up, shutdown, clean, and persistence.
package exchange

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"betting-exchange/pkg/book"
	"betting-exchange/pkg/ledger"
	"betting-exchange/pkg/market"
	"betting-exchange/pkg/obs"
	"betting-exchange/pkg/persist"
)

// Exchange is the top-level supervisor. Exactly one is created per
// process; it is started under a name and stopped (snapshotting) before
// the process exits.
type Exchange struct {
	mu      sync.Mutex
	obs     *obs.Client
	store   persist.Snapshotter
	counter uint64

	running bool
	name    string
	ledger  *ledger.Ledger
	markets map[string]*market.Engine
	order   []string // market creation order, for market_list
}

func New(obsClient *obs.Client, store persist.Snapshotter) *Exchange {
	return &Exchange{
		obs:     obsClient,
		store:   store,
		markets: make(map[string]*market.Engine),
	}
}

// Start boots the exchange under name, restoring from a snapshot if one
// exists, otherwise starting empty.
func (x *Exchange) Start(ctx context.Context, name string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.running {
		return book.ErrAlreadyRunning
	}

	snap, found, err := x.store.Load(ctx, name)
	if err != nil {
		return err
	}

	x.name = name
	x.ledger = ledger.New(x.obs)
	x.markets = make(map[string]*market.Engine)
	x.order = nil
	x.counter = 0

	if found {
		for _, u := range snap.Users {
			x.ledger.RestoreAccount(u.ID, u.Name, u.Balance, u.Bets)
		}
		for _, m := range snap.Markets {
			info := market.Info{ID: m.ID, Name: m.Name, Description: m.Description, Status: m.Status, Result: m.Result}
			x.markets[m.ID] = market.Restore(x.obs, info, m.Backs, m.Lays)
			x.order = append(x.order, m.ID)
		}
		atomic.StoreUint64(&x.counter, snap.Counter)
		x.obs.LogNotice(ctx, "exchange.start: name=%s restored users=%d markets=%d", name, len(snap.Users), len(snap.Markets))
	} else {
		x.obs.LogNotice(ctx, "exchange.start: name=%s fresh", name)
	}

	x.running = true
	x.refreshActiveMarketsGaugeLocked()
	return nil
}

// refreshActiveMarketsGaugeLocked recomputes the exchange_active_markets
// gauge. Called under x.mu after any market lifecycle transition.
func (x *Exchange) refreshActiveMarketsGaugeLocked() {
	var n int
	for _, id := range x.order {
		if !x.markets[id].Get().Status.Terminal() {
			n++
		}
	}
	obs.ActiveMarkets.Set(float64(n))
}

// Stop snapshots the current state and halts the exchange.
func (x *Exchange) Stop(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if !x.running {
		return book.ErrInvalidState
	}

	snap := x.snapshotLocked()
	if err := x.store.Save(ctx, x.name, snap); err != nil {
		return err
	}

	x.running = false
	x.obs.LogNotice(ctx, "exchange.stop: name=%s", x.name)
	return nil
}

// Clean discards in-memory state and deletes the persisted snapshot.
func (x *Exchange) Clean(ctx context.Context, name string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if err := x.store.Delete(ctx, name); err != nil {
		return err
	}

	if x.running && x.name == name {
		x.running = false
		x.markets = make(map[string]*market.Engine)
		x.order = nil
		x.ledger = nil
		x.counter = 0
	}

	x.obs.LogNotice(ctx, "exchange.clean: name=%s", name)
	return nil
}

func (x *Exchange) snapshotLocked() persist.Snapshot {
	accounts := x.ledger.SnapshotAccounts()
	users := make([]persist.UserRecord, 0, len(accounts))
	for _, acc := range accounts {
		users = append(users, persist.UserRecord{ID: acc.ID, Name: acc.Name, Balance: acc.Balance, Bets: acc.Bets})
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	markets := make([]persist.MarketRecord, 0, len(x.order))
	for _, id := range x.order {
		m := x.markets[id]
		info, backs, lays := m.Snapshot()
		markets = append(markets, persist.MarketRecord{
			ID: info.ID, Name: info.Name, Description: info.Description,
			Status: info.Status, Result: info.Result, Backs: backs, Lays: lays,
		})
	}

	return persist.Snapshot{
		Name:    x.name,
		Counter: atomic.LoadUint64(&x.counter),
		Users:   users,
		Markets: markets,
	}
}

// --- User operations (passthrough to the ledger) ---

// ledgerLocked returns the active ledger or ErrInvalidState if the
// exchange has not been started.
func (x *Exchange) ledgerLocked() (*ledger.Ledger, error) {
	if !x.running {
		return nil, book.ErrInvalidState
	}
	return x.ledger, nil
}

func (x *Exchange) UserCreate(ctx context.Context, id, name string) error {
	x.mu.Lock()
	l, err := x.ledgerLocked()
	x.mu.Unlock()
	if err != nil {
		return err
	}
	return l.Create(ctx, id, name)
}

func (x *Exchange) UserDeposit(ctx context.Context, id string, amount int64) error {
	x.mu.Lock()
	l, err := x.ledgerLocked()
	x.mu.Unlock()
	if err != nil {
		return err
	}
	return l.Deposit(ctx, id, amount)
}

func (x *Exchange) UserWithdraw(ctx context.Context, id string, amount int64) error {
	x.mu.Lock()
	l, err := x.ledgerLocked()
	x.mu.Unlock()
	if err != nil {
		return err
	}
	return l.Withdraw(ctx, id, amount)
}

func (x *Exchange) UserGet(ctx context.Context, id string) (ledger.Account, error) {
	x.mu.Lock()
	l, err := x.ledgerLocked()
	x.mu.Unlock()
	if err != nil {
		return ledger.Account{}, err
	}
	return l.Get(ctx, id)
}

func (x *Exchange) UserBets(ctx context.Context, id string) ([]book.BetId, error) {
	x.mu.Lock()
	l, err := x.ledgerLocked()
	x.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return l.Bets(ctx, id)
}

// --- Market operations ---

func (x *Exchange) MarketCreate(ctx context.Context, name, description string) (string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if !x.running {
		return "", book.ErrInvalidState
	}
	if _, exists := x.markets[name]; exists {
		return "", book.ErrDuplicateID
	}
	x.markets[name] = market.New(x.obs, name, description)
	x.order = append(x.order, name)
	x.refreshActiveMarketsGaugeLocked()
	x.obs.LogInfo(ctx, "exchange.market_create: name=%s", name)
	return name, nil
}

func (x *Exchange) MarketList(ctx context.Context) []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	out := make([]string, len(x.order))
	copy(out, x.order)
	return out
}

func (x *Exchange) MarketListActive(ctx context.Context) []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	var out []string
	for _, id := range x.order {
		if x.markets[id].Get().Status == market.Active {
			out = append(out, id)
		}
	}
	return out
}

func (x *Exchange) marketLocked(id string) (*market.Engine, error) {
	if !x.running {
		return nil, book.ErrInvalidState
	}
	m, ok := x.markets[id]
	if !ok {
		return nil, book.ErrNotFound
	}
	return m, nil
}

func (x *Exchange) MarketGet(ctx context.Context, id string) (market.Info, error) {
	x.mu.Lock()
	m, err := x.marketLocked(id)
	x.mu.Unlock()
	if err != nil {
		return market.Info{}, err
	}
	return m.Get(), nil
}

func (x *Exchange) MarketBets(ctx context.Context, id string) ([]book.BetId, error) {
	x.mu.Lock()
	m, err := x.marketLocked(id)
	x.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return m.Bets(), nil
}

func (x *Exchange) MarketPendingBacks(ctx context.Context, id string) ([]book.Level, error) {
	x.mu.Lock()
	m, err := x.marketLocked(id)
	x.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return m.PendingBacks(), nil
}

func (x *Exchange) MarketPendingLays(ctx context.Context, id string) ([]book.Level, error) {
	x.mu.Lock()
	m, err := x.marketLocked(id)
	x.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return m.PendingLays(), nil
}

func (x *Exchange) MarketMatch(ctx context.Context, id string) error {
	x.mu.Lock()
	m, err := x.marketLocked(id)
	x.mu.Unlock()
	if err != nil {
		return err
	}
	_, err = m.Match(ctx)
	return err
}

func (x *Exchange) MarketFreeze(ctx context.Context, id string) error {
	x.mu.Lock()
	m, err := x.marketLocked(id)
	l := x.ledger
	x.mu.Unlock()
	if err != nil {
		return err
	}

	payouts, err := m.Freeze(ctx)
	if err != nil {
		return err
	}
	return x.applyPayouts(ctx, l, payouts)
}

func (x *Exchange) MarketCancel(ctx context.Context, id string) error {
	x.mu.Lock()
	m, err := x.marketLocked(id)
	l := x.ledger
	x.mu.Unlock()
	if err != nil {
		return err
	}

	payouts, err := m.Cancel(ctx)
	if err != nil {
		return err
	}
	x.mu.Lock()
	x.refreshActiveMarketsGaugeLocked()
	x.mu.Unlock()
	return x.applyPayouts(ctx, l, payouts)
}

func (x *Exchange) MarketSettle(ctx context.Context, id string, result bool) error {
	x.mu.Lock()
	m, err := x.marketLocked(id)
	l := x.ledger
	x.mu.Unlock()
	if err != nil {
		return err
	}

	payouts, err := m.Settle(ctx, result)
	if err != nil {
		return err
	}
	x.mu.Lock()
	x.refreshActiveMarketsGaugeLocked()
	x.mu.Unlock()
	return x.applyPayouts(ctx, l, payouts)
}

// applyPayouts credits each payout to the owning user's ledger balance.
// BetId carries the owning user, so no separate lookup is needed.
func (x *Exchange) applyPayouts(ctx context.Context, l *ledger.Ledger, payouts []market.Payout) error {
	for _, p := range payouts {
		if p.Amount <= 0 {
			continue
		}
		if err := l.Deposit(ctx, p.ID.User, p.Amount); err != nil {
			x.obs.LogAlert(ctx, "exchange.apply_payouts: deposit failed user=%s amount=%d err=%v", p.ID.User, p.Amount, err)
			return err
		}
	}
	return nil
}

// --- Bet operations ---

func (x *Exchange) nextCounter() uint64 {
	return atomic.AddUint64(&x.counter, 1)
}

func (x *Exchange) placeBet(ctx context.Context, user, marketID string, t book.BetType, stake, odds int64) (book.BetId, error) {
	x.mu.Lock()
	m, err := x.marketLocked(marketID)
	l := x.ledger
	x.mu.Unlock()
	if err != nil {
		return book.BetId{}, err
	}

	if stake <= 0 || odds <= 100 {
		return book.BetId{}, book.ErrInvalidAmount
	}

	if err := l.Withdraw(ctx, user, stake); err != nil {
		return book.BetId{}, err
	}

	id := book.BetId{User: user, Market: marketID, Counter: x.nextCounter()}
	if err := m.Place(ctx, id, t, stake, odds); err != nil {
		// roll back the withdrawal; the market rejected the placement.
		if depErr := l.Deposit(ctx, user, stake); depErr != nil {
			x.obs.LogAlert(ctx, "exchange.place_bet: rollback failed user=%s amount=%d err=%v", user, stake, depErr)
		}
		return book.BetId{}, err
	}

	if err := l.AppendBet(ctx, user, id); err != nil {
		x.obs.LogAlert(ctx, "exchange.place_bet: append_bet failed user=%s bet=%s err=%v", user, id, err)
	}
	return id, nil
}

func (x *Exchange) BetBack(ctx context.Context, user, marketID string, stake, odds int64) (book.BetId, error) {
	return x.placeBet(ctx, user, marketID, book.Back, stake, odds)
}

func (x *Exchange) BetLay(ctx context.Context, user, marketID string, stake, odds int64) (book.BetId, error) {
	return x.placeBet(ctx, user, marketID, book.Lay, stake, odds)
}

func (x *Exchange) BetCancel(ctx context.Context, id book.BetId) error {
	x.mu.Lock()
	m, err := x.marketLocked(id.Market)
	l := x.ledger
	x.mu.Unlock()
	if err != nil {
		return err
	}

	refund, err := m.CancelUnmatched(ctx, id)
	if err != nil {
		return err
	}
	if refund > 0 {
		return l.Deposit(ctx, id.User, refund)
	}
	return nil
}

func (x *Exchange) BetGet(ctx context.Context, id book.BetId) (book.Bet, error) {
	x.mu.Lock()
	m, err := x.marketLocked(id.Market)
	x.mu.Unlock()
	if err != nil {
		return book.Bet{}, err
	}
	return m.GetBet(id)
}
