package book

import (
	"container/heap"
	"sort"
)

// orderRef locates a bet within one side's price levels, for O(1)-ish
// removal by id.
type orderRef struct {
	isBack bool
	level  *priceLevel
	index  int
}

// OrderBook holds only the identifiers of bets with remaining_stake > 0.
// Backs sort ascending by odds, lays descending, both FIFO within a price
// level; bare identifiers since full bet state lives in the bet record
// store, not the book itself.
type OrderBook struct {
	backs       levelHeap
	lays        levelHeap
	backLevels  map[int64]*priceLevel
	layLevels   map[int64]*priceLevel
	index       map[BetId]orderRef
}

func NewOrderBook() *OrderBook {
	return &OrderBook{
		backs:      levelHeap{ascending: true},
		lays:       levelHeap{ascending: false},
		backLevels: map[int64]*priceLevel{},
		layLevels:  map[int64]*priceLevel{},
		index:      map[BetId]orderRef{},
	}
}

// Level pairs an odds value with a resting bet id, the shape
// market_pending_backs/market_pending_lays return.
type Level struct {
	Odds int64
	ID   BetId
}

func (ob *OrderBook) sideLevels(isBack bool) (*levelHeap, map[int64]*priceLevel) {
	if isBack {
		return &ob.backs, ob.backLevels
	}
	return &ob.lays, ob.layLevels
}

// Insert adds a bet's id to the appropriate side of the book, in sorted
// position, stable on insertion time (append-to-tail within a level).
func (ob *OrderBook) Insert(b *Bet) {
	isBack := b.Type == Back
	levels, byOdds := ob.sideLevels(isBack)

	level, ok := byOdds[b.Odds]
	if !ok {
		level = &priceLevel{odds: b.Odds}
		byOdds[b.Odds] = level
		heap.Push(levels, level)
	}

	level.ids = append(level.ids, b.ID)
	ob.index[b.ID] = orderRef{isBack: isBack, level: level, index: len(level.ids) - 1}
}

// Remove drops a bet id from the book. A no-op if the id is not present,
// so cancels and refunds stay idempotent under retries.
func (ob *OrderBook) Remove(id BetId) bool {
	ref, ok := ob.index[id]
	if !ok {
		return false
	}

	level := ref.level
	idx := ref.index
	if idx < 0 || idx >= len(level.ids) || level.ids[idx] != id {
		// Stale ref (shouldn't happen); fall back to a linear scan.
		idx = -1
		for i, candidate := range level.ids {
			if candidate == id {
				idx = i
				break
			}
		}
		if idx == -1 {
			delete(ob.index, id)
			return false
		}
	}

	copy(level.ids[idx:], level.ids[idx+1:])
	level.ids = level.ids[:len(level.ids)-1]
	delete(ob.index, id)

	for i := idx; i < len(level.ids); i++ {
		ob.index[level.ids[i]] = orderRef{isBack: ref.isBack, level: level, index: i}
	}

	if len(level.ids) == 0 {
		levels, byOdds := ob.sideLevels(ref.isBack)
		ob.removeLevel(levels, byOdds, level)
	}

	return true
}

func (ob *OrderBook) removeLevel(levels *levelHeap, byOdds map[int64]*priceLevel, level *priceLevel) {
	for i, candidate := range levels.levels {
		if candidate == level {
			heap.Remove(levels, i)
			break
		}
	}
	delete(byOdds, level.odds)
}

// Has reports whether a bet id is currently resting in the book.
func (ob *OrderBook) Has(id BetId) bool {
	_, ok := ob.index[id]
	return ok
}

// PeekBack returns the best (lowest-odds) resting back level, or nil.
func (ob *OrderBook) PeekBack() *priceLevel { return ob.backs.Peek() }

// PeekLay returns the best (highest-odds) resting lay level, or nil.
func (ob *OrderBook) PeekLay() *priceLevel { return ob.lays.Peek() }

// Backs returns all resting back ids in book order: ascending odds, FIFO
// within a price level.
func (ob *OrderBook) Backs() []Level { return ob.sorted(true) }

// Lays returns all resting lay ids in book order: descending odds, FIFO
// within a price level.
func (ob *OrderBook) Lays() []Level { return ob.sorted(false) }

// sorted snapshots one side's levels with sort.Slice rather than relying
// on heap internal order — the heap's ordering invariant only guarantees
// the root, not a full traversal order.
func (ob *OrderBook) sorted(isBack bool) []Level {
	_, byOdds := ob.sideLevels(isBack)

	levels := make([]*priceLevel, 0, len(byOdds))
	for _, level := range byOdds {
		levels = append(levels, level)
	}
	sort.Slice(levels, func(i, j int) bool {
		if isBack {
			return levels[i].odds < levels[j].odds
		}
		return levels[i].odds > levels[j].odds
	})

	out := make([]Level, 0, len(ob.index))
	for _, level := range levels {
		for _, id := range level.ids {
			out = append(out, Level{Odds: level.odds, ID: id})
		}
	}
	return out
}
