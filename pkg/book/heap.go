package book

import "container/heap"

// priceLevel holds the identifiers of bets resting at one odds value,
// FIFO on insertion time.
type priceLevel struct {
	odds int64
	ids  []BetId
}

// levelHeap orders price levels by odds, ascending for the back side of
// the book and descending for the lay side.
type levelHeap struct {
	levels    []*priceLevel
	ascending bool
}

func (h levelHeap) Len() int { return len(h.levels) }

func (h levelHeap) Less(i, j int) bool {
	if h.ascending {
		return h.levels[i].odds < h.levels[j].odds
	}
	return h.levels[i].odds > h.levels[j].odds
}

func (h levelHeap) Swap(i, j int) {
	h.levels[i], h.levels[j] = h.levels[j], h.levels[i]
}

func (h *levelHeap) Push(x any) {
	h.levels = append(h.levels, x.(*priceLevel))
}

func (h *levelHeap) Pop() any {
	old := h.levels
	n := len(old)
	item := old[n-1]
	h.levels = old[:n-1]
	return item
}

func (h *levelHeap) Peek() *priceLevel {
	if h.Len() == 0 {
		return nil
	}
	return h.levels[0]
}

var _ heap.Interface = (*levelHeap)(nil)
