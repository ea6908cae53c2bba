package book

// MatchEvent records one crossing of a resting back against a resting
// lay, for logging and testing. It has no public API response shape of
// its own but is returned so callers can log what happened.
type MatchEvent struct {
	Back         BetId
	Lay          BetId
	BackStake    int64
	LayLiability int64
	Odds         int64
}

// Match runs the matching algorithm over a book's resting backs and lays,
// mutating the underlying bet records in store and removing fully-crossed
// bets from the book. Iterative rather than recursive to bound stack
// depth against a book with many resting orders at one price.
//
// All arithmetic is integer-truncating, using denominators of
// (odds - 100) rather than (odds/100 - 1) so no intermediate value is
// fractional; any truncation drift accrues to the exchange and is never
// re-credited to either side of the match.
func Match(ob *OrderBook, store *Store) []MatchEvent {
	var events []MatchEvent

	for {
		back := ob.peekActiveBack(store)
		if back == nil {
			break
		}
		lay := ob.peekActiveLay(store)
		if lay == nil {
			break
		}
		if back.Odds > lay.Odds {
			break
		}

		backCapacity := (back.RemainingStake*back.Odds)/100 - back.RemainingStake
		layNeed := lay.RemainingStake

		var backConsumed, layConsumed int64
		if backCapacity >= layNeed {
			backConsumed = (layNeed * 100) / (back.Odds - 100)
			layConsumed = layNeed
		} else {
			backConsumed = back.RemainingStake
			layConsumed = (back.RemainingStake * (back.Odds - 100)) / 100
		}

		back.RemainingStake -= backConsumed
		back.MatchedAmount += backConsumed
		lay.RemainingStake -= layConsumed
		lay.MatchedAmount += layConsumed
		lay.AbsorbedStake += backConsumed

		back.Matched = append(back.Matched, lay.ID)
		lay.Matched = append(lay.Matched, back.ID)

		events = append(events, MatchEvent{
			Back:         back.ID,
			Lay:          lay.ID,
			BackStake:    backConsumed,
			LayLiability: layConsumed,
			Odds:         back.Odds,
		})

		if back.RemainingStake == 0 {
			ob.Remove(back.ID)
		}
		if lay.RemainingStake == 0 {
			ob.Remove(lay.ID)
		}
	}

	return events
}

// peekActiveBack returns the resting back with the best (lowest) odds,
// dropping any stale heads — bets that are no longer Active or have
// already reached zero remaining stake. Under the book's own invariants
// this should never be necessary, but costs nothing to guard against.
func (ob *OrderBook) peekActiveBack(store *Store) *Bet {
	for {
		level := ob.backs.Peek()
		if level == nil {
			return nil
		}
		if len(level.ids) == 0 {
			ob.removeLevel(&ob.backs, ob.backLevels, level)
			continue
		}
		id := level.ids[0]
		bet, ok := store.Get(id)
		if !ok || bet.Status != BetActive || bet.RemainingStake <= 0 {
			ob.Remove(id)
			continue
		}
		return bet
	}
}

func (ob *OrderBook) peekActiveLay(store *Store) *Bet {
	for {
		level := ob.lays.Peek()
		if level == nil {
			return nil
		}
		if len(level.ids) == 0 {
			ob.removeLevel(&ob.lays, ob.layLevels, level)
			continue
		}
		id := level.ids[0]
		bet, ok := store.Get(id)
		if !ok || bet.Status != BetActive || bet.RemainingStake <= 0 {
			ob.Remove(id)
			continue
		}
		return bet
	}
}
