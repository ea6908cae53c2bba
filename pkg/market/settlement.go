package market

import "betting-exchange/pkg/book"

// payout computes the settlement amount owed to one bet given the
// market's final result. Winning backers receive the gross return on their
// matched stake at the agreed odds (stake plus profit) plus whatever stake
// never matched; winning layers receive the stake they absorbed from
// backers plus their own matched liability back plus any unmatched
// remainder; losers on either side keep only stake that
// never matched, since matched stake is the money actually at risk in
// the crossed trade.
func payout(b *book.Bet, result bool) int64 {
	backWins := result
	switch {
	case b.Type == book.Back && backWins:
		return (b.Odds*b.MatchedAmount)/100 + b.RemainingStake
	case b.Type == book.Back && !backWins:
		return b.RemainingStake
	case b.Type == book.Lay && !backWins:
		return b.AbsorbedStake + b.MatchedAmount + b.RemainingStake
	default: // Lay, backWins
		return b.RemainingStake
	}
}
