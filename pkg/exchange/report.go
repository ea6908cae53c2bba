package exchange

import (
	"context"

	"github.com/shopspring/decimal"

	"betting-exchange/pkg/book"
	"betting-exchange/pkg/market"
	"betting-exchange/pkg/obs"
)

// CustodyReport is a point-in-time reconciliation of the money-conservation
// invariant: balances, plus unmatched stakes, plus matched exposure,
// should equal custody at the moment of the last deposit/withdraw.
type CustodyReport struct {
	Balances        int64
	UnmatchedStake  int64
	MatchedExposure int64
	Custody         int64
	// ExposureRatio is MatchedExposure / Custody, for human review only;
	// it is never consumed by the settlement or matching paths.
	ExposureRatio decimal.Decimal
}

// Reconcile walks every account and every market's bet store to compute
// the custody report. Only Active bets contribute stake and exposure;
// settled and cancelled bets have already been paid back to balances.
// The exposure ratio is surfaced as a decimal.Decimal purely for display;
// the integer path (settlement, matching) never uses it.
func (x *Exchange) Reconcile(ctx context.Context) CustodyReport {
	x.mu.Lock()
	l := x.ledger
	markets := make([]*market.Engine, 0, len(x.order))
	for _, id := range x.order {
		markets = append(markets, x.markets[id])
	}
	x.mu.Unlock()

	var report CustodyReport
	for _, acc := range l.SnapshotAccounts() {
		report.Balances += acc.Balance
	}

	for _, m := range markets {
		_, backs, lays := m.Snapshot()
		for _, b := range append(backs, lays...) {
			if b.Status != book.BetActive {
				continue
			}
			report.UnmatchedStake += b.RemainingStake
			report.MatchedExposure += b.Exposure()
		}
	}

	report.Custody = report.Balances + report.UnmatchedStake + report.MatchedExposure
	if report.Custody != 0 {
		report.ExposureRatio = decimal.NewFromInt(report.MatchedExposure).
			DivRound(decimal.NewFromInt(report.Custody), 6)
	}
	obs.CustodyTotal.Set(float64(report.Custody))
	return report
}
