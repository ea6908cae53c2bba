package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2"
)

// Prometheus instrumentation for the exchange, grounded on the same
// promauto-registered-vars shape as AMOORCHING-ATMX's internal/metrics.
var (
	BetsPlaced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "exchange_bets_placed_total",
		Help: "Total bets placed, partitioned by type (back/lay)",
	}, []string{"type"})

	BetsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "exchange_bets_cancelled_total",
		Help: "Total bets cancelled (unmatched portion refunded)",
	})

	MatchesExecuted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "exchange_matches_executed_total",
		Help: "Total back/lay crossings executed by the matching algorithm",
	})

	ActiveMarkets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "exchange_active_markets",
		Help: "Number of markets not yet in a terminal state",
	})

	CustodyTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "exchange_custody_total",
		Help: "Total minor units currently held in custody across balances and live stakes",
	})
)

// MetricsHandler exposes the Prometheus handler as a fiber handler, the
// way AMOORCHING-ATMX exposes metrics.Handler() over net/http.
func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
