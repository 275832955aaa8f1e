package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals
var (
	pricingAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agro_desk_pricing_attempts_total",
		Help: "Number of automatic pricing attempts.",
	})

	pricesComputed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agro_desk_prices_computed_total",
		Help: "Number of successfully computed automatic prices.",
	})

	managerUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agro_desk_manager_price_updates_total",
		Help: "Number of manager price updates picked up from the ledger.",
	})

	cycleErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agro_desk_reconcile_cycle_errors_total",
		Help: "Number of reconcile cycles that failed before completion.",
	})

	gateSuspended = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agro_desk_reconcile_suspended",
		Help: "Whether reconcile cycles are currently suspended.",
	})
)
