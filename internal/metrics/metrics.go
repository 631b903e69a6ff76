// Package metrics exposes the service's Prometheus collectors.
//
// Primary series:
//   - papertrade_trades_opened_total            trades opened
//   - papertrade_trades_closed_total{status}    trades closed, by exit status
//   - papertrade_auto_exits_total{reason}       scanner-driven exits (stop_loss|target)
//   - papertrade_scan_ticks_total               scanner passes over the active set
//   - papertrade_scan_errors_total              per-tick scan failures
//   - papertrade_price_lookup_failures_total    skipped trades due to price unavailability
//   - papertrade_uncredited_settlements_total   closed trades whose margin credit failed
//   - papertrade_notifications_dropped_total    notification events dropped by the dispatcher
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TradesOpened = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "papertrade_trades_opened_total",
		Help: "Trades opened",
	})

	TradesClosed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "papertrade_trades_closed_total",
		Help: "Trades closed, by exit status",
	}, []string{"status"})

	AutoExits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "papertrade_auto_exits_total",
		Help: "Scanner-driven exits, by reason",
	}, []string{"reason"})

	ScanTicks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "papertrade_scan_ticks_total",
		Help: "Auto-exit scanner passes over the active trade set",
	})

	ScanErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "papertrade_scan_errors_total",
		Help: "Scanner ticks that failed to list active trades",
	})

	PriceLookupFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "papertrade_price_lookup_failures_total",
		Help: "Trades skipped in a scan because the price source had no quote",
	})

	UncreditedSettlements = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "papertrade_uncredited_settlements_total",
		Help: "Closed trades whose portfolio margin credit could not be applied",
	})

	NotificationsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "papertrade_notifications_dropped_total",
		Help: "Notification events dropped because the dispatch queue was full",
	})
)

func init() {
	prometheus.MustRegister(
		TradesOpened,
		TradesClosed,
		AutoExits,
		ScanTicks,
		ScanErrors,
		PriceLookupFailures,
		UncreditedSettlements,
		NotificationsDropped,
	)
}

// Handler serves the Prometheus text exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
