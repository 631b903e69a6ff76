package monitor

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smdekate-cs/paper-trading-backend/internal/apperr"
	"github.com/smdekate-cs/paper-trading-backend/internal/metrics"
	"github.com/smdekate-cs/paper-trading-backend/internal/model"
)

// Lifecycle is the slice of the trade service the scanner drives.
type Lifecycle interface {
	ActiveTrades(ctx context.Context) ([]model.Trade, error)
	Reprice(t *model.Trade, price decimal.Decimal)
	PersistReprice(ctx context.Context, t *model.Trade) error
	EvaluateAutoExit(ctx context.Context, t *model.Trade, price decimal.Decimal) (bool, error)
}

type PriceFunc func(ctx context.Context, symbol string) (decimal.Decimal, error)

// Scanner sweeps every ACTIVE trade on a fixed interval, marks it to
// market and fires stop-loss/target exits. A failed sweep backs off
// before the next attempt instead of tightening the loop.
type Scanner struct {
	lifecycle Lifecycle
	price     PriceFunc
	interval  time.Duration
	backoff   time.Duration
}

func NewScanner(lifecycle Lifecycle, price PriceFunc, interval, backoff time.Duration) *Scanner {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if backoff <= 0 {
		backoff = 10 * time.Second
	}
	return &Scanner{lifecycle: lifecycle, price: price, interval: interval, backoff: backoff}
}

// Run blocks until ctx is cancelled. Meant to be launched as a goroutine
// next to the HTTP server.
func (s *Scanner) Run(ctx context.Context) {
	log.Printf("[monitor] scanner started, interval=%s", s.interval)
	timer := time.NewTimer(s.interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("[monitor] scanner stopped: %v", ctx.Err())
			return
		case <-timer.C:
		}
		next := s.interval
		if err := s.tick(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				continue
			}
			metrics.ScanErrors.Inc()
			log.Printf("[monitor] sweep failed, backing off %s: %v", s.backoff, err)
			next = s.backoff
		}
		timer.Reset(next)
	}
}

// tick performs one sweep. Per-trade price failures skip the trade and do
// not fail the sweep; only a failed trade listing does.
func (s *Scanner) tick(ctx context.Context) error {
	metrics.ScanTicks.Inc()
	trades, err := s.lifecycle.ActiveTrades(ctx)
	if err != nil {
		return err
	}
	for i := range trades {
		t := &trades[i]
		price, err := s.price(ctx, t.Symbol)
		if err != nil {
			metrics.PriceLookupFailures.Inc()
			log.Printf("[monitor] no price for %s, skipping trade %s: %v", t.Symbol, t.ID, err)
			continue
		}

		exited, err := s.lifecycle.EvaluateAutoExit(ctx, t, price)
		if err != nil {
			if errors.Is(err, apperr.ErrTradeAlreadyClosed) {
				continue
			}
			// Settlement failures are already logged and counted by the
			// lifecycle; the sweep moves on to the remaining trades.
			log.Printf("[monitor] auto-exit failed for trade %s: %v", t.ID, err)
			continue
		}
		if exited {
			continue
		}

		s.lifecycle.Reprice(t, price)
		if err := s.lifecycle.PersistReprice(ctx, t); err != nil {
			log.Printf("[monitor] reprice persist failed for trade %s: %v", t.ID, err)
		}
	}
	return nil
}
