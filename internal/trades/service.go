package trades

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smdekate-cs/paper-trading-backend/internal/apperr"
	"github.com/smdekate-cs/paper-trading-backend/internal/marketdata"
	"github.com/smdekate-cs/paper-trading-backend/internal/metrics"
	"github.com/smdekate-cs/paper-trading-backend/internal/model"
	"github.com/smdekate-cs/paper-trading-backend/internal/types"
)

// TradeStore is the persistence contract for trades. Close must only
// succeed while the stored status is still ACTIVE so that a user exit and
// a concurrent scanner exit cannot both settle the same trade.
type TradeStore interface {
	Create(ctx context.Context, t model.Trade) (string, error)
	GetByID(ctx context.Context, id string) (model.Trade, error)
	ListByUser(ctx context.Context, userID string, status *types.TradeStatus) ([]model.Trade, error)
	ListActive(ctx context.Context) ([]model.Trade, error)
	UpdatePrice(ctx context.Context, id string, price, pnl decimal.Decimal, at time.Time) error
	Close(ctx context.Context, id string, exitPrice, pnl decimal.Decimal, status types.TradeStatus, at time.Time) error
	SumActiveMargin(ctx context.Context, userID string) (decimal.Decimal, error)
}

// PortfolioLedger is the slice of the portfolio store the lifecycle needs.
// ReserveMargin must check and debit available margin in one atomic step,
// failing with ErrInsufficientMargin when the balance no longer covers the
// amount.
type PortfolioLedger interface {
	FindByUser(ctx context.Context, userID string) (model.Portfolio, error)
	ReserveMargin(ctx context.Context, userID string, amount decimal.Decimal) error
	ApplyMarginDelta(ctx context.Context, userID string, delta, pnlDelta decimal.Decimal) (model.Portfolio, error)
}

// Notifier receives trade events fire-and-forget; it must never block.
type Notifier interface {
	TradeEvent(kind types.NotificationKind, t model.Trade)
}

type Service struct {
	trades   TradeStore
	ledger   PortfolioLedger
	prices   marketdata.PriceSource
	notifier Notifier
}

const upstreamTimeout = 3 * time.Second

func NewService(trades TradeStore, ledger PortfolioLedger, prices marketdata.PriceSource, notifier Notifier) *Service {
	return &Service{trades: trades, ledger: ledger, prices: prices, notifier: notifier}
}

type OpenRequest struct {
	UserID      string
	Symbol      string
	TradeType   types.TradeType
	Quantity    decimal.Decimal
	StopLoss    *decimal.Decimal
	TargetPrice *decimal.Decimal
}

// Open creates an ACTIVE trade at the current market price. The margin for
// entry_price * quantity is reserved through the ledger's atomic
// check-and-debit before the trade row exists, so concurrent opens for the
// same user cannot overdraw; a failed insert releases the reservation.
func (s *Service) Open(ctx context.Context, req OpenRequest) (model.Trade, error) {
	if req.Symbol == "" {
		return model.Trade{}, fmt.Errorf("%w: symbol is required", apperr.ErrValidation)
	}
	if req.TradeType != types.TradeTypeBuy && req.TradeType != types.TradeTypeSell {
		return model.Trade{}, fmt.Errorf("%w: trade_type must be BUY or SELL", apperr.ErrValidation)
	}
	if !req.Quantity.IsPositive() {
		return model.Trade{}, fmt.Errorf("%w: quantity must be positive", apperr.ErrValidation)
	}
	if req.StopLoss != nil && !req.StopLoss.IsPositive() {
		return model.Trade{}, fmt.Errorf("%w: stop_loss must be positive", apperr.ErrValidation)
	}
	if req.TargetPrice != nil && !req.TargetPrice.IsPositive() {
		return model.Trade{}, fmt.Errorf("%w: target_price must be positive", apperr.ErrValidation)
	}

	if _, err := s.ledger.FindByUser(ctx, req.UserID); err != nil {
		return model.Trade{}, err
	}
	price, err := s.fetchPrice(ctx, req.Symbol)
	if err != nil {
		return model.Trade{}, err
	}
	marginUsed := price.Mul(req.Quantity)
	if err := s.ledger.ReserveMargin(ctx, req.UserID, marginUsed); err != nil {
		return model.Trade{}, err
	}

	now := time.Now().UTC()
	t := model.Trade{
		UserID:       req.UserID,
		Symbol:       req.Symbol,
		TradeType:    req.TradeType,
		Quantity:     req.Quantity,
		EntryPrice:   price,
		MarginUsed:   marginUsed,
		StopLoss:     req.StopLoss,
		TargetPrice:  req.TargetPrice,
		CurrentPrice: price,
		PnL:          decimal.Zero,
		Status:       types.TradeStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	id, err := s.trades.Create(ctx, t)
	if err != nil {
		if _, rerr := s.ledger.ApplyMarginDelta(ctx, req.UserID, marginUsed.Neg(), decimal.Zero); rerr != nil {
			log.Printf("[trades] ALERT: trade insert failed and margin release failed for user %s: %v", req.UserID, rerr)
		}
		return model.Trade{}, err
	}
	t.ID = id

	metrics.TradesOpened.Inc()
	s.notify(types.NotificationCreated, &t)
	return t, nil
}

// Reprice recomputes the unrealized pnl against a fresh price. No-op on
// non-ACTIVE trades. The caller persists via PersistReprice.
func (s *Service) Reprice(t *model.Trade, price decimal.Decimal) {
	if t.Status != types.TradeStatusActive {
		return
	}
	t.CurrentPrice = price
	t.PnL = t.PnLAt(price)
	t.UpdatedAt = time.Now().UTC()
}

func (s *Service) PersistReprice(ctx context.Context, t *model.Trade) error {
	return s.trades.UpdatePrice(ctx, t.ID, t.CurrentPrice, t.PnL, t.UpdatedAt)
}

func hitStopLoss(t *model.Trade, price decimal.Decimal) bool {
	if t.StopLoss == nil {
		return false
	}
	if t.TradeType == types.TradeTypeBuy {
		return price.LessThanOrEqual(*t.StopLoss)
	}
	return price.GreaterThanOrEqual(*t.StopLoss)
}

func hitTarget(t *model.Trade, price decimal.Decimal) bool {
	if t.TargetPrice == nil {
		return false
	}
	if t.TradeType == types.TradeTypeBuy {
		return price.GreaterThanOrEqual(*t.TargetPrice)
	}
	return price.LessThanOrEqual(*t.TargetPrice)
}

// EvaluateAutoExit force-closes the trade when the price crossed its
// stop-loss or target. Stop-loss wins when both thresholds are satisfied
// by the same tick. Returns true when an exit happened.
func (s *Service) EvaluateAutoExit(ctx context.Context, t *model.Trade, price decimal.Decimal) (bool, error) {
	if t.Status != types.TradeStatusActive {
		return false, nil
	}
	if hitStopLoss(t, price) {
		if err := s.Close(ctx, t, price, types.TradeStatusStopLossHit); err != nil {
			return false, err
		}
		metrics.AutoExits.WithLabelValues("stop_loss").Inc()
		return true, nil
	}
	if hitTarget(t, price) {
		if err := s.Close(ctx, t, price, types.TradeStatusTargetHit); err != nil {
			return false, err
		}
		metrics.AutoExits.WithLabelValues("target").Inc()
		return true, nil
	}
	return false, nil
}

// Close transitions an ACTIVE trade to a terminal status at exitPrice and
// credits the margin plus realized pnl back to the portfolio. The status
// update is a compare-and-swap: whoever loses the race gets
// ErrTradeAlreadyClosed and must not settle.
func (s *Service) Close(ctx context.Context, t *model.Trade, exitPrice decimal.Decimal, status types.TradeStatus) error {
	if !status.Terminal() {
		return fmt.Errorf("%w: %s is not a terminal status", apperr.ErrValidation, status)
	}
	if t.Status != types.TradeStatusActive {
		return apperr.ErrTradeAlreadyClosed
	}

	pnl := t.PnLAt(exitPrice)
	now := time.Now().UTC()
	if err := s.trades.Close(ctx, t.ID, exitPrice, pnl, status, now); err != nil {
		return err
	}
	t.Status = status
	t.ExitPrice = &exitPrice
	t.CurrentPrice = exitPrice
	t.PnL = pnl
	t.ClosedAt = &now
	t.UpdatedAt = now

	if err := s.settle(ctx, t.UserID, t.MarginUsed.Neg(), pnl); err != nil {
		metrics.UncreditedSettlements.Inc()
		log.Printf("[trades] ALERT: trade %s closed but margin credit failed for user %s: %v", t.ID, t.UserID, err)
		return fmt.Errorf("trade %s closed without margin credit: %w", t.ID, apperr.ErrInconsistency)
	}

	metrics.TradesClosed.WithLabelValues(string(status)).Inc()
	s.notify(exitKind(status), t)
	return nil
}

// settle applies a portfolio delta with a single retry: the trade row is
// already terminal at this point, so the credit must not be dropped on a
// transient store error.
func (s *Service) settle(ctx context.Context, userID string, delta, pnl decimal.Decimal) error {
	_, err := s.ledger.ApplyMarginDelta(ctx, userID, delta, pnl)
	if err == nil {
		return nil
	}
	log.Printf("[trades] portfolio update failed for user %s, retrying once: %v", userID, err)
	_, err = s.ledger.ApplyMarginDelta(ctx, userID, delta, pnl)
	return err
}

func exitKind(status types.TradeStatus) types.NotificationKind {
	switch status {
	case types.TradeStatusStopLossHit:
		return types.NotificationStopLoss
	case types.TradeStatusTargetHit:
		return types.NotificationTarget
	default:
		return types.NotificationExited
	}
}

func (s *Service) notify(kind types.NotificationKind, t *model.Trade) {
	if s.notifier != nil {
		s.notifier.TradeEvent(kind, *t)
	}
}

// Exit closes one of the user's ACTIVE trades at the current market price.
func (s *Service) Exit(ctx context.Context, userID, tradeID string) (model.Trade, error) {
	t, err := s.trades.GetByID(ctx, tradeID)
	if err != nil {
		return model.Trade{}, err
	}
	if t.UserID != userID {
		return model.Trade{}, apperr.ErrTradeNotFound
	}
	if t.Status != types.TradeStatusActive {
		return model.Trade{}, apperr.ErrTradeAlreadyClosed
	}
	price, err := s.fetchPrice(ctx, t.Symbol)
	if err != nil {
		return model.Trade{}, err
	}
	if err := s.Close(ctx, &t, price, types.TradeStatusClosed); err != nil {
		return model.Trade{}, err
	}
	return t, nil
}

type ExitAllResult struct {
	Closed      []model.Trade   `json:"closed_trades"`
	TotalPnL    decimal.Decimal `json:"total_pnl"`
	MarginFreed decimal.Decimal `json:"margin_freed"`
	Skipped     int             `json:"skipped"`
}

// ExitAll closes every ACTIVE trade for the user at market price. The
// portfolio is read once up front and the net margin/pnl deltas are
// applied in a single update after the batch; per-trade CAS keeps a
// concurrent auto-exit from double-crediting. Trades whose price cannot
// be fetched are skipped and reported.
func (s *Service) ExitAll(ctx context.Context, userID string) (ExitAllResult, error) {
	if _, err := s.ledger.FindByUser(ctx, userID); err != nil {
		return ExitAllResult{}, err
	}
	active := types.TradeStatusActive
	actives, err := s.trades.ListByUser(ctx, userID, &active)
	if err != nil {
		return ExitAllResult{}, err
	}
	if len(actives) == 0 {
		return ExitAllResult{}, apperr.ErrNoActiveTrades
	}

	res := ExitAllResult{TotalPnL: decimal.Zero, MarginFreed: decimal.Zero}
	for i := range actives {
		t := &actives[i]
		price, err := s.fetchPrice(ctx, t.Symbol)
		if err != nil {
			log.Printf("[trades] exit_all: no price for %s, skipping trade %s: %v", t.Symbol, t.ID, err)
			res.Skipped++
			continue
		}
		pnl := t.PnLAt(price)
		now := time.Now().UTC()
		if err := s.trades.Close(ctx, t.ID, price, pnl, types.TradeStatusClosed, now); err != nil {
			if errors.Is(err, apperr.ErrTradeAlreadyClosed) {
				res.Skipped++
				continue
			}
			return ExitAllResult{}, err
		}
		t.Status = types.TradeStatusClosed
		t.ExitPrice = &price
		t.CurrentPrice = price
		t.PnL = pnl
		t.ClosedAt = &now
		t.UpdatedAt = now

		res.Closed = append(res.Closed, *t)
		res.TotalPnL = res.TotalPnL.Add(pnl)
		res.MarginFreed = res.MarginFreed.Add(t.MarginUsed)
		metrics.TradesClosed.WithLabelValues(string(types.TradeStatusClosed)).Inc()
		s.notify(types.NotificationExited, t)
	}

	if len(res.Closed) > 0 {
		if err := s.settle(ctx, userID, res.MarginFreed.Neg(), res.TotalPnL); err != nil {
			metrics.UncreditedSettlements.Inc()
			log.Printf("[trades] ALERT: exit_all closed %d trades but margin credit failed for user %s: %v", len(res.Closed), userID, err)
			return res, fmt.Errorf("exit_all settlement for user %s failed: %w", userID, apperr.ErrInconsistency)
		}
	}
	return res, nil
}

// ActiveTrades lists ACTIVE trades across all users, for the scanner.
func (s *Service) ActiveTrades(ctx context.Context) ([]model.Trade, error) {
	return s.trades.ListActive(ctx)
}

func (s *Service) ListActive(ctx context.Context, userID string) ([]model.Trade, error) {
	active := types.TradeStatusActive
	return s.trades.ListByUser(ctx, userID, &active)
}

func (s *Service) ListHistory(ctx context.Context, userID string) ([]model.Trade, error) {
	return s.trades.ListByUser(ctx, userID, nil)
}

type Performance struct {
	TotalTrades      int             `json:"total_trades"`
	OpenTrades       int             `json:"open_trades"`
	ClosedTrades     int             `json:"closed_trades"`
	Wins             int             `json:"wins"`
	Losses           int             `json:"losses"`
	WinRatePct       decimal.Decimal `json:"win_rate_percentage"`
	RealizedPnL      decimal.Decimal `json:"realized_pnl"`
	UnrealizedPnL    decimal.Decimal `json:"unrealized_pnl"`
	TotalPnL         decimal.Decimal `json:"total_pnl"`
	MarginConsistent bool            `json:"margin_consistent"`
	MarginDrift      decimal.Decimal `json:"margin_drift"`
}

// PerformanceSummary aggregates a user's trading results and audits that
// the sum of ACTIVE trades' margin matches the portfolio's utilized
// margin (a terminal trade without its credit shows up as drift).
func (s *Service) PerformanceSummary(ctx context.Context, userID string) (Performance, error) {
	p, err := s.ledger.FindByUser(ctx, userID)
	if err != nil {
		return Performance{}, err
	}
	all, err := s.trades.ListByUser(ctx, userID, nil)
	if err != nil {
		return Performance{}, err
	}

	perf := Performance{
		RealizedPnL:   decimal.Zero,
		UnrealizedPnL: decimal.Zero,
		WinRatePct:    decimal.Zero,
	}
	for _, t := range all {
		perf.TotalTrades++
		if t.Status == types.TradeStatusActive {
			perf.OpenTrades++
			perf.UnrealizedPnL = perf.UnrealizedPnL.Add(t.PnL)
			continue
		}
		perf.ClosedTrades++
		perf.RealizedPnL = perf.RealizedPnL.Add(t.PnL)
		if t.PnL.IsPositive() {
			perf.Wins++
		} else if t.PnL.IsNegative() {
			perf.Losses++
		}
	}
	if perf.ClosedTrades > 0 {
		perf.WinRatePct = decimal.NewFromInt(int64(perf.Wins)).
			Div(decimal.NewFromInt(int64(perf.ClosedTrades))).
			Mul(decimal.NewFromInt(100))
	}
	perf.TotalPnL = perf.RealizedPnL.Add(perf.UnrealizedPnL)

	activeMargin, err := s.trades.SumActiveMargin(ctx, userID)
	if err != nil {
		return Performance{}, err
	}
	perf.MarginDrift = p.UtilizedMargin.Sub(activeMargin)
	perf.MarginConsistent = perf.MarginDrift.IsZero()
	return perf, nil
}

func (s *Service) fetchPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, upstreamTimeout)
	defer cancel()
	q, err := s.prices.GetPrice(ctx, symbol)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return decimal.Zero, fmt.Errorf("price source timed out for %s: %w", symbol, apperr.ErrUpstreamUnavailable)
		}
		if errors.Is(err, apperr.ErrPriceUnavailable) {
			return decimal.Zero, err
		}
		return decimal.Zero, fmt.Errorf("price source failed for %s: %w", symbol, apperr.ErrUpstreamUnavailable)
	}
	if !q.Price.IsPositive() {
		return decimal.Zero, apperr.ErrPriceUnavailable
	}
	return q.Price, nil
}
