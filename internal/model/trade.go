package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/smdekate-cs/paper-trading-backend/internal/types"
)

type Trade struct {
	ID           string            `json:"trade_id"`
	UserID       string            `json:"user_id"`
	Symbol       string            `json:"symbol"`
	TradeType    types.TradeType   `json:"trade_type"`
	Quantity     decimal.Decimal   `json:"quantity"`
	EntryPrice   decimal.Decimal   `json:"entry_price"`
	MarginUsed   decimal.Decimal   `json:"margin_used"`
	StopLoss     *decimal.Decimal  `json:"stop_loss"`
	TargetPrice  *decimal.Decimal  `json:"target_price"`
	CurrentPrice decimal.Decimal   `json:"current_price"`
	PnL          decimal.Decimal   `json:"pnl"`
	Status       types.TradeStatus `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	ClosedAt     *time.Time        `json:"closed_at"`
	ExitPrice    *decimal.Decimal  `json:"exit_price"`
}

// PnLAt computes profit/loss against a mark price: BUY profits when the
// price rises above entry, SELL profits when it falls below.
func (t Trade) PnLAt(price decimal.Decimal) decimal.Decimal {
	if t.TradeType == types.TradeTypeSell {
		return t.EntryPrice.Sub(price).Mul(t.Quantity)
	}
	return price.Sub(t.EntryPrice).Mul(t.Quantity)
}
