package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Portfolio struct {
	UserID          string          `json:"user_id"`
	AvailableMargin decimal.Decimal `json:"available_margin"`
	UtilizedMargin  decimal.Decimal `json:"utilized_margin"`
	TotalPnL        decimal.Decimal `json:"total_pnl"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// MarginUtilizationPct is utilized / (available + utilized) * 100, and 0
// when the denominator is 0.
func (p Portfolio) MarginUtilizationPct() decimal.Decimal {
	total := p.AvailableMargin.Add(p.UtilizedMargin)
	if total.IsZero() {
		return decimal.Zero
	}
	return p.UtilizedMargin.Div(total).Mul(decimal.NewFromInt(100))
}
