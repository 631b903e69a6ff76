package notifications

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/smdekate-cs/paper-trading-backend/internal/model"
	"github.com/smdekate-cs/paper-trading-backend/internal/types"
)

func sampleTrade(pnl string) model.Trade {
	p := decimal.RequireFromString(pnl)
	exit := decimal.RequireFromString("110")
	return model.Trade{
		Symbol:     "RELIANCE",
		TradeType:  types.TradeTypeBuy,
		Quantity:   decimal.NewFromInt(10),
		EntryPrice: decimal.NewFromInt(100),
		ExitPrice:  &exit,
		PnL:        p,
	}
}

func TestRenderCreated(t *testing.T) {
	subject, msg := Render(types.NotificationCreated, sampleTrade("0"))
	assert.Equal(t, "Trade Created", subject)
	assert.Equal(t, "Trade created: RELIANCE BUY 10 shares at 100", msg)
}

func TestRenderStopLoss(t *testing.T) {
	subject, msg := Render(types.NotificationStopLoss, sampleTrade("-50"))
	assert.Equal(t, "Stop-Loss Triggered", subject)
	assert.Equal(t, "Stop-loss triggered: RELIANCE exited at 110 with PnL: -50", msg)
}

func TestRenderTarget(t *testing.T) {
	subject, msg := Render(types.NotificationTarget, sampleTrade("100"))
	assert.Equal(t, "Target Achieved", subject)
	assert.Equal(t, "Target achieved: RELIANCE exited at 110 with PnL: 100", msg)
}

func TestRenderExited(t *testing.T) {
	_, profit := Render(types.NotificationExited, sampleTrade("100"))
	assert.Equal(t, "Trade exited: RELIANCE at 110 with profit of 100", profit)

	_, loss := Render(types.NotificationExited, sampleTrade("-25"))
	assert.Equal(t, "Trade exited: RELIANCE at 110 with loss of 25", loss)
}

func TestRenderWithoutExitPrice(t *testing.T) {
	tr := sampleTrade("0")
	tr.ExitPrice = nil
	_, msg := Render(types.NotificationStopLoss, tr)
	assert.Equal(t, "Stop-loss triggered: RELIANCE exited at - with PnL: 0", msg)
}
