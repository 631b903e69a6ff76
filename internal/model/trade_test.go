package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/smdekate-cs/paper-trading-backend/internal/types"
)

func TestPnLAt(t *testing.T) {
	buy := Trade{
		TradeType:  types.TradeTypeBuy,
		Quantity:   decimal.NewFromInt(10),
		EntryPrice: decimal.NewFromInt(100),
	}
	assert.True(t, buy.PnLAt(decimal.NewFromInt(110)).Equal(decimal.NewFromInt(100)))
	assert.True(t, buy.PnLAt(decimal.NewFromInt(95)).Equal(decimal.NewFromInt(-50)))
	assert.True(t, buy.PnLAt(decimal.NewFromInt(100)).IsZero())

	sell := Trade{
		TradeType:  types.TradeTypeSell,
		Quantity:   decimal.NewFromInt(4),
		EntryPrice: decimal.NewFromInt(200),
	}
	assert.True(t, sell.PnLAt(decimal.NewFromInt(190)).Equal(decimal.NewFromInt(40)))
	assert.True(t, sell.PnLAt(decimal.NewFromInt(210)).Equal(decimal.NewFromInt(-40)))
}

func TestMarginUtilizationPct(t *testing.T) {
	p := Portfolio{
		AvailableMargin: decimal.NewFromInt(75000),
		UtilizedMargin:  decimal.NewFromInt(25000),
	}
	assert.True(t, p.MarginUtilizationPct().Equal(decimal.NewFromInt(25)))

	empty := Portfolio{}
	assert.True(t, empty.MarginUtilizationPct().IsZero())
}
