package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smdekate-cs/paper-trading-backend/internal/apperr"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestGetPriceKnownSymbols(t *testing.T) {
	src := NewSimulatedSource()
	// Minute 3 puts every symbol 3 steps above its base.
	src.now = fixedClock(time.Date(2024, 1, 15, 10, 3, 0, 0, time.UTC))

	cases := map[string]decimal.Decimal{
		"NIFTY50":  decimal.NewFromInt(19530),
		"SENSEX":   decimal.NewFromInt(65150),
		"RELIANCE": decimal.NewFromInt(2465),
		"TCS":      decimal.NewFromInt(3459),
	}
	for symbol, want := range cases {
		q, err := src.GetPrice(context.Background(), symbol)
		require.NoError(t, err)
		assert.True(t, q.Price.Equal(want), "%s = %s, want %s", symbol, q.Price, want)
		assert.Equal(t, symbol, q.Symbol)
	}
}

func TestGetPriceUnknownSymbolUsesDefault(t *testing.T) {
	src := NewSimulatedSource()
	src.now = fixedClock(time.Date(2024, 1, 15, 10, 7, 0, 0, time.UTC))

	q, err := src.GetPrice(context.Background(), "WIPRO")
	require.NoError(t, err)
	assert.True(t, q.Price.Equal(decimal.NewFromInt(1007)), "price = %s", q.Price)
}

func TestGetPriceNormalizesSymbol(t *testing.T) {
	src := NewSimulatedSource()
	src.now = fixedClock(time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC))

	q, err := src.GetPrice(context.Background(), "  reliance ")
	require.NoError(t, err)
	assert.Equal(t, "RELIANCE", q.Symbol)
	assert.True(t, q.Price.Equal(decimal.NewFromInt(2450)))
}

func TestGetPriceEmptySymbol(t *testing.T) {
	src := NewSimulatedSource()
	_, err := src.GetPrice(context.Background(), "   ")
	assert.ErrorIs(t, err, apperr.ErrPriceUnavailable)
}

func TestGetPriceCaches(t *testing.T) {
	src := NewSimulatedSource()
	base := time.Date(2024, 1, 15, 10, 0, 58, 0, time.UTC)
	src.now = fixedClock(base)

	first, err := src.GetPrice(context.Background(), "TCS")
	require.NoError(t, err)

	// Two seconds later the minute rolled over but the cache still serves
	// the old quote.
	src.now = fixedClock(base.Add(2 * time.Second))
	cached, err := src.GetPrice(context.Background(), "TCS")
	require.NoError(t, err)
	assert.True(t, cached.Price.Equal(first.Price))

	// Past the TTL a fresh quote reflects the new minute.
	src.now = fixedClock(base.Add(6 * time.Second))
	fresh, err := src.GetPrice(context.Background(), "TCS")
	require.NoError(t, err)
	assert.True(t, fresh.Price.Equal(decimal.NewFromInt(3453)), "price = %s", fresh.Price)
}

func TestGetPriceCancelledContext(t *testing.T) {
	src := NewSimulatedSource()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := src.GetPrice(ctx, "TCS")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIndexData(t *testing.T) {
	src := NewSimulatedSource()
	src.now = fixedClock(time.Date(2024, 1, 15, 10, 2, 0, 0, time.UTC))

	idx, err := src.IndexData(context.Background())
	require.NoError(t, err)
	require.Len(t, idx, 2)
	assert.True(t, idx["nifty50"].Price.Equal(decimal.NewFromInt(19520)))
	assert.True(t, idx["sensex"].Price.Equal(decimal.NewFromInt(65100)))
}
