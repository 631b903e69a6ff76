package marketdata

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smdekate-cs/paper-trading-backend/internal/apperr"
)

// Quote is a point-in-time price snapshot for a symbol.
type Quote struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	ChangePct decimal.Decimal `json:"change"`
	Volume    int64           `json:"volume"`
	Timestamp time.Time       `json:"timestamp"`
}

// PriceSource resolves a symbol to its current quote. Implementations own
// their caching and latency behavior.
type PriceSource interface {
	GetPrice(ctx context.Context, symbol string) (Quote, error)
}

type symbolProfile struct {
	Base decimal.Decimal
	Step decimal.Decimal
}

var symbolProfiles = map[string]symbolProfile{
	"NIFTY50":  {Base: decimal.NewFromInt(19500), Step: decimal.NewFromInt(10)},
	"SENSEX":   {Base: decimal.NewFromInt(65000), Step: decimal.NewFromInt(50)},
	"RELIANCE": {Base: decimal.NewFromInt(2450), Step: decimal.NewFromInt(5)},
	"TCS":      {Base: decimal.NewFromInt(3450), Step: decimal.NewFromInt(3)},
}

var defaultProfile = symbolProfile{Base: decimal.NewFromInt(1000), Step: decimal.NewFromInt(1)}

// SimulatedSource serves deterministic minute-seeded quotes with a short
// in-process cache, standing in for a real market data API.
type SimulatedSource struct {
	cacheTTL time.Duration
	now      func() time.Time

	mu    sync.RWMutex
	cache map[string]cachedQuote
}

type cachedQuote struct {
	quote   Quote
	expires time.Time
}

func NewSimulatedSource() *SimulatedSource {
	return &SimulatedSource{
		cacheTTL: 5 * time.Second,
		now:      func() time.Time { return time.Now().UTC() },
		cache:    make(map[string]cachedQuote),
	}
}

func (s *SimulatedSource) GetPrice(ctx context.Context, symbol string) (Quote, error) {
	if err := ctx.Err(); err != nil {
		return Quote{}, err
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return Quote{}, apperr.ErrPriceUnavailable
	}

	now := s.now()
	s.mu.RLock()
	c, ok := s.cache[symbol]
	s.mu.RUnlock()
	if ok && now.Before(c.expires) {
		return c.quote, nil
	}

	profile, ok := symbolProfiles[symbol]
	if !ok {
		profile = defaultProfile
	}
	wobble := decimal.NewFromInt(int64(now.Minute() % 10)).Mul(profile.Step)
	q := Quote{
		Symbol:    symbol,
		Price:     profile.Base.Add(wobble),
		ChangePct: decimal.NewFromFloat(2.5),
		Volume:    1000000,
		Timestamp: now,
	}

	s.mu.Lock()
	s.cache[symbol] = cachedQuote{quote: q, expires: now.Add(s.cacheTTL)}
	s.mu.Unlock()
	return q, nil
}

// IndexData returns the benchmark index quotes.
func (s *SimulatedSource) IndexData(ctx context.Context) (map[string]Quote, error) {
	out := make(map[string]Quote, 2)
	nifty, err := s.GetPrice(ctx, "NIFTY50")
	if err != nil {
		return nil, err
	}
	out["nifty50"] = nifty
	sensex, err := s.GetPrice(ctx, "SENSEX")
	if err != nil {
		return nil, err
	}
	out["sensex"] = sensex
	return out, nil
}
