package notifications

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smdekate-cs/paper-trading-backend/internal/model"
	"github.com/smdekate-cs/paper-trading-backend/internal/types"
)

type captureSink struct {
	mu     sync.Mutex
	events []Event
}

func (c *captureSink) Notify(_ context.Context, evt Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
	return nil
}

func (c *captureSink) snapshot() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

type staticContacts struct{}

func (staticContacts) Contact(context.Context, string) (Contact, error) {
	return Contact{Email: "trader@example.com", Phone: "+911234567890"}, nil
}

func TestDispatcherDelivers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &captureSink{}
	d := NewDispatcher(ctx, sink, staticContacts{}, 8)

	tr := model.Trade{
		ID:         "t1",
		UserID:     "u1",
		Symbol:     "TCS",
		TradeType:  types.TradeTypeBuy,
		Quantity:   decimal.NewFromInt(1),
		EntryPrice: decimal.NewFromInt(3450),
	}
	d.TradeEvent(types.NotificationCreated, tr)

	require.Eventually(t, func() bool {
		return len(sink.snapshot()) == 1
	}, time.Second, 10*time.Millisecond)

	evt := sink.snapshot()[0]
	assert.Equal(t, types.NotificationCreated, evt.Kind)
	assert.Equal(t, "t1", evt.Trade.ID)
	assert.Equal(t, "trader@example.com", evt.Contact.Email)
	assert.NotEmpty(t, evt.ID)
}

func TestTradeEventNeverBlocks(t *testing.T) {
	// A cancelled context stops the worker so the queue fills up.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &captureSink{}
	d := NewDispatcher(ctx, sink, staticContacts{}, 2)
	time.Sleep(10 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			d.TradeEvent(types.NotificationExited, model.Trade{ID: "t1", UserID: "u1"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("TradeEvent blocked on a full queue")
	}
}
