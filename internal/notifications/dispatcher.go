package notifications

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/smdekate-cs/paper-trading-backend/internal/metrics"
	"github.com/smdekate-cs/paper-trading-backend/internal/model"
	"github.com/smdekate-cs/paper-trading-backend/internal/types"
)

// ContactResolver looks up where to reach a user. The auth service
// implements it.
type ContactResolver interface {
	Contact(ctx context.Context, userID string) (Contact, error)
}

type queued struct {
	kind  types.NotificationKind
	trade model.Trade
}

// Dispatcher decouples notification delivery from trade settlement: events
// are enqueued without blocking and a single worker drains the queue. When
// the queue is full the event is dropped and counted, never waited on.
type Dispatcher struct {
	sink     Sink
	contacts ContactResolver
	ch       chan queued
}

func NewDispatcher(ctx context.Context, sink Sink, contacts ContactResolver, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	d := &Dispatcher{sink: sink, contacts: contacts, ch: make(chan queued, buffer)}
	go d.run(ctx)
	return d
}

// TradeEvent enqueues a notification for the trade's owner. Fire-and-forget.
func (d *Dispatcher) TradeEvent(kind types.NotificationKind, t model.Trade) {
	select {
	case d.ch <- queued{kind: kind, trade: t}:
	default:
		metrics.NotificationsDropped.Inc()
		log.Printf("[notify] queue full, dropping %s event for trade %s", kind, t.ID)
	}
}

func (d *Dispatcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case q := <-d.ch:
			d.deliver(ctx, q)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, q queued) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var contact Contact
	if d.contacts != nil {
		c, err := d.contacts.Contact(ctx, q.trade.UserID)
		if err != nil {
			log.Printf("[notify] contact lookup failed for user %s: %v", q.trade.UserID, err)
			return
		}
		contact = c
	}
	evt := Event{
		ID:      uuid.NewString(),
		Kind:    q.kind,
		Contact: contact,
		Trade:   q.trade,
		At:      time.Now().UTC(),
	}
	if err := d.sink.Notify(ctx, evt); err != nil {
		log.Printf("[notify] delivery failed for trade %s: %v", q.trade.ID, err)
	}
}
