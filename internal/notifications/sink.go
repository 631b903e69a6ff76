package notifications

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/smdekate-cs/paper-trading-backend/internal/model"
	"github.com/smdekate-cs/paper-trading-backend/internal/types"
)

type Contact struct {
	Email string
	Phone string
}

type Event struct {
	ID      string
	Kind    types.NotificationKind
	Contact Contact
	Trade   model.Trade
	At      time.Time
}

// Sink delivers a notification event. Delivery is best-effort; errors are
// logged by the dispatcher and never reach trading paths.
type Sink interface {
	Notify(ctx context.Context, evt Event) error
}

// LogSink stands in for the SMS/email transports and prints the rendered
// message for each channel the contact has.
type LogSink struct{}

func NewLogSink() *LogSink {
	return &LogSink{}
}

func (s *LogSink) Notify(ctx context.Context, evt Event) error {
	subject, message := Render(evt.Kind, evt.Trade)
	if evt.Contact.Phone != "" {
		s.SendSMS(evt.Contact.Phone, message)
	}
	if evt.Contact.Email != "" {
		s.SendEmail(evt.Contact.Email, subject, message)
	}
	return nil
}

func (s *LogSink) SendSMS(phone, message string) {
	log.Printf("[notify] SMS to %s: %s", phone, message)
}

func (s *LogSink) SendEmail(email, subject, message string) {
	log.Printf("[notify] Email to %s - %s: %s", email, subject, message)
}

// Render produces the subject and body for a trade notification.
func Render(kind types.NotificationKind, t model.Trade) (subject, message string) {
	exitPrice := "-"
	if t.ExitPrice != nil {
		exitPrice = t.ExitPrice.String()
	}
	switch kind {
	case types.NotificationCreated:
		return "Trade Created", fmt.Sprintf("Trade created: %s %s %s shares at %s",
			t.Symbol, t.TradeType, t.Quantity.String(), t.EntryPrice.String())
	case types.NotificationStopLoss:
		return "Stop-Loss Triggered", fmt.Sprintf("Stop-loss triggered: %s exited at %s with PnL: %s",
			t.Symbol, exitPrice, t.PnL.String())
	case types.NotificationTarget:
		return "Target Achieved", fmt.Sprintf("Target achieved: %s exited at %s with PnL: %s",
			t.Symbol, exitPrice, t.PnL.String())
	default:
		pnlText := "profit"
		if t.PnL.IsNegative() {
			pnlText = "loss"
		}
		return "Trade Exited", fmt.Sprintf("Trade exited: %s at %s with %s of %s",
			t.Symbol, exitPrice, pnlText, t.PnL.Abs().String())
	}
}
