package types

type TradeType string

type TradeStatus string

type NotificationKind string

const (
	TradeTypeBuy  TradeType = "BUY"
	TradeTypeSell TradeType = "SELL"
)

const (
	TradeStatusActive      TradeStatus = "ACTIVE"
	TradeStatusClosed      TradeStatus = "CLOSED"
	TradeStatusStopLossHit TradeStatus = "STOP_LOSS_HIT"
	TradeStatusTargetHit   TradeStatus = "TARGET_HIT"
)

// Terminal reports whether the status is an exit state. ACTIVE is the only
// non-terminal status and transitions are one-way.
func (s TradeStatus) Terminal() bool {
	return s == TradeStatusClosed || s == TradeStatusStopLossHit || s == TradeStatusTargetHit
}

const (
	NotificationCreated  NotificationKind = "created"
	NotificationExited   NotificationKind = "exited"
	NotificationStopLoss NotificationKind = "stop_loss"
	NotificationTarget   NotificationKind = "target"
)
