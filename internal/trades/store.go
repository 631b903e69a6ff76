package trades

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/smdekate-cs/paper-trading-backend/internal/apperr"
	"github.com/smdekate-cs/paper-trading-backend/internal/model"
	"github.com/smdekate-cs/paper-trading-backend/internal/types"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const tradeColumns = `id, user_id, symbol, trade_type, quantity, entry_price, margin_used,
	stop_loss, target_price, current_price, pnl, status, exit_price, created_at, updated_at, closed_at`

func scanTrade(row pgx.Row) (model.Trade, error) {
	var t model.Trade
	var status string
	var tradeType string
	err := row.Scan(
		&t.ID, &t.UserID, &t.Symbol, &tradeType, &t.Quantity, &t.EntryPrice, &t.MarginUsed,
		&t.StopLoss, &t.TargetPrice, &t.CurrentPrice, &t.PnL, &status, &t.ExitPrice,
		&t.CreatedAt, &t.UpdatedAt, &t.ClosedAt,
	)
	if err != nil {
		return model.Trade{}, err
	}
	t.TradeType = types.TradeType(tradeType)
	t.Status = types.TradeStatus(status)
	return t, nil
}

func (s *Store) Create(ctx context.Context, t model.Trade) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx, `
		INSERT INTO trades (user_id, symbol, trade_type, quantity, entry_price, margin_used,
			stop_loss, target_price, current_price, pnl, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`,
		t.UserID, t.Symbol, string(t.TradeType), t.Quantity, t.EntryPrice, t.MarginUsed,
		t.StopLoss, t.TargetPrice, t.CurrentPrice, t.PnL, string(t.Status), t.CreatedAt, t.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (model.Trade, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+tradeColumns+` FROM trades WHERE id = $1`, id)
	t, err := scanTrade(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Trade{}, apperr.ErrTradeNotFound
	}
	if err != nil {
		return model.Trade{}, err
	}
	return t, nil
}

func (s *Store) ListByUser(ctx context.Context, userID string, status *types.TradeStatus) ([]model.Trade, error) {
	filter := ""
	if status != nil {
		filter = string(*status)
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+tradeColumns+`
		FROM trades
		WHERE user_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC`,
		userID, filter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTrades(rows)
}

func (s *Store) ListActive(ctx context.Context) ([]model.Trade, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+tradeColumns+`
		FROM trades
		WHERE status = 'ACTIVE'
		ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTrades(rows)
}

func collectTrades(rows pgx.Rows) ([]model.Trade, error) {
	out := make([]model.Trade, 0)
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdatePrice persists a mark-to-market snapshot. The status guard makes
// it a no-op when the trade closed between read and write.
func (s *Store) UpdatePrice(ctx context.Context, id string, price, pnl decimal.Decimal, at time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE trades
		SET current_price = $2, pnl = $3, updated_at = $4
		WHERE id = $1 AND status = 'ACTIVE'`,
		id, price, pnl, at)
	return err
}

// Close is the terminal transition. It only matches ACTIVE rows; a zero
// row count means someone else already closed the trade.
func (s *Store) Close(ctx context.Context, id string, exitPrice, pnl decimal.Decimal, status types.TradeStatus, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE trades
		SET exit_price = $2, current_price = $2, pnl = $3, status = $4, closed_at = $5, updated_at = $5
		WHERE id = $1 AND status = 'ACTIVE'`,
		id, exitPrice, pnl, string(status), at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrTradeAlreadyClosed
	}
	return nil
}

func (s *Store) SumActiveMargin(ctx context.Context, userID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(margin_used), 0)
		FROM trades
		WHERE user_id = $1 AND status = 'ACTIVE'`,
		userID).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}
