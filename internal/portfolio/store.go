package portfolio

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/smdekate-cs/paper-trading-backend/internal/apperr"
	"github.com/smdekate-cs/paper-trading-backend/internal/model"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Create(ctx context.Context, p model.Portfolio) error {
	_, err := s.pool.Exec(ctx,
		"INSERT INTO portfolios (user_id, available_margin, utilized_margin, total_pnl, created_at, updated_at) VALUES ($1,$2,$3,$4,$5,$6)",
		p.UserID, p.AvailableMargin, p.UtilizedMargin, p.TotalPnL, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperr.ErrDuplicatePortfolio
		}
		return err
	}
	return nil
}

func (s *Store) FindByUser(ctx context.Context, userID string) (model.Portfolio, error) {
	var p model.Portfolio
	err := s.pool.QueryRow(ctx,
		"SELECT user_id, available_margin, utilized_margin, total_pnl, created_at, updated_at FROM portfolios WHERE user_id = $1",
		userID).Scan(&p.UserID, &p.AvailableMargin, &p.UtilizedMargin, &p.TotalPnL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, apperr.ErrPortfolioNotFound
		}
		return p, err
	}
	return p, nil
}

// ReserveMargin debits margin for a new position, but only while the user
// still has that much available. The guard in the WHERE clause makes the
// check and the debit one atomic statement, so two concurrent opens for
// the same user cannot both pass the margin check and overdraw.
func (s *Store) ReserveMargin(ctx context.Context, userID string, amount decimal.Decimal) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE portfolios
		 SET utilized_margin = utilized_margin + $2,
		     available_margin = available_margin - $2,
		     updated_at = $3
		 WHERE user_id = $1 AND available_margin >= $2`,
		userID, amount, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := s.FindByUser(ctx, userID); err != nil {
			return err
		}
		return apperr.ErrInsufficientMargin
	}
	return nil
}

// ApplyMarginDelta atomically moves margin between available and utilized
// and settles realized pnl: utilized += delta, available -= delta,
// total_pnl += pnlDelta. A single UPDATE keeps concurrent settlements for
// the same user serialized on the row lock. No clamping: the
// insufficient-margin check belongs to the caller.
func (s *Store) ApplyMarginDelta(ctx context.Context, userID string, delta, pnlDelta decimal.Decimal) (model.Portfolio, error) {
	var p model.Portfolio
	err := s.pool.QueryRow(ctx,
		`UPDATE portfolios
		 SET utilized_margin = utilized_margin + $2,
		     available_margin = available_margin - $2,
		     total_pnl = total_pnl + $3,
		     updated_at = $4
		 WHERE user_id = $1
		 RETURNING user_id, available_margin, utilized_margin, total_pnl, created_at, updated_at`,
		userID, delta, pnlDelta, time.Now().UTC()).
		Scan(&p.UserID, &p.AvailableMargin, &p.UtilizedMargin, &p.TotalPnL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, apperr.ErrPortfolioNotFound
		}
		return p, err
	}
	return p, nil
}
