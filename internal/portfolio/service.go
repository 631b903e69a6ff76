package portfolio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smdekate-cs/paper-trading-backend/internal/apperr"
	"github.com/smdekate-cs/paper-trading-backend/internal/model"
)

// Ledger is the persistence contract the service (and the trade lifecycle)
// relies on. *Store implements it.
type Ledger interface {
	Create(ctx context.Context, p model.Portfolio) error
	FindByUser(ctx context.Context, userID string) (model.Portfolio, error)
	ApplyMarginDelta(ctx context.Context, userID string, delta, pnlDelta decimal.Decimal) (model.Portfolio, error)
}

type Service struct {
	store         Ledger
	defaultMargin decimal.Decimal
}

func NewService(store Ledger, defaultMargin decimal.Decimal) *Service {
	return &Service{store: store, defaultMargin: defaultMargin}
}

// Create opens a portfolio with a starting available margin. One per user.
// A zero initialMargin falls back to the configured default.
func (s *Service) Create(ctx context.Context, userID string, initialMargin decimal.Decimal) (model.Portfolio, error) {
	if userID == "" {
		return model.Portfolio{}, fmt.Errorf("%w: user id is required", apperr.ErrValidation)
	}
	if initialMargin.IsZero() {
		initialMargin = s.defaultMargin
	}
	if !initialMargin.IsPositive() {
		return model.Portfolio{}, fmt.Errorf("%w: initial margin must be positive", apperr.ErrValidation)
	}
	now := time.Now().UTC()
	p := model.Portfolio{
		UserID:          userID,
		AvailableMargin: initialMargin,
		UtilizedMargin:  decimal.Zero,
		TotalPnL:        decimal.Zero,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Create(ctx, p); err != nil {
		return model.Portfolio{}, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, userID string) (model.Portfolio, error) {
	return s.store.FindByUser(ctx, userID)
}

// EnsureDefault provisions the starting portfolio for a new user. Safe to
// call more than once.
func (s *Service) EnsureDefault(ctx context.Context, userID string) error {
	_, err := s.Create(ctx, userID, s.defaultMargin)
	if errors.Is(err, apperr.ErrDuplicatePortfolio) {
		return nil
	}
	return err
}
