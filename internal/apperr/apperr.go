// Package apperr holds the sentinel errors shared across the trading core.
// Callers classify with errors.Is and map to HTTP codes via Status.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrValidation          = errors.New("invalid input")
	ErrPortfolioNotFound   = errors.New("portfolio not found")
	ErrTradeNotFound       = errors.New("trade not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrDuplicatePortfolio  = errors.New("portfolio already exists")
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrInsufficientMargin  = errors.New("insufficient margin")
	ErrTradeAlreadyClosed  = errors.New("trade already closed")
	ErrNoActiveTrades      = errors.New("no active trades")
	ErrPriceUnavailable    = errors.New("price unavailable")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrInconsistency       = errors.New("internal inconsistency")
)

// Status maps an error to the HTTP status the handlers should answer with.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInsufficientMargin):
		return http.StatusBadRequest
	case errors.Is(err, ErrPortfolioNotFound),
		errors.Is(err, ErrTradeNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrNoActiveTrades):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicatePortfolio),
		errors.Is(err, ErrDuplicateEmail),
		errors.Is(err, ErrTradeAlreadyClosed):
		return http.StatusConflict
	case errors.Is(err, ErrPriceUnavailable), errors.Is(err, ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
