package trades

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/smdekate-cs/paper-trading-backend/internal/apperr"
	"github.com/smdekate-cs/paper-trading-backend/internal/httputil"
	"github.com/smdekate-cs/paper-trading-backend/internal/types"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type createTradeRequest struct {
	Symbol      string `json:"symbol"`
	TradeType   string `json:"trade_type"`
	Quantity    string `json:"quantity"`
	StopLoss    string `json:"stop_loss"`
	TargetPrice string `json:"target_price"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request, userID string) {
	var req createTradeRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "symbol is required"})
		return
	}
	qty, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "invalid quantity"})
		return
	}
	var stopLoss *decimal.Decimal
	if req.StopLoss != "" {
		sl, err := decimal.NewFromString(req.StopLoss)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "invalid stop_loss"})
			return
		}
		stopLoss = &sl
	}
	var target *decimal.Decimal
	if req.TargetPrice != "" {
		tp, err := decimal.NewFromString(req.TargetPrice)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "invalid target_price"})
			return
		}
		target = &tp
	}

	t, err := h.svc.Open(r.Context(), OpenRequest{
		UserID:      userID,
		Symbol:      symbol,
		TradeType:   types.TradeType(strings.ToUpper(req.TradeType)),
		Quantity:    qty,
		StopLoss:    stopLoss,
		TargetPrice: target,
	})
	if err != nil {
		httputil.WriteJSON(w, apperr.Status(err), httputil.ErrorResponse{Error: err.Error()})
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "Trade created successfully",
		"trade":   t,
	})
}

func (h *Handler) Active(w http.ResponseWriter, r *http.Request, userID string) {
	list, err := h.svc.ListActive(r.Context(), userID)
	if err != nil {
		httputil.WriteJSON(w, apperr.Status(err), httputil.ErrorResponse{Error: err.Error()})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"trades": list, "count": len(list)})
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request, userID string) {
	list, err := h.svc.ListHistory(r.Context(), userID)
	if err != nil {
		httputil.WriteJSON(w, apperr.Status(err), httputil.ErrorResponse{Error: err.Error()})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"trades": list, "count": len(list)})
}

func (h *Handler) Exit(w http.ResponseWriter, r *http.Request, userID string) {
	tradeID := chi.URLParam(r, "tradeID")
	t, err := h.svc.Exit(r.Context(), userID, tradeID)
	if err != nil {
		httputil.WriteJSON(w, apperr.Status(err), httputil.ErrorResponse{Error: err.Error()})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Trade exited successfully",
		"trade":   t,
	})
}

func (h *Handler) ExitAll(w http.ResponseWriter, r *http.Request, userID string) {
	res, err := h.svc.ExitAll(r.Context(), userID)
	if err != nil {
		httputil.WriteJSON(w, apperr.Status(err), httputil.ErrorResponse{Error: err.Error()})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Performance(w http.ResponseWriter, r *http.Request, userID string) {
	perf, err := h.svc.PerformanceSummary(r.Context(), userID)
	if err != nil {
		httputil.WriteJSON(w, apperr.Status(err), httputil.ErrorResponse{Error: err.Error()})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, perf)
}
