package portfolio

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/smdekate-cs/paper-trading-backend/internal/apperr"
	"github.com/smdekate-cs/paper-trading-backend/internal/httputil"
	"github.com/smdekate-cs/paper-trading-backend/internal/model"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type createRequest struct {
	InitialMargin string `json:"initial_margin"`
}

type portfolioResponse struct {
	model.Portfolio
	MarginUtilizationPct decimal.Decimal `json:"margin_utilization_percentage"`
}

func response(p model.Portfolio) portfolioResponse {
	return portfolioResponse{Portfolio: p, MarginUtilizationPct: p.MarginUtilizationPct()}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request, userID string) {
	var req createRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	initial := decimal.Zero
	if req.InitialMargin != "" {
		m, err := decimal.NewFromString(req.InitialMargin)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "invalid initial_margin"})
			return
		}
		initial = m
	}
	p, err := h.svc.Create(r.Context(), userID, initial)
	if err != nil {
		httputil.WriteJSON(w, apperr.Status(err), httputil.ErrorResponse{Error: err.Error()})
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"message":   "Portfolio created successfully",
		"portfolio": response(p),
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request, userID string) {
	p, err := h.svc.Get(r.Context(), userID)
	if err != nil {
		httputil.WriteJSON(w, apperr.Status(err), httputil.ErrorResponse{Error: err.Error()})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"portfolio": response(p)})
}
