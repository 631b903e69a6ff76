package marketdata

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/smdekate-cs/paper-trading-backend/internal/apperr"
	"github.com/smdekate-cs/paper-trading-backend/internal/httputil"
)

type Handler struct {
	src *SimulatedSource
}

func NewHandler(src *SimulatedSource) *Handler {
	return &Handler{src: src}
}

func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	q, err := h.src.GetPrice(r.Context(), symbol)
	if err != nil {
		httputil.WriteJSON(w, apperr.Status(err), httputil.ErrorResponse{Error: err.Error()})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"symbol": symbol, "data": q})
}

func (h *Handler) Indices(w http.ResponseWriter, r *http.Request) {
	indices, err := h.src.IndexData(r.Context())
	if err != nil {
		httputil.WriteJSON(w, apperr.Status(err), httputil.ErrorResponse{Error: err.Error()})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"indices": indices})
}
