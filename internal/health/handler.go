package health

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smdekate-cs/paper-trading-backend/internal/httputil"
)

type Handler struct {
	pool      *pgxpool.Pool
	startedAt time.Time
}

func NewHandler(pool *pgxpool.Pool, startedAt time.Time) *Handler {
	start := startedAt.UTC()
	if start.IsZero() {
		start = time.Now().UTC()
	}
	return &Handler{pool: pool, startedAt: start}
}

type statusResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	UptimeSec int64  `json:"uptime_sec"`
	Database  string `json:"database,omitempty"`
}

// Live reports process liveness only.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	httputil.WriteJSON(w, http.StatusOK, statusResponse{
		Status:    "ok",
		Timestamp: now.Format(time.RFC3339),
		UptimeSec: int64(now.Sub(h.startedAt).Seconds()),
	})
}

// Ready additionally pings the database.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	resp := statusResponse{
		Status:    "ok",
		Timestamp: now.Format(time.RFC3339),
		UptimeSec: int64(now.Sub(h.startedAt).Seconds()),
		Database:  "up",
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.pool.Ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.Database = "down"
		httputil.WriteJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
