package notifications

import (
	"net/http"

	"github.com/smdekate-cs/paper-trading-backend/internal/httputil"
)

type Handler struct {
	sink *LogSink
}

func NewHandler(sink *LogSink) *Handler {
	return &Handler{sink: sink}
}

type testRequest struct {
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// Test lets an authenticated user exercise the notification channels.
func (h *Handler) Test(w http.ResponseWriter, r *http.Request, userID string) {
	var req testRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	message := req.Message
	if message == "" {
		message = "Test notification from Paper Trading Platform"
	}
	if req.Phone != "" {
		h.sink.SendSMS(req.Phone, message)
	}
	if req.Email != "" {
		h.sink.SendEmail(req.Email, "Test Notification", message)
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message":    "Test notifications sent successfully",
		"email_sent": req.Email != "",
		"sms_sent":   req.Phone != "",
	})
}
