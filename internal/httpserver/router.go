package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smdekate-cs/paper-trading-backend/internal/auth"
	"github.com/smdekate-cs/paper-trading-backend/internal/health"
	"github.com/smdekate-cs/paper-trading-backend/internal/httputil"
	"github.com/smdekate-cs/paper-trading-backend/internal/marketdata"
	"github.com/smdekate-cs/paper-trading-backend/internal/metrics"
	"github.com/smdekate-cs/paper-trading-backend/internal/notifications"
	"github.com/smdekate-cs/paper-trading-backend/internal/portfolio"
	"github.com/smdekate-cs/paper-trading-backend/internal/trades"
)

type RouterDeps struct {
	AuthHandler          *auth.Handler
	PortfolioHandler     *portfolio.Handler
	TradeHandler         *trades.Handler
	MarketHandler        *marketdata.Handler
	NotificationsHandler *notifications.Handler
	HealthHandler        *health.Handler
	AuthService          *auth.Service
	WSHandler            http.Handler
}

type authedHandler func(http.ResponseWriter, *http.Request, string)

func withUser(h authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserID(r)
		if !ok {
			httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{Error: "unauthorized"})
			return
		}
		h(w, r, userID)
	}
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	// CORS middleware for development
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				origin = "*"
			}
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Use(SecurityHeaders)
	r.Use(RateLimitMiddleware)

	r.Get("/health", d.HealthHandler.Live)
	r.Get("/ready", d.HealthHandler.Ready)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", d.AuthHandler.Register)
			r.Post("/login", d.AuthHandler.Login)
		})

		r.Get("/market/live/{symbol}", d.MarketHandler.Live)
		r.Get("/market/indices", d.MarketHandler.Indices)
		r.Get("/market/ws", d.WSHandler.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(WithAuth(d.AuthService))

			r.Get("/me", withUser(d.AuthHandler.Profile))

			r.Post("/portfolio", withUser(d.PortfolioHandler.Create))
			r.Get("/portfolio", withUser(d.PortfolioHandler.Get))

			r.Post("/trades", withUser(d.TradeHandler.Create))
			r.Get("/trades/active", withUser(d.TradeHandler.Active))
			r.Get("/trades/history", withUser(d.TradeHandler.History))
			r.Post("/trades/{tradeID}/exit", withUser(d.TradeHandler.Exit))
			r.Post("/trades/exit-all", withUser(d.TradeHandler.ExitAll))
			r.Get("/trades/performance", withUser(d.TradeHandler.Performance))

			r.Post("/notifications/test", withUser(d.NotificationsHandler.Test))
		})
	})

	return r
}
