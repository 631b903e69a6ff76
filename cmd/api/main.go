package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smdekate-cs/paper-trading-backend/internal/auth"
	"github.com/smdekate-cs/paper-trading-backend/internal/config"
	"github.com/smdekate-cs/paper-trading-backend/internal/db"
	"github.com/smdekate-cs/paper-trading-backend/internal/health"
	"github.com/smdekate-cs/paper-trading-backend/internal/httpserver"
	"github.com/smdekate-cs/paper-trading-backend/internal/marketdata"
	"github.com/smdekate-cs/paper-trading-backend/internal/monitor"
	"github.com/smdekate-cs/paper-trading-backend/internal/notifications"
	"github.com/smdekate-cs/paper-trading-backend/internal/portfolio"
	"github.com/smdekate-cs/paper-trading-backend/internal/trades"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	defaultMargin, err := decimal.NewFromString(cfg.DefaultMargin)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	startedAt := time.Now().UTC()
	bus := marketdata.NewBus()
	src := marketdata.NewSimulatedSource()

	authSvc := auth.NewService(pool, cfg.JWTIssuer, []byte(cfg.JWTSecret), cfg.JWTTTL)
	portfolioStore := portfolio.NewStore(pool)
	portfolioSvc := portfolio.NewService(portfolioStore, defaultMargin)
	authSvc.SetPortfolioService(portfolioSvc)

	sink := notifications.NewLogSink()
	dispatcher := notifications.NewDispatcher(ctx, sink, authSvc, 0)

	tradeStore := trades.NewStore(pool)
	tradeSvc := trades.NewService(tradeStore, portfolioStore, src, dispatcher)

	scanner := monitor.NewScanner(tradeSvc,
		func(ctx context.Context, symbol string) (decimal.Decimal, error) {
			q, err := src.GetPrice(ctx, symbol)
			if err != nil {
				return decimal.Zero, err
			}
			return q.Price, nil
		},
		cfg.ScanInterval, cfg.ScanBackoff)
	go scanner.Run(ctx)

	symbols := []string{"NIFTY50", "SENSEX", "RELIANCE", "TCS"}
	marketdata.StartPublisher(ctx, bus, src, symbols, 2*time.Second)

	router := httpserver.NewRouter(httpserver.RouterDeps{
		AuthHandler:          auth.NewHandler(authSvc),
		PortfolioHandler:     portfolio.NewHandler(portfolioSvc),
		TradeHandler:         trades.NewHandler(tradeSvc),
		MarketHandler:        marketdata.NewHandler(src),
		NotificationsHandler: notifications.NewHandler(sink),
		HealthHandler:        health.NewHandler(pool, startedAt),
		AuthService:          authSvc,
		WSHandler:            httpserver.NewWSHandler(bus, cfg.WebSocketOrigin),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[api] listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Printf("[api] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[api] shutdown: %v", err)
	}
}
