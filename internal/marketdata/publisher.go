package marketdata

import (
	"context"
	"log"
	"time"
)

// StartPublisher runs a background goroutine that polls the price source for
// the given symbols and publishes quote events to the bus for websocket
// subscribers. It stops when ctx is canceled.
func StartPublisher(ctx context.Context, bus *Bus, src PriceSource, symbols []string, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Printf("[marketdata] publisher stopped")
				return
			case <-ticker.C:
				for _, symbol := range symbols {
					q, err := src.GetPrice(ctx, symbol)
					if err != nil {
						continue
					}
					bus.Publish(Event{Type: "quote", Data: q})
				}
			}
		}
	}()
}
