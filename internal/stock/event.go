package stock

import (
	"context"
	"time"
)

const EventTypeStockAdjusted = "StockAdjusted"

// StockAdjustedEvent is published after a stock mutation commits. The
// notification listener consumes it to run the low-stock check; it is never
// part of the mutating transaction.
type StockAdjustedEvent struct {
	EventType     string    `json:"event_type"`
	StockID       string    `json:"stock_id"`
	FeedID        string    `json:"feed_id"`
	QuantityAfter float64   `json:"quantity_after"`
	Actor         string    `json:"actor"`
	Timestamp     time.Time `json:"timestamp"`
}

type Publisher interface {
	PublishStockAdjusted(ctx context.Context, event StockAdjustedEvent) error
}
