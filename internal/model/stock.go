package model

import "time"

// Stock history actions.
const (
	StockActionCreate = "CREATE"
	StockActionUpdate = "UPDATE"
)

// FeedStock is the quantity-on-hand for one feed type. Exactly one row exists
// per feed; quantity never goes below zero.
type FeedStock struct {
	BaseModel
	FeedID    string  `db:"feed_id" json:"feed_id"`
	Quantity  float64 `db:"quantity" json:"quantity"`
	UpdatedBy string  `db:"updated_by" json:"updated_by"`

	// Joined catalog data, not columns of feed_stocks.
	FeedName string `db:"feed_name" json:"feed_name,omitempty"`
	FeedUnit string `db:"feed_unit" json:"feed_unit,omitempty"`
}

// FeedStockHistory is one append-only audit row, written in the same
// transaction as the mutation it records.
type FeedStockHistory struct {
	ID             string    `db:"id" json:"id"`
	StockID        string    `db:"stock_id" json:"stock_id"`
	FeedID         string    `db:"feed_id" json:"feed_id"`
	Action         string    `db:"action" json:"action"`
	QuantityBefore *float64  `db:"quantity_before" json:"quantity_before"`
	QuantityAfter  float64   `db:"quantity_after" json:"quantity_after"`
	Actor          string    `db:"actor" json:"actor"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
