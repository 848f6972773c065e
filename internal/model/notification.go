package model

import "time"

const NotificationTypeLowStock = "low_stock"

// Notification is a low-stock alert. At most one is created per stock record
// within the rolling dedup window while quantity sits at or below the feed's
// minimum.
type Notification struct {
	ID        string    `db:"id" json:"id"`
	StockID   string    `db:"stock_id" json:"stock_id"`
	FeedID    string    `db:"feed_id" json:"feed_id"`
	Type      string    `db:"type" json:"type"`
	Message   string    `db:"message" json:"message"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
