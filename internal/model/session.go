package model

import "time"

// Feeding time slots.
const (
	SlotPagi  = "pagi"
	SlotSiang = "siang"
	SlotSore  = "sore"
)

func ValidSlot(slot string) bool {
	switch slot {
	case SlotPagi, SlotSiang, SlotSore:
		return true
	}
	return false
}

// FeedSession is one (cow, date, slot) feeding occurrence. NutrientTotals is
// the cached aggregate, replaced wholesale after every item mutation.
type FeedSession struct {
	BaseModel
	CowID          string             `db:"cow_id" json:"cow_id"`
	SessionDate    time.Time          `db:"session_date" json:"session_date"`
	Slot           string             `db:"slot" json:"slot"`
	NutrientTotals map[string]float64 `db:"-" json:"nutrient_totals"`
	CreatedBy      string             `db:"created_by" json:"created_by"`

	Items []FeedItem `db:"-" json:"items,omitempty"`
}

// FeedItem is one consumption record: a quantity of one feed given within a
// session. DeletedAt is the tombstone; a deleted item's stock effect has been
// reversed.
type FeedItem struct {
	BaseModel
	SessionID string     `db:"session_id" json:"session_id"`
	FeedID    string     `db:"feed_id" json:"feed_id"`
	Quantity  float64    `db:"quantity" json:"quantity"`
	CreatedBy string     `db:"created_by" json:"created_by"`
	UpdatedBy string     `db:"updated_by" json:"updated_by"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`

	FeedName string `db:"feed_name" json:"feed_name,omitempty"`
}

func (i *FeedItem) Deleted() bool {
	return i.DeletedAt != nil
}
