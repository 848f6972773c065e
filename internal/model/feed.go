package model

// FeedType is one catalog entry of feed (hay, silage, concentrate, ...).
// MinStock is the low-stock alert threshold in the feed's unit.
type FeedType struct {
	BaseModel
	Name     string  `db:"name" json:"name"`
	Unit     string  `db:"unit" json:"unit"`
	MinStock float64 `db:"min_stock" json:"min_stock"`
	Price    float64 `db:"price" json:"price"`
}

type Nutrient struct {
	BaseModel
	Name string `db:"name" json:"name"`
	Unit string `db:"unit" json:"unit"`
}

// FeedNutrient is the composition row: amount of one nutrient contained in one
// unit of the feed.
type FeedNutrient struct {
	FeedID     string  `db:"feed_id" json:"feed_id"`
	NutrientID string  `db:"nutrient_id" json:"nutrient_id"`
	Amount     float64 `db:"amount" json:"amount"`
}
