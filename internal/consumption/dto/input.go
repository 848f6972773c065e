package dto

type ItemInput struct {
	FeedID   string  `json:"feed_id" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required"`
}

type AddItemsInput struct {
	Items []ItemInput `json:"items" binding:"required"`
}

type UpdateItemInput struct {
	Quantity float64 `json:"quantity" binding:"required"`
}
