package dto

type RestockInput struct {
	Delta float64 `json:"delta" binding:"required"`
}

type SetStockInput struct {
	Quantity *float64 `json:"quantity" binding:"required"`
}
