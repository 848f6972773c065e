package dto

type CreateFeedInput struct {
	Name     string  `json:"name" binding:"required"`
	Unit     string  `json:"unit" binding:"required"`
	MinStock float64 `json:"min_stock"`
	Price    float64 `json:"price"`
}

type UpdateFeedInput struct {
	Name     string  `json:"name" binding:"required"`
	Unit     string  `json:"unit" binding:"required"`
	MinStock float64 `json:"min_stock"`
	Price    float64 `json:"price"`
}

type CreateNutrientInput struct {
	Name string `json:"name" binding:"required"`
	Unit string `json:"unit" binding:"required"`
}

type CompositionRow struct {
	NutrientID string  `json:"nutrient_id" binding:"required"`
	Amount     float64 `json:"amount" binding:"required"`
}

type SetCompositionInput struct {
	Nutrients []CompositionRow `json:"nutrients" binding:"required"`
}
