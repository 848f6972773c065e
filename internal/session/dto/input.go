package dto

type CreateSessionInput struct {
	CowID string `json:"cow_id" binding:"required"`
	Date  string `json:"date" binding:"required"` // YYYY-MM-DD
	Slot  string `json:"slot" binding:"required"`
}
