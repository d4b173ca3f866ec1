package handler

type checkoutItemRequest struct {
	ID       string  `json:"id"       validate:"required"`
	Quantity int     `json:"quantity" validate:"required,gt=0"`
	Price    float64 `json:"price"    validate:"gte=0"`
}

type checkoutRequest struct {
	CardID string                `json:"cardId" validate:"required"`
	Total  float64               `json:"total"  validate:"gte=0"`
	Items  []checkoutItemRequest `json:"items"  validate:"required,min=1,dive"`
}

type transactionItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity"  validate:"required,gt=0"`
}

type transactionRequest struct {
	StudentID string                   `json:"studentId" validate:"required"`
	Items     []transactionItemRequest `json:"items"     validate:"required,min=1,dive"`
}

type checkoutData struct {
	Balance          float64 `json:"balance"`
	StudentName      string  `json:"studentName"`
	TransactionCount int     `json:"transactionCount"`
}

type checkoutResponse struct {
	Success bool         `json:"success"`
	Data    checkoutData `json:"data"`
}
