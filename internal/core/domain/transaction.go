package domain

import (
	"errors"
	"time"
)

var ErrInvalidCheckout = errors.New("invalid checkout request")
var ErrDuplicateCheckout = errors.New("duplicate checkout request")

// Transaction is an immutable ledger entry created as a side effect of a
// successful checkout. Amount is the line price at purchase time and is
// never recomputed.
type Transaction struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	StudentID string    `json:"student_id" bson:"student_id"`
	ProductID string    `json:"product_id" bson:"product_id"`
	Quantity  int       `json:"quantity" bson:"quantity"`
	Amount    float64   `json:"amount" bson:"amount"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
