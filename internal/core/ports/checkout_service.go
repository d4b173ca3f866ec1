package ports

import (
	"context"

	"github.com/lacanteen/canteen-system/internal/core/domain"
)

// CartItem is one line of a checkout cart as submitted by a terminal.
// UnitPrice is the terminal's cached display price; the charged amount is
// always re-derived from the catalog.
type CartItem struct {
	ProductID string
	Quantity  int
	UnitPrice float64
}

// CheckoutInput locates a student by exactly one of CardID or StudentID
// and carries the cart. IdempotencyKey, when non-empty, guards against
// the same submission being processed twice.
type CheckoutInput struct {
	CardID         string
	StudentID      string
	Items          []CartItem
	DisplayTotal   float64 // terminal-computed total, display hint only
	IdempotencyKey string
}

// CheckoutResult is returned after a committed checkout.
type CheckoutResult struct {
	StudentName  string
	NewBalance   float64
	Transactions []domain.Transaction
}

// CheckoutService executes the checkout transaction: resolve student,
// validate the cart against the catalog, debit atomically, notify.
type CheckoutService interface {
	Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error)
}
