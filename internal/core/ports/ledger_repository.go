package ports

import (
	"context"

	"github.com/lacanteen/canteen-system/internal/core/domain"
)

// DebitLine is one cart line as it will be recorded in the ledger.
type DebitLine struct {
	ProductID string
	Quantity  int
	Amount    float64 // price × quantity at purchase time
}

// ProductCount pairs a product with an aggregated transaction figure.
type ProductCount struct {
	ProductID string
	Count     int64
}

// HistoryEntry is a transaction joined with its student and product.
type HistoryEntry struct {
	Transaction domain.Transaction
	StudentName string
	Grade       string
	ProductName string
	UnitPrice   float64
}

// LedgerRepository owns the student balance / transaction ledger. The
// Debit operation is the system's one atomic unit of work: the balance
// re-check, the decrement, and the transaction inserts commit or discard
// together. Implementations must guarantee that two concurrent Debit
// calls against the same student cannot both observe the same balance
// and overdraw it.
type LedgerRepository interface {
	// Debit re-reads the student's balance inside the transaction scope,
	// fails with domain.ErrInsufficientBalance if it no longer covers
	// total, otherwise decrements it by total and inserts one transaction
	// row per line. Returns the post-debit balance and the created rows.
	Debit(ctx context.Context, studentID string, total float64, lines []DebitLine) (float64, []domain.Transaction, error)

	// Recent returns the latest limit transactions, newest first, joined
	// with student and product details.
	Recent(ctx context.Context, limit int) ([]HistoryEntry, error)
	// TopProductsByQuantity aggregates the top limit products by total
	// quantity sold.
	TopProductsByQuantity(ctx context.Context, limit int) ([]ProductCount, error)
	// TopProductsByFrequency aggregates the top limit products by number
	// of transactions.
	TopProductsByFrequency(ctx context.Context, limit int) ([]ProductCount, error)
}
