package ports

import "context"

// TopProduct is an aggregated catalog entry in insight views.
type TopProduct struct {
	ProductID   string
	ProductName string
	Count       int64
}

// Insights is the dashboard summary.
type Insights struct {
	TotalStudents       int64
	WithAnnual          int64
	WithTerm            int64
	WithoutSubscription int64
	TopProducts         []TopProduct
}

// History is the transaction history view.
type History struct {
	Transactions []HistoryEntry
	TopProducts  []TopProduct
}

// InsightsService produces read-only reporting views over the ledger.
type InsightsService interface {
	Summary(ctx context.Context) (*Insights, error)
	History(ctx context.Context) (*History, error)
}
