package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lacanteen/canteen-system/internal/core/domain"
	"github.com/lacanteen/canteen-system/internal/core/ports"
)

const (
	historyLimit   = 50
	topByQuantity  = 5
	topByFrequency = 3
)

type insightsService struct {
	students ports.StudentRepository
	catalog  ports.CatalogRepository
	ledger   ports.LedgerRepository
	log      zerolog.Logger
}

// NewInsightsService returns the reporting service behind the dashboard
// and history views.
func NewInsightsService(
	students ports.StudentRepository,
	catalog ports.CatalogRepository,
	ledger ports.LedgerRepository,
	log zerolog.Logger,
) ports.InsightsService {
	return &insightsService{students: students, catalog: catalog, ledger: ledger, log: log}
}

func (s *insightsService) Summary(ctx context.Context) (*ports.Insights, error) {
	total, err := s.students.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("insights: count students: %w", err)
	}
	withAnnual, err := s.students.CountWithSubscriptionType(ctx, domain.SubscriptionAnnual)
	if err != nil {
		return nil, fmt.Errorf("insights: count annual: %w", err)
	}
	withTerm, err := s.students.CountWithSubscriptionType(ctx, domain.SubscriptionTerm)
	if err != nil {
		return nil, fmt.Errorf("insights: count term: %w", err)
	}

	counts, err := s.ledger.TopProductsByFrequency(ctx, topByFrequency)
	if err != nil {
		return nil, fmt.Errorf("insights: top products: %w", err)
	}
	top, err := s.nameProducts(ctx, counts)
	if err != nil {
		return nil, err
	}

	return &ports.Insights{
		TotalStudents:       total,
		WithAnnual:          withAnnual,
		WithTerm:            withTerm,
		WithoutSubscription: total - (withAnnual + withTerm),
		TopProducts:         top,
	}, nil
}

func (s *insightsService) History(ctx context.Context) (*ports.History, error) {
	entries, err := s.ledger.Recent(ctx, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("history: recent transactions: %w", err)
	}
	counts, err := s.ledger.TopProductsByQuantity(ctx, topByQuantity)
	if err != nil {
		return nil, fmt.Errorf("history: top products: %w", err)
	}
	top, err := s.nameProducts(ctx, counts)
	if err != nil {
		return nil, err
	}

	return &ports.History{Transactions: entries, TopProducts: top}, nil
}

// nameProducts resolves product names for aggregated counts. Products
// deleted from the catalog cannot occur (there is no delete), but an id
// without a match is tolerated and passed through unnamed.
func (s *insightsService) nameProducts(ctx context.Context, counts []ports.ProductCount) ([]ports.TopProduct, error) {
	if len(counts) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(counts))
	for _, c := range counts {
		ids = append(ids, c.ProductID)
	}
	products, err := s.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve product names: %w", err)
	}
	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}

	top := make([]ports.TopProduct, 0, len(counts))
	for _, c := range counts {
		top = append(top, ports.TopProduct{
			ProductID:   c.ProductID,
			ProductName: names[c.ProductID],
			Count:       c.Count,
		})
	}
	return top, nil
}
