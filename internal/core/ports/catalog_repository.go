package ports

import (
	"context"

	"github.com/lacanteen/canteen-system/internal/core/domain"
)

// CatalogRepository defines persistence operations for the product catalog.
type CatalogRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) (*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	// FindByIDs returns the products matching the given ids. Missing ids
	// are simply absent from the result; the caller decides whether that
	// is an error.
	FindByIDs(ctx context.Context, ids []string) ([]*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
}
