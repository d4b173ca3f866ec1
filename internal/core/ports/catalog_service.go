package ports

import (
	"context"

	"github.com/lacanteen/canteen-system/internal/core/domain"
)

// ProductInput carries the mutable fields of a catalog entry.
type ProductInput struct {
	Name     string
	Price    float64
	Category domain.ProductCategory
}

// CatalogService defines catalog use cases. There is deliberately no
// delete: historical transactions reference products by id.
type CatalogService interface {
	Create(ctx context.Context, input ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id string, input ProductInput) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
}
