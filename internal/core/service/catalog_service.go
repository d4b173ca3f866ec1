package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lacanteen/canteen-system/internal/core/domain"
	"github.com/lacanteen/canteen-system/internal/core/ports"
)

type catalogService struct {
	repo ports.CatalogRepository
	log  zerolog.Logger
}

// NewCatalogService returns a CatalogService.
func NewCatalogService(repo ports.CatalogRepository, log zerolog.Logger) ports.CatalogService {
	return &catalogService{repo: repo, log: log}
}

func (s *catalogService) Create(ctx context.Context, in ports.ProductInput) (*domain.Product, error) {
	if err := validateProduct(in); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Price:     in.Price,
		Category:  in.Category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.log.Info().Str("product_id", product.ID).Str("name", product.Name).Float64("price", product.Price).Msg("product created")
	return product, nil
}

func (s *catalogService) Update(ctx context.Context, id string, in ports.ProductInput) (*domain.Product, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: missing id", domain.ErrInvalidProduct)
	}
	if err := validateProduct(in); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, &domain.Product{
		ID:        id,
		Name:      in.Name,
		Price:     in.Price,
		Category:  in.Category,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("product_id", id).Float64("price", in.Price).Msg("product updated")
	return updated, nil
}

func (s *catalogService) List(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.List(ctx)
}

func validateProduct(in ports.ProductInput) error {
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidProduct)
	}
	if in.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", domain.ErrInvalidProduct)
	}
	if !domain.ValidCategory(in.Category) {
		return fmt.Errorf("%w: unknown category %q", domain.ErrInvalidProduct, in.Category)
	}
	return nil
}
