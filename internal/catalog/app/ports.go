package app

import (
	"context"

	"github.com/prasetyadew/kasirpos/internal/catalog/domain"
)

type CatalogRepo interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListAvailable(ctx context.Context) ([]domain.Product, error)
	ListAll(ctx context.Context) ([]domain.Product, error)
	Create(ctx context.Context, p domain.Product) (domain.Product, error)
	Update(ctx context.Context, p domain.Product) (domain.Product, error)
	Delete(ctx context.Context, id string) error
	SetAvailability(ctx context.Context, id string, available bool) error
}
