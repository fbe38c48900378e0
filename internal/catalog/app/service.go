package app

import (
	"context"
	"errors"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/prasetyadew/kasirpos/internal/catalog/domain"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// CategoryAll passes every product through the category filter.
const CategoryAll = "all"

// Service serves the cashier screen from an in-memory snapshot of the
// catalog. A failed Refresh keeps the previous snapshot, so callers
// must treat an unchanged list as possibly stale rather than as an
// empty catalog.
type Service struct {
	repo CatalogRepo

	mu         sync.RWMutex
	categories []domain.Category
	products   []domain.Product
}

func NewService(repo CatalogRepo) *Service {
	return &Service{repo: repo}
}

// Refresh loads categories and available products, both ordered by
// name by the store. The snapshot is swapped only when both reads
// succeed.
func (s *Service) Refresh(ctx context.Context) error {
	var (
		categories []domain.Category
		products   []domain.Product
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = s.repo.ListCategories(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.repo.ListAvailable(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	s.categories = categories
	s.products = products
	s.mu.Unlock()
	return nil
}

func (s *Service) Categories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

func (s *Service) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

// ProductByID looks the product up in the current snapshot.
func (s *Service) ProductByID(id string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// Filter applies the category and search predicates to the snapshot.
// Both compose with AND; CategoryAll disables the category predicate
// and the search is a case-insensitive substring match on the name.
func (s *Service) Filter(categoryID, search string) []domain.Product {
	return Filter(s.Products(), categoryID, search)
}

func Filter(products []domain.Product, categoryID, search string) []domain.Product {
	search = strings.ToLower(strings.TrimSpace(search))

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if categoryID != "" && categoryID != CategoryAll && p.CategoryID != categoryID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// All lists every product, available or not, for the management view.
// It bypasses the cashier snapshot.
func (s *Service) All(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	if err := validate(p); err != nil {
		return domain.Product{}, err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) UpdateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	if strings.TrimSpace(p.ID) == "" {
		return domain.Product{}, ErrInvalidInput
	}
	if err := validate(p); err != nil {
		return domain.Product{}, err
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) SetAvailability(ctx context.Context, id string, available bool) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	return s.repo.SetAvailability(ctx, id, available)
}

func validate(p domain.Product) error {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.CategoryID) == "" {
		return ErrInvalidInput
	}
	if p.Price.IsNegative() {
		return ErrInvalidInput
	}
	return nil
}
