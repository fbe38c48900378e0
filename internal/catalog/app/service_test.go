package app

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/prasetyadew/kasirpos/internal/catalog/domain"
)

type fakeRepo struct {
	categories []domain.Category
	products   []domain.Product
	failReads  bool
}

var errStore = errors.New("store unreachable")

func (f *fakeRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	if f.failReads {
		return nil, errStore
	}
	return f.categories, nil
}

func (f *fakeRepo) ListAvailable(ctx context.Context) ([]domain.Product, error) {
	if f.failReads {
		return nil, errStore
	}
	return f.products, nil
}

func (f *fakeRepo) ListAll(ctx context.Context) ([]domain.Product, error) {
	return f.products, nil
}

func (f *fakeRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	return p, nil
}

func (f *fakeRepo) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	return p, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id string) error { return nil }

func (f *fakeRepo) SetAvailability(ctx context.Context, id string, available bool) error {
	return nil
}

func seedProducts() []domain.Product {
	return []domain.Product{
		{ID: "p1", CategoryID: "coffee", Name: "Cappuccino", Price: decimal.NewFromInt(28000)},
		{ID: "p2", CategoryID: "coffee", Name: "Latte", Price: decimal.NewFromInt(25000)},
		{ID: "p3", CategoryID: "tea", Name: "Green Tea", Price: decimal.NewFromInt(15000)},
	}
}

func TestRefreshSwapsSnapshot(t *testing.T) {
	repo := &fakeRepo{
		categories: []domain.Category{{ID: "coffee", Name: "Coffee"}},
		products:   seedProducts(),
	}
	svc := NewService(repo)

	assert.NoError(t, svc.Refresh(context.Background()))
	assert.Len(t, svc.Categories(), 1)
	assert.Len(t, svc.Products(), 3)
}

func TestRefreshKeepsStaleSnapshotOnError(t *testing.T) {
	repo := &fakeRepo{products: seedProducts()}
	svc := NewService(repo)
	assert.NoError(t, svc.Refresh(context.Background()))

	repo.failReads = true
	err := svc.Refresh(context.Background())

	assert.ErrorIs(t, err, errStore)
	assert.Len(t, svc.Products(), 3, "previous snapshot must survive a failed refresh")
}

func TestFilterByCategory(t *testing.T) {
	got := Filter(seedProducts(), "tea", "")
	assert.Len(t, got, 1)
	assert.Equal(t, "Green Tea", got[0].Name)
}

func TestFilterAllPassesEverything(t *testing.T) {
	assert.Len(t, Filter(seedProducts(), CategoryAll, ""), 3)
	assert.Len(t, Filter(seedProducts(), "", ""), 3)
}

func TestFilterSearchIsCaseInsensitiveSubstring(t *testing.T) {
	got := Filter(seedProducts(), CategoryAll, "laT")
	assert.Len(t, got, 1)
	assert.Equal(t, "Latte", got[0].Name)
}

func TestFilterPredicatesCompose(t *testing.T) {
	// "a" matches names in both categories; the category predicate
	// must still apply.
	got := Filter(seedProducts(), "coffee", "a")
	assert.Len(t, got, 2)
	for _, p := range got {
		assert.Equal(t, "coffee", p.CategoryID)
	}
}

func TestProductByID(t *testing.T) {
	repo := &fakeRepo{products: seedProducts()}
	svc := NewService(repo)
	assert.NoError(t, svc.Refresh(context.Background()))

	p, ok := svc.ProductByID("p2")
	assert.True(t, ok)
	assert.Equal(t, "Latte", p.Name)

	_, ok = svc.ProductByID("missing")
	assert.False(t, ok)
}

func TestCreateProductValidation(t *testing.T) {
	svc := NewService(&fakeRepo{})

	t.Run("empty name", func(t *testing.T) {
		_, err := svc.CreateProduct(context.Background(), domain.Product{
			CategoryID: "coffee", Name: "   ", Price: decimal.NewFromInt(100),
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("missing category", func(t *testing.T) {
		_, err := svc.CreateProduct(context.Background(), domain.Product{
			Name: "Latte", Price: decimal.NewFromInt(100),
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("negative price", func(t *testing.T) {
		_, err := svc.CreateProduct(context.Background(), domain.Product{
			CategoryID: "coffee", Name: "Latte", Price: decimal.NewFromInt(-1),
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("zero price is allowed", func(t *testing.T) {
		_, err := svc.CreateProduct(context.Background(), domain.Product{
			CategoryID: "coffee", Name: "Water", Price: decimal.Zero,
		})
		assert.NoError(t, err)
	})
}

func TestUpdateProductRequiresID(t *testing.T) {
	svc := NewService(&fakeRepo{})
	_, err := svc.UpdateProduct(context.Background(), domain.Product{
		CategoryID: "coffee", Name: "Latte", Price: decimal.NewFromInt(100),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
