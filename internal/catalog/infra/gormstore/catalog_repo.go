// Package gormstore maps the catalog tables onto the shared relational
// store through gorm.
package gormstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/prasetyadew/kasirpos/internal/catalog/app"
	"github.com/prasetyadew/kasirpos/internal/catalog/domain"
)

type CategoryRow struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Icon      string
	Color     string
	CreatedAt time.Time
}

func (CategoryRow) TableName() string { return "categories" }

type ProductRow struct {
	ID          string `gorm:"primaryKey"`
	CategoryID  string `gorm:"index;not null"`
	Name        string `gorm:"not null"`
	Description string
	Price       decimal.Decimal `gorm:"type:numeric;not null"`
	ImageURL    string
	// No column default: gorm drops zero-valued fields carrying a
	// default tag from the INSERT, which would flip hidden products
	// back to available.
	IsAvailable bool `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ProductRow) TableName() string { return "products" }

type CatalogRepo struct {
	db *gorm.DB
}

func NewCatalogRepo(db *gorm.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

func (r *CatalogRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var rows []CategoryRow
	if err := r.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, toCategory(row))
	}
	return out, nil
}

func (r *CatalogRepo) ListAvailable(ctx context.Context) ([]domain.Product, error) {
	return r.listProducts(r.db.WithContext(ctx).Where("is_available = ?", true))
}

func (r *CatalogRepo) ListAll(ctx context.Context) ([]domain.Product, error) {
	return r.listProducts(r.db.WithContext(ctx))
}

func (r *CatalogRepo) listProducts(tx *gorm.DB) ([]domain.Product, error) {
	var rows []ProductRow
	if err := tx.Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, toProduct(row))
	}
	return out, nil
}

func (r *CatalogRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	row := fromProduct(p)
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Product{}, err
	}
	return toProduct(row), nil
}

func (r *CatalogRepo) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	var row ProductRow
	err := r.db.WithContext(ctx).First(&row, "id = ?", p.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Product{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}

	row.CategoryID = p.CategoryID
	row.Name = p.Name
	row.Description = p.Description
	row.Price = p.Price
	row.ImageURL = p.ImageURL
	row.IsAvailable = p.IsAvailable

	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return domain.Product{}, err
	}
	return toProduct(row), nil
}

func (r *CatalogRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&ProductRow{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return app.ErrNotFound
	}
	return nil
}

func (r *CatalogRepo) SetAvailability(ctx context.Context, id string, available bool) error {
	res := r.db.WithContext(ctx).Model(&ProductRow{}).
		Where("id = ?", id).
		Update("is_available", available)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return app.ErrNotFound
	}
	return nil
}

func toCategory(row CategoryRow) domain.Category {
	return domain.Category{
		ID:        row.ID,
		Name:      row.Name,
		Icon:      row.Icon,
		Color:     row.Color,
		CreatedAt: row.CreatedAt,
	}
}

func toProduct(row ProductRow) domain.Product {
	return domain.Product{
		ID:          row.ID,
		CategoryID:  row.CategoryID,
		Name:        row.Name,
		Description: row.Description,
		Price:       row.Price,
		ImageURL:    row.ImageURL,
		IsAvailable: row.IsAvailable,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func fromProduct(p domain.Product) ProductRow {
	return ProductRow{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		IsAvailable: p.IsAvailable,
	}
}
