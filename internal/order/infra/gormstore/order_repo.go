// Package gormstore persists orders and their lines. The order insert
// and the line insert are separate writes on purpose: checkout's
// two-step commit and its partial-failure behavior live above this
// layer, so no transaction spans the pair.
package gormstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/prasetyadew/kasirpos/internal/order/domain"
)

type OrderRow struct {
	ID            string `gorm:"primaryKey"`
	OrderNumber   string `gorm:"uniqueIndex;not null"`
	CustomerName  string
	TotalAmount   decimal.Decimal `gorm:"type:numeric;not null"`
	PaymentMethod string          `gorm:"not null"`
	Status        string          `gorm:"not null"`
	CreatedBy     string
	CreatedAt     time.Time `gorm:"index"`
}

func (OrderRow) TableName() string { return "orders" }

type OrderLineRow struct {
	ID          string `gorm:"primaryKey"`
	OrderID     string `gorm:"index;not null"`
	ProductID   string
	ProductName string          `gorm:"not null"`
	Price       decimal.Decimal `gorm:"type:numeric;not null"`
	Quantity    int             `gorm:"not null"`
	Subtotal    decimal.Decimal `gorm:"type:numeric;not null"`
	CreatedAt   time.Time
}

func (OrderLineRow) TableName() string { return "order_items" }

type OrderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// InsertOrder is checkout's step A. The returned order carries the
// generated id and creation timestamp for linking lines to it.
func (r *OrderRepo) InsertOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	row := OrderRow{
		ID:            uuid.NewString(),
		OrderNumber:   o.OrderNumber,
		CustomerName:  o.CustomerName,
		TotalAmount:   o.TotalAmount,
		PaymentMethod: string(o.PaymentMethod),
		Status:        o.Status,
		CreatedBy:     o.CreatedBy,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Order{}, err
	}
	return toOrder(row), nil
}

// InsertLines is checkout's step B, one batch for the whole order.
func (r *OrderRepo) InsertLines(ctx context.Context, lines []domain.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}

	rows := make([]OrderLineRow, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, OrderLineRow{
			ID:          uuid.NewString(),
			OrderID:     l.OrderID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Price:       l.Price,
			Quantity:    l.Quantity,
			Subtotal:    l.Subtotal,
		})
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *OrderRepo) List(ctx context.Context, since *time.Time) ([]domain.Order, error) {
	tx := r.db.WithContext(ctx).Order("created_at DESC")
	if since != nil {
		tx = tx.Where("created_at >= ?", *since)
	}

	var rows []OrderRow
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, toOrder(row))
	}
	return out, nil
}

func (r *OrderRepo) LinesByOrder(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	var rows []OrderLineRow
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.OrderLine, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.OrderLine{
			ID:          row.ID,
			OrderID:     row.OrderID,
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			Price:       row.Price,
			Quantity:    row.Quantity,
			Subtotal:    row.Subtotal,
			CreatedAt:   row.CreatedAt,
		})
	}
	return out, nil
}

func toOrder(row OrderRow) domain.Order {
	return domain.Order{
		ID:            row.ID,
		OrderNumber:   row.OrderNumber,
		CustomerName:  row.CustomerName,
		TotalAmount:   row.TotalAmount,
		PaymentMethod: domain.PaymentMethod(row.PaymentMethod),
		Status:        row.Status,
		CreatedBy:     row.CreatedBy,
		CreatedAt:     row.CreatedAt,
	}
}
