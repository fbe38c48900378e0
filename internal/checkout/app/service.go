// Package app builds the order + order-line transaction out of a
// finished cart and submits it as a two-step write.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/prasetyadew/kasirpos/internal/cart"
	"github.com/prasetyadew/kasirpos/internal/order/domain"
)

// OrderWriter is the store-facing side of checkout. InsertOrder and
// InsertLines are deliberately separate calls: the commit is two steps,
// not one transaction, and the failure modes differ (see
// PartialCommitError).
type OrderWriter interface {
	InsertOrder(ctx context.Context, o domain.Order) (domain.Order, error)
	InsertLines(ctx context.Context, lines []domain.OrderLine) error
}

var ErrEmptyCart = errors.New("cart is empty")

var ErrInvalidPayment = errors.New("unknown payment method")

// WriteError means the order insert itself failed; nothing was
// persisted and the cashier can simply retry.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string { return fmt.Sprintf("order write failed: %v", e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }

// PartialCommitError means the order row exists but its lines were not
// written. Recovery differs from WriteError: a retry must not insert
// the order again, so the persisted order's identity is carried along
// for manual reconciliation. No compensating delete is attempted.
type PartialCommitError struct {
	OrderID     string
	OrderNumber string
	Err         error
}

func (e *PartialCommitError) Error() string {
	return fmt.Sprintf("order %s committed without lines: %v", e.OrderNumber, e.Err)
}

func (e *PartialCommitError) Unwrap() error { return e.Err }

type Receipt struct {
	OrderID     string          `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	Total       decimal.Decimal `json:"total"`
}

const defaultCustomer = "Guest"

type Service struct {
	store OrderWriter
	now   func() time.Time
}

func NewService(store OrderWriter) *Service {
	return &Service{store: store, now: time.Now}
}

// NewServiceWithClock pins the clock used for order numbers and is
// meant for tests.
func NewServiceWithClock(store OrderWriter, now func() time.Time) *Service {
	return &Service{store: store, now: now}
}

// Checkout converts the cart into one order plus one line per cart
// line. The total persisted is the one derived from this cart value,
// never a server-side recomputation, so the caller must pass the same
// cart it is about to clear. The cart is left untouched; clearing it
// after a successful commit is the caller's step.
func (s *Service) Checkout(ctx context.Context, c *cart.Cart, customerName string, method domain.PaymentMethod, actorID string) (Receipt, error) {
	if c == nil || c.Empty() {
		return Receipt{}, ErrEmptyCart
	}
	if !method.Valid() {
		return Receipt{}, ErrInvalidPayment
	}

	customerName = strings.TrimSpace(customerName)
	if customerName == "" {
		customerName = defaultCustomer
	}

	order := domain.Order{
		OrderNumber:   s.orderNumber(),
		CustomerName:  customerName,
		TotalAmount:   c.Total(),
		PaymentMethod: method,
		Status:        domain.StatusCompleted,
		CreatedBy:     actorID,
	}

	created, err := s.store.InsertOrder(ctx, order)
	if err != nil {
		return Receipt{}, &WriteError{Err: err}
	}

	lines := make([]domain.OrderLine, 0, len(c.Lines()))
	for _, l := range c.Lines() {
		qty := decimal.NewFromInt(int64(l.Quantity))
		lines = append(lines, domain.OrderLine{
			OrderID:     created.ID,
			ProductID:   l.ProductID,
			ProductName: l.Name,
			Price:       l.Price,
			Quantity:    l.Quantity,
			Subtotal:    l.Price.Mul(qty),
		})
	}

	if err := s.store.InsertLines(ctx, lines); err != nil {
		return Receipt{}, &PartialCommitError{
			OrderID:     created.ID,
			OrderNumber: created.OrderNumber,
			Err:         err,
		}
	}

	return Receipt{
		OrderID:     created.ID,
		OrderNumber: created.OrderNumber,
		Total:       created.TotalAmount,
	}, nil
}

// orderNumber derives a human-scannable number from the wall clock,
// e.g. ORD-1735689600000. Uniqueness rides on the millisecond clock
// plus the store's unique index; collisions across terminals surface
// as plain write errors.
func (s *Service) orderNumber() string {
	return fmt.Sprintf("ORD-%d", s.now().UnixMilli())
}
