package app

import (
	"context"
	"time"

	"github.com/prasetyadew/kasirpos/internal/order/domain"
)

type OrderReader interface {
	// List returns orders newest first, optionally bounded below by
	// since (nil means no lower bound).
	List(ctx context.Context, since *time.Time) ([]domain.Order, error)
	LinesByOrder(ctx context.Context, orderID string) ([]domain.OrderLine, error)
}
