package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prasetyadew/kasirpos/internal/cart"
	"github.com/prasetyadew/kasirpos/internal/order/domain"
)

type fakeWriter struct {
	failOrder bool
	failLines bool

	insertedOrder *domain.Order
	insertedLines []domain.OrderLine
}

var errDown = errors.New("store down")

func (f *fakeWriter) InsertOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	if f.failOrder {
		return domain.Order{}, errDown
	}
	o.ID = "order-1"
	o.CreatedAt = time.Now()
	f.insertedOrder = &o
	return o, nil
}

func (f *fakeWriter) InsertLines(ctx context.Context, lines []domain.OrderLine) error {
	if f.failLines {
		return errDown
	}
	f.insertedLines = lines
	return nil
}

func fixedClock() func() time.Time {
	at := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func sampleCart() *cart.Cart {
	c := cart.New()
	c.Add("p1", "Latte", decimal.NewFromInt(25000))
	c.Add("p1", "Latte", decimal.NewFromInt(25000))
	c.Add("p2", "Tea", decimal.NewFromInt(15000))
	return c
}

func TestCheckoutEmptyCart(t *testing.T) {
	w := &fakeWriter{}
	svc := NewService(w)

	_, err := svc.Checkout(context.Background(), cart.New(), "", domain.PaymentCash, "user-1")

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Nil(t, w.insertedOrder, "empty cart must not reach the store")
	assert.Nil(t, w.insertedLines)
}

func TestCheckoutRejectsUnknownPaymentMethod(t *testing.T) {
	w := &fakeWriter{}
	svc := NewService(w)

	_, err := svc.Checkout(context.Background(), sampleCart(), "", "cheque", "user-1")

	assert.ErrorIs(t, err, ErrInvalidPayment)
	assert.Nil(t, w.insertedOrder)
}

func TestCheckoutSuccess(t *testing.T) {
	w := &fakeWriter{}
	svc := NewServiceWithClock(w, fixedClock())
	c := sampleCart()

	receipt, err := svc.Checkout(context.Background(), c, "Budi", domain.PaymentCard, "user-1")
	require.NoError(t, err)

	assert.Equal(t, "order-1", receipt.OrderID)
	assert.Equal(t, "ORD-1748770200000", receipt.OrderNumber)
	assert.True(t, receipt.Total.Equal(decimal.NewFromInt(65000)))

	require.NotNil(t, w.insertedOrder)
	assert.Equal(t, "Budi", w.insertedOrder.CustomerName)
	assert.Equal(t, domain.PaymentCard, w.insertedOrder.PaymentMethod)
	assert.Equal(t, domain.StatusCompleted, w.insertedOrder.Status)
	assert.Equal(t, "user-1", w.insertedOrder.CreatedBy)

	require.Len(t, w.insertedLines, 2)
	var sum decimal.Decimal
	for _, l := range w.insertedLines {
		assert.Equal(t, "order-1", l.OrderID)
		assert.True(t, l.Subtotal.Equal(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))))
		sum = sum.Add(l.Subtotal)
	}
	assert.True(t, w.insertedOrder.TotalAmount.Equal(sum), "order total must equal the line subtotal sum")

	// Commit and reset are separate, caller-sequenced steps.
	assert.False(t, c.Empty(), "checkout must not clear the cart itself")
}

func TestCheckoutDefaultsCustomerToGuest(t *testing.T) {
	w := &fakeWriter{}
	svc := NewService(w)

	_, err := svc.Checkout(context.Background(), sampleCart(), "   ", domain.PaymentCash, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Guest", w.insertedOrder.CustomerName)
}

func TestCheckoutOrderWriteFailure(t *testing.T) {
	w := &fakeWriter{failOrder: true}
	svc := NewService(w)

	_, err := svc.Checkout(context.Background(), sampleCart(), "", domain.PaymentCash, "user-1")

	var we *WriteError
	require.ErrorAs(t, err, &we)
	assert.ErrorIs(t, err, errDown)
	assert.Nil(t, w.insertedLines, "no lines may be written when the order insert fails")
}

func TestCheckoutPartialCommit(t *testing.T) {
	w := &fakeWriter{failLines: true}
	svc := NewServiceWithClock(w, fixedClock())

	_, err := svc.Checkout(context.Background(), sampleCart(), "", domain.PaymentCash, "user-1")

	var pce *PartialCommitError
	require.ErrorAs(t, err, &pce)
	assert.Equal(t, "order-1", pce.OrderID)
	assert.Equal(t, "ORD-1748770200000", pce.OrderNumber)
	assert.ErrorIs(t, err, errDown)

	// The orphaned order stays; reconciliation is manual.
	require.NotNil(t, w.insertedOrder)

	var we *WriteError
	assert.False(t, errors.As(err, &we), "partial commit must be distinct from a total write failure")
}

func TestOrderNumberFollowsClock(t *testing.T) {
	w := &fakeWriter{}
	at := time.UnixMilli(1700000000123)
	svc := NewServiceWithClock(w, func() time.Time { return at })

	receipt, err := svc.Checkout(context.Background(), sampleCart(), "", domain.PaymentCash, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "ORD-1700000000123", receipt.OrderNumber)
}
