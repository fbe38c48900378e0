package app

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prasetyadew/kasirpos/internal/order/domain"
)

type fakeReader struct {
	orders    []domain.Order
	gotSince  *time.Time
	listCalls int
}

func (f *fakeReader) List(ctx context.Context, since *time.Time) ([]domain.Order, error) {
	f.gotSince = since
	f.listCalls++

	out := make([]domain.Order, 0, len(f.orders))
	for _, o := range f.orders {
		if since == nil || !o.CreatedAt.Before(*since) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeReader) LinesByOrder(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	return nil, nil
}

func TestParseWindow(t *testing.T) {
	for in, want := range map[string]Window{
		"":      WindowToday,
		"today": WindowToday,
		"week":  WindowWeek,
		"MONTH": WindowMonth,
		"all":   WindowAll,
	} {
		got, err := ParseWindow(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseWindow("yesterday")
	assert.ErrorIs(t, err, ErrUnknownWindow)
}

func TestLowerBound(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	now := time.Date(2025, 6, 15, 14, 45, 30, 0, loc)

	t.Run("today is local midnight", func(t *testing.T) {
		bound, ok := WindowToday.LowerBound(now)
		require.True(t, ok)
		assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, loc), bound)
	})

	t.Run("week is now minus 7 days", func(t *testing.T) {
		bound, ok := WindowWeek.LowerBound(now)
		require.True(t, ok)
		assert.Equal(t, now.AddDate(0, 0, -7), bound)
	})

	t.Run("month is now minus 30 days", func(t *testing.T) {
		bound, ok := WindowMonth.LowerBound(now)
		require.True(t, ok)
		assert.Equal(t, now.AddDate(0, 0, -30), bound)
	})

	t.Run("all has no bound", func(t *testing.T) {
		_, ok := WindowAll.LowerBound(now)
		assert.False(t, ok)
	})
}

func TestListOrdersPassesBound(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	repo := &fakeReader{orders: []domain.Order{
		{ID: "o1", CreatedAt: now.Add(-1 * time.Hour)},
		{ID: "o2", CreatedAt: now.AddDate(0, 0, -3)},
		{ID: "o3", CreatedAt: now.AddDate(0, 0, -60)},
	}}
	svc := NewServiceWithClock(repo, func() time.Time { return now })

	todays, err := svc.ListOrders(context.Background(), WindowToday)
	require.NoError(t, err)
	require.NotNil(t, repo.gotSince)
	assert.Len(t, todays, 1)
	assert.Equal(t, "o1", todays[0].ID)

	all, err := svc.ListOrders(context.Background(), WindowAll)
	require.NoError(t, err)
	assert.Nil(t, repo.gotSince)
	assert.Len(t, all, 3)
}

func TestSummarize(t *testing.T) {
	orders := []domain.Order{
		{TotalAmount: decimal.NewFromInt(65000)},
		{TotalAmount: decimal.NewFromInt(35000)},
	}

	s := Summarize(orders)
	assert.True(t, s.Revenue.Equal(decimal.NewFromInt(100000)))
	assert.Equal(t, 2, s.Count)
	assert.True(t, s.Average.Equal(decimal.NewFromInt(50000)))
}

func TestSummarizeEmptyWindow(t *testing.T) {
	s := Summarize(nil)
	assert.True(t, s.Revenue.IsZero())
	assert.Equal(t, 0, s.Count)
	assert.True(t, s.Average.IsZero(), "average over zero orders is 0, not an error")
}
