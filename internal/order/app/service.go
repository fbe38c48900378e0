// Package app answers the sales-history questions: which orders fell
// in a window, what was sold on one of them, and how the window sums
// up.
package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/prasetyadew/kasirpos/internal/order/domain"
)

// Window is a time-range filter over order history.
type Window string

const (
	WindowToday Window = "today"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
	WindowAll   Window = "all"
)

var ErrUnknownWindow = errors.New("unknown window")

// ParseWindow accepts the wire form of a window; empty defaults to
// today, matching the history screen's initial filter.
func ParseWindow(s string) (Window, error) {
	switch Window(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return WindowToday, nil
	case WindowToday:
		return WindowToday, nil
	case WindowWeek:
		return WindowWeek, nil
	case WindowMonth:
		return WindowMonth, nil
	case WindowAll:
		return WindowAll, nil
	}
	return "", ErrUnknownWindow
}

// LowerBound maps the window to an inclusive creation-time floor.
// Today means local midnight in now's location; week and month are
// rolling 7- and 30-day spans; all has no bound.
func (w Window) LowerBound(now time.Time) (time.Time, bool) {
	switch w {
	case WindowToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), true
	case WindowWeek:
		return now.AddDate(0, 0, -7), true
	case WindowMonth:
		return now.AddDate(0, 0, -30), true
	default:
		return time.Time{}, false
	}
}

// Summary is derived client-side over the currently loaded window.
type Summary struct {
	Revenue decimal.Decimal `json:"revenue"`
	Count   int             `json:"count"`
	Average decimal.Decimal `json:"average"`
}

// Summarize never divides by zero: an empty window has average 0.
func Summarize(orders []domain.Order) Summary {
	revenue := decimal.Zero
	for _, o := range orders {
		revenue = revenue.Add(o.TotalAmount)
	}

	avg := decimal.Zero
	if len(orders) > 0 {
		avg = revenue.Div(decimal.NewFromInt(int64(len(orders))))
	}

	return Summary{Revenue: revenue, Count: len(orders), Average: avg}
}

type Service struct {
	repo OrderReader
	now  func() time.Time
}

func NewService(repo OrderReader) *Service {
	return &Service{repo: repo, now: time.Now}
}

func NewServiceWithClock(repo OrderReader, now func() time.Time) *Service {
	return &Service{repo: repo, now: now}
}

func (s *Service) ListOrders(ctx context.Context, w Window) ([]domain.Order, error) {
	if bound, ok := w.LowerBound(s.now()); ok {
		return s.repo.List(ctx, &bound)
	}
	return s.repo.List(ctx, nil)
}

// Lines loads a single order's lines on demand; history never loads
// every order's lines up front.
func (s *Service) Lines(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	return s.repo.LinesByOrder(ctx, orderID)
}
