// Package dashboard aggregates the landing-page numbers.
package dashboard

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

// Summary holds the dashboard card values.
type Summary struct {
	Customers       int    `json:"customers"`
	Invoices        int    `json:"invoices"`
	PendingInvoices int    `json:"pending_invoices"`
	PaidInvoices    int    `json:"paid_invoices"`
	Posts           int    `json:"posts"`
	RevenueCents    int64  `json:"revenue_cents"`
	RevenueDisplay  string `json:"revenue_display"`
}

// Service computes dashboard summaries.
type Service struct {
	pool *pgxpool.Pool
}

// NewService constructs a Service.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// Summarize runs the independent counts concurrently; the slowest single
// query bounds the latency of the whole card row.
func (s *Service) Summarize(ctx context.Context) (Summary, error) {
	var summary Summary
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers`).Scan(&summary.Customers)
	})
	g.Go(func() error {
		return s.pool.QueryRow(ctx, `
			SELECT COUNT(*),
			       COUNT(*) FILTER (WHERE status = 'pending'),
			       COUNT(*) FILTER (WHERE status = 'paid'),
			       COALESCE(SUM(amount) FILTER (WHERE status = 'paid'), 0)
			FROM invoices`).
			Scan(&summary.Invoices, &summary.PendingInvoices, &summary.PaidInvoices, &summary.RevenueCents)
	})
	g.Go(func() error {
		return s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts`).Scan(&summary.Posts)
	})

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	summary.RevenueDisplay = formatRevenue(summary.RevenueCents)
	return summary, nil
}
