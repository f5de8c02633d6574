package memory

import (
	"context"
	"time"

	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/fortune_desk/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

type reportingRepo struct{ handle }

var _ portsrepo.ReportingRepository = (*reportingRepo)(nil)

func (r *reportingRepo) GetDashboardStats(_ context.Context, since time.Time) (*domain.DashboardStats, error) {
	stats := &domain.DashboardStats{TotalRevenue: decimal.Zero}
	err := r.do(func(st *state) error {
		stats.TotalUsers = int64(len(st.users))
		stats.TotalRequests = int64(len(st.requests))
		for _, req := range st.requests {
			if !req.CreatedAt.Before(since) {
				stats.TodayRequests++
			}
		}
		for _, res := range st.results {
			if res.Status.Reviewable() {
				stats.PendingReviews++
			}
		}
		for _, p := range st.payments {
			stats.TotalPurchasedCredits += p.Credits
			stats.TotalRevenue = stats.TotalRevenue.Add(p.Amount)
		}
		return nil
	})
	return stats, err
}
