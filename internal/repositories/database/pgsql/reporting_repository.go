package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/fortune_desk/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	BaseRepository
}

func newReportingRepository(db *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// GetDashboardStats aggregates operator counters in a single round trip.
func (r *reportingRepository) GetDashboardStats(ctx context.Context, since time.Time) (*domain.DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users) AS total_users,
			(SELECT COUNT(*) FROM fortune_requests) AS total_requests,
			(SELECT COUNT(*) FROM generation_results WHERE status IN ('pending_review', 'editing')) AS pending_reviews,
			(SELECT COUNT(*) FROM fortune_requests WHERE created_at >= $1) AS today_requests,
			(SELECT COALESCE(SUM(credits), 0) FROM payments) AS purchased_credits,
			(SELECT COALESCE(SUM(amount), 0) FROM payments) AS revenue
	`

	var stats domain.DashboardStats
	err := r.Pool.QueryRow(ctx, query, since).Scan(
		&stats.TotalUsers,
		&stats.TotalRequests,
		&stats.PendingReviews,
		&stats.TodayRequests,
		&stats.TotalPurchasedCredits,
		&stats.TotalRevenue,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying dashboard stats: %w", err)
	}
	return &stats, nil
}
