package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/fortune_desk/internal/core/domain"
)

// ReportingRepository defines operations for retrieving dashboard aggregates
type ReportingRepository interface {
	// GetDashboardStats aggregates counters; TodayRequests counts requests created at or after since.
	GetDashboardStats(ctx context.Context, since time.Time) (*domain.DashboardStats, error)
}
