package services

import (
	"context"

	"github.com/SscSPs/fortune_desk/internal/core/domain"
)

// ReportingService defines the interface for operator dashboards
type ReportingService interface {
	GetDashboard(ctx context.Context, principal domain.Principal) (*domain.DashboardStats, error)
}

// QueueInspector exposes queue health to operators.
type QueueInspector interface {
	Stats(ctx context.Context) (domain.QueueStats, error)
	DeadJobs(ctx context.Context, limit int) ([]domain.DeadJob, error)
}
