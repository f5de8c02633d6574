package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/fortune_desk/internal/apperrors"
	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/fortune_desk/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fortune_desk/internal/core/ports/services"
)

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
	location      *time.Location
}

// ReportingServiceOption is a functional option for configuring the reporting service
type ReportingServiceOption func(*reportingService)

// WithReportingLocation sets the time zone that decides where "today" starts.
func WithReportingLocation(loc *time.Location) ReportingServiceOption {
	return func(s *reportingService) {
		s.location = loc
	}
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(repo portsrepo.ReportingRepository, options ...ReportingServiceOption) portssvc.ReportingService {
	svc := &reportingService{
		reportingRepo: repo,
		location:      time.UTC,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ReportingService = (*reportingService)(nil)

func (s *reportingService) GetDashboard(ctx context.Context, principal domain.Principal) (*domain.DashboardStats, error) {
	if !principal.IsAdmin() {
		return nil, fmt.Errorf("%w: dashboard is for operators", apperrors.ErrForbidden)
	}

	now := s.Now().In(s.location)
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)

	stats, err := s.reportingRepo.GetDashboardStats(ctx, startOfDay)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve dashboard stats")
		return nil, fmt.Errorf("failed to retrieve dashboard stats: %w", err)
	}
	return stats, nil
}
