package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/fortune_desk/internal/apperrors"
	"github.com/SscSPs/fortune_desk/internal/core/domain"
	"github.com/SscSPs/fortune_desk/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetDashboard(t *testing.T) {
	repo := new(MockReportingRepository)
	svc := services.NewReportingService(repo)
	ctx := context.Background()

	want := &domain.DashboardStats{TotalUsers: 2, TotalRevenue: decimal.RequireFromString("1500")}
	repo.On("GetDashboardStats", mock.Anything, mock.MatchedBy(func(since time.Time) bool {
		return since.Hour() == 0 && since.Minute() == 0 && !since.After(time.Now())
	})).Return(want, nil).Once()

	got, err := svc.GetDashboard(ctx, reviewer)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	repo.AssertExpectations(t)
}

func TestGetDashboard_Errors(t *testing.T) {
	repo := new(MockReportingRepository)
	svc := services.NewReportingService(repo)
	ctx := context.Background()

	_, err := svc.GetDashboard(ctx, domain.Principal{Kind: domain.PrincipalUser, ID: "u1"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	dbErr := errors.New("connection reset")
	repo.On("GetDashboardStats", mock.Anything, mock.Anything).Return(nil, dbErr).Once()
	_, err = svc.GetDashboard(ctx, operator)
	assert.ErrorIs(t, err, dbErr)
}

func TestGetDashboard_MemoryStore(t *testing.T) {
	f := newFixture(t, services.Collaborators{})
	f.seedUser(t, "u1", 5)
	ctx := context.Background()

	stats, err := f.svc.Reporting.GetDashboard(ctx, operator)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalUsers)
	assert.True(t, stats.TotalRevenue.IsZero())
}
