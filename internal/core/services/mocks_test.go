package services_test

import (
	"context"
	"errors"
	"time"

	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/fortune_desk/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fortune_desk/internal/core/ports/services"
	"github.com/stretchr/testify/mock"
)

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
}

var _ portsrepo.UserRepository = (*MockUserRepository)(nil)

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindUserByIDForUpdate(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateCredits(ctx context.Context, userID string, credits int64, now time.Time) error {
	args := m.Called(ctx, userID, credits, now)
	return args.Error(0)
}

// --- Mock LedgerRepository ---
type MockLedgerRepository struct {
	mock.Mock
}

var _ portsrepo.LedgerRepository = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) AppendEntry(ctx context.Context, entry domain.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) ListEntries(ctx context.Context, userID string, after *portsrepo.LedgerCursor, limit int) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, userID, after, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) SumEntries(ctx context.Context, userID string) (int64, int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

// --- Mock ReportingRepository ---
type MockReportingRepository struct {
	mock.Mock
}

func (m *MockReportingRepository) GetDashboardStats(ctx context.Context, since time.Time) (*domain.DashboardStats, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DashboardStats), args.Error(1)
}

// --- Mock JobEnqueuer ---
type MockJobEnqueuer struct {
	mock.Mock
}

var _ portssvc.JobEnqueuer = (*MockJobEnqueuer)(nil)

func (m *MockJobEnqueuer) Enqueue(ctx context.Context, requestID string) (*domain.Job, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

// --- Mock Notifier ---
type MockNotifier struct {
	mock.Mock
}

var _ portssvc.Notifier = (*MockNotifier)(nil)

func (m *MockNotifier) ResultGenerated(ctx context.Context, result domain.GenerationResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockNotifier) ResultPublished(ctx context.Context, userID string, published domain.PublishedResult) error {
	args := m.Called(ctx, userID, published)
	return args.Error(0)
}

// --- Mock ArtifactStore ---
type MockArtifactStore struct {
	mock.Mock
}

func (m *MockArtifactStore) Archive(ctx context.Context, userID string, published domain.PublishedResult) (string, error) {
	args := m.Called(ctx, userID, published)
	return args.String(0), args.Error(1)
}

// passthroughTx runs fn directly against a fixed set of repositories.
type passthroughTx struct {
	repos portsrepo.TxRepositories
}

func (p passthroughTx) WithinTx(ctx context.Context, fn portsrepo.TxFunc) error {
	return fn(ctx, p.repos)
}

// faultyTx wraps a real transaction manager and swaps repositories inside
// each unit, so tests can inject failures part-way through.
type faultyTx struct {
	portsrepo.TransactionManager
	wrap func(portsrepo.TxRepositories) portsrepo.TxRepositories
}

func (f faultyTx) WithinTx(ctx context.Context, fn portsrepo.TxFunc) error {
	return f.TransactionManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		return fn(ctx, f.wrap(tx))
	})
}

var errDiskFull = errors.New("disk full")

type failingRequests struct {
	portsrepo.RequestRepository
}

func (failingRequests) SaveRequest(context.Context, domain.FortuneRequest) error {
	return errDiskFull
}
