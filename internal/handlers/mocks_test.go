package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/fortune_desk/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fortune_desk/internal/core/ports/services"
	"github.com/SscSPs/fortune_desk/internal/dto"
	"github.com/stretchr/testify/mock"
)

// --- Mock AuthService ---
type MockAuthService struct {
	mock.Mock
}

var _ portssvc.AuthSvcFacade = (*MockAuthService)(nil)

func (m *MockAuthService) Signup(ctx context.Context, req dto.SignupRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthService) Authenticate(ctx context.Context, creds domain.Credentials) (*domain.Principal, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Principal), args.Error(1)
}

func (m *MockAuthService) IssueToken(ctx context.Context, principal domain.Principal) (string, time.Time, error) {
	args := m.Called(ctx, principal)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockAuthService) CreateAdmin(ctx context.Context, req dto.CreateAdminRequest) (*domain.Admin, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Admin), args.Error(1)
}

// --- Mock FortuneService ---
type MockFortuneService struct {
	mock.Mock
}

var _ portssvc.FortuneSvcFacade = (*MockFortuneService)(nil)

func (m *MockFortuneService) ListTypes(ctx context.Context) ([]domain.RequestType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RequestType), args.Error(1)
}

func (m *MockFortuneService) GetType(ctx context.Context, typeID string) (*domain.RequestType, error) {
	args := m.Called(ctx, typeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RequestType), args.Error(1)
}

func (m *MockFortuneService) GetRequest(ctx context.Context, requestID string, ownerID string) (*domain.FortuneRequest, error) {
	args := m.Called(ctx, requestID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FortuneRequest), args.Error(1)
}

func (m *MockFortuneService) ListRequestsByOwner(ctx context.Context, ownerID string, status *domain.RequestStatus, page domain.PageRequest) ([]domain.FortuneRequest, domain.Pagination, error) {
	args := m.Called(ctx, ownerID, status, page)
	return args.Get(0).([]domain.FortuneRequest), args.Get(1).(domain.Pagination), args.Error(2)
}

func (m *MockFortuneService) ListRequestsByStatus(ctx context.Context, principal domain.Principal, status *domain.RequestStatus, page domain.PageRequest) ([]domain.FortuneRequest, domain.Pagination, error) {
	args := m.Called(ctx, principal, status, page)
	return args.Get(0).([]domain.FortuneRequest), args.Get(1).(domain.Pagination), args.Error(2)
}

func (m *MockFortuneService) CreateRequest(ctx context.Context, userID string, req dto.CreateFortuneRequest) (*domain.FortuneRequest, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FortuneRequest), args.Error(1)
}

func (m *MockFortuneService) Transition(ctx context.Context, requestID string, from, to domain.RequestStatus, sideEffect portsrepo.TxFunc) error {
	args := m.Called(ctx, requestID, from, to, sideEffect)
	return args.Error(0)
}

func (m *MockFortuneService) TransitionTx(ctx context.Context, tx portsrepo.TxRepositories, requestID string, from, to domain.RequestStatus) error {
	args := m.Called(ctx, tx, requestID, from, to)
	return args.Error(0)
}

// --- Mock PublisherService ---
type MockPublisherService struct {
	mock.Mock
}

var _ portssvc.PublisherSvc = (*MockPublisherService)(nil)

func (m *MockPublisherService) Publish(ctx context.Context, tx portsrepo.TxRepositories, requestID string, finalText string, notes *string, approverID string) (*domain.PublishedResult, error) {
	args := m.Called(ctx, tx, requestID, finalText, notes, approverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PublishedResult), args.Error(1)
}

func (m *MockPublisherService) Announce(ctx context.Context, published domain.PublishedResult) {
	m.Called(ctx, published)
}

func (m *MockPublisherService) GetPublished(ctx context.Context, requestID string, ownerID string) (*domain.PublishedResult, error) {
	args := m.Called(ctx, requestID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PublishedResult), args.Error(1)
}

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

func (m *MockLedgerService) Balance(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerService) History(ctx context.Context, userID string, limit int, nextToken string) ([]domain.LedgerEntry, string, error) {
	args := m.Called(ctx, userID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]domain.LedgerEntry), args.String(1), args.Error(2)
}

func (m *MockLedgerService) VerifyBalance(ctx context.Context, principal domain.Principal, userID string) (*domain.BalanceAudit, error) {
	args := m.Called(ctx, principal, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceAudit), args.Error(1)
}

func (m *MockLedgerService) Debit(ctx context.Context, userID string, amount int64, description string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, userID, amount, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerService) Credit(ctx context.Context, userID string, amount int64, kind domain.EntryKind, description string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, userID, amount, kind, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerService) Purchase(ctx context.Context, principal domain.Principal, userID string, req dto.PurchaseRequest) (*domain.PaymentRecord, error) {
	args := m.Called(ctx, principal, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentRecord), args.Error(1)
}

func (m *MockLedgerService) Adjust(ctx context.Context, principal domain.Principal, userID string, req dto.AdjustCreditsRequest) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, principal, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerService) PostTx(ctx context.Context, tx portsrepo.TxRepositories, posting domain.Posting) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, tx, posting)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

// --- Mock ReviewService ---
type MockReviewService struct {
	mock.Mock
}

var _ portssvc.ReviewSvcFacade = (*MockReviewService)(nil)

func (m *MockReviewService) GetResult(ctx context.Context, principal domain.Principal, resultID string) (*domain.GenerationResult, error) {
	args := m.Called(ctx, principal, resultID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GenerationResult), args.Error(1)
}

func (m *MockReviewService) ListResults(ctx context.Context, principal domain.Principal, status *domain.ResultStatus, page domain.PageRequest) ([]domain.GenerationResult, domain.Pagination, error) {
	args := m.Called(ctx, principal, status, page)
	return args.Get(0).([]domain.GenerationResult), args.Get(1).(domain.Pagination), args.Error(2)
}

func (m *MockReviewService) Edit(ctx context.Context, principal domain.Principal, resultID string, req dto.EditResultRequest) (*domain.GenerationResult, error) {
	args := m.Called(ctx, principal, resultID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GenerationResult), args.Error(1)
}

func (m *MockReviewService) Approve(ctx context.Context, principal domain.Principal, resultID string, req dto.ApproveResultRequest) (*domain.PublishedResult, error) {
	args := m.Called(ctx, principal, resultID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PublishedResult), args.Error(1)
}

func (m *MockReviewService) Reject(ctx context.Context, principal domain.Principal, resultID string, reason string) (*domain.GenerationResult, error) {
	args := m.Called(ctx, principal, resultID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GenerationResult), args.Error(1)
}

// --- Mock ReportingService ---
type MockReportingService struct {
	mock.Mock
}

var _ portssvc.ReportingService = (*MockReportingService)(nil)

func (m *MockReportingService) GetDashboard(ctx context.Context, principal domain.Principal) (*domain.DashboardStats, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DashboardStats), args.Error(1)
}

// --- Mock QueueInspector ---
type MockQueueInspector struct {
	mock.Mock
}

var _ portssvc.QueueInspector = (*MockQueueInspector)(nil)

func (m *MockQueueInspector) Stats(ctx context.Context) (domain.QueueStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.QueueStats), args.Error(1)
}

func (m *MockQueueInspector) DeadJobs(ctx context.Context, limit int) ([]domain.DeadJob, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DeadJob), args.Error(1)
}
