package jobs_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/fortune_desk/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fortune_desk/internal/core/ports/services"
	"github.com/SscSPs/fortune_desk/internal/core/services"
	"github.com/SscSPs/fortune_desk/internal/dto"
	"github.com/SscSPs/fortune_desk/internal/jobs"
	"github.com/SscSPs/fortune_desk/internal/platform/config"
	"github.com/SscSPs/fortune_desk/internal/repositories/memory"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const readingTypeID = "type-reading"

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, in portssvc.GenerationInput) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) ResultGenerated(ctx context.Context, result domain.GenerationResult) error {
	return m.Called(ctx, result).Error(0)
}

func (m *MockNotifier) ResultPublished(ctx context.Context, userID string, published domain.PublishedResult) error {
	return m.Called(ctx, userID, published).Error(0)
}

type harness struct {
	repos     portsrepo.RepositoryProvider
	svc       *portssvc.ServiceContainer
	queue     *jobs.MemoryQueue
	clock     *testClock
	gen       *MockGenerator
	processor *jobs.Processor
}

func newHarness(t *testing.T, opts ...jobs.ProcessorOption) *harness {
	t.Helper()
	store := memory.NewStore(domain.RequestType{
		TypeID:          readingTypeID,
		Name:            "Tarot",
		RequiredCredits: 2,
		IsActive:        true,
		InputSchema: domain.InputSchema{
			Required: []string{"name"},
			Fields:   map[string]domain.FieldSpec{"name": {Type: domain.FieldText, MaxLength: 50}},
		},
	})
	repos := store.Provider()
	clock := &testClock{now: time.Now().UTC()}
	queue := jobs.NewMemoryQueue(time.Minute).WithClock(clock.Now)
	svc := services.NewServiceContainer(&config.Config{JWTSecret: "test"}, repos, services.Collaborators{Queue: queue, Inspector: queue})
	gen := new(MockGenerator)

	return &harness{
		repos:     repos,
		svc:       svc,
		queue:     queue,
		clock:     clock,
		gen:       gen,
		processor: jobs.NewProcessor(queue, svc.Fortune, repos.RequestRepo, repos.TypeRepo, svc.Ledger, gen, opts...),
	}
}

// submit creates a user with credits and a paid request for them.
func (h *harness) submit(t *testing.T, userID string, credits int64) *domain.FortuneRequest {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.repos.UserRepo.SaveUser(ctx, domain.User{UserID: userID, Email: userID + "@example.com"}))
	_, err := h.svc.Ledger.Credit(ctx, userID, credits, domain.EntryPurchase, "seed")
	require.NoError(t, err)

	req, err := h.svc.Fortune.CreateRequest(ctx, userID, dto.CreateFortuneRequest{
		TypeID:    readingTypeID,
		InputData: map[string]any{"name": "Aiko"},
	})
	require.NoError(t, err)
	return req
}

func (h *harness) next(t *testing.T) domain.Job {
	t.Helper()
	job, err := h.queue.Dequeue(context.Background())
	require.NoError(t, err)
	return *job
}

func (h *harness) status(t *testing.T, requestID string) domain.RequestStatus {
	t.Helper()
	req, err := h.repos.RequestRepo.FindRequestByID(context.Background(), requestID)
	require.NoError(t, err)
	return req.Status
}

func (h *harness) balance(t *testing.T, userID string) int64 {
	t.Helper()
	b, err := h.svc.Ledger.Balance(context.Background(), userID)
	require.NoError(t, err)
	return b
}
