package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/fortune_desk/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fortune_desk/internal/core/ports/services"
	"github.com/SscSPs/fortune_desk/internal/core/services"
	"github.com/SscSPs/fortune_desk/internal/platform/config"
	"github.com/SscSPs/fortune_desk/internal/repositories/memory"
	"github.com/stretchr/testify/require"
)

const (
	cheapTypeID    = "type-cheap"
	costlyTypeID   = "type-costly"
	inactiveTypeID = "type-inactive"
)

func testTypes() []domain.RequestType {
	schema := domain.InputSchema{
		Required: []string{"name", "consultation"},
		Optional: []string{"birthdate"},
		Fields: map[string]domain.FieldSpec{
			"name":         {Type: domain.FieldText, MaxLength: 50},
			"birthdate":    {Type: domain.FieldDate},
			"consultation": {Type: domain.FieldTextarea, MaxLength: 500},
		},
	}
	return []domain.RequestType{
		{TypeID: cheapTypeID, Name: "Tarot", RequiredCredits: 1, IsActive: true, InputSchema: schema},
		{TypeID: costlyTypeID, Name: "Astrology", RequiredCredits: 2, IsActive: true, InputSchema: schema},
		{TypeID: inactiveTypeID, Name: "Retired", RequiredCredits: 1, IsActive: false, InputSchema: schema},
	}
}

func validInput() map[string]any {
	return map[string]any{"name": "Aiko", "consultation": "Will my shop do well?"}
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "test-secret",
		JWTExpiryDuration:  time.Hour,
		JWTIssuer:          "fortune-desk-test",
		SignupBonusCredits: 3,
	}
}

var (
	reviewer = domain.Principal{Kind: domain.PrincipalAdmin, ID: "admin-reviewer", Permissions: domain.NewCapabilitySet("fortune:review")}
	approver = domain.Principal{Kind: domain.PrincipalAdmin, ID: "admin-approver", Permissions: domain.NewCapabilitySet("fortune:review", "fortune:approve")}
	operator = domain.Principal{Kind: domain.PrincipalAdmin, ID: "admin-ops", Permissions: domain.NewCapabilitySet("*")}
)

type fixture struct {
	store *memory.Store
	repos portsrepo.RepositoryProvider
	svc   *portssvc.ServiceContainer
}

func newFixture(t *testing.T, collab services.Collaborators) *fixture {
	t.Helper()
	store := memory.NewStore(testTypes()...)
	repos := store.Provider()
	return &fixture{
		store: store,
		repos: repos,
		svc:   services.NewServiceContainer(testConfig(), repos, collab),
	}
}

func (f *fixture) seedUser(t *testing.T, id string, credits int64) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.repos.UserRepo.SaveUser(ctx, domain.User{UserID: id, Email: id + "@example.com", Name: id}))
	if credits > 0 {
		_, err := f.svc.Ledger.Credit(ctx, id, credits, domain.EntryPurchase, "seed")
		require.NoError(t, err)
	}
}

// generate stands in for the worker: it claims the request and stores a
// pending_review result.
func (f *fixture) generate(t *testing.T, requestID, text string) *domain.GenerationResult {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.svc.Fortune.Transition(ctx, requestID, domain.RequestPending, domain.RequestProcessing, nil))

	now := time.Now().UTC()
	result := domain.GenerationResult{
		ResultID:   "result-" + requestID,
		RequestID:  requestID,
		RawText:    text,
		Status:     domain.ResultPendingReview,
		Timestamps: domain.Timestamps{CreatedAt: now, UpdatedAt: now},
	}
	require.NoError(t, f.svc.Fortune.Transition(ctx, requestID, domain.RequestProcessing, domain.RequestAIGenerated,
		func(ctx context.Context, tx portsrepo.TxRepositories) error {
			return tx.Results.SaveResult(ctx, result)
		}))
	return &result
}
