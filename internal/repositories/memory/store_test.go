package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/fortune_desk/internal/apperrors"
	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/fortune_desk/internal/core/ports/repositories"
	"github.com/SscSPs/fortune_desk/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, p portsrepo.RepositoryProvider, id string, credits int64) {
	t.Helper()
	require.NoError(t, p.UserRepo.SaveUser(context.Background(), domain.User{
		UserID:  id,
		Email:   id + "@example.com",
		Name:    id,
		Credits: credits,
	}))
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	store := memory.NewStore()
	p := store.Provider()
	ctx := context.Background()
	seedUser(t, p, "u1", 5)

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		require.NoError(t, tx.Users.UpdateCredits(ctx, "u1", 2, time.Now()))
		require.NoError(t, tx.Ledger.AppendEntry(ctx, domain.LedgerEntry{EntryID: "e1", UserID: "u1", Amount: -3, Kind: domain.EntryUsage}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	u, err := p.UserRepo.FindUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), u.Credits)

	sum, count, err := p.LedgerRepo.SumEntries(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, sum)
	assert.Zero(t, count)
}

func TestWithinTx_CommitsOnSuccess(t *testing.T) {
	store := memory.NewStore()
	p := store.Provider()
	ctx := context.Background()
	seedUser(t, p, "u1", 5)

	err := store.WithinTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		return tx.Users.UpdateCredits(ctx, "u1", 7, time.Now())
	})
	require.NoError(t, err)

	u, err := p.UserRepo.FindUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), u.Credits)
}

func TestUpdateRequestStatus_Conditional(t *testing.T) {
	store := memory.NewStore()
	p := store.Provider()
	ctx := context.Background()
	seedUser(t, p, "u1", 0)

	require.NoError(t, p.RequestRepo.SaveRequest(ctx, domain.FortuneRequest{RequestID: "r1", UserID: "u1", Status: domain.RequestPending}))

	require.NoError(t, p.RequestRepo.UpdateRequestStatus(ctx, "r1", domain.RequestPending, domain.RequestProcessing, time.Now()))

	err := p.RequestRepo.UpdateRequestStatus(ctx, "r1", domain.RequestPending, domain.RequestProcessing, time.Now())
	assert.ErrorIs(t, err, apperrors.ErrStaleState)

	err = p.RequestRepo.UpdateRequestStatus(ctx, "missing", domain.RequestPending, domain.RequestProcessing, time.Now())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSaveResult_OnePerRequest(t *testing.T) {
	p := memory.NewStore().Provider()
	ctx := context.Background()

	require.NoError(t, p.ResultRepo.SaveResult(ctx, domain.GenerationResult{ResultID: "a", RequestID: "r1"}))
	err := p.ResultRepo.SaveResult(ctx, domain.GenerationResult{ResultID: "b", RequestID: "r1"})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)

	got, err := p.ResultRepo.FindResultByRequestID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "a", got.ResultID)
}

func TestListEntries_KeysetPagination(t *testing.T) {
	p := memory.NewStore().Provider()
	ctx := context.Background()
	seedUser(t, p, "u1", 0)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"e1", "e2", "e3", "e4", "e5"} {
		require.NoError(t, p.LedgerRepo.AppendEntry(ctx, domain.LedgerEntry{
			EntryID: id, UserID: "u1", Amount: 1, Kind: domain.EntryBonus,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	first, err := p.LedgerRepo.ListEntries(ctx, "u1", nil, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "e5", first[0].EntryID)
	assert.Equal(t, "e4", first[1].EntryID)

	last := first[len(first)-1]
	second, err := p.LedgerRepo.ListEntries(ctx, "u1", &portsrepo.LedgerCursor{CreatedAt: last.CreatedAt, EntryID: last.EntryID}, 10)
	require.NoError(t, err)
	require.Len(t, second, 3)
	assert.Equal(t, "e3", second[0].EntryID)
	assert.Equal(t, "e1", second[2].EntryID)
}

func TestListRequests_Filters(t *testing.T) {
	p := memory.NewStore().Provider()
	ctx := context.Background()
	seedUser(t, p, "u1", 0)
	seedUser(t, p, "u2", 0)

	now := time.Now()
	old := now.Add(-time.Hour)
	reqs := []domain.FortuneRequest{
		{RequestID: "a", UserID: "u1", Status: domain.RequestPending, Timestamps: domain.Timestamps{CreatedAt: old, UpdatedAt: old}},
		{RequestID: "b", UserID: "u1", Status: domain.RequestPublished, Timestamps: domain.Timestamps{CreatedAt: now, UpdatedAt: now}},
		{RequestID: "c", UserID: "u2", Status: domain.RequestPending, Timestamps: domain.Timestamps{CreatedAt: now, UpdatedAt: now}},
	}
	for _, r := range reqs {
		require.NoError(t, p.RequestRepo.SaveRequest(ctx, r))
	}

	owner := "u1"
	got, total, err := p.RequestRepo.ListRequests(ctx, domain.RequestFilter{UserID: &owner}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "b", got[0].RequestID)

	got, _, err = p.RequestRepo.ListRequests(ctx, domain.RequestFilter{UserID: &owner, OldestFirst: true}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, "a", got[0].RequestID)

	pending := domain.RequestPending
	cutoff := now.Add(-time.Minute)
	got, total, err = p.RequestRepo.ListRequests(ctx, domain.RequestFilter{Status: &pending, CreatedBefore: &cutoff}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "a", got[0].RequestID)
}

func TestDefaultRequestTypes_SeedCatalog(t *testing.T) {
	p := memory.NewStore(memory.DefaultRequestTypes()...).Provider()

	types, err := p.TypeRepo.ListActiveTypes(context.Background())
	require.NoError(t, err)
	assert.Len(t, types, 4)

	tarot, err := p.TypeRepo.FindTypeByID(context.Background(), memory.TarotTypeID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), tarot.RequiredCredits)
	assert.Contains(t, tarot.InputSchema.Required, "question_type")
}
