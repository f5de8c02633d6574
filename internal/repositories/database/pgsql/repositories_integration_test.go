package pgsql_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/SscSPs/fortune_desk/internal/apperrors"
	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/fortune_desk/internal/core/ports/repositories"
	"github.com/SscSPs/fortune_desk/internal/repositories/database/pgsql"
	"github.com/SscSPs/fortune_desk/internal/repositories/memory"
	"github.com/SscSPs/fortune_desk/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// PostgresRepositorySuite runs against a real database named by TEST_PGSQL_URL.
type PostgresRepositorySuite struct {
	suite.Suite
	pool  *pgxpool.Pool
	repos portsrepo.RepositoryProvider
	ctx   context.Context
}

func TestPostgresRepositories(t *testing.T) {
	if os.Getenv("TEST_PGSQL_URL") == "" {
		t.Skip("TEST_PGSQL_URL not set")
	}
	suite.Run(t, new(PostgresRepositorySuite))
}

func (s *PostgresRepositorySuite) SetupSuite() {
	url := os.Getenv("TEST_PGSQL_URL")
	s.ctx = context.Background()

	_, err := database.RunMigrations(slog.Default(), url, "../../../../migrations", database.MigrateUp)
	s.Require().NoError(err)

	s.pool, err = database.NewPgxPool(s.ctx, url, true)
	s.Require().NoError(err)
	s.repos = pgsql.NewRepositoryProvider(s.pool)
}

func (s *PostgresRepositorySuite) TearDownSuite() {
	database.ClosePgxPool(s.pool)
}

func (s *PostgresRepositorySuite) newUser(credits int64) domain.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	id := uuid.NewString()
	u := domain.User{
		UserID:       id,
		Email:        id + "@Example.com",
		Name:         "tester",
		PasswordHash: "x",
		Credits:      credits,
		Timestamps:   domain.Timestamps{CreatedAt: now, UpdatedAt: now},
	}
	s.Require().NoError(s.repos.UserRepo.SaveUser(s.ctx, u))
	return u
}

func (s *PostgresRepositorySuite) newRequest(userID string) domain.FortuneRequest {
	now := time.Now().UTC().Truncate(time.Microsecond)
	req := domain.FortuneRequest{
		RequestID:  uuid.NewString(),
		UserID:     userID,
		TypeID:     memory.TarotTypeID,
		InputData:  []byte(`{"name":"A"}`),
		Status:     domain.RequestPending,
		Timestamps: domain.Timestamps{CreatedAt: now, UpdatedAt: now},
	}
	s.Require().NoError(s.repos.RequestRepo.SaveRequest(s.ctx, req))
	return req
}

func (s *PostgresRepositorySuite) TestUsers_EmailIsCaseInsensitiveAndUnique() {
	u := s.newUser(0)

	found, err := s.repos.UserRepo.FindUserByEmail(s.ctx, u.UserID+"@example.COM")
	s.Require().NoError(err)
	s.Equal(u.UserID, found.UserID)

	dup := u
	dup.UserID = uuid.NewString()
	s.ErrorIs(s.repos.UserRepo.SaveUser(s.ctx, dup), apperrors.ErrDuplicate)

	_, err = s.repos.UserRepo.FindUserByID(s.ctx, uuid.NewString())
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *PostgresRepositorySuite) TestWithinTx_RollsBackEveryWrite() {
	u := s.newUser(5)

	err := s.repos.TxManager.WithinTx(s.ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		locked, err := tx.Users.FindUserByIDForUpdate(ctx, u.UserID)
		if err != nil {
			return err
		}
		if err := tx.Users.UpdateCredits(ctx, u.UserID, locked.Credits-2, time.Now()); err != nil {
			return err
		}
		if err := tx.Ledger.AppendEntry(ctx, domain.LedgerEntry{
			EntryID: uuid.NewString(), UserID: u.UserID, Amount: -2, Kind: domain.EntryUsage, CreatedAt: time.Now(),
		}); err != nil {
			return err
		}
		return apperrors.ErrInsufficientFunds
	})
	s.ErrorIs(err, apperrors.ErrInsufficientFunds)

	found, err := s.repos.UserRepo.FindUserByID(s.ctx, u.UserID)
	s.Require().NoError(err)
	s.Equal(int64(5), found.Credits)

	sum, count, err := s.repos.LedgerRepo.SumEntries(s.ctx, u.UserID)
	s.Require().NoError(err)
	s.Zero(sum)
	s.Zero(count)
}

func (s *PostgresRepositorySuite) TestLedger_KeysetPagination() {
	u := s.newUser(0)
	base := time.Now().UTC().Truncate(time.Microsecond)
	for i := 0; i < 5; i++ {
		s.Require().NoError(s.repos.LedgerRepo.AppendEntry(s.ctx, domain.LedgerEntry{
			EntryID:   uuid.NewString(),
			UserID:    u.UserID,
			Amount:    int64(i + 1),
			Kind:      domain.EntryBonus,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	first, err := s.repos.LedgerRepo.ListEntries(s.ctx, u.UserID, nil, 2)
	s.Require().NoError(err)
	s.Require().Len(first, 2)
	s.Equal(int64(5), first[0].Amount)
	s.Equal(int64(4), first[1].Amount)

	last := first[1]
	rest, err := s.repos.LedgerRepo.ListEntries(s.ctx, u.UserID, &portsrepo.LedgerCursor{CreatedAt: last.CreatedAt, EntryID: last.EntryID}, 10)
	s.Require().NoError(err)
	s.Require().Len(rest, 3)
	s.Equal(int64(3), rest[0].Amount)

	sum, count, err := s.repos.LedgerRepo.SumEntries(s.ctx, u.UserID)
	s.Require().NoError(err)
	s.Equal(int64(15), sum)
	s.Equal(int64(5), count)
}

func (s *PostgresRepositorySuite) TestPayments_ProviderRefIsUnique() {
	u := s.newUser(0)
	p := domain.PaymentRecord{
		PaymentID:   uuid.NewString(),
		UserID:      u.UserID,
		Credits:     10,
		Amount:      decimal.RequireFromString("9.99"),
		Currency:    "USD",
		ProviderRef: "ch_" + uuid.NewString(),
		CreatedAt:   time.Now(),
	}
	s.Require().NoError(s.repos.PaymentRepo.SavePayment(s.ctx, p))

	again := p
	again.PaymentID = uuid.NewString()
	s.ErrorIs(s.repos.PaymentRepo.SavePayment(s.ctx, again), apperrors.ErrDuplicate)

	list, err := s.repos.PaymentRepo.ListPaymentsByUser(s.ctx, u.UserID, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.True(p.Amount.Equal(list[0].Amount))
}

func (s *PostgresRepositorySuite) TestTypes_SeededCatalogue() {
	types, err := s.repos.TypeRepo.ListActiveTypes(s.ctx)
	s.Require().NoError(err)
	s.GreaterOrEqual(len(types), 4)

	tarot, err := s.repos.TypeRepo.FindTypeByID(s.ctx, memory.TarotTypeID)
	s.Require().NoError(err)
	s.Equal(int64(1), tarot.RequiredCredits)
	s.Contains(tarot.InputSchema.Required, "question_type")
	s.Len(tarot.InputSchema.Fields["question_type"].Options, 5)
}

func (s *PostgresRepositorySuite) TestRequests_ConditionalStatusUpdate() {
	u := s.newUser(0)
	req := s.newRequest(u.UserID)

	s.Require().NoError(s.repos.RequestRepo.UpdateRequestStatus(s.ctx, req.RequestID, domain.RequestPending, domain.RequestProcessing, time.Now()))
	err := s.repos.RequestRepo.UpdateRequestStatus(s.ctx, req.RequestID, domain.RequestPending, domain.RequestProcessing, time.Now())
	s.ErrorIs(err, apperrors.ErrStaleState)

	err = s.repos.RequestRepo.UpdateRequestStatus(s.ctx, uuid.NewString(), domain.RequestPending, domain.RequestProcessing, time.Now())
	s.ErrorIs(err, apperrors.ErrNotFound)

	status := domain.RequestProcessing
	list, total, err := s.repos.RequestRepo.ListRequests(s.ctx, domain.RequestFilter{UserID: &u.UserID, Status: &status}, 10, 0)
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Require().Len(list, 1)
	s.JSONEq(`{"name":"A"}`, string(list[0].InputData))
}

func (s *PostgresRepositorySuite) TestResultsAndPublished_OnePerRequest() {
	u := s.newUser(0)
	req := s.newRequest(u.UserID)
	admin := domain.Admin{
		AdminID:      uuid.NewString(),
		Email:        uuid.NewString() + "@example.com",
		Name:         "ops",
		PasswordHash: "x",
		Role:         "editor",
		Permissions:  domain.NewCapabilitySet(string(domain.CapFortuneReview)),
		IsActive:     true,
	}
	s.Require().NoError(s.repos.AdminRepo.SaveAdmin(s.ctx, admin))
	loaded, err := s.repos.AdminRepo.FindAdminByID(s.ctx, admin.AdminID)
	s.Require().NoError(err)
	s.True(domain.HasCapability(loaded.Permissions, domain.CapFortuneReview))

	now := time.Now().UTC().Truncate(time.Microsecond)
	res := domain.GenerationResult{
		ResultID:   uuid.NewString(),
		RequestID:  req.RequestID,
		RawText:    "draft",
		Status:     domain.ResultPendingReview,
		Timestamps: domain.Timestamps{CreatedAt: now, UpdatedAt: now},
	}
	s.Require().NoError(s.repos.ResultRepo.SaveResult(s.ctx, res))

	dup := res
	dup.ResultID = uuid.NewString()
	s.ErrorIs(s.repos.ResultRepo.SaveResult(s.ctx, dup), apperrors.ErrDuplicate)

	edited := "final"
	res.EditedText = &edited
	res.ReviewerID = &admin.AdminID
	res.ReviewedAt = &now
	res.Status = domain.ResultEditing
	s.Require().NoError(s.repos.ResultRepo.UpdateResult(s.ctx, res))

	got, err := s.repos.ResultRepo.FindResultByRequestID(s.ctx, req.RequestID)
	s.Require().NoError(err)
	s.Equal("final", got.PreferredText())

	editing := domain.ResultEditing
	_, total, err := s.repos.ResultRepo.ListResults(s.ctx, &editing, 10, 0)
	s.Require().NoError(err)
	s.GreaterOrEqual(total, int64(1))

	pub := domain.PublishedResult{
		PublishedID: uuid.NewString(),
		RequestID:   req.RequestID,
		FinalText:   "final",
		ApprovedBy:  admin.AdminID,
		ApprovedAt:  now,
	}
	s.Require().NoError(s.repos.PublishedRepo.SavePublished(s.ctx, pub))
	pub.PublishedID = uuid.NewString()
	s.ErrorIs(s.repos.PublishedRepo.SavePublished(s.ctx, pub), apperrors.ErrDuplicate)

	stats, err := s.repos.ReportingRepo.GetDashboardStats(s.ctx, now.Add(-time.Hour))
	s.Require().NoError(err)
	assert.GreaterOrEqual(s.T(), stats.TotalRequests, int64(1))
	require.GreaterOrEqual(s.T(), stats.TotalUsers, int64(1))
}
