package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/SscSPs/fortune_desk/internal/apperrors"
	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/fortune_desk/internal/core/ports/repositories"
	"github.com/SscSPs/fortune_desk/internal/core/services"
	"github.com/SscSPs/fortune_desk/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	f   *fixture
	ctx context.Context
}

func (s *LedgerServiceTestSuite) SetupTest() {
	s.f = newFixture(s.T(), services.Collaborators{})
	s.ctx = context.Background()
}

func TestLedgerServiceSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

func (s *LedgerServiceTestSuite) audit(userID string) *domain.BalanceAudit {
	a, err := s.f.svc.Ledger.VerifyBalance(s.ctx, operator, userID)
	s.Require().NoError(err)
	return a
}

func (s *LedgerServiceTestSuite) TestDebitAndCredit() {
	s.f.seedUser(s.T(), "u1", 5)

	entry, err := s.f.svc.Ledger.Debit(s.ctx, "u1", 2, "Tarot usage")
	s.Require().NoError(err)
	s.Equal(int64(-2), entry.Amount)
	s.Equal(domain.EntryUsage, entry.Kind)

	_, err = s.f.svc.Ledger.Credit(s.ctx, "u1", 4, domain.EntryBonus, "campaign")
	s.Require().NoError(err)

	balance, err := s.f.svc.Ledger.Balance(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal(int64(7), balance)
	s.True(s.audit("u1").Consistent())
}

func (s *LedgerServiceTestSuite) TestDebit_InsufficientFundsHasNoEffect() {
	s.f.seedUser(s.T(), "u1", 1)

	_, err := s.f.svc.Ledger.Debit(s.ctx, "u1", 2, "Astrology usage")
	s.ErrorIs(err, apperrors.ErrInsufficientFunds)

	a := s.audit("u1")
	s.Equal(int64(1), a.CachedBalance)
	s.Equal(int64(1), a.LedgerSum)
	s.Equal(1, a.EntryCount)
}

func (s *LedgerServiceTestSuite) TestCredit_RejectsDebitKinds() {
	s.f.seedUser(s.T(), "u1", 0)

	_, err := s.f.svc.Ledger.Credit(s.ctx, "u1", 1, domain.EntryUsage, "nope")
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.f.svc.Ledger.Credit(s.ctx, "u1", 0, domain.EntryBonus, "zero")
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerServiceTestSuite) TestConcurrentMovementsKeepBalanceEqualToLedger() {
	s.f.seedUser(s.T(), "u1", 50)

	var wg sync.WaitGroup
	var mu sync.Mutex
	insufficient := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			if i%3 == 0 {
				_, err = s.f.svc.Ledger.Credit(s.ctx, "u1", 1, domain.EntryBonus, "tick")
			} else {
				_, err = s.f.svc.Ledger.Debit(s.ctx, "u1", 1, "tock")
			}
			if errors.Is(err, apperrors.ErrInsufficientFunds) {
				mu.Lock()
				insufficient++
				mu.Unlock()
				return
			}
			s.NoError(err)
		}(i)
	}
	wg.Wait()

	a := s.audit("u1")
	s.True(a.Consistent(), "cached %d vs ledger %d", a.CachedBalance, a.LedgerSum)
	s.GreaterOrEqual(a.CachedBalance, int64(0))
	s.Equal(101-insufficient, a.EntryCount)
}

func (s *LedgerServiceTestSuite) TestHistoryPagination() {
	s.f.seedUser(s.T(), "u1", 10)
	for i := 0; i < 4; i++ {
		_, err := s.f.svc.Ledger.Debit(s.ctx, "u1", 1, "usage")
		s.Require().NoError(err)
	}

	seen := map[string]bool{}
	token := ""
	pages := 0
	for {
		entries, next, err := s.f.svc.Ledger.History(s.ctx, "u1", 2, token)
		s.Require().NoError(err)
		for _, e := range entries {
			s.False(seen[e.EntryID], "entry %s returned twice", e.EntryID)
			seen[e.EntryID] = true
		}
		pages++
		if next == "" {
			break
		}
		token = next
	}
	s.Len(seen, 5)
	s.Equal(3, pages)

	_, _, err := s.f.svc.Ledger.History(s.ctx, "u1", 2, "%%%")
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerServiceTestSuite) TestPurchaseRecordsPaymentAndCredits() {
	s.f.seedUser(s.T(), "u1", 0)

	payment, err := s.f.svc.Ledger.Purchase(s.ctx, operator, "u1", dto.PurchaseRequest{
		Credits:     10,
		Amount:      decimal.RequireFromString("1000"),
		Currency:    "jpy",
		ProviderRef: "pi_123",
	})
	s.Require().NoError(err)
	s.Equal("JPY", payment.Currency)

	balance, err := s.f.svc.Ledger.Balance(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal(int64(10), balance)

	payments, err := s.f.repos.PaymentRepo.ListPaymentsByUser(s.ctx, "u1", 10, 0)
	s.Require().NoError(err)
	s.Len(payments, 1)

	// replaying the same provider reference grants nothing
	_, err = s.f.svc.Ledger.Purchase(s.ctx, operator, "u1", dto.PurchaseRequest{
		Credits: 10, Amount: decimal.RequireFromString("1000"), Currency: "JPY", ProviderRef: "pi_123",
	})
	s.ErrorIs(err, apperrors.ErrDuplicate)
	balance, _ = s.f.svc.Ledger.Balance(s.ctx, "u1")
	s.Equal(int64(10), balance)
}

func (s *LedgerServiceTestSuite) TestAdjust() {
	s.f.seedUser(s.T(), "u1", 2)

	entry, err := s.f.svc.Ledger.Adjust(s.ctx, operator, "u1", dto.AdjustCreditsRequest{Amount: -2, Reason: "chargeback"})
	s.Require().NoError(err)
	s.Equal(domain.EntryAdminDeduct, entry.Kind)
	s.Require().NotNil(entry.AdminID)
	s.Equal(operator.ID, *entry.AdminID)

	_, err = s.f.svc.Ledger.Adjust(s.ctx, operator, "u1", dto.AdjustCreditsRequest{Amount: -1, Reason: "again"})
	s.ErrorIs(err, apperrors.ErrInsufficientFunds)

	_, err = s.f.svc.Ledger.Adjust(s.ctx, reviewer, "u1", dto.AdjustCreditsRequest{Amount: 5, Reason: "gift"})
	s.ErrorIs(err, apperrors.ErrForbidden)

	s.True(s.audit("u1").Consistent())
}

func TestLedgerPostTx_LockFailurePropagates(t *testing.T) {
	users := new(MockUserRepository)
	ledgerRepo := new(MockLedgerRepository)
	lockErr := errors.New("lock timeout")
	users.On("FindUserByIDForUpdate", mock.Anything, "u1").Return(nil, lockErr)

	tx := passthroughTx{repos: portsrepo.TxRepositories{Users: users, Ledger: ledgerRepo}}
	svc := services.NewLedgerService(tx, users, ledgerRepo)

	_, err := svc.Debit(context.Background(), "u1", 1, "usage")
	require.Error(t, err)
	assert.ErrorIs(t, err, lockErr)
	ledgerRepo.AssertNotCalled(t, "AppendEntry", mock.Anything, mock.Anything)
	users.AssertNotCalled(t, "UpdateCredits", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLedgerPostTx_WritesEntryThenBalance(t *testing.T) {
	users := new(MockUserRepository)
	ledgerRepo := new(MockLedgerRepository)
	users.On("FindUserByIDForUpdate", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Credits: 5}, nil)
	ledgerRepo.On("AppendEntry", mock.Anything, mock.MatchedBy(func(e domain.LedgerEntry) bool {
		return e.Amount == -2 && e.Kind == domain.EntryUsage && e.UserID == "u1"
	})).Return(nil)
	users.On("UpdateCredits", mock.Anything, "u1", int64(3), mock.Anything).Return(nil)

	tx := passthroughTx{repos: portsrepo.TxRepositories{Users: users, Ledger: ledgerRepo}}
	svc := services.NewLedgerService(tx, users, ledgerRepo)

	entry, err := svc.Debit(context.Background(), "u1", 2, "usage")
	require.NoError(t, err)
	assert.Equal(t, int64(-2), entry.Amount)
	users.AssertExpectations(t)
	ledgerRepo.AssertExpectations(t)
}
