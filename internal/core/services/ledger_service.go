package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/fortune_desk/internal/apperrors"
	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/fortune_desk/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fortune_desk/internal/core/ports/services"
	"github.com/SscSPs/fortune_desk/internal/dto"
	"github.com/SscSPs/fortune_desk/internal/utils/pagination"
	"github.com/google/uuid"
)

const maxHistoryLimit = 100

// ledgerService owns every mutation of a user's credit balance. Each
// movement appends one entry and rewrites the cached balance in the same
// atomic unit, after locking the user row.
type ledgerService struct {
	BaseService
	txManager  portsrepo.TransactionManager
	userRepo   portsrepo.UserReader
	ledgerRepo portsrepo.LedgerRepository
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(txManager portsrepo.TransactionManager, userRepo portsrepo.UserReader, ledgerRepo portsrepo.LedgerRepository) portssvc.LedgerSvcFacade {
	return &ledgerService{
		txManager:  txManager,
		userRepo:   userRepo,
		ledgerRepo: ledgerRepo,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// PostTx applies one movement inside the caller's transaction.
func (s *ledgerService) PostTx(ctx context.Context, tx portsrepo.TxRepositories, posting domain.Posting) (*domain.LedgerEntry, error) {
	if posting.Amount <= 0 {
		return nil, apperrors.NewValidationError(map[string]string{"amount": "must be positive"})
	}
	if !posting.Kind.Valid() {
		return nil, apperrors.NewValidationError(map[string]string{"kind": "unknown entry kind " + string(posting.Kind)})
	}

	user, err := tx.Users.FindUserByIDForUpdate(ctx, posting.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock user %s: %w", posting.UserID, err)
	}

	balance := user.Credits + posting.Signed()
	if balance < 0 {
		return nil, fmt.Errorf("%w: balance %d, required %d", apperrors.ErrInsufficientFunds, user.Credits, posting.Amount)
	}

	now := s.Now()
	entry := domain.LedgerEntry{
		EntryID:     uuid.NewString(),
		UserID:      posting.UserID,
		Amount:      posting.Signed(),
		Kind:        posting.Kind,
		Description: posting.Description,
		ReferenceID: posting.ReferenceID,
		AdminID:     posting.AdminID,
		CreatedAt:   now,
	}
	if err := tx.Ledger.AppendEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to append ledger entry: %w", err)
	}
	if err := tx.Users.UpdateCredits(ctx, posting.UserID, balance, now); err != nil {
		return nil, fmt.Errorf("failed to update cached balance: %w", err)
	}
	return &entry, nil
}

func (s *ledgerService) post(ctx context.Context, posting domain.Posting) (*domain.LedgerEntry, error) {
	var entry *domain.LedgerEntry
	err := s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		var err error
		entry, err = s.PostTx(ctx, tx, posting)
		return err
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrInsufficientFunds) && !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Ledger posting failed",
				slog.String("user_id", posting.UserID),
				slog.String("kind", string(posting.Kind)))
		}
		return nil, err
	}
	s.LogInfo(ctx, "Ledger entry posted",
		slog.String("user_id", entry.UserID),
		slog.String("entry_id", entry.EntryID),
		slog.String("kind", string(entry.Kind)),
		slog.Int64("amount", entry.Amount))
	return entry, nil
}

func (s *ledgerService) Debit(ctx context.Context, userID string, amount int64, description string) (*domain.LedgerEntry, error) {
	return s.post(ctx, domain.Posting{UserID: userID, Amount: amount, Kind: domain.EntryUsage, Description: description})
}

func (s *ledgerService) Credit(ctx context.Context, userID string, amount int64, kind domain.EntryKind, description string) (*domain.LedgerEntry, error) {
	if !kind.IsCredit() {
		return nil, apperrors.NewValidationError(map[string]string{"kind": string(kind) + " is not a credit kind"})
	}
	return s.post(ctx, domain.Posting{UserID: userID, Amount: amount, Kind: kind, Description: description})
}

func (s *ledgerService) Balance(ctx context.Context, userID string) (int64, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	return user.Credits, nil
}

func (s *ledgerService) History(ctx context.Context, userID string, limit int, nextToken string) ([]domain.LedgerEntry, string, error) {
	if limit <= 0 || limit > maxHistoryLimit {
		limit = 20
	}

	var after *portsrepo.LedgerCursor
	if nextToken != "" {
		createdAt, entryID, err := pagination.DecodeCursor(nextToken)
		if err != nil {
			return nil, "", apperrors.NewValidationError(map[string]string{"nextToken": err.Error()})
		}
		after = &portsrepo.LedgerCursor{CreatedAt: createdAt, EntryID: entryID}
	}

	// one extra row tells us whether another page exists
	entries, err := s.ledgerRepo.ListEntries(ctx, userID, after, limit+1)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list ledger entries: %w", err)
	}

	next := ""
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[limit-1]
		next = pagination.EncodeCursor(last.CreatedAt, last.EntryID)
	}
	return entries, next, nil
}

func (s *ledgerService) VerifyBalance(ctx context.Context, principal domain.Principal, userID string) (*domain.BalanceAudit, error) {
	if err := s.Authorize(ctx, principal, domain.CapUserManage); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	sum, count, err := s.ledgerRepo.SumEntries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum ledger entries: %w", err)
	}

	audit := &domain.BalanceAudit{
		UserID:        userID,
		CachedBalance: user.Credits,
		LedgerSum:     sum,
		EntryCount:    int(count),
	}
	if !audit.Consistent() {
		s.GetLogger(ctx).Warn("Cached balance diverges from ledger",
			slog.String("user_id", userID),
			slog.Int64("cached", audit.CachedBalance),
			slog.Int64("ledger_sum", audit.LedgerSum))
	}
	return audit, nil
}

func (s *ledgerService) Purchase(ctx context.Context, principal domain.Principal, userID string, req dto.PurchaseRequest) (*domain.PaymentRecord, error) {
	if err := s.Authorize(ctx, principal, domain.CapUserManage); err != nil {
		return nil, err
	}
	if req.Credits <= 0 {
		return nil, apperrors.NewValidationError(map[string]string{"credits": "must be positive"})
	}
	if req.Amount.IsNegative() {
		return nil, apperrors.NewValidationError(map[string]string{"amount": "must not be negative"})
	}

	payment := domain.PaymentRecord{
		PaymentID:   uuid.NewString(),
		UserID:      userID,
		Credits:     req.Credits,
		Amount:      req.Amount,
		Currency:    strings.ToUpper(req.Currency),
		ProviderRef: req.ProviderRef,
		CreatedAt:   s.Now(),
	}

	err := s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		if _, err := s.PostTx(ctx, tx, domain.Posting{
			UserID:      userID,
			Amount:      req.Credits,
			Kind:        domain.EntryPurchase,
			Description: fmt.Sprintf("Purchased %d credits", req.Credits),
			ReferenceID: &payment.PaymentID,
		}); err != nil {
			return err
		}
		if err := tx.Payments.SavePayment(ctx, payment); err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Purchase failed", slog.String("user_id", userID), slog.String("provider_ref", req.ProviderRef))
		return nil, err
	}

	s.LogInfo(ctx, "Purchase recorded",
		slog.String("user_id", userID),
		slog.String("payment_id", payment.PaymentID),
		slog.Int64("credits", payment.Credits),
		slog.String("amount", payment.Amount.String()))
	return &payment, nil
}

func (s *ledgerService) Adjust(ctx context.Context, principal domain.Principal, userID string, req dto.AdjustCreditsRequest) (*domain.LedgerEntry, error) {
	if err := s.Authorize(ctx, principal, domain.CapUserManage); err != nil {
		return nil, err
	}
	if req.Amount == 0 {
		return nil, apperrors.NewValidationError(map[string]string{"amount": "must not be zero"})
	}

	posting := domain.Posting{
		UserID:      userID,
		Amount:      req.Amount,
		Kind:        domain.EntryAdminGrant,
		Description: req.Reason,
		AdminID:     &principal.ID,
	}
	if req.Amount < 0 {
		posting.Amount = -req.Amount
		posting.Kind = domain.EntryAdminDeduct
	}
	return s.post(ctx, posting)
}
