package services

import (
	"context"

	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/fortune_desk/internal/core/ports/repositories"
	"github.com/SscSPs/fortune_desk/internal/dto"
)

// LedgerReaderSvc defines read operations on credit balances.
type LedgerReaderSvc interface {
	// Balance returns the committed balance of userID.
	Balance(ctx context.Context, userID string) (int64, error)

	// History returns a page of entries, newest first, and the token for the next page.
	History(ctx context.Context, userID string, limit int, nextToken string) ([]domain.LedgerEntry, string, error)

	// VerifyBalance compares the cached balance with the ledger sum.
	VerifyBalance(ctx context.Context, principal domain.Principal, userID string) (*domain.BalanceAudit, error)
}

// LedgerWriterSvc defines operations that move credits, each in its own atomic unit.
type LedgerWriterSvc interface {
	// Debit fails with apperrors.ErrInsufficientFunds and no effect when the balance is too low.
	Debit(ctx context.Context, userID string, amount int64, description string) (*domain.LedgerEntry, error)

	// Credit increases the balance. kind must be a credit kind.
	Credit(ctx context.Context, userID string, amount int64, kind domain.EntryKind, description string) (*domain.LedgerEntry, error)

	// Purchase grants purchased credits and records the payment in the same unit.
	Purchase(ctx context.Context, principal domain.Principal, userID string, req dto.PurchaseRequest) (*domain.PaymentRecord, error)

	// Adjust applies an operator grant (amount > 0) or deduction (amount < 0).
	Adjust(ctx context.Context, principal domain.Principal, userID string, req dto.AdjustCreditsRequest) (*domain.LedgerEntry, error)
}

// LedgerTxSvc composes ledger movements into a caller's atomic unit.
type LedgerTxSvc interface {
	PostTx(ctx context.Context, tx portsrepo.TxRepositories, posting domain.Posting) (*domain.LedgerEntry, error)
}

// LedgerSvcFacade combines all ledger service interfaces
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
	LedgerTxSvc
}
