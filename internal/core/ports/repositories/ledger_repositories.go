package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/fortune_desk/internal/core/domain"
)

// LedgerCursor positions keyset pagination over ledger entries, newest first.
type LedgerCursor struct {
	CreatedAt time.Time
	EntryID   string
}

// LedgerRepository stores the append-only credit log.
type LedgerRepository interface {
	// AppendEntry persists a new entry. Entries are never updated.
	AppendEntry(ctx context.Context, entry domain.LedgerEntry) error

	// ListEntries returns up to limit entries for userID strictly older than after.
	ListEntries(ctx context.Context, userID string, after *LedgerCursor, limit int) ([]domain.LedgerEntry, error)

	// SumEntries returns the signed sum and count of userID's entries.
	SumEntries(ctx context.Context, userID string) (sum int64, count int64, err error)
}

// PaymentRepository stores successful purchases.
type PaymentRepository interface {
	SavePayment(ctx context.Context, payment domain.PaymentRecord) error
	ListPaymentsByUser(ctx context.Context, userID string, limit int, offset int) ([]domain.PaymentRecord, error)
}
