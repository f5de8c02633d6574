package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/fortune_desk/internal/core/ports/repositories"
)

type ledgerRepository struct {
	db querier
}

var _ portsrepo.LedgerRepository = (*ledgerRepository)(nil)

func (r *ledgerRepository) AppendEntry(ctx context.Context, entry domain.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (entry_id, user_id, amount, kind, description, reference_id, admin_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.db.Exec(ctx, query,
		entry.EntryID,
		entry.UserID,
		entry.Amount,
		entry.Kind,
		entry.Description,
		entry.ReferenceID,
		entry.AdminID,
		entry.CreatedAt,
	)
	return mapError(err, "failed to append ledger entry for user %s", entry.UserID)
}

func (r *ledgerRepository) ListEntries(ctx context.Context, userID string, after *portsrepo.LedgerCursor, limit int) ([]domain.LedgerEntry, error) {
	query := `
		SELECT entry_id, user_id, amount, kind, description, reference_id, admin_id, created_at
		FROM ledger_entries
		WHERE user_id = $1
	`
	args := []any{userID}
	if after != nil {
		query += ` AND (created_at, entry_id) < ($2, $3)`
		args = append(args, after.CreatedAt, after.EntryID)
	}
	query += ` ORDER BY created_at DESC, entry_id DESC`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying ledger entries for user %s: %w", userID, err)
	}
	defer rows.Close()

	entries := make([]domain.LedgerEntry, 0, limit)
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(&e.EntryID, &e.UserID, &e.Amount, &e.Kind, &e.Description, &e.ReferenceID, &e.AdminID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning ledger entry row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entry rows: %w", err)
	}
	return entries, nil
}

func (r *ledgerRepository) SumEntries(ctx context.Context, userID string) (int64, int64, error) {
	query := `SELECT COALESCE(SUM(amount), 0), COUNT(*) FROM ledger_entries WHERE user_id = $1;`
	var sum, count int64
	if err := r.db.QueryRow(ctx, query, userID).Scan(&sum, &count); err != nil {
		return 0, 0, fmt.Errorf("error summing ledger for user %s: %w", userID, err)
	}
	return sum, count, nil
}

type paymentRepository struct {
	db querier
}

var _ portsrepo.PaymentRepository = (*paymentRepository)(nil)

func (r *paymentRepository) SavePayment(ctx context.Context, payment domain.PaymentRecord) error {
	query := `
		INSERT INTO payments (payment_id, user_id, credits, amount, currency, provider_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.db.Exec(ctx, query,
		payment.PaymentID,
		payment.UserID,
		payment.Credits,
		payment.Amount,
		payment.Currency,
		payment.ProviderRef,
		payment.CreatedAt,
	)
	return mapError(err, "failed to save payment %s", payment.ProviderRef)
}

func (r *paymentRepository) ListPaymentsByUser(ctx context.Context, userID string, limit int, offset int) ([]domain.PaymentRecord, error) {
	query := `
		SELECT payment_id, user_id, credits, amount, currency, provider_ref, created_at
		FROM payments
		WHERE user_id = $1
		ORDER BY created_at DESC, payment_id DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error querying payments for user %s: %w", userID, err)
	}
	defer rows.Close()

	var payments []domain.PaymentRecord
	for rows.Next() {
		var p domain.PaymentRecord
		if err := rows.Scan(&p.PaymentID, &p.UserID, &p.Credits, &p.Amount, &p.Currency, &p.ProviderRef, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning payment row: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment rows: %w", err)
	}
	return payments, nil
}
