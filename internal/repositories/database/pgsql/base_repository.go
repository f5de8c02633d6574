package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/fortune_desk/internal/apperrors"
	portsrepo "github.com/SscSPs/fortune_desk/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so every repository
// runs unchanged inside or outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewAppError(500, "failed to rollback transaction", err)
	}
	return nil
}

// txManager implements portsrepo.TransactionManager on a pgx pool.
type txManager struct {
	BaseRepository
}

var _ portsrepo.TransactionManager = (*txManager)(nil)

func (m *txManager) WithinTx(ctx context.Context, fn portsrepo.TxFunc) error {
	tx, err := m.Begin(ctx)
	if err != nil {
		return err
	}
	// Will be ignored if transaction is committed successfully
	defer m.Rollback(ctx, tx)

	if err := fn(ctx, bind(tx)); err != nil {
		return err
	}
	return m.Commit(ctx, tx)
}

// bind returns every repository running on db.
func bind(db querier) portsrepo.TxRepositories {
	return portsrepo.TxRepositories{
		Users:     &userRepository{db: db},
		Admins:    &adminRepository{db: db},
		Ledger:    &ledgerRepository{db: db},
		Payments:  &paymentRepository{db: db},
		Types:     &typeRepository{db: db},
		Requests:  &requestRepository{db: db},
		Results:   &resultRepository{db: db},
		Published: &publishedRepository{db: db},
	}
}

// mapError converts driver errors into application errors.
func mapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", apperrors.ErrDuplicate, pgErr.ConstraintName)
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
