package repositories

import (
	"context"
)

// TxRepositories exposes every repository bound to one atomic unit of work.
// Anything done through it commits or rolls back together.
type TxRepositories struct {
	Users     UserRepository
	Admins    AdminRepository
	Ledger    LedgerRepository
	Payments  PaymentRepository
	Types     RequestTypeRepository
	Requests  RequestRepository
	Results   ResultRepository
	Published PublishedRepository
}

// TxFunc is the body of an atomic unit of work.
type TxFunc func(ctx context.Context, tx TxRepositories) error

// TransactionManager defines methods for transaction management
type TransactionManager interface {
	// WithinTx runs fn in a transaction. A non-nil error from fn rolls back
	// every write made through tx and is returned unchanged.
	WithinTx(ctx context.Context, fn TxFunc) error
}
