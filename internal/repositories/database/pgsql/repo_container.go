package pgsql

import (
	portsrepo "github.com/SscSPs/fortune_desk/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider builds every repository on dbPool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	repos := bind(dbPool)

	return portsrepo.RepositoryProvider{
		TxManager:     &txManager{BaseRepository: BaseRepository{Pool: dbPool}},
		UserRepo:      repos.Users,
		AdminRepo:     repos.Admins,
		LedgerRepo:    repos.Ledger,
		PaymentRepo:   repos.Payments,
		TypeRepo:      repos.Types,
		RequestRepo:   repos.Requests,
		ResultRepo:    repos.Results,
		PublishedRepo: repos.Published,
		ReportingRepo: newReportingRepository(dbPool),
	}
}
