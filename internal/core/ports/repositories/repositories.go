package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	TxManager     TransactionManager
	UserRepo      UserRepository
	AdminRepo     AdminRepository
	LedgerRepo    LedgerRepository
	PaymentRepo   PaymentRepository
	TypeRepo      RequestTypeRepository
	RequestRepo   RequestRepository
	ResultRepo    ResultRepository
	PublishedRepo PublishedRepository
	ReportingRepo ReportingRepository
}
