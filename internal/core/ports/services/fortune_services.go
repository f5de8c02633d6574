package services

import (
	"context"

	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/fortune_desk/internal/core/ports/repositories"
	"github.com/SscSPs/fortune_desk/internal/dto"
)

// JobEnqueuer hands a request to the background queue.
type JobEnqueuer interface {
	// Enqueue is idempotent per request while a job for it is live.
	Enqueue(ctx context.Context, requestID string) (*domain.Job, error)
}

// RequestCatalogSvc exposes the read-only request type catalogue.
type RequestCatalogSvc interface {
	ListTypes(ctx context.Context) ([]domain.RequestType, error)
	GetType(ctx context.Context, typeID string) (*domain.RequestType, error)
}

// RequestReaderSvc defines read operations on fortune requests.
type RequestReaderSvc interface {
	// GetRequest returns ownerID's request; other users' requests are reported as not found.
	GetRequest(ctx context.Context, requestID string, ownerID string) (*domain.FortuneRequest, error)

	ListRequestsByOwner(ctx context.Context, ownerID string, status *domain.RequestStatus, page domain.PageRequest) ([]domain.FortuneRequest, domain.Pagination, error)

	// ListRequestsByStatus is the operator view across all users.
	ListRequestsByStatus(ctx context.Context, principal domain.Principal, status *domain.RequestStatus, page domain.PageRequest) ([]domain.FortuneRequest, domain.Pagination, error)
}

// RequestWriterSvc defines the request lifecycle mutations.
type RequestWriterSvc interface {
	// CreateRequest validates input, debits the type's cost and stores a
	// pending request in one atomic unit, then enqueues generation.
	CreateRequest(ctx context.Context, userID string, req dto.CreateFortuneRequest) (*domain.FortuneRequest, error)

	// Transition is the single status mutator. sideEffect may be nil and
	// runs in the same atomic unit as the status change.
	Transition(ctx context.Context, requestID string, from, to domain.RequestStatus, sideEffect portsrepo.TxFunc) error

	// TransitionTx applies a status change inside the caller's atomic unit.
	TransitionTx(ctx context.Context, tx portsrepo.TxRepositories, requestID string, from, to domain.RequestStatus) error
}

// FortuneSvcFacade combines all request store interfaces
type FortuneSvcFacade interface {
	RequestCatalogSvc
	RequestReaderSvc
	RequestWriterSvc
}
