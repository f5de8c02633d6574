package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/fortune_desk/internal/core/domain"
)

// RequestTypeRepository reads the request type catalogue.
type RequestTypeRepository interface {
	FindTypeByID(ctx context.Context, typeID string) (*domain.RequestType, error)
	ListActiveTypes(ctx context.Context) ([]domain.RequestType, error)
}

// RequestReader defines read operations for fortune requests
type RequestReader interface {
	FindRequestByID(ctx context.Context, requestID string) (*domain.FortuneRequest, error)

	// ListRequests returns one page of requests matching filter, newest first,
	// together with the total match count.
	ListRequests(ctx context.Context, filter domain.RequestFilter, limit int, offset int) ([]domain.FortuneRequest, int64, error)
}

// RequestWriter defines write operations for fortune requests
type RequestWriter interface {
	SaveRequest(ctx context.Context, request domain.FortuneRequest) error

	// UpdateRequestStatus sets status to `to` only if it currently equals `from`.
	// Returns apperrors.ErrStaleState when no row matched, or
	// apperrors.ErrNotFound when the request does not exist.
	UpdateRequestStatus(ctx context.Context, requestID string, from, to domain.RequestStatus, now time.Time) error
}

// RequestRepository combines request read and write operations
type RequestRepository interface {
	RequestReader
	RequestWriter
}

// ResultRepository stores generated results awaiting review.
type ResultRepository interface {
	// SaveResult persists a result. Returns apperrors.ErrDuplicate when the
	// request already has one.
	SaveResult(ctx context.Context, result domain.GenerationResult) error
	FindResultByID(ctx context.Context, resultID string) (*domain.GenerationResult, error)
	FindResultByIDForUpdate(ctx context.Context, resultID string) (*domain.GenerationResult, error)
	FindResultByRequestID(ctx context.Context, requestID string) (*domain.GenerationResult, error)
	UpdateResult(ctx context.Context, result domain.GenerationResult) error
	ListResults(ctx context.Context, status *domain.ResultStatus, limit int, offset int) ([]domain.GenerationResult, int64, error)
}

// PublishedRepository stores the immutable customer-visible artifacts.
type PublishedRepository interface {
	// SavePublished persists a published result. Returns apperrors.ErrDuplicate
	// when the request already has one.
	SavePublished(ctx context.Context, published domain.PublishedResult) error
	FindPublishedByRequestID(ctx context.Context, requestID string) (*domain.PublishedResult, error)
}
