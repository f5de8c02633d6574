package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/fortune_desk/internal/apperrors"
	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/fortune_desk/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fortune_desk/internal/core/ports/services"
	"github.com/SscSPs/fortune_desk/internal/dto"
	"github.com/google/uuid"
)

// fortuneService is the request store. It is the only code that changes a
// request's status.
type fortuneService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	typeRepo    portsrepo.RequestTypeRepository
	requestRepo portsrepo.RequestReader
	ledger      portssvc.LedgerTxSvc
	queue       portssvc.JobEnqueuer
}

// FortuneServiceOption is a functional option for configuring the fortune service
type FortuneServiceOption func(*fortuneService)

// WithJobEnqueuer sets the queue that receives generation jobs.
func WithJobEnqueuer(queue portssvc.JobEnqueuer) FortuneServiceOption {
	return func(s *fortuneService) {
		s.queue = queue
	}
}

// NewFortuneService creates a new request store.
func NewFortuneService(
	txManager portsrepo.TransactionManager,
	typeRepo portsrepo.RequestTypeRepository,
	requestRepo portsrepo.RequestReader,
	ledger portssvc.LedgerTxSvc,
	options ...FortuneServiceOption,
) portssvc.FortuneSvcFacade {
	svc := &fortuneService{
		txManager:   txManager,
		typeRepo:    typeRepo,
		requestRepo: requestRepo,
		ledger:      ledger,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.FortuneSvcFacade = (*fortuneService)(nil)

func (s *fortuneService) ListTypes(ctx context.Context) ([]domain.RequestType, error) {
	types, err := s.typeRepo.ListActiveTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list request types: %w", err)
	}
	return types, nil
}

func (s *fortuneService) GetType(ctx context.Context, typeID string) (*domain.RequestType, error) {
	t, err := s.typeRepo.FindTypeByID(ctx, typeID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrTypeUnavailable, typeID)
		}
		return nil, fmt.Errorf("failed to load request type %s: %w", typeID, err)
	}
	if !t.IsActive {
		return nil, fmt.Errorf("%w: %s is inactive", apperrors.ErrTypeUnavailable, typeID)
	}
	return t, nil
}

func (s *fortuneService) CreateRequest(ctx context.Context, userID string, req dto.CreateFortuneRequest) (*domain.FortuneRequest, error) {
	requestType, err := s.GetType(ctx, req.TypeID)
	if err != nil {
		return nil, err
	}

	if err := requestType.InputSchema.Validate(req.InputData); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(req.InputData)
	if err != nil {
		return nil, apperrors.NewValidationError(map[string]string{"inputData": "must be a JSON object"})
	}

	now := s.Now()
	request := domain.FortuneRequest{
		RequestID:  uuid.NewString(),
		UserID:     userID,
		TypeID:     requestType.TypeID,
		InputData:  raw,
		Status:     domain.RequestPending,
		Timestamps: domain.Timestamps{CreatedAt: now, UpdatedAt: now},
	}

	err = s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		if requestType.RequiredCredits > 0 {
			if _, err := s.ledger.PostTx(ctx, tx, domain.Posting{
				UserID:      userID,
				Amount:      requestType.RequiredCredits,
				Kind:        domain.EntryUsage,
				Description: requestType.Name + " usage",
				ReferenceID: &request.RequestID,
			}); err != nil {
				return err
			}
		}
		if err := tx.Requests.SaveRequest(ctx, request); err != nil {
			return fmt.Errorf("failed to save request: %w", err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrInsufficientFunds) {
			s.LogError(ctx, err, "Failed to create request", slog.String("user_id", userID), slog.String("type_id", req.TypeID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Request created",
		slog.String("request_id", request.RequestID),
		slog.String("user_id", userID),
		slog.Int64("credits", requestType.RequiredCredits))

	if s.queue != nil {
		if _, err := s.queue.Enqueue(ctx, request.RequestID); err != nil {
			// the request stays pending and the reconciler re-enqueues it
			s.LogError(ctx, err, "Failed to enqueue generation job", slog.String("request_id", request.RequestID))
		}
	}
	return &request, nil
}

func (s *fortuneService) Transition(ctx context.Context, requestID string, from, to domain.RequestStatus, sideEffect portsrepo.TxFunc) error {
	if !domain.CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidState, from, to)
	}
	err := s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		if err := s.TransitionTx(ctx, tx, requestID, from, to); err != nil {
			return err
		}
		if sideEffect != nil {
			return sideEffect(ctx, tx)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.LogDebug(ctx, "Request transitioned",
		slog.String("request_id", requestID),
		slog.String("from", string(from)),
		slog.String("to", string(to)))
	return nil
}

func (s *fortuneService) TransitionTx(ctx context.Context, tx portsrepo.TxRepositories, requestID string, from, to domain.RequestStatus) error {
	if !domain.CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidState, from, to)
	}
	return tx.Requests.UpdateRequestStatus(ctx, requestID, from, to, s.Now())
}

func (s *fortuneService) GetRequest(ctx context.Context, requestID string, ownerID string) (*domain.FortuneRequest, error) {
	req, err := s.requestRepo.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.UserID != ownerID {
		return nil, apperrors.ErrNotFound
	}
	return req, nil
}

func (s *fortuneService) ListRequestsByOwner(ctx context.Context, ownerID string, status *domain.RequestStatus, page domain.PageRequest) ([]domain.FortuneRequest, domain.Pagination, error) {
	return s.list(ctx, domain.RequestFilter{UserID: &ownerID, Status: status}, page)
}

func (s *fortuneService) ListRequestsByStatus(ctx context.Context, principal domain.Principal, status *domain.RequestStatus, page domain.PageRequest) ([]domain.FortuneRequest, domain.Pagination, error) {
	if err := s.Authorize(ctx, principal, domain.CapFortuneReview); err != nil {
		return nil, domain.Pagination{}, err
	}
	return s.list(ctx, domain.RequestFilter{Status: status}, page)
}

func (s *fortuneService) list(ctx context.Context, filter domain.RequestFilter, page domain.PageRequest) ([]domain.FortuneRequest, domain.Pagination, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, domain.Pagination{}, apperrors.NewValidationError(map[string]string{"status": "unknown status " + string(*filter.Status)})
	}
	page = page.Normalize()
	reqs, total, err := s.requestRepo.ListRequests(ctx, filter, page.Limit, page.Offset())
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("failed to list requests: %w", err)
	}
	return reqs, domain.NewPagination(page, int(total)), nil
}
