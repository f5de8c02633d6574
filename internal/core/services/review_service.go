package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/fortune_desk/internal/apperrors"
	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/fortune_desk/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fortune_desk/internal/core/ports/services"
	"github.com/SscSPs/fortune_desk/internal/dto"
)

// reviewService gates every generated result behind a human decision.
// The result status and the request status always change together.
type reviewService struct {
	BaseService
	txManager  portsrepo.TransactionManager
	resultRepo portsrepo.ResultRepository
	requests   portssvc.RequestWriterSvc
	publisher  portssvc.PublisherSvc
}

// NewReviewService creates a new review workflow.
func NewReviewService(
	txManager portsrepo.TransactionManager,
	resultRepo portsrepo.ResultRepository,
	requests portssvc.RequestWriterSvc,
	publisher portssvc.PublisherSvc,
) portssvc.ReviewSvcFacade {
	return &reviewService{
		txManager:  txManager,
		resultRepo: resultRepo,
		requests:   requests,
		publisher:  publisher,
	}
}

var _ portssvc.ReviewSvcFacade = (*reviewService)(nil)

func (s *reviewService) GetResult(ctx context.Context, principal domain.Principal, resultID string) (*domain.GenerationResult, error) {
	if err := s.Authorize(ctx, principal, domain.CapFortuneReview); err != nil {
		return nil, err
	}
	return s.resultRepo.FindResultByID(ctx, resultID)
}

func (s *reviewService) ListResults(ctx context.Context, principal domain.Principal, status *domain.ResultStatus, page domain.PageRequest) ([]domain.GenerationResult, domain.Pagination, error) {
	if err := s.Authorize(ctx, principal, domain.CapFortuneReview); err != nil {
		return nil, domain.Pagination{}, err
	}
	if status != nil && !status.Valid() {
		return nil, domain.Pagination{}, apperrors.NewValidationError(map[string]string{"status": "unknown status " + string(*status)})
	}
	page = page.Normalize()
	results, total, err := s.resultRepo.ListResults(ctx, status, page.Limit, page.Offset())
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("failed to list results: %w", err)
	}
	return results, domain.NewPagination(page, int(total)), nil
}

// review locks the result, checks it is still reviewable, lets apply mutate
// it and moves the request to the status mirroring the new result status.
func (s *reviewService) review(ctx context.Context, tx portsrepo.TxRepositories, resultID string, apply func(res *domain.GenerationResult) error) (*domain.GenerationResult, error) {
	res, err := tx.Results.FindResultByIDForUpdate(ctx, resultID)
	if err != nil {
		return nil, err
	}
	if !res.Status.Reviewable() {
		return nil, fmt.Errorf("%w: result %s is %s", apperrors.ErrInvalidState, resultID, res.Status)
	}

	from := domain.RequestStatusFor(res.Status)
	if err := apply(res); err != nil {
		return nil, err
	}
	res.UpdatedAt = s.Now()

	if err := tx.Results.UpdateResult(ctx, *res); err != nil {
		return nil, fmt.Errorf("failed to update result: %w", err)
	}
	if err := s.requests.TransitionTx(ctx, tx, res.RequestID, from, domain.RequestStatusFor(res.Status)); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *reviewService) stamp(res *domain.GenerationResult, principal domain.Principal) {
	now := s.Now()
	reviewer := principal.ID
	res.ReviewerID = &reviewer
	res.ReviewedAt = &now
}

func (s *reviewService) Edit(ctx context.Context, principal domain.Principal, resultID string, req dto.EditResultRequest) (*domain.GenerationResult, error) {
	if err := s.Authorize(ctx, principal, domain.CapFortuneReview); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.EditedText) == "" {
		return nil, apperrors.NewValidationError(map[string]string{"editedText": "is required"})
	}

	var out *domain.GenerationResult
	err := s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		var err error
		out, err = s.review(ctx, tx, resultID, func(res *domain.GenerationResult) error {
			text := req.EditedText
			res.EditedText = &text
			if req.Notes != nil {
				notes := *req.Notes
				res.EditorNotes = &notes
			}
			res.Status = domain.ResultEditing
			s.stamp(res, principal)
			return nil
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Result edited", slog.String("result_id", resultID), slog.String("reviewer_id", principal.ID))
	return out, nil
}

func (s *reviewService) Approve(ctx context.Context, principal domain.Principal, resultID string, req dto.ApproveResultRequest) (*domain.PublishedResult, error) {
	if err := s.Authorize(ctx, principal, domain.CapFortuneApprove); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.FinalText) == "" {
		return nil, apperrors.NewValidationError(map[string]string{"finalText": "is required"})
	}

	var published *domain.PublishedResult
	err := s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		_, err := s.review(ctx, tx, resultID, func(res *domain.GenerationResult) error {
			var err error
			published, err = s.publisher.Publish(ctx, tx, res.RequestID, req.FinalText, req.Notes, principal.ID)
			if err != nil {
				return err
			}
			res.Status = domain.ResultApproved
			s.stamp(res, principal)
			return nil
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Result approved and published",
		slog.String("result_id", resultID),
		slog.String("request_id", published.RequestID),
		slog.String("approver_id", principal.ID))

	s.publisher.Announce(ctx, *published)
	return published, nil
}

func (s *reviewService) Reject(ctx context.Context, principal domain.Principal, resultID string, reason string) (*domain.GenerationResult, error) {
	if err := s.Authorize(ctx, principal, domain.CapFortuneApprove); err != nil {
		return nil, err
	}
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.NewValidationError(map[string]string{"reason": "is required"})
	}

	var out *domain.GenerationResult
	err := s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		var err error
		out, err = s.review(ctx, tx, resultID, func(res *domain.GenerationResult) error {
			notes := reason
			res.EditorNotes = &notes
			res.Status = domain.ResultPendingReview
			s.stamp(res, principal)
			return nil
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Result rejected", slog.String("result_id", resultID), slog.String("reviewer_id", principal.ID))
	return out, nil
}
