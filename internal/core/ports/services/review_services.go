package services

import (
	"context"

	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/fortune_desk/internal/core/ports/repositories"
	"github.com/SscSPs/fortune_desk/internal/dto"
)

// ReviewSvcFacade is the human review gate. Every operation checks the
// principal's capabilities.
type ReviewSvcFacade interface {
	GetResult(ctx context.Context, principal domain.Principal, resultID string) (*domain.GenerationResult, error)
	ListResults(ctx context.Context, principal domain.Principal, status *domain.ResultStatus, page domain.PageRequest) ([]domain.GenerationResult, domain.Pagination, error)
	Edit(ctx context.Context, principal domain.Principal, resultID string, req dto.EditResultRequest) (*domain.GenerationResult, error)
	Approve(ctx context.Context, principal domain.Principal, resultID string, req dto.ApproveResultRequest) (*domain.PublishedResult, error)
	Reject(ctx context.Context, principal domain.Principal, resultID string, reason string) (*domain.GenerationResult, error)
}

// PublisherSvc is the single writer of published results.
type PublisherSvc interface {
	// Publish must run inside the approving atomic unit.
	Publish(ctx context.Context, tx portsrepo.TxRepositories, requestID string, finalText string, notes *string, approverID string) (*domain.PublishedResult, error)

	// Announce runs after commit. Failures are logged, never returned.
	Announce(ctx context.Context, published domain.PublishedResult)

	// GetPublished returns the artifact of ownerID's request.
	GetPublished(ctx context.Context, requestID string, ownerID string) (*domain.PublishedResult, error)
}
