package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/fortune_desk/internal/apperrors"
	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/fortune_desk/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fortune_desk/internal/core/ports/services"
	"github.com/google/uuid"
)

// publisherService is the single writer of published results.
type publisherService struct {
	BaseService
	publishedRepo portsrepo.PublishedRepository
	requestRepo   portsrepo.RequestReader
	notifier      portssvc.Notifier
	artifacts     portssvc.ArtifactStore
}

// PublisherOption is a functional option for configuring the publisher
type PublisherOption func(*publisherService)

// WithPublishNotifier sets the notifier told about each publication.
func WithPublishNotifier(n portssvc.Notifier) PublisherOption {
	return func(s *publisherService) {
		s.notifier = n
	}
}

// WithArtifactStore archives each published text.
func WithArtifactStore(a portssvc.ArtifactStore) PublisherOption {
	return func(s *publisherService) {
		s.artifacts = a
	}
}

// NewPublisherService creates a new publisher.
func NewPublisherService(publishedRepo portsrepo.PublishedRepository, requestRepo portsrepo.RequestReader, options ...PublisherOption) portssvc.PublisherSvc {
	svc := &publisherService{
		publishedRepo: publishedRepo,
		requestRepo:   requestRepo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.PublisherSvc = (*publisherService)(nil)

func (s *publisherService) Publish(ctx context.Context, tx portsrepo.TxRepositories, requestID string, finalText string, notes *string, approverID string) (*domain.PublishedResult, error) {
	_, err := tx.Published.FindPublishedByRequestID(ctx, requestID)
	if err == nil {
		return nil, fmt.Errorf("%w: request %s", apperrors.ErrAlreadyPublished, requestID)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check published result: %w", err)
	}

	published := domain.PublishedResult{
		PublishedID:   uuid.NewString(),
		RequestID:     requestID,
		FinalText:     finalText,
		ApproverNotes: notes,
		ApprovedBy:    approverID,
		ApprovedAt:    s.Now(),
	}
	if err := tx.Published.SavePublished(ctx, published); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: request %s", apperrors.ErrAlreadyPublished, requestID)
		}
		return nil, fmt.Errorf("failed to save published result: %w", err)
	}
	return &published, nil
}

func (s *publisherService) Announce(ctx context.Context, published domain.PublishedResult) {
	if s.notifier == nil && s.artifacts == nil {
		return
	}
	req, err := s.requestRepo.FindRequestByID(ctx, published.RequestID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load request for publish announcement", slog.String("request_id", published.RequestID))
		return
	}

	if s.notifier != nil {
		if err := s.notifier.ResultPublished(ctx, req.UserID, published); err != nil {
			s.LogError(ctx, err, "Failed to notify user of publication", slog.String("request_id", published.RequestID))
		}
	}
	if s.artifacts != nil {
		location, err := s.artifacts.Archive(ctx, req.UserID, published)
		if err != nil {
			s.LogError(ctx, err, "Failed to archive published result", slog.String("request_id", published.RequestID))
			return
		}
		s.LogInfo(ctx, "Published result archived", slog.String("request_id", published.RequestID), slog.String("location", location))
	}
}

func (s *publisherService) GetPublished(ctx context.Context, requestID string, ownerID string) (*domain.PublishedResult, error) {
	req, err := s.requestRepo.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.UserID != ownerID {
		return nil, apperrors.ErrNotFound
	}
	return s.publishedRepo.FindPublishedByRequestID(ctx, requestID)
}
