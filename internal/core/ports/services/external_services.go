package services

import (
	"context"

	"github.com/SscSPs/fortune_desk/internal/core/domain"
)

// GenerationInput is everything the generation service needs for one request.
type GenerationInput struct {
	RequestID string
	TypeID    string
	TypeName  string
	Input     map[string]any
}

// Generator produces report text. Errors wrap apperrors.ErrTransient or
// apperrors.ErrFatal so callers can choose between retry and failure.
type Generator interface {
	Generate(ctx context.Context, in GenerationInput) (string, error)
}

// Notifier delivers lifecycle events to reviewers and customers.
type Notifier interface {
	ResultGenerated(ctx context.Context, result domain.GenerationResult) error
	ResultPublished(ctx context.Context, userID string, published domain.PublishedResult) error
}

// ArtifactStore archives published text and returns its location.
type ArtifactStore interface {
	Archive(ctx context.Context, userID string, published domain.PublishedResult) (string, error)
}
