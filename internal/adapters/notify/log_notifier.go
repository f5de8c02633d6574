// Package notify delivers result lifecycle events.
package notify

import (
	"context"
	"log/slog"

	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portssvc "github.com/SscSPs/fortune_desk/internal/core/ports/services"
	"github.com/SscSPs/fortune_desk/internal/middleware"
)

// LogNotifier writes events to the structured log. It is used when no
// broker is configured.
type LogNotifier struct{}

var _ portssvc.Notifier = LogNotifier{}

func (LogNotifier) ResultGenerated(ctx context.Context, result domain.GenerationResult) error {
	middleware.GetLoggerFromCtx(ctx).Info("Result awaiting review",
		slog.String("result_id", result.ResultID),
		slog.String("request_id", result.RequestID))
	return nil
}

func (LogNotifier) ResultPublished(ctx context.Context, userID string, published domain.PublishedResult) error {
	middleware.GetLoggerFromCtx(ctx).Info("Result published to user",
		slog.String("user_id", userID),
		slog.String("request_id", published.RequestID),
		slog.String("published_id", published.PublishedID))
	return nil
}
