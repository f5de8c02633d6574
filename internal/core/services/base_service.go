package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/fortune_desk/internal/apperrors"
	"github.com/SscSPs/fortune_desk/internal/core/domain"
	"github.com/SscSPs/fortune_desk/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	// Clock returns the current time. Tests replace it.
	Clock func() time.Time
}

// Now returns the current UTC time from Clock.
func (s *BaseService) Now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// Authorize checks that the principal holds the capability.
func (s *BaseService) Authorize(ctx context.Context, principal domain.Principal, required domain.Capability) error {
	if principal.Can(required) {
		return nil
	}
	s.LogDebug(ctx, "Capability check failed",
		slog.String("principal_id", principal.ID),
		slog.String("principal_kind", string(principal.Kind)),
		slog.String("required", string(required)))
	return fmt.Errorf("%w: requires %s", apperrors.ErrForbidden, required)
}
