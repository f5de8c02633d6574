package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/fortune_desk/internal/core/domain"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUserByID retrieves a specific user by their ID.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByEmail retrieves a user by login email.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// SaveUser persists a new user. Returns apperrors.ErrDuplicate when the email is taken.
	SaveUser(ctx context.Context, user domain.User) error

	// FindUserByIDForUpdate loads a user and locks the row until the transaction ends.
	FindUserByIDForUpdate(ctx context.Context, userID string) (*domain.User, error)

	// UpdateCredits overwrites the cached credit balance.
	UpdateCredits(ctx context.Context, userID string, credits int64, now time.Time) error
}

// UserRepository combines all user-related repository interfaces
type UserRepository interface {
	UserReader
	UserWriter
}

// AdminRepository defines storage for operator accounts.
type AdminRepository interface {
	SaveAdmin(ctx context.Context, admin domain.Admin) error
	FindAdminByID(ctx context.Context, adminID string) (*domain.Admin, error)
	FindAdminByEmail(ctx context.Context, email string) (*domain.Admin, error)
}
