package services

import (
	"context"
	"time"

	"github.com/SscSPs/fortune_desk/internal/core/domain"
	"github.com/SscSPs/fortune_desk/internal/dto"
)

// AuthSvcFacade resolves credentials into principals and issues tokens.
type AuthSvcFacade interface {
	// Signup creates a customer and grants the signup bonus in one unit.
	Signup(ctx context.Context, req dto.SignupRequest) (*domain.User, error)

	// Authenticate dispatches on creds.Kind. A user credential is never
	// checked against the admin table and vice versa.
	Authenticate(ctx context.Context, creds domain.Credentials) (*domain.Principal, error)

	// IssueToken signs an access token for the principal.
	IssueToken(ctx context.Context, principal domain.Principal) (string, time.Time, error)

	// CreateAdmin provisions an operator account.
	CreateAdmin(ctx context.Context, req dto.CreateAdminRequest) (*domain.Admin, error)
}
