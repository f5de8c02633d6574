package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/fortune_desk/internal/apperrors"
	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/fortune_desk/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fortune_desk/internal/core/ports/services"
	"github.com/SscSPs/fortune_desk/internal/dto"
	"github.com/SscSPs/fortune_desk/internal/platform/config"
	"github.com/SscSPs/fortune_desk/internal/utils"
	"github.com/google/uuid"
)

// authService resolves credentials into principals and issues access tokens.
type authService struct {
	BaseService
	cfg       *config.Config
	txManager portsrepo.TransactionManager
	userRepo  portsrepo.UserReader
	adminRepo portsrepo.AdminRepository
	ledger    portssvc.LedgerTxSvc
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	cfg *config.Config,
	txManager portsrepo.TransactionManager,
	userRepo portsrepo.UserReader,
	adminRepo portsrepo.AdminRepository,
	ledger portssvc.LedgerTxSvc,
) portssvc.AuthSvcFacade {
	return &authService{
		cfg:       cfg,
		txManager: txManager,
		userRepo:  userRepo,
		adminRepo: adminRepo,
		ledger:    ledger,
	}
}

var _ portssvc.AuthSvcFacade = (*authService)(nil)

func (s *authService) Signup(ctx context.Context, req dto.SignupRequest) (*domain.User, error) {
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, utils.ErrPasswordTooLong) {
			return nil, apperrors.NewValidationError(map[string]string{"password": err.Error()})
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.Now()
	user := domain.User{
		UserID:       uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
		Timestamps:   domain.Timestamps{CreatedAt: now, UpdatedAt: now},
	}

	err = s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		if err := tx.Users.SaveUser(ctx, user); err != nil {
			return err
		}
		if s.cfg.SignupBonusCredits <= 0 {
			return nil
		}
		entry, err := s.ledger.PostTx(ctx, tx, domain.Posting{
			UserID:      user.UserID,
			Amount:      s.cfg.SignupBonusCredits,
			Kind:        domain.EntryBonus,
			Description: "Signup bonus",
		})
		if err != nil {
			return err
		}
		user.Credits += entry.Amount
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email already registered", apperrors.ErrDuplicate)
		}
		s.LogError(ctx, err, "Signup failed")
		return nil, err
	}

	s.LogInfo(ctx, "User signed up", slog.String("user_id", user.UserID), slog.Int64("bonus", s.cfg.SignupBonusCredits))
	return &user, nil
}

func (s *authService) Authenticate(ctx context.Context, creds domain.Credentials) (*domain.Principal, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))

	switch creds.Kind {
	case domain.PrincipalUser:
		user, err := s.userRepo.FindUserByEmail(ctx, email)
		if err != nil {
			return nil, s.authFailure(ctx, err, creds.Kind)
		}
		if !utils.CheckPasswordHash(creds.Password, user.PasswordHash) {
			return nil, s.authFailure(ctx, nil, creds.Kind)
		}
		p := domain.UserPrincipal(*user)
		return &p, nil

	case domain.PrincipalAdmin:
		admin, err := s.adminRepo.FindAdminByEmail(ctx, email)
		if err != nil {
			return nil, s.authFailure(ctx, err, creds.Kind)
		}
		if !admin.IsActive || !utils.CheckPasswordHash(creds.Password, admin.PasswordHash) {
			return nil, s.authFailure(ctx, nil, creds.Kind)
		}
		p := domain.AdminPrincipal(*admin)
		return &p, nil

	default:
		return nil, apperrors.NewValidationError(map[string]string{"kind": "unknown principal kind " + string(creds.Kind)})
	}
}

// authFailure hides whether the account exists.
func (s *authService) authFailure(ctx context.Context, err error, kind domain.PrincipalKind) error {
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Credential lookup failed", slog.String("kind", string(kind)))
		return fmt.Errorf("failed to authenticate: %w", err)
	}
	s.GetLogger(ctx).Warn("Authentication rejected", slog.String("kind", string(kind)))
	return fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
}

func (s *authService) IssueToken(ctx context.Context, principal domain.Principal) (string, time.Time, error) {
	claims := utils.Claims{
		Role:  string(principal.Kind),
		Email: principal.Email,
		Name:  principal.Name,
	}
	if principal.IsAdmin() {
		claims.Permissions = principal.Permissions.Strings()
	}
	token, expiresAt, err := utils.GenerateJWT(principal.ID, claims, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		s.LogError(ctx, err, "Failed to sign access token", slog.String("principal_id", principal.ID))
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expiresAt, nil
}

func (s *authService) CreateAdmin(ctx context.Context, req dto.CreateAdminRequest) (*domain.Admin, error) {
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, utils.ErrPasswordTooLong) {
			return nil, apperrors.NewValidationError(map[string]string{"password": err.Error()})
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = "admin"
	}
	now := s.Now()
	admin := domain.Admin{
		AdminID:      uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Name:         req.Name,
		PasswordHash: hash,
		Role:         role,
		Permissions:  domain.NewCapabilitySet(req.Permissions...),
		IsActive:     true,
		Timestamps:   domain.Timestamps{CreatedAt: now, UpdatedAt: now},
	}
	if err := s.adminRepo.SaveAdmin(ctx, admin); err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Admin created", slog.String("admin_id", admin.AdminID), slog.Any("permissions", admin.Permissions.Strings()))
	return &admin, nil
}
