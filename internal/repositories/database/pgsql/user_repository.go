package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/fortune_desk/internal/apperrors"
	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/fortune_desk/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

type userRepository struct {
	db querier
}

// Ensure userRepository implements portsrepo.UserRepository
var _ portsrepo.UserRepository = (*userRepository)(nil)

const userColumns = `user_id, email, name, password_hash, credits, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.UserID, &u.Email, &u.Name, &u.PasswordHash, &u.Credits, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) SaveUser(ctx context.Context, user domain.User) error {
	query := `
		INSERT INTO users (user_id, email, name, password_hash, credits, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.db.Exec(ctx, query,
		user.UserID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.Credits,
		user.CreatedAt,
		user.UpdatedAt,
	)
	return mapError(err, "failed to save user")
}

func (r *userRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1;`
	u, err := scanUser(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, mapError(err, "failed to find user by ID %s", userID)
	}
	return u, nil
}

func (r *userRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1);`
	u, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return nil, mapError(err, "failed to find user by email")
	}
	return u, nil
}

func (r *userRepository) FindUserByIDForUpdate(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1 FOR UPDATE;`
	u, err := scanUser(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, mapError(err, "failed to lock user %s", userID)
	}
	return u, nil
}

func (r *userRepository) UpdateCredits(ctx context.Context, userID string, credits int64, now time.Time) error {
	query := `UPDATE users SET credits = $1, updated_at = $2 WHERE user_id = $3;`
	cmdTag, err := r.db.Exec(ctx, query, credits, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update credits for user %s: %w", userID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", userID, apperrors.ErrNotFound)
	}
	return nil
}

type adminRepository struct {
	db querier
}

var _ portsrepo.AdminRepository = (*adminRepository)(nil)

const adminColumns = `admin_id, email, name, password_hash, role, permissions, is_active, created_at, updated_at`

func scanAdmin(row pgx.Row) (*domain.Admin, error) {
	var a domain.Admin
	var perms []string
	err := row.Scan(&a.AdminID, &a.Email, &a.Name, &a.PasswordHash, &a.Role, &perms, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Permissions = domain.NewCapabilitySet(perms...)
	return &a, nil
}

func (r *adminRepository) SaveAdmin(ctx context.Context, admin domain.Admin) error {
	query := `
		INSERT INTO admins (admin_id, email, name, password_hash, role, permissions, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.db.Exec(ctx, query,
		admin.AdminID,
		admin.Email,
		admin.Name,
		admin.PasswordHash,
		admin.Role,
		admin.Permissions.Strings(),
		admin.IsActive,
		admin.CreatedAt,
		admin.UpdatedAt,
	)
	return mapError(err, "failed to save admin")
}

func (r *adminRepository) FindAdminByID(ctx context.Context, adminID string) (*domain.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE admin_id = $1;`
	a, err := scanAdmin(r.db.QueryRow(ctx, query, adminID))
	if err != nil {
		return nil, mapError(err, "failed to find admin %s", adminID)
	}
	return a, nil
}

func (r *adminRepository) FindAdminByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE LOWER(email) = LOWER($1);`
	a, err := scanAdmin(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return nil, mapError(err, "failed to find admin by email")
	}
	return a, nil
}
