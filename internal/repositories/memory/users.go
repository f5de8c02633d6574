package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/fortune_desk/internal/apperrors"
	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/fortune_desk/internal/core/ports/repositories"
)

type userRepo struct{ handle }

var _ portsrepo.UserRepository = (*userRepo)(nil)

func (r *userRepo) SaveUser(_ context.Context, user domain.User) error {
	return r.do(func(st *state) error {
		if _, ok := st.users[user.UserID]; ok {
			return fmt.Errorf("%w: user %s", apperrors.ErrDuplicate, user.UserID)
		}
		for _, u := range st.users {
			if strings.EqualFold(u.Email, user.Email) {
				return fmt.Errorf("%w: email %s", apperrors.ErrDuplicate, user.Email)
			}
		}
		st.users[user.UserID] = user
		return nil
	})
}

func (r *userRepo) FindUserByID(_ context.Context, userID string) (*domain.User, error) {
	var out *domain.User
	err := r.do(func(st *state) error {
		u, ok := st.users[userID]
		if !ok {
			return apperrors.ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

// FindUserByIDForUpdate is FindUserByID; the store lock already serializes writers.
func (r *userRepo) FindUserByIDForUpdate(ctx context.Context, userID string) (*domain.User, error) {
	return r.FindUserByID(ctx, userID)
}

func (r *userRepo) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	var out *domain.User
	err := r.do(func(st *state) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, email) {
				u := u
				out = &u
				return nil
			}
		}
		return apperrors.ErrNotFound
	})
	return out, err
}

func (r *userRepo) UpdateCredits(_ context.Context, userID string, credits int64, now time.Time) error {
	return r.do(func(st *state) error {
		u, ok := st.users[userID]
		if !ok {
			return apperrors.ErrNotFound
		}
		u.Credits = credits
		u.UpdatedAt = now
		st.users[userID] = u
		return nil
	})
}

type adminRepo struct{ handle }

var _ portsrepo.AdminRepository = (*adminRepo)(nil)

func (r *adminRepo) SaveAdmin(_ context.Context, admin domain.Admin) error {
	return r.do(func(st *state) error {
		for _, a := range st.admins {
			if strings.EqualFold(a.Email, admin.Email) {
				return fmt.Errorf("%w: admin email %s", apperrors.ErrDuplicate, admin.Email)
			}
		}
		st.admins[admin.AdminID] = admin
		return nil
	})
}

func (r *adminRepo) FindAdminByID(_ context.Context, adminID string) (*domain.Admin, error) {
	var out *domain.Admin
	err := r.do(func(st *state) error {
		a, ok := st.admins[adminID]
		if !ok {
			return apperrors.ErrNotFound
		}
		out = &a
		return nil
	})
	return out, err
}

func (r *adminRepo) FindAdminByEmail(_ context.Context, email string) (*domain.Admin, error) {
	var out *domain.Admin
	err := r.do(func(st *state) error {
		for _, a := range st.admins {
			if strings.EqualFold(a.Email, email) {
				a := a
				out = &a
				return nil
			}
		}
		return apperrors.ErrNotFound
	})
	return out, err
}
