package dto

import (
	"time"

	"github.com/SscSPs/fortune_desk/internal/core/domain"
)

// SignupRequest defines the data needed to register a customer.
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,max=100"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest is accepted by both the user and the admin login endpoints.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CreateAdminRequest defines the data needed to create an operator.
type CreateAdminRequest struct {
	Email       string   `json:"email" binding:"required,email"`
	Name        string   `json:"name" binding:"required"`
	Password    string   `json:"password" binding:"required,min=8,max=72"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// LoginResponse represents the response for a successful login.
type LoginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	Principal PrincipalView `json:"principal"`
}

// PrincipalView is the public shape of an authenticated caller.
type PrincipalView struct {
	Kind        string   `json:"kind"`
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions,omitempty"`
}

// UserResponse defines the data returned for a customer.
type UserResponse struct {
	UserID  string `json:"userID"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Credits int64  `json:"credits"`
}

func ToPrincipalView(p domain.Principal) PrincipalView {
	return PrincipalView{
		Kind:        string(p.Kind),
		ID:          p.ID,
		Email:       p.Email,
		Name:        p.Name,
		Permissions: p.Permissions.Strings(),
	}
}

func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:  u.UserID,
		Email:   u.Email,
		Name:    u.Name,
		Credits: u.Credits,
	}
}
