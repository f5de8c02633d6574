package middleware

import (
	"context"

	"github.com/SscSPs/fortune_desk/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// principalKey is the key used to store the authenticated principal.
const principalKey = contextKey("principal")

// WithPrincipal returns a copy of ctx carrying the authenticated caller.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// GetPrincipalFromContext retrieves the authenticated principal from the Gin context.
// It returns the principal and a boolean indicating if it was found.
func GetPrincipalFromContext(c *gin.Context) (domain.Principal, bool) {
	p, ok := c.Request.Context().Value(principalKey).(domain.Principal)
	return p, ok
}

// GetUserIDFromContext returns the caller's id when the caller is a customer.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	p, ok := GetPrincipalFromContext(c)
	if !ok || p.Kind != domain.PrincipalUser {
		return "", false
	}
	return p.ID, true
}
