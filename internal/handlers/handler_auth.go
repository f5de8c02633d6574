package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portssvc "github.com/SscSPs/fortune_desk/internal/core/ports/services"
	"github.com/SscSPs/fortune_desk/internal/dto"
	"github.com/SscSPs/fortune_desk/internal/middleware"
	"github.com/gin-gonic/gin"
)

// authHandler handles authentication related requests.
type authHandler struct {
	authService portssvc.AuthSvcFacade
}

func newAuthHandler(as portssvc.AuthSvcFacade) *authHandler {
	return &authHandler{authService: as}
}

// registerAuthRoutes sets up the public authentication routes. Every route
// passes through limit.
func registerAuthRoutes(r *gin.Engine, authService portssvc.AuthSvcFacade, limit gin.HandlerFunc) {
	h := newAuthHandler(authService)

	auth := r.Group("/auth", limit)
	{
		auth.POST("/signup", h.signup)
		auth.POST("/login", h.login)
		auth.POST("/admin/login", h.adminLogin)
	}
}

// signup godoc
// @Summary Register a customer
// @Description Creates a customer account and grants the signup bonus.
// @Tags auth
// @Accept json
// @Produce json
// @Param signup body dto.SignupRequest true "Signup details"
// @Success 201 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Email already registered"
// @Failure 429 {object} ErrorResponse
// @Router /auth/signup [post]
func (h *authHandler) signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to register user")
		return
	}

	h.respondWithToken(c, http.StatusCreated, domain.UserPrincipal(*user))
}

// login godoc
// @Summary Customer login
// @Description Authenticates a customer and returns a JWT token.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /auth/login [post]
func (h *authHandler) login(c *gin.Context) {
	h.authenticate(c, domain.PrincipalUser)
}

// adminLogin godoc
// @Summary Operator login
// @Description Authenticates an operator. The token carries the operator's permissions.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /auth/admin/login [post]
func (h *authHandler) adminLogin(c *gin.Context) {
	h.authenticate(c, domain.PrincipalAdmin)
}

func (h *authHandler) authenticate(c *gin.Context, kind domain.PrincipalKind) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	principal, err := h.authService.Authenticate(c.Request.Context(), domain.Credentials{
		Kind:     kind,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err, "Failed to authenticate")
		return
	}

	h.respondWithToken(c, http.StatusOK, *principal)
}

func (h *authHandler) respondWithToken(c *gin.Context, status int, principal domain.Principal) {
	token, expiresAt, err := h.authService.IssueToken(c.Request.Context(), principal)
	if err != nil {
		respondError(c, err, "Failed to generate token")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Issued access token",
		slog.String("principal_id", principal.ID),
		slog.String("principal_kind", string(principal.Kind)))
	c.JSON(status, dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Principal: dto.ToPrincipalView(principal),
	})
}
