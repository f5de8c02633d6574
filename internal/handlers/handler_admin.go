package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portssvc "github.com/SscSPs/fortune_desk/internal/core/ports/services"
	"github.com/SscSPs/fortune_desk/internal/dto"
	"github.com/SscSPs/fortune_desk/internal/middleware"
	"github.com/gin-gonic/gin"
)

const defaultDeadJobLimit = 50

// adminHandler serves the operator console. Capability checks happen in the
// services; the route group only ensures the caller is an operator.
type adminHandler struct {
	reviewService    portssvc.ReviewSvcFacade
	fortuneService   portssvc.RequestReaderSvc
	ledgerService    portssvc.LedgerSvcFacade
	reportingService portssvc.ReportingService
	queue            portssvc.QueueInspector
}

func registerAdminRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := &adminHandler{
		reviewService:    services.Review,
		fortuneService:   services.Fortune,
		ledgerService:    services.Ledger,
		reportingService: services.Reporting,
		queue:            services.Queue,
	}

	admin := rg.Group("/admin", middleware.RequireKind(domain.PrincipalAdmin))
	{
		admin.GET("/dashboard", h.getDashboard)

		results := admin.Group("/results")
		results.GET("", h.listResults)
		results.GET("/:id", h.getResult)
		results.PUT("/:id", h.editResult)
		results.POST("/:id/approve", h.approveResult)
		results.POST("/:id/reject", h.rejectResult)

		admin.GET("/requests", h.listRequests)

		users := admin.Group("/users/:id")
		users.POST("/credits", h.adjustCredits)
		users.POST("/purchases", h.recordPurchase)
		users.GET("/ledger/verify", h.verifyLedger)

		admin.GET("/queue", h.getQueue)
	}
}

// getDashboard godoc
// @Summary Operator dashboard
// @Tags admin
// @Produce json
// @Success 200 {object} domain.DashboardStats
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/dashboard [get]
func (h *adminHandler) getDashboard(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	stats, err := h.reportingService.GetDashboard(c.Request.Context(), principal)
	if err != nil {
		respondError(c, err, "Failed to load dashboard")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// listResults godoc
// @Summary List generated results
// @Description Lists results oldest first so the review backlog is worked in order.
// @Tags admin
// @Produce json
// @Param status query string false "pending_review, editing or approved"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} dto.ListResultsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/results [get]
func (h *adminHandler) listResults(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var params dto.ListResultsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, err)
		return
	}
	status, err := parseResultStatus(params.Status)
	if err != nil {
		respondError(c, err, "")
		return
	}

	results, pagination, err := h.reviewService.ListResults(c.Request.Context(), principal, status,
		domain.PageRequest{Page: params.Page, Limit: params.Limit})
	if err != nil {
		respondError(c, err, "Failed to list results")
		return
	}
	if results == nil {
		results = []domain.GenerationResult{}
	}
	c.JSON(http.StatusOK, dto.ListResultsResponse{Results: results, Pagination: pagination})
}

// getResult godoc
// @Summary Get a generated result
// @Tags admin
// @Produce json
// @Param id path string true "Result ID"
// @Success 200 {object} domain.GenerationResult
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/results/{id} [get]
func (h *adminHandler) getResult(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	result, err := h.reviewService.GetResult(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve result")
		return
	}
	c.JSON(http.StatusOK, result)
}

// editResult godoc
// @Summary Save an edited draft
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Result ID"
// @Param edit body dto.EditResultRequest true "Edited text"
// @Success 200 {object} domain.GenerationResult
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Result no longer editable"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/results/{id} [put]
func (h *adminHandler) editResult(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var req dto.EditResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.reviewService.Edit(c.Request.Context(), principal, c.Param("id"), req)
	if err != nil {
		respondError(c, err, "Failed to edit result")
		return
	}
	c.JSON(http.StatusOK, result)
}

// approveResult godoc
// @Summary Approve and publish a result
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Result ID"
// @Param approve body dto.ApproveResultRequest true "Final text"
// @Success 200 {object} domain.PublishedResult
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Already approved"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/results/{id}/approve [post]
func (h *adminHandler) approveResult(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var req dto.ApproveResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	published, err := h.reviewService.Approve(c.Request.Context(), principal, c.Param("id"), req)
	if err != nil {
		respondError(c, err, "Failed to approve result")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Result published", slog.String("request_id", published.RequestID))
	c.JSON(http.StatusOK, published)
}

// rejectResult godoc
// @Summary Send a result back for review
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Result ID"
// @Param reject body dto.RejectResultRequest true "Reason"
// @Success 200 {object} domain.GenerationResult
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/results/{id}/reject [post]
func (h *adminHandler) rejectResult(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var req dto.RejectResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.reviewService.Reject(c.Request.Context(), principal, c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err, "Failed to reject result")
		return
	}
	c.JSON(http.StatusOK, result)
}

// listRequests godoc
// @Summary List requests across all users
// @Tags admin
// @Produce json
// @Param status query string false "Filter by status"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} dto.ListRequestsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/requests [get]
func (h *adminHandler) listRequests(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var params dto.ListRequestsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, err)
		return
	}
	status, err := parseRequestStatus(params.Status)
	if err != nil {
		respondError(c, err, "")
		return
	}

	reqs, pagination, err := h.fortuneService.ListRequestsByStatus(c.Request.Context(), principal, status,
		domain.PageRequest{Page: params.Page, Limit: params.Limit})
	if err != nil {
		respondError(c, err, "Failed to list requests")
		return
	}
	c.JSON(http.StatusOK, dto.ToListRequestsResponse(reqs, pagination))
}

// adjustCredits godoc
// @Summary Grant or deduct credits
// @Description A positive amount grants credits, a negative amount deducts them.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param adjust body dto.AdjustCreditsRequest true "Adjustment"
// @Success 201 {object} domain.LedgerEntry
// @Failure 400 {object} ErrorResponse
// @Failure 402 {object} ErrorResponse "Deduction exceeds balance"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/users/{id}/credits [post]
func (h *adminHandler) adjustCredits(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var req dto.AdjustCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	entry, err := h.ledgerService.Adjust(c.Request.Context(), principal, c.Param("id"), req)
	if err != nil {
		respondError(c, err, "Failed to adjust credits")
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// recordPurchase godoc
// @Summary Record a completed purchase
// @Description Grants purchased credits. A repeated providerRef is rejected.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param purchase body dto.PurchaseRequest true "Payment receipt"
// @Success 201 {object} domain.PaymentRecord
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Payment already recorded"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/users/{id}/purchases [post]
func (h *adminHandler) recordPurchase(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var req dto.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	payment, err := h.ledgerService.Purchase(c.Request.Context(), principal, c.Param("id"), req)
	if err != nil {
		respondError(c, err, "Failed to record purchase")
		return
	}
	c.JSON(http.StatusCreated, payment)
}

// verifyLedger godoc
// @Summary Audit a user's balance against the ledger
// @Tags admin
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} domain.BalanceAudit
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/users/{id}/ledger/verify [get]
func (h *adminHandler) verifyLedger(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	audit, err := h.ledgerService.VerifyBalance(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to verify ledger")
		return
	}
	if !audit.Consistent() {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Balance drift detected",
			slog.String("user_id", audit.UserID),
			slog.Int64("cached", audit.CachedBalance),
			slog.Int64("ledger_sum", audit.LedgerSum))
	}
	c.JSON(http.StatusOK, audit)
}

// getQueue godoc
// @Summary Queue health
// @Description Queue counters and the most recent dead letters.
// @Tags admin
// @Produce json
// @Param limit query int false "Dead letters to return" default(50)
// @Success 200 {object} dto.QueueOverviewResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/queue [get]
func (h *adminHandler) getQueue(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	if !principal.Can(domain.CapSystemConfig) {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		return
	}
	if h.queue == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Queue inspection is not configured"})
		return
	}

	limit := defaultDeadJobLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	stats, err := h.queue.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to read queue stats")
		return
	}
	dead, err := h.queue.DeadJobs(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err, "Failed to read dead letters")
		return
	}
	if dead == nil {
		dead = []domain.DeadJob{}
	}
	c.JSON(http.StatusOK, dto.QueueOverviewResponse{Stats: stats, DeadJobs: dead})
}
