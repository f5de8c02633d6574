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

// fortuneHandler serves the customer side of the request lifecycle.
type fortuneHandler struct {
	fortuneService   portssvc.FortuneSvcFacade
	publisherService portssvc.PublisherSvc
}

func newFortuneHandler(fs portssvc.FortuneSvcFacade, ps portssvc.PublisherSvc) *fortuneHandler {
	return &fortuneHandler{fortuneService: fs, publisherService: ps}
}

func registerFortuneRoutes(rg *gin.RouterGroup, fortuneService portssvc.FortuneSvcFacade, publisherService portssvc.PublisherSvc) {
	h := newFortuneHandler(fortuneService, publisherService)

	fortune := rg.Group("/fortune")
	{
		fortune.GET("/types", h.listTypes)

		requests := fortune.Group("/requests", middleware.RequireKind(domain.PrincipalUser))
		requests.POST("", h.createRequest)
		requests.GET("", h.listRequests)
		requests.GET("/:id", h.getRequest)
		requests.GET("/:id/result", h.getResult)
	}
}

// listTypes godoc
// @Summary List request types
// @Description Lists the active request types with their cost and input schema.
// @Tags fortune
// @Produce json
// @Success 200 {array} dto.RequestTypeResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /fortune/types [get]
func (h *fortuneHandler) listTypes(c *gin.Context) {
	types, err := h.fortuneService.ListTypes(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list request types")
		return
	}
	c.JSON(http.StatusOK, dto.ToRequestTypeResponses(types))
}

// createRequest godoc
// @Summary Submit a request
// @Description Validates input, debits the type's cost and queues generation.
// @Tags fortune
// @Accept json
// @Produce json
// @Param request body dto.CreateFortuneRequest true "Request details"
// @Success 201 {object} dto.FortuneRequestResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse
// @Failure 402 {object} ErrorResponse "Insufficient credits"
// @Failure 422 {object} ErrorResponse "Request type unavailable"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /fortune/requests [post]
func (h *fortuneHandler) createRequest(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var req dto.CreateFortuneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Info("Received request submission", slog.String("type_id", req.TypeID))

	created, err := h.fortuneService.CreateRequest(c.Request.Context(), principal.ID, req)
	if err != nil {
		respondError(c, err, "Failed to create request")
		return
	}

	logger.Info("Request created", slog.String("request_id", created.RequestID))
	c.JSON(http.StatusCreated, dto.ToFortuneRequestResponse(created))
}

// listRequests godoc
// @Summary List my requests
// @Description Lists the caller's requests, newest first.
// @Tags fortune
// @Produce json
// @Param status query string false "Filter by status"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} dto.ListRequestsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /fortune/requests [get]
func (h *fortuneHandler) listRequests(c *gin.Context) {
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

	reqs, pagination, err := h.fortuneService.ListRequestsByOwner(c.Request.Context(), principal.ID, status,
		domain.PageRequest{Page: params.Page, Limit: params.Limit})
	if err != nil {
		respondError(c, err, "Failed to list requests")
		return
	}
	c.JSON(http.StatusOK, dto.ToListRequestsResponse(reqs, pagination))
}

// getRequest godoc
// @Summary Get a request
// @Tags fortune
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} dto.FortuneRequestResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /fortune/requests/{id} [get]
func (h *fortuneHandler) getRequest(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	req, err := h.fortuneService.GetRequest(c.Request.Context(), c.Param("id"), principal.ID)
	if err != nil {
		respondError(c, err, "Failed to retrieve request")
		return
	}
	c.JSON(http.StatusOK, dto.ToFortuneRequestResponse(req))
}

// getResult godoc
// @Summary Get the published result of a request
// @Description Only approved results are visible to customers.
// @Tags fortune
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} dto.PublishedResultResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Not published yet"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /fortune/requests/{id}/result [get]
func (h *fortuneHandler) getResult(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	published, err := h.publisherService.GetPublished(c.Request.Context(), c.Param("id"), principal.ID)
	if err != nil {
		respondError(c, err, "Failed to retrieve result")
		return
	}
	c.JSON(http.StatusOK, dto.ToPublishedResultResponse(published))
}
