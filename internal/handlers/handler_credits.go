package handlers

import (
	"net/http"

	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portssvc "github.com/SscSPs/fortune_desk/internal/core/ports/services"
	"github.com/SscSPs/fortune_desk/internal/dto"
	"github.com/SscSPs/fortune_desk/internal/middleware"
	"github.com/gin-gonic/gin"
)

// creditsHandler exposes a customer's own balance and ledger.
type creditsHandler struct {
	ledgerService portssvc.LedgerReaderSvc
}

func registerCreditsRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerReaderSvc) {
	h := &creditsHandler{ledgerService: ledgerService}

	credits := rg.Group("/credits", middleware.RequireKind(domain.PrincipalUser))
	{
		credits.GET("/balance", h.getBalance)
		credits.GET("/history", h.getHistory)
	}
}

// getBalance godoc
// @Summary Get my credit balance
// @Tags credits
// @Produce json
// @Success 200 {object} dto.BalanceResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /credits/balance [get]
func (h *creditsHandler) getBalance(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	balance, err := h.ledgerService.Balance(c.Request.Context(), principal.ID)
	if err != nil {
		respondError(c, err, "Failed to retrieve balance")
		return
	}
	c.JSON(http.StatusOK, dto.BalanceResponse{Credits: balance})
}

// getHistory godoc
// @Summary Get my credit history
// @Description Returns ledger entries newest first. Pass nextToken to continue.
// @Tags credits
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.LedgerHistoryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /credits/history [get]
func (h *creditsHandler) getHistory(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var params dto.LedgerHistoryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, err)
		return
	}

	entries, next, err := h.ledgerService.History(c.Request.Context(), principal.ID, params.Limit, params.NextToken)
	if err != nil {
		respondError(c, err, "Failed to retrieve credit history")
		return
	}
	if entries == nil {
		entries = []domain.LedgerEntry{}
	}
	c.JSON(http.StatusOK, dto.LedgerHistoryResponse{Entries: entries, NextToken: next})
}
