package dto

import (
	"github.com/SscSPs/fortune_desk/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PurchaseRequest records a payment that already succeeded at the provider.
type PurchaseRequest struct {
	Credits     int64           `json:"credits" binding:"required,gt=0"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"string"`
	Currency    string          `json:"currency" binding:"required,len=3"`
	ProviderRef string          `json:"providerRef" binding:"required"`
}

// AdjustCreditsRequest is an operator grant (positive) or deduction (negative).
type AdjustCreditsRequest struct {
	Amount int64  `json:"amount" binding:"required"`
	Reason string `json:"reason" binding:"required,max=255"`
}

// LedgerHistoryParams defines query parameters for the ledger history.
type LedgerHistoryParams struct {
	Limit     int    `form:"limit,default=20"`
	NextToken string `form:"nextToken"`
}

// BalanceResponse wraps a credit balance.
type BalanceResponse struct {
	Credits int64 `json:"credits"`
}

// LedgerHistoryResponse wraps one page of ledger entries.
type LedgerHistoryResponse struct {
	Entries   []domain.LedgerEntry `json:"entries"`
	NextToken string               `json:"nextToken,omitempty"`
}
