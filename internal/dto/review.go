package dto

import (
	"github.com/SscSPs/fortune_desk/internal/core/domain"
)

// EditResultRequest stores a reviewer's draft.
type EditResultRequest struct {
	EditedText string  `json:"editedText" binding:"required"`
	Notes      *string `json:"notes"`
}

// ApproveResultRequest carries the text the approver chose to publish.
type ApproveResultRequest struct {
	FinalText string  `json:"finalText" binding:"required"`
	Notes     *string `json:"notes"`
}

// RejectResultRequest sends a result back for another review pass.
type RejectResultRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ListResultsParams defines query parameters for listing results.
type ListResultsParams struct {
	Status string `form:"status"`
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=20"`
}

// ListResultsResponse wraps one page of results.
type ListResultsResponse struct {
	Results    []domain.GenerationResult `json:"results"`
	Pagination domain.Pagination         `json:"pagination"`
}

// QueueOverviewResponse combines queue counters and dead letters.
type QueueOverviewResponse struct {
	Stats    domain.QueueStats `json:"stats"`
	DeadJobs []domain.DeadJob  `json:"deadJobs"`
}
