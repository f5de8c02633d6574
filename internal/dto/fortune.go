package dto

import (
	"encoding/json"
	"time"

	"github.com/SscSPs/fortune_desk/internal/core/domain"
)

// CreateFortuneRequest defines the data needed to submit a request.
type CreateFortuneRequest struct {
	TypeID    string         `json:"typeID" binding:"required"`
	InputData map[string]any `json:"inputData" binding:"required"`
}

// ListRequestsParams defines query parameters for listing requests.
type ListRequestsParams struct {
	Status string `form:"status"`
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=20"`
}

// FortuneRequestResponse defines the data returned for a request.
type FortuneRequestResponse struct {
	RequestID string          `json:"requestID"`
	UserID    string          `json:"userID"`
	TypeID    string          `json:"typeID"`
	InputData json.RawMessage `json:"inputData"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// ListRequestsResponse wraps one page of requests.
type ListRequestsResponse struct {
	Requests   []FortuneRequestResponse `json:"requests"`
	Pagination domain.Pagination        `json:"pagination"`
}

// RequestTypeResponse defines the data returned for a request type.
type RequestTypeResponse struct {
	TypeID          string             `json:"typeID"`
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	RequiredCredits int64              `json:"requiredCredits"`
	InputSchema     domain.InputSchema `json:"inputSchema"`
}

// PublishedResultResponse is what the customer sees once a result is approved.
type PublishedResultResponse struct {
	RequestID  string    `json:"requestID"`
	FinalText  string    `json:"finalText"`
	ApprovedAt time.Time `json:"approvedAt"`
}

func ToFortuneRequestResponse(r *domain.FortuneRequest) FortuneRequestResponse {
	return FortuneRequestResponse{
		RequestID: r.RequestID,
		UserID:    r.UserID,
		TypeID:    r.TypeID,
		InputData: r.InputData,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func ToListRequestsResponse(reqs []domain.FortuneRequest, p domain.Pagination) ListRequestsResponse {
	out := make([]FortuneRequestResponse, len(reqs))
	for i := range reqs {
		out[i] = ToFortuneRequestResponse(&reqs[i])
	}
	return ListRequestsResponse{Requests: out, Pagination: p}
}

func ToRequestTypeResponses(types []domain.RequestType) []RequestTypeResponse {
	out := make([]RequestTypeResponse, len(types))
	for i, t := range types {
		out[i] = RequestTypeResponse{
			TypeID:          t.TypeID,
			Name:            t.Name,
			Description:     t.Description,
			RequiredCredits: t.RequiredCredits,
			InputSchema:     t.InputSchema,
		}
	}
	return out
}

func ToPublishedResultResponse(p *domain.PublishedResult) PublishedResultResponse {
	return PublishedResultResponse{
		RequestID:  p.RequestID,
		FinalText:  p.FinalText,
		ApprovedAt: p.ApprovedAt,
	}
}
