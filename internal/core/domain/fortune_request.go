package domain

import (
	"encoding/json"
	"time"
)

// RequestStatus is the lifecycle state of a FortuneRequest.
type RequestStatus string

const (
	RequestPending     RequestStatus = "pending"
	RequestProcessing  RequestStatus = "processing"
	RequestAIGenerated RequestStatus = "ai_generated"
	RequestEditing     RequestStatus = "editing"
	RequestPublished   RequestStatus = "published"
	RequestFailed      RequestStatus = "failed"
)

var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestPending:     {RequestProcessing},
	RequestProcessing:  {RequestPending, RequestAIGenerated, RequestFailed},
	RequestAIGenerated: {RequestEditing, RequestAIGenerated, RequestPublished},
	RequestEditing:     {RequestEditing, RequestAIGenerated, RequestPublished},
}

// Valid reports whether s is a known status.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestProcessing, RequestAIGenerated, RequestEditing, RequestPublished, RequestFailed:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s RequestStatus) Terminal() bool {
	return s == RequestPublished || s == RequestFailed
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to RequestStatus) bool {
	for _, next := range requestTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// FortuneRequest is a paid request for a generated report.
type FortuneRequest struct {
	RequestID string          `json:"requestID"`
	UserID    string          `json:"userID"`
	TypeID    string          `json:"typeID"`
	InputData json.RawMessage `json:"inputData"`
	Status    RequestStatus   `json:"status"`
	Timestamps
}

// Input decodes InputData into a field map.
func (r FortuneRequest) Input() (map[string]any, error) {
	out := map[string]any{}
	if len(r.InputData) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(r.InputData, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RequestFilter narrows request listings.
type RequestFilter struct {
	UserID        *string
	Status        *RequestStatus
	CreatedBefore *time.Time
	UpdatedBefore *time.Time
	// OldestFirst lists by creation time ascending instead of newest first.
	OldestFirst bool
}
