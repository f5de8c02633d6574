package domain

import "time"

// ResultStatus tracks the reviewable artifact of a request.
type ResultStatus string

const (
	ResultPendingReview ResultStatus = "pending_review"
	ResultEditing       ResultStatus = "editing"
	ResultApproved      ResultStatus = "approved"
)

// Valid reports whether s is a known status.
func (s ResultStatus) Valid() bool {
	return s == ResultPendingReview || s == ResultEditing || s == ResultApproved
}

// Reviewable reports whether edit, approve and reject are allowed.
func (s ResultStatus) Reviewable() bool {
	return s == ResultPendingReview || s == ResultEditing
}

// RequestStatusFor returns the request status that mirrors a result status.
func RequestStatusFor(s ResultStatus) RequestStatus {
	switch s {
	case ResultEditing:
		return RequestEditing
	case ResultApproved:
		return RequestPublished
	default:
		return RequestAIGenerated
	}
}

// GenerationResult is the generated text awaiting human review.
type GenerationResult struct {
	ResultID    string       `json:"resultID"`
	RequestID   string       `json:"requestID"`
	RawText     string       `json:"rawText"`
	EditedText  *string      `json:"editedText,omitempty"`
	EditorNotes *string      `json:"editorNotes,omitempty"`
	ReviewerID  *string      `json:"reviewerID,omitempty"`
	ReviewedAt  *time.Time   `json:"reviewedAt,omitempty"`
	Status      ResultStatus `json:"status"`
	Timestamps
}

// PreferredText returns the edited text when present, otherwise the raw text.
// Callers use it to choose the final text before approving.
func (r GenerationResult) PreferredText() string {
	if r.EditedText != nil && *r.EditedText != "" {
		return *r.EditedText
	}
	return r.RawText
}

// PublishedResult is the immutable user-visible artifact.
type PublishedResult struct {
	PublishedID   string    `json:"publishedID"`
	RequestID     string    `json:"requestID"`
	FinalText     string    `json:"finalText"`
	ApproverNotes *string   `json:"approverNotes,omitempty"`
	ApprovedBy    string    `json:"approvedBy"`
	ApprovedAt    time.Time `json:"approvedAt"`
}
