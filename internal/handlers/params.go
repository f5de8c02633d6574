package handlers

import (
	"github.com/SscSPs/fortune_desk/internal/apperrors"
	"github.com/SscSPs/fortune_desk/internal/core/domain"
)

func parseRequestStatus(raw string) (*domain.RequestStatus, error) {
	if raw == "" {
		return nil, nil
	}
	status := domain.RequestStatus(raw)
	if !status.Valid() {
		return nil, apperrors.NewValidationError(map[string]string{"status": "unknown request status " + raw})
	}
	return &status, nil
}

func parseResultStatus(raw string) (*domain.ResultStatus, error) {
	if raw == "" {
		return nil, nil
	}
	status := domain.ResultStatus(raw)
	if !status.Valid() {
		return nil, apperrors.NewValidationError(map[string]string{"status": "unknown result status " + raw})
	}
	return &status, nil
}
