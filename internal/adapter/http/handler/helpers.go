package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/splitpot/splitpot/internal/adapter/http/dto"
	"github.com/splitpot/splitpot/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrGroupNotFound),
		errors.Is(err, domain.ErrExpenseNotFound),
		errors.Is(err, domain.ErrSettlementNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSettlementNotPending),
		errors.Is(err, domain.ErrMemberExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidSplit),
		errors.Is(err, domain.ErrUnknownSplitPolicy),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrSameUser),
		errors.Is(err, domain.ErrNotGroupMember),
		errors.Is(err, domain.ErrInvalidGroupName),
		errors.Is(err, domain.ErrInvalidMemberID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
