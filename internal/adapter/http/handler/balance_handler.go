package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/splitpot/splitpot/internal/adapter/http/dto"
	"github.com/splitpot/splitpot/internal/domain"
	"github.com/splitpot/splitpot/internal/usecase"
)

// BalanceService defines the behavior needed by BalanceHandler.
type BalanceService interface {
	GroupBalances(ctx context.Context, groupID string) (*usecase.GroupBalancesResult, error)
	CheckConsistency(ctx context.Context, groupID string) (bool, domain.Cents, error)
}

// BalanceHandler serves computed balances and settlement plans.
type BalanceHandler struct {
	calcUC BalanceService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(calcUC BalanceService) *BalanceHandler {
	return &BalanceHandler{calcUC: calcUC}
}

// GroupBalances returns a group's net balances and settlement plan.
func (h *BalanceHandler) GroupBalances(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")
	if groupID == "" {
		writeError(w, http.StatusBadRequest, "missing group ID", "")
		return
	}

	result, err := h.calcUC.GroupBalances(r.Context(), groupID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute balances", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalancesFromResult(result))
}

// CheckConsistency reports whether a group's balances sum to zero.
func (h *BalanceHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")

	consistent, drift, err := h.calcUC.CheckConsistency(r.Context(), groupID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to check consistency", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyResponse{
		GroupID:    groupID,
		Consistent: consistent,
		Drift:      drift.Decimal(),
	})
}
