package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/splitpot/splitpot/internal/adapter/http/dto"
	"github.com/splitpot/splitpot/internal/domain"
	"github.com/splitpot/splitpot/internal/usecase"
)

// SettlementService defines the behavior needed by SettlementHandler.
type SettlementService interface {
	CreateSettlement(ctx context.Context, input usecase.CreateSettlementInput) (*domain.Settlement, error)
	CompleteSettlement(ctx context.Context, id string) (*domain.Settlement, error)
	CancelSettlement(ctx context.Context, id string) (*domain.Settlement, error)
	ListGroupSettlements(ctx context.Context, groupID string) ([]*domain.Settlement, error)
	ListUserSettlements(ctx context.Context, userID string) ([]*domain.Settlement, error)
}

// SettlementHandler handles settlement-related HTTP requests.
type SettlementHandler struct {
	settlementUC SettlementService
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(settlementUC SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementUC: settlementUC}
}

// Create records a pending settlement.
func (h *SettlementHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	settlement, err := h.settlementUC.CreateSettlement(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create settlement", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.SettlementFromDomain(settlement))
}

// Complete marks a pending settlement as completed.
func (h *SettlementHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	settlement, err := h.settlementUC.CompleteSettlement(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to complete settlement", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SettlementFromDomain(settlement))
}

// Cancel marks a pending settlement as cancelled.
func (h *SettlementHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	settlement, err := h.settlementUC.CancelSettlement(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to cancel settlement", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SettlementFromDomain(settlement))
}

// ListByGroup lists a group's settlements.
func (h *SettlementHandler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")

	settlements, err := h.settlementUC.ListGroupSettlements(r.Context(), groupID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list settlements", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListSettlementsResponse{
		Settlements: dto.SettlementsFromDomain(settlements),
		Total:       int64(len(settlements)),
	})
}

// ListByUser lists settlements a user is the paying party of.
func (h *SettlementHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user_id query parameter", "")
		return
	}

	settlements, err := h.settlementUC.ListUserSettlements(r.Context(), userID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list settlements", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListSettlementsResponse{
		Settlements: dto.SettlementsFromDomain(settlements),
		Total:       int64(len(settlements)),
	})
}
