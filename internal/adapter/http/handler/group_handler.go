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

// GroupService defines the behavior needed by GroupHandler.
type GroupService interface {
	CreateGroup(ctx context.Context, input usecase.CreateGroupInput) (*domain.Group, error)
	GetGroup(ctx context.Context, id string) (*domain.Group, error)
	RenameGroup(ctx context.Context, id, name string) (*domain.Group, error)
	DeleteGroup(ctx context.Context, id string) error
	AddMember(ctx context.Context, groupID, userID string) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	ListUserGroups(ctx context.Context, userID string) ([]*domain.Group, error)
}

// GroupHandler handles group-related HTTP requests.
type GroupHandler struct {
	groupUC GroupService
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(groupUC GroupService) *GroupHandler {
	return &GroupHandler{groupUC: groupUC}
}

// Create creates a new group.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	group, err := h.groupUC.CreateGroup(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create group", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.GroupFromDomain(group))
}

// Get retrieves a group by ID.
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing group ID", "")
		return
	}

	group, err := h.groupUC.GetGroup(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get group", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.GroupFromDomain(group))
}

// Rename changes a group's name.
func (h *GroupHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.RenameGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	group, err := h.groupUC.RenameGroup(r.Context(), id, req.Name)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to rename group", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.GroupFromDomain(group))
}

// Delete removes a group.
func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.groupUC.DeleteGroup(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to delete group", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddMember adds a user to a group.
func (h *GroupHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.MemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.groupUC.AddMember(r.Context(), id, req.UserID); err != nil {
		writeError(w, mapDomainError(err), "failed to add member", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RemoveMember removes a user from a group.
func (h *GroupHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := chi.URLParam(r, "userID")

	if err := h.groupUC.RemoveMember(r.Context(), id, userID); err != nil {
		writeError(w, mapDomainError(err), "failed to remove member", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListByUser lists the groups a user belongs to.
func (h *GroupHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user_id query parameter", "")
		return
	}

	groups, err := h.groupUC.ListUserGroups(r.Context(), userID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list groups", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListGroupsResponse{
		Groups: dto.GroupsFromDomain(groups),
		Total:  int64(len(groups)),
	})
}
