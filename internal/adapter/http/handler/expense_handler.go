package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/splitpot/splitpot/internal/adapter/http/dto"
	"github.com/splitpot/splitpot/internal/domain"
	"github.com/splitpot/splitpot/internal/usecase"
)

// ExpenseService defines the behavior needed by ExpenseHandler.
type ExpenseService interface {
	CreateExpense(ctx context.Context, input usecase.CreateExpenseInput) (*domain.Expense, error)
	UpdateExpense(ctx context.Context, id string, input usecase.UpdateExpenseInput) (*domain.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	GetExpense(ctx context.Context, id string) (*domain.Expense, error)
	ListGroupExpenses(ctx context.Context, groupID string) ([]*domain.Expense, error)
	ListAllExpenses(ctx context.Context) ([]*domain.Expense, error)
	PreviewSplit(amount decimal.Decimal, policy string, members []usecase.SplitMemberInput) (domain.Split, error)
}

// ExpenseHandler handles expense-related HTTP requests.
type ExpenseHandler struct {
	expenseUC ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseUC ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseUC: expenseUC}
}

// Create creates a new expense.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	expense, err := h.expenseUC.CreateExpense(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create expense", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ExpenseFromDomain(expense))
}

// Get retrieves an expense by ID.
func (h *ExpenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing expense ID", "")
		return
	}

	expense, err := h.expenseUC.GetExpense(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get expense", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ExpenseFromDomain(expense))
}

// Update edits an expense and recomputes its split.
func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.UpdateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	expense, err := h.expenseUC.UpdateExpense(r.Context(), id, req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update expense", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ExpenseFromDomain(expense))
}

// Delete removes an expense.
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.expenseUC.DeleteExpense(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to delete expense", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListByGroup lists a group's expenses.
func (h *ExpenseHandler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")

	expenses, err := h.expenseUC.ListGroupExpenses(r.Context(), groupID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list expenses", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListExpensesResponse{
		Expenses: dto.ExpensesFromDomain(expenses),
		Total:    int64(len(expenses)),
	})
}

// List lists all expenses.
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.expenseUC.ListAllExpenses(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list expenses", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListExpensesResponse{
		Expenses: dto.ExpensesFromDomain(expenses),
		Total:    int64(len(expenses)),
	})
}

// PreviewSplit computes a split without storing anything.
func (h *ExpenseHandler) PreviewSplit(w http.ResponseWriter, r *http.Request) {
	var req dto.PreviewSplitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	split, err := h.expenseUC.PreviewSplit(req.Amount, req.Policy, req.ToMemberInputs())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute split", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SplitPreviewResponse{
		Amount: req.Amount,
		Policy: req.Policy,
		Split:  dto.SplitFromDomain(split),
	})
}
