package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/splitpot/splitpot/internal/adapter/http/dto"
	"github.com/splitpot/splitpot/internal/domain"
	"github.com/splitpot/splitpot/internal/usecase"
)

type expenseServiceStub struct {
	createFn      func(ctx context.Context, input usecase.CreateExpenseInput) (*domain.Expense, error)
	updateFn      func(ctx context.Context, id string, input usecase.UpdateExpenseInput) (*domain.Expense, error)
	deleteFn      func(ctx context.Context, id string) error
	getFn         func(ctx context.Context, id string) (*domain.Expense, error)
	listByGroupFn func(ctx context.Context, groupID string) ([]*domain.Expense, error)
	listFn        func(ctx context.Context) ([]*domain.Expense, error)
	previewFn     func(amount decimal.Decimal, policy string, members []usecase.SplitMemberInput) (domain.Split, error)
}

func (s *expenseServiceStub) CreateExpense(ctx context.Context, input usecase.CreateExpenseInput) (*domain.Expense, error) {
	return s.createFn(ctx, input)
}

func (s *expenseServiceStub) UpdateExpense(ctx context.Context, id string, input usecase.UpdateExpenseInput) (*domain.Expense, error) {
	return s.updateFn(ctx, id, input)
}

func (s *expenseServiceStub) DeleteExpense(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *expenseServiceStub) GetExpense(ctx context.Context, id string) (*domain.Expense, error) {
	return s.getFn(ctx, id)
}

func (s *expenseServiceStub) ListGroupExpenses(ctx context.Context, groupID string) ([]*domain.Expense, error) {
	return s.listByGroupFn(ctx, groupID)
}

func (s *expenseServiceStub) ListAllExpenses(ctx context.Context) ([]*domain.Expense, error) {
	return s.listFn(ctx)
}

func (s *expenseServiceStub) PreviewSplit(amount decimal.Decimal, policy string, members []usecase.SplitMemberInput) (domain.Split, error) {
	return s.previewFn(amount, policy, members)
}

// withURLParam injects a chi route parameter into the request context.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestExpenseHandler_Create_Success(t *testing.T) {
	expense := &domain.Expense{
		ID:      "exp-1",
		GroupID: "g1",
		PayerID: "alice",
		Amount:  10000,
		Policy:  domain.SplitEqual,
		Split:   domain.Split{"alice": 3334, "bob": 3333, "carol": 3333},
	}
	var captured usecase.CreateExpenseInput

	h := NewExpenseHandler(&expenseServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateExpenseInput) (*domain.Expense, error) {
			captured = input
			return expense, nil
		},
	})

	body, _ := json.Marshal(dto.CreateExpenseRequest{
		GroupID: "g1",
		PayerID: "alice",
		Amount:  decimal.NewFromInt(100),
		Policy:  "equal",
	})

	req := httptest.NewRequest(http.MethodPost, "/expenses", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.GroupID != "g1" || captured.Policy != "equal" {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.ExpenseResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "exp-1" {
		t.Fatalf("expected expense ID exp-1, got %s", resp.ID)
	}
	if !resp.Split["alice"].Equal(decimal.RequireFromString("33.34")) {
		t.Fatalf("expected alice's share 33.34, got %s", resp.Split["alice"])
	}
}

func TestExpenseHandler_Create_InvalidBody(t *testing.T) {
	h := NewExpenseHandler(&expenseServiceStub{})

	req := httptest.NewRequest(http.MethodPost, "/expenses", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestExpenseHandler_Create_DomainErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unknown policy", domain.ErrUnknownSplitPolicy, http.StatusBadRequest},
		{"invalid split", domain.ErrInvalidSplit, http.StatusBadRequest},
		{"group missing", domain.ErrGroupNotFound, http.StatusNotFound},
		{"not a member", domain.ErrNotGroupMember, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewExpenseHandler(&expenseServiceStub{
				createFn: func(ctx context.Context, input usecase.CreateExpenseInput) (*domain.Expense, error) {
					return nil, tt.err
				},
			})

			body, _ := json.Marshal(dto.CreateExpenseRequest{GroupID: "g1", PayerID: "alice", Amount: decimal.NewFromInt(10), Policy: "equal"})
			req := httptest.NewRequest(http.MethodPost, "/expenses", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			h.Create(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestExpenseHandler_Get_NotFound(t *testing.T) {
	h := NewExpenseHandler(&expenseServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Expense, error) {
			return nil, domain.ErrExpenseNotFound
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/expenses/missing", nil), "id", "missing")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestExpenseHandler_Delete_Success(t *testing.T) {
	var deleted string
	h := NewExpenseHandler(&expenseServiceStub{
		deleteFn: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/expenses/exp-1", nil), "id", "exp-1")
	rec := httptest.NewRecorder()

	h.Delete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if deleted != "exp-1" {
		t.Fatalf("expected exp-1 deleted, got %q", deleted)
	}
}

func TestExpenseHandler_PreviewSplit(t *testing.T) {
	h := NewExpenseHandler(&expenseServiceStub{
		previewFn: func(amount decimal.Decimal, policy string, members []usecase.SplitMemberInput) (domain.Split, error) {
			return domain.Split{"alice": 7000, "bob": 3000}, nil
		},
	})

	body, _ := json.Marshal(dto.PreviewSplitRequest{
		Amount: decimal.NewFromInt(100),
		Policy: "percentage",
		Members: []dto.SplitMemberItem{
			{MemberID: "alice", Weight: 70},
			{MemberID: "bob", Weight: 30},
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/splits/preview", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.PreviewSplit(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.SplitPreviewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Split["alice"].Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected alice's share 70, got %s", resp.Split["alice"])
	}
}

func TestExpenseHandler_ListByGroup(t *testing.T) {
	h := NewExpenseHandler(&expenseServiceStub{
		listByGroupFn: func(ctx context.Context, groupID string) ([]*domain.Expense, error) {
			return []*domain.Expense{
				{ID: "exp-1", GroupID: groupID, Amount: 1000, Split: domain.Split{"alice": 1000}},
			}, nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/groups/g1/expenses", nil), "id", "g1")
	rec := httptest.NewRecorder()

	h.ListByGroup(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ListExpensesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 1 || resp.Expenses[0].GroupID != "g1" {
		t.Fatalf("unexpected list response: %+v", resp)
	}
}
