package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/splitpot/splitpot/internal/domain"
	"github.com/splitpot/splitpot/internal/usecase"
)

// Monetary fields render as decimal strings in major units; cents stay an
// internal representation.

// GroupResponse represents a group in API responses.
type GroupResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	Members   []string  `json:"members"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GroupFromDomain converts a domain group to a response.
func GroupFromDomain(g *domain.Group) *GroupResponse {
	return &GroupResponse{
		ID:        g.ID,
		Name:      g.Name,
		OwnerID:   g.OwnerID,
		Members:   g.Members,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

// GroupsFromDomain converts domain groups to responses.
func GroupsFromDomain(groups []*domain.Group) []*GroupResponse {
	result := make([]*GroupResponse, len(groups))
	for i, g := range groups {
		result[i] = GroupFromDomain(g)
	}
	return result
}

// ExpenseResponse represents an expense in API responses.
type ExpenseResponse struct {
	ID          string                     `json:"id"`
	GroupID     string                     `json:"group_id"`
	PayerID     string                     `json:"payer_id"`
	Description string                     `json:"description"`
	Amount      decimal.Decimal            `json:"amount"`
	Policy      string                     `json:"policy"`
	Split       map[string]decimal.Decimal `json:"split"`
	Weights     map[string]float64         `json:"weights,omitempty"`
	CreatedAt   time.Time                  `json:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

// ExpenseFromDomain converts a domain expense to a response.
func ExpenseFromDomain(e *domain.Expense) *ExpenseResponse {
	return &ExpenseResponse{
		ID:          e.ID,
		GroupID:     e.GroupID,
		PayerID:     e.PayerID,
		Description: e.Description,
		Amount:      e.Amount.Decimal(),
		Policy:      string(e.Policy),
		Split:       SplitFromDomain(e.Split),
		Weights:     e.Weights,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// ExpensesFromDomain converts domain expenses to responses.
func ExpensesFromDomain(expenses []*domain.Expense) []*ExpenseResponse {
	result := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		result[i] = ExpenseFromDomain(e)
	}
	return result
}

// SplitFromDomain converts a cents split to major-unit decimals.
func SplitFromDomain(split domain.Split) map[string]decimal.Decimal {
	result := make(map[string]decimal.Decimal, len(split))
	for member, cents := range split {
		result[member] = cents.Decimal()
	}
	return result
}

// SettlementResponse represents a settlement in API responses.
type SettlementResponse struct {
	ID         string          `json:"id"`
	GroupID    string          `json:"group_id"`
	FromUserID string          `json:"from_user_id"`
	ToUserID   string          `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"`
	ExpenseID  string          `json:"expense_id,omitempty"`
	Note       string          `json:"note,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// SettlementFromDomain converts a domain settlement to a response.
func SettlementFromDomain(s *domain.Settlement) *SettlementResponse {
	return &SettlementResponse{
		ID:         s.ID,
		GroupID:    s.GroupID,
		FromUserID: s.FromUserID,
		ToUserID:   s.ToUserID,
		Amount:     s.Amount.Decimal(),
		Status:     string(s.Status),
		ExpenseID:  s.ExpenseID,
		Note:       s.Note,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

// SettlementsFromDomain converts domain settlements to responses.
func SettlementsFromDomain(settlements []*domain.Settlement) []*SettlementResponse {
	result := make([]*SettlementResponse, len(settlements))
	for i, s := range settlements {
		result[i] = SettlementFromDomain(s)
	}
	return result
}

// TransferResponse is one proposed payment in a settlement plan.
type TransferResponse struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// GroupBalancesResponse represents a group's computed balances and the
// transfer plan that settles them.
type GroupBalancesResponse struct {
	GroupID    string                     `json:"group_id"`
	Balances   map[string]decimal.Decimal `json:"balances"`
	Transfers  []TransferResponse         `json:"transfers"`
	ComputedAt time.Time                  `json:"computed_at"`
}

// BalancesFromResult converts a computation result to a response.
func BalancesFromResult(result *usecase.GroupBalancesResult) *GroupBalancesResponse {
	balances := make(map[string]decimal.Decimal, len(result.Balances))
	for member, cents := range result.Balances {
		balances[member] = cents.Decimal()
	}

	transfers := make([]TransferResponse, len(result.Transfers))
	for i, t := range result.Transfers {
		transfers[i] = TransferResponse{
			From:   t.From,
			To:     t.To,
			Amount: t.Amount.Decimal(),
		}
	}

	return &GroupBalancesResponse{
		GroupID:    result.GroupID,
		Balances:   balances,
		Transfers:  transfers,
		ComputedAt: result.ComputedAt,
	}
}

// SplitPreviewResponse represents a computed split preview.
type SplitPreviewResponse struct {
	Amount decimal.Decimal            `json:"amount"`
	Policy string                     `json:"policy"`
	Split  map[string]decimal.Decimal `json:"split"`
}

// ConsistencyResponse reports whether a group's balances sum to zero.
type ConsistencyResponse struct {
	GroupID    string          `json:"group_id"`
	Consistent bool            `json:"consistent"`
	Drift      decimal.Decimal `json:"drift"`
}

// ListGroupsResponse wraps a group list.
type ListGroupsResponse struct {
	Groups []*GroupResponse `json:"groups"`
	Total  int64            `json:"total"`
}

// ListExpensesResponse wraps an expense list.
type ListExpensesResponse struct {
	Expenses []*ExpenseResponse `json:"expenses"`
	Total    int64              `json:"total"`
}

// ListSettlementsResponse wraps a settlement list.
type ListSettlementsResponse struct {
	Settlements []*SettlementResponse `json:"settlements"`
	Total       int64                 `json:"total"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
