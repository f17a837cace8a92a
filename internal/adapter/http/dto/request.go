package dto

import (
	"github.com/shopspring/decimal"

	"github.com/splitpot/splitpot/internal/usecase"
)

// CreateGroupRequest represents a request to create a group.
type CreateGroupRequest struct {
	Name    string   `json:"name"`
	OwnerID string   `json:"owner_id"`
	Members []string `json:"members,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateGroupRequest) ToUseCaseInput() usecase.CreateGroupInput {
	return usecase.CreateGroupInput{
		Name:    r.Name,
		OwnerID: r.OwnerID,
		Members: r.Members,
	}
}

// RenameGroupRequest represents a request to rename a group.
type RenameGroupRequest struct {
	Name string `json:"name"`
}

// MemberRequest represents a membership change.
type MemberRequest struct {
	UserID string `json:"user_id"`
}

// SplitMemberItem is one participant in an expense or preview request.
// Weight carries the percentage or share count for weighted policies;
// Amount carries the stated amount for exact and adjustment policies.
type SplitMemberItem struct {
	MemberID string          `json:"member_id"`
	Weight   float64         `json:"weight,omitempty"`
	Amount   decimal.Decimal `json:"amount,omitempty"`
}

func toSplitMemberInputs(items []SplitMemberItem) []usecase.SplitMemberInput {
	members := make([]usecase.SplitMemberInput, len(items))
	for i, item := range items {
		members[i] = usecase.SplitMemberInput{
			MemberID: item.MemberID,
			Weight:   item.Weight,
			Amount:   item.Amount,
		}
	}
	return members
}

// CreateExpenseRequest represents a request to create an expense.
type CreateExpenseRequest struct {
	GroupID     string            `json:"group_id"`
	PayerID     string            `json:"payer_id"`
	Description string            `json:"description"`
	Amount      decimal.Decimal   `json:"amount"`
	Policy      string            `json:"policy"`
	Members     []SplitMemberItem `json:"members,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateExpenseRequest) ToUseCaseInput() usecase.CreateExpenseInput {
	return usecase.CreateExpenseInput{
		GroupID:     r.GroupID,
		PayerID:     r.PayerID,
		Description: r.Description,
		Amount:      r.Amount,
		Policy:      r.Policy,
		Members:     toSplitMemberInputs(r.Members),
	}
}

// UpdateExpenseRequest represents a request to edit an expense.
type UpdateExpenseRequest struct {
	Description string            `json:"description"`
	Amount      decimal.Decimal   `json:"amount"`
	Policy      string            `json:"policy"`
	Members     []SplitMemberItem `json:"members,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateExpenseRequest) ToUseCaseInput() usecase.UpdateExpenseInput {
	return usecase.UpdateExpenseInput{
		Description: r.Description,
		Amount:      r.Amount,
		Policy:      r.Policy,
		Members:     toSplitMemberInputs(r.Members),
	}
}

// CreateSettlementRequest represents a request to record a settlement.
type CreateSettlementRequest struct {
	GroupID    string          `json:"group_id"`
	FromUserID string          `json:"from_user_id"`
	ToUserID   string          `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
	ExpenseID  string          `json:"expense_id,omitempty"`
	Note       string          `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateSettlementRequest) ToUseCaseInput() usecase.CreateSettlementInput {
	return usecase.CreateSettlementInput{
		GroupID:    r.GroupID,
		FromUserID: r.FromUserID,
		ToUserID:   r.ToUserID,
		Amount:     r.Amount,
		ExpenseID:  r.ExpenseID,
		Note:       r.Note,
	}
}

// PreviewSplitRequest represents a request to compute a split without
// storing anything.
type PreviewSplitRequest struct {
	Amount  decimal.Decimal   `json:"amount"`
	Policy  string            `json:"policy"`
	Members []SplitMemberItem `json:"members"`
}

// ToMemberInputs converts the preview participants to use case input.
func (r *PreviewSplitRequest) ToMemberInputs() []usecase.SplitMemberInput {
	return toSplitMemberInputs(r.Members)
}
