package domain

import "time"

// SettlementStatus is the lifecycle state of a settlement.
type SettlementStatus string

const (
	SettlementPending   SettlementStatus = "pending"
	SettlementCompleted SettlementStatus = "completed"
	SettlementCancelled SettlementStatus = "cancelled"
)

// Settlement represents a payment between two members that pays down debt.
// Only completed settlements affect balances.
type Settlement struct {
	ID         string           `json:"id"`
	GroupID    string           `json:"group_id"`
	FromUserID string           `json:"from_user_id"`
	ToUserID   string           `json:"to_user_id"`
	Amount     Cents            `json:"amount"`
	Status     SettlementStatus `json:"status"`
	// ExpenseID links a settlement to the expense that prompted it, so the
	// settlement can be cancelled if that expense is later deleted. Empty
	// for free-standing settlements.
	ExpenseID string    `json:"expense_id,omitempty"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
