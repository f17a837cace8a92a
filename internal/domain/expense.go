package domain

import (
	"time"
)

// SplitPolicy selects the rule used to divide an expense among members.
// The set is closed: ComputeSplit switches exhaustively over it and rejects
// anything else.
type SplitPolicy string

const (
	SplitEqual      SplitPolicy = "equal"
	SplitPercentage SplitPolicy = "percentage"
	SplitShares     SplitPolicy = "shares"
	SplitExact      SplitPolicy = "exact"
	SplitAdjustment SplitPolicy = "adjustment"
)

// ParseSplitPolicy validates a policy string.
func ParseSplitPolicy(s string) (SplitPolicy, error) {
	switch p := SplitPolicy(s); p {
	case SplitEqual, SplitPercentage, SplitShares, SplitExact, SplitAdjustment:
		return p, nil
	default:
		return "", ErrUnknownSplitPolicy
	}
}

// Split maps a member ID to the amount that member owes for one expense.
type Split map[string]Cents

// Sum returns the total of all shares.
func (s Split) Sum() Cents {
	var total Cents
	for _, c := range s {
		total += c
	}
	return total
}

// Expense represents a shared expense paid by one member and split among
// a set of members. The split is computed once, at creation or edit time,
// and stored on the record so that aggregation never re-derives it.
type Expense struct {
	ID          string      `json:"id"`
	GroupID     string      `json:"group_id"`
	PayerID     string      `json:"payer_id"`
	Description string      `json:"description"`
	Amount      Cents       `json:"amount"`
	Policy      SplitPolicy `json:"policy"`
	Split       Split       `json:"split"`
	// Weights keeps the raw percentages or share counts the split was
	// computed from, for audit. Nil for equal/exact/adjustment policies.
	Weights   map[string]float64 `json:"weights,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}
