package domain

import "time"

// Event kinds
const (
	EventExpenseAdded      = "expense.added"
	EventExpenseUpdated    = "expense.updated"
	EventExpenseDeleted    = "expense.deleted"
	EventSettlementAdded   = "settlement.added"
	EventSettlementUpdated = "settlement.updated"
	EventGroupUpdated      = "group.updated"
	EventGroupDeleted      = "group.deleted"
	EventMemberAdded       = "member.added"
	EventMemberRemoved     = "member.removed"
)

// ChangeEvent describes a mutation of the underlying record set. UserID is
// the payer for expense events, the paying party for settlement events and
// the group owner for group events.
type ChangeEvent struct {
	Kind       string
	GroupID    string
	UserID     string
	RecordID   string
	OccurredAt time.Time
}

// Invalidations returns the scopes the event makes stale. allCalc reports
// whether every calculation scope is stale as well; balances depend on the
// full record set, so any expense or settlement mutation invalidates them
// everywhere.
func (e ChangeEvent) Invalidations() (scopes []Scope, allCalc bool) {
	switch e.Kind {
	case EventExpenseAdded, EventExpenseUpdated, EventExpenseDeleted:
		return []Scope{
			ScopeExpensesAll,
			ScopeGroupExpenses(e.GroupID),
			ScopeUserGroups(e.UserID),
		}, true
	case EventSettlementAdded, EventSettlementUpdated:
		return []Scope{
			ScopeExpensesAll,
			ScopeGroupSettlements(e.GroupID),
			ScopeUserSettlements(e.UserID),
		}, true
	case EventGroupUpdated, EventGroupDeleted:
		return []Scope{
			ScopeUserGroups(e.UserID),
			ScopeGroupExpenses(e.GroupID),
			ScopeGroupSettlements(e.GroupID),
		}, false
	case EventMemberAdded, EventMemberRemoved:
		return []Scope{
			ScopeGroupExpenses(e.GroupID),
			ScopeGroupSettlements(e.GroupID),
		}, false
	}
	return nil, false
}
