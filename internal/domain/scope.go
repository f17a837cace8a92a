package domain

// Scope is the cache's logical identifier for a computed or listed result,
// e.g. a group's expense list or its balance set.
type Scope string

// ScopeExpensesAll covers the global expense listing.
const ScopeExpensesAll Scope = "expenses:all"

// CalcScopePrefix prefixes every calculation scope. A mutation anywhere
// makes all calculation results stale, so they are invalidated by prefix.
const CalcScopePrefix = "calc:"

// ScopeGroupExpenses is the expense list of one group.
func ScopeGroupExpenses(groupID string) Scope {
	return Scope("expenses:group:" + groupID)
}

// ScopeGroupSettlements is the settlement list of one group.
func ScopeGroupSettlements(groupID string) Scope {
	return Scope("settlements:group:" + groupID)
}

// ScopeUserSettlements is the settlement list of one user.
func ScopeUserSettlements(userID string) Scope {
	return Scope("settlements:user:" + userID)
}

// ScopeUserGroups is the group-membership list of one user.
func ScopeUserGroups(userID string) Scope {
	return Scope("groups:user:" + userID)
}

// ScopeGroupBalances is the cached (balances, transfer plan) tuple of one
// group.
func ScopeGroupBalances(groupID string) Scope {
	return Scope(CalcScopePrefix + "group:" + groupID)
}
