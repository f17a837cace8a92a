package domain

// Epsilon is the tolerance, in cents, under which a balance is considered
// settled. It matches the one-minor-unit rounding tolerance of splits.
const Epsilon Cents = 1

// Balance maps a member ID to a signed net amount in cents. Positive means
// the member is owed money, negative means the member owes money.
type Balance map[string]Cents

// Sum returns the total of all balances. For a closed set of records it is
// zero within Epsilon; anything else indicates corrupt input data.
func (b Balance) Sum() Cents {
	var total Cents
	for _, c := range b {
		total += c
	}
	return total
}

// Transfer is a proposed payment from one member to another.
type Transfer struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount Cents  `json:"amount"`
}

// Apply plays a set of transfers back onto a copy of the balance map and
// returns the result. Used to verify that a settlement plan zeroes out.
func (b Balance) Apply(transfers []Transfer) Balance {
	out := make(Balance, len(b))
	for id, c := range b {
		out[id] = c
	}
	for _, t := range transfers {
		out[t.From] += t.Amount
		out[t.To] -= t.Amount
	}
	return out
}
