package domain

import "sort"

// Minimize turns a balance map into a list of transfers that settles every
// balance to within Epsilon.
//
// Creditors and debtors are each sorted by descending magnitude and walked
// with two cursors, always transferring the smaller of the two remainders.
// This greedy largest-first matching produces a valid zeroing set but is not
// guaranteed to hit the theoretical minimum transaction count; that would be
// an assignment problem, and the simple deterministic pairing is the
// behavior users see and rely on.
func Minimize(balances Balance) []Transfer {
	type party struct {
		id        string
		remaining Cents
	}

	var creditors, debtors []party
	for id, bal := range balances {
		switch {
		case bal > Epsilon:
			creditors = append(creditors, party{id: id, remaining: bal})
		case bal < -Epsilon:
			debtors = append(debtors, party{id: id, remaining: -bal})
		}
	}

	byMagnitude := func(parties []party) {
		sort.Slice(parties, func(i, j int) bool {
			if parties[i].remaining != parties[j].remaining {
				return parties[i].remaining > parties[j].remaining
			}
			return parties[i].id < parties[j].id
		})
	}
	byMagnitude(creditors)
	byMagnitude(debtors)

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor, creditor := &debtors[i], &creditors[j]

		amount := debtor.remaining
		if creditor.remaining < amount {
			amount = creditor.remaining
		}

		if amount > 0 {
			transfers = append(transfers, Transfer{
				From:   debtor.id,
				To:     creditor.id,
				Amount: amount,
			})
		}

		debtor.remaining -= amount
		creditor.remaining -= amount

		if debtor.remaining <= Epsilon {
			i++
		}
		if creditor.remaining <= Epsilon {
			j++
		}
	}

	return transfers
}
