package domain

import "fmt"

// WarningKind classifies a non-fatal problem found during aggregation.
type WarningKind string

const (
	WarnUnparsableRecord WarningKind = "unparsable_record"
	WarnBalanceIntegrity WarningKind = "balance_integrity"
)

// Warning describes a record that was skipped or an integrity violation.
// Warnings are reported to the caller for logging; they never fail the
// aggregation.
type Warning struct {
	Kind     WarningKind
	RecordID string
	Detail   string
}

func (w Warning) String() string {
	if w.RecordID == "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Detail)
	}
	return fmt.Sprintf("%s (%s): %s", w.Kind, w.RecordID, w.Detail)
}

// Aggregate folds expenses and settlements into net per-member balances.
// It is a pure function of its inputs: every caller recomputes from the
// full record set, which keeps edits and deletes trivially correct.
//
// Each expense credits its payer with the full amount and debits every
// member by their split share. Each completed settlement credits the payer
// (FromUserID) and debits the receiver. Pending and cancelled settlements
// are ignored.
func Aggregate(expenses []*Expense, settlements []*Settlement) (Balance, []Warning) {
	balances := make(Balance)
	var warnings []Warning

	for _, e := range expenses {
		if w, ok := checkExpense(e); !ok {
			warnings = append(warnings, w)
			continue
		}
		balances[e.PayerID] += e.Amount
		for member, share := range e.Split {
			balances[member] -= share
		}
	}

	for _, s := range settlements {
		if s.Status != SettlementCompleted {
			continue
		}
		if w, ok := checkSettlement(s); !ok {
			warnings = append(warnings, w)
			continue
		}
		balances[s.FromUserID] += s.Amount
		balances[s.ToUserID] -= s.Amount
	}

	if total := balances.Sum(); total.Abs() > Epsilon {
		warnings = append(warnings, Warning{
			Kind:   WarnBalanceIntegrity,
			Detail: fmt.Sprintf("balances sum to %s, expected zero", total),
		})
	}

	return balances, warnings
}

func checkExpense(e *Expense) (Warning, bool) {
	switch {
	case e.PayerID == "":
		return Warning{Kind: WarnUnparsableRecord, RecordID: e.ID, Detail: "expense has no payer"}, false
	case e.Amount <= 0:
		return Warning{Kind: WarnUnparsableRecord, RecordID: e.ID, Detail: "expense amount is not positive"}, false
	case len(e.Split) == 0:
		return Warning{Kind: WarnUnparsableRecord, RecordID: e.ID, Detail: "expense has no split"}, false
	case (e.Split.Sum() - e.Amount).Abs() > Epsilon:
		return Warning{
			Kind:     WarnUnparsableRecord,
			RecordID: e.ID,
			Detail:   fmt.Sprintf("split sums to %s, expense amount is %s", e.Split.Sum(), e.Amount),
		}, false
	}
	return Warning{}, true
}

func checkSettlement(s *Settlement) (Warning, bool) {
	switch {
	case s.FromUserID == "" || s.ToUserID == "":
		return Warning{Kind: WarnUnparsableRecord, RecordID: s.ID, Detail: "settlement is missing a party"}, false
	case s.FromUserID == s.ToUserID:
		return Warning{Kind: WarnUnparsableRecord, RecordID: s.ID, Detail: "settlement parties are the same user"}, false
	case s.Amount <= 0:
		return Warning{Kind: WarnUnparsableRecord, RecordID: s.ID, Detail: "settlement amount is not positive"}, false
	}
	return Warning{}, true
}
