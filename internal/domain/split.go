package domain

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// MemberInput carries one member's parameters for a split computation.
// Weight is read for percentage and shares policies, Amount for exact and
// adjustment. Equal ignores both.
type MemberInput struct {
	MemberID string
	Weight   float64
	Amount   decimal.Decimal
}

// ComputeSplit divides amount among the given members according to policy.
// The returned split always sums to amount exactly, except under the
// adjustment policy where the caller owns that invariant.
func ComputeSplit(amount Cents, policy SplitPolicy, members []MemberInput) (Split, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidSplit, amount)
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: member set is empty", ErrInvalidSplit)
	}

	seen := make(map[string]bool, len(members))
	for _, m := range members {
		if m.MemberID == "" {
			return nil, fmt.Errorf("%w: empty member id", ErrInvalidSplit)
		}
		if seen[m.MemberID] {
			return nil, fmt.Errorf("%w: duplicate member %s", ErrInvalidSplit, m.MemberID)
		}
		seen[m.MemberID] = true
		if m.Weight < 0 {
			return nil, fmt.Errorf("%w: negative weight for member %s", ErrInvalidSplit, m.MemberID)
		}
		if m.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: negative amount for member %s", ErrInvalidSplit, m.MemberID)
		}
	}

	switch policy {
	case SplitEqual:
		return splitEqual(amount, members), nil
	case SplitPercentage, SplitShares:
		return splitWeighted(amount, members)
	case SplitExact:
		return splitExact(amount, members)
	case SplitAdjustment:
		return splitAdjustment(members), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSplitPolicy, policy)
	}
}

// splitEqual gives every member base cents and hands the remainder out one
// cent at a time to the first members in sorted ID order, so the result is
// deterministic and sums exactly.
func splitEqual(amount Cents, members []MemberInput) Split {
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.MemberID
	}
	sort.Strings(ids)

	n := Cents(len(ids))
	base := amount / n
	remainder := amount % n

	split := make(Split, len(ids))
	for i, id := range ids {
		share := base
		if Cents(i) < remainder {
			share++
		}
		split[id] = share
	}
	return split
}

// splitWeighted handles percentage and shares policies. Members are sorted
// by descending weight; every member but the last gets the rounded value of
// its weight fraction and the last absorbs whatever remains, which removes
// rounding drift by construction. No share is ever negative.
func splitWeighted(amount Cents, members []MemberInput) (Split, error) {
	var totalWeight float64
	for _, m := range members {
		totalWeight += m.Weight
	}
	if totalWeight <= 0 {
		return nil, fmt.Errorf("%w: total weight must be positive", ErrInvalidSplit)
	}

	ordered := make([]MemberInput, len(members))
	copy(ordered, members)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Weight != ordered[j].Weight {
			return ordered[i].Weight > ordered[j].Weight
		}
		return ordered[i].MemberID < ordered[j].MemberID
	})

	split := make(Split, len(ordered))
	var assigned Cents
	for _, m := range ordered[:len(ordered)-1] {
		share := Cents(math.Round(float64(amount) * m.Weight / totalWeight))
		split[m.MemberID] = share
		assigned += share
	}

	remainder := amount - assigned
	last := ordered[len(ordered)-1].MemberID
	if remainder >= 0 {
		split[last] = remainder
		return split, nil
	}

	// Rounding every earlier share up can overshoot a tiny amount, which
	// would push the last member negative. Clamp it at zero and take the
	// overshoot back one cent at a time, largest shares first.
	split[last] = 0
	for i := 0; remainder < 0; i = (i + 1) % (len(ordered) - 1) {
		id := ordered[i].MemberID
		if split[id] == 0 {
			continue
		}
		split[id]--
		remainder++
	}
	return split, nil
}

// splitExact takes caller-supplied amounts. A sum that misses the target by
// no more than one cent per member is fixed with a largest-remainder
// correction; a larger mismatch is a data-entry error and is rejected.
func splitExact(amount Cents, members []MemberInput) (Split, error) {
	type entry struct {
		memberID string
		cents    Cents
		// fractional part of the raw cent value, used to decide which
		// entries absorb or give up correction cents first
		remainder decimal.Decimal
	}

	entries := make([]entry, len(members))
	var sum Cents
	for i, m := range members {
		raw := m.Amount.Mul(hundred)
		cents := Cents(raw.Round(0).IntPart())
		entries[i] = entry{
			memberID:  m.MemberID,
			cents:     cents,
			remainder: raw.Sub(raw.Floor()),
		}
		sum += cents
	}

	delta := amount - sum
	if tolerance := Cents(len(members)); delta.Abs() > tolerance {
		return nil, fmt.Errorf("%w: exact amounts sum to %s, expected %s", ErrInvalidSplit, sum, amount)
	}

	switch {
	case delta > 0:
		// Short of the target: add one cent at a time, largest fractional
		// remainder first, wrapping around if more cents are needed than
		// there are entries.
		sort.Slice(entries, func(i, j int) bool {
			if !entries[i].remainder.Equal(entries[j].remainder) {
				return entries[i].remainder.GreaterThan(entries[j].remainder)
			}
			return entries[i].memberID < entries[j].memberID
		})
		for i := 0; delta > 0; i = (i + 1) % len(entries) {
			entries[i].cents++
			delta--
		}
	case delta < 0:
		// Over the target: take one cent at a time, smallest fractional
		// remainder first, never driving an entry below zero.
		sort.Slice(entries, func(i, j int) bool {
			if !entries[i].remainder.Equal(entries[j].remainder) {
				return entries[i].remainder.LessThan(entries[j].remainder)
			}
			return entries[i].memberID < entries[j].memberID
		})
		for i := 0; delta < 0; i = (i + 1) % len(entries) {
			if entries[i].cents == 0 {
				continue
			}
			entries[i].cents--
			delta++
		}
	}

	split := make(Split, len(entries))
	for _, e := range entries {
		split[e.memberID] = e.cents
	}
	return split, nil
}

// splitAdjustment passes the supplied amounts through unchanged. It is used
// for manual corrections layered on another policy, so the caller is
// responsible for the sum invariant.
func splitAdjustment(members []MemberInput) Split {
	split := make(Split, len(members))
	for _, m := range members {
		split[m.MemberID] = CentsFromDecimal(m.Amount)
	}
	return split
}
