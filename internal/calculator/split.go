// Package calculator implements the expense-split allocation and balance
// aggregation algorithms. Both are pure functions of their inputs: no
// I/O, no shared state, deterministic output.
package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/grouptab/grouptab/internal/money"
)

// Split policies accepted by Allocate.
const (
	SplitEqual  = "equal"
	SplitCustom = "custom"
)

// tolerance is the maximum absolute difference allowed between the sum of
// custom contributions and the expense total (one cent).
var tolerance = money.MustParse("0.01")

// Contribution is one caller-supplied custom share. Amount is the raw
// decimal string from the request; parsing and rounding happen inside the
// allocator so every rejection carries a specific reason.
type Contribution struct {
	MemberID string
	Amount   string
}

// Obligation is one allocated share: the amount a member is charged.
type Obligation struct {
	MemberID string
	Amount   money.Money
}

// Allocate turns an expense total plus a split policy into per-member
// obligations whose amounts sum to the total exactly.
//
// memberIDs is the group's member set at call time, in join order; that
// snapshot is authoritative for the expense permanently. For an equal
// split, contributions is ignored. For a custom split, every member must
// appear in contributions exactly once.
//
// On any invalid input Allocate returns a *ValidationError and no
// obligations; partial allocations are never visible.
func Allocate(total money.Money, policy string, memberIDs []string, contributions []Contribution) ([]Obligation, error) {
	if len(memberIDs) == 0 {
		return nil, validationErrorf("group must have at least one member")
	}
	if !total.IsPositive() {
		return nil, validationErrorf("amount must be greater than zero")
	}

	switch policy {
	case SplitEqual:
		return allocateEqual(total, memberIDs), nil
	case SplitCustom:
		return allocateCustom(total, memberIDs, contributions)
	default:
		return nil, validationErrorf("unknown split type %q", policy)
	}
}

// allocateEqual divides total evenly across members. The per-person share
// is rounded half-up to the cent, and the rounding residue (at most half
// a cent per member, either sign) is added in full to the first member in
// join order. That keeps the sum exact without proportional fix-ups.
func allocateEqual(total money.Money, memberIDs []string) []Obligation {
	n := int64(len(memberIDs))
	perPerson := money.FromDecimal(total.Decimal().Div(decimal.NewFromInt(n)))

	distributed := money.FromDecimal(perPerson.Decimal().Mul(decimal.NewFromInt(n)))
	remainder := total.Sub(distributed)

	obligations := make([]Obligation, len(memberIDs))
	for i, id := range memberIDs {
		amount := perPerson
		if i == 0 {
			amount = amount.Add(remainder)
		}
		obligations[i] = Obligation{MemberID: id, Amount: amount}
	}
	return obligations
}

// allocateCustom validates caller-supplied shares against the member set
// and the expense total. Amounts are quantized half-up to the cent before
// summation, so the tolerance check operates on the values that will be
// stored. Output preserves input order; an out-of-tolerance sum is
// rejected, never auto-corrected.
func allocateCustom(total money.Money, memberIDs []string, contributions []Contribution) ([]Obligation, error) {
	if len(contributions) == 0 {
		return nil, validationErrorf("contributions are required for custom split")
	}

	memberSet := make(map[string]bool, len(memberIDs))
	for _, id := range memberIDs {
		memberSet[id] = true
	}

	seen := make(map[string]bool, len(contributions))
	obligations := make([]Obligation, 0, len(contributions))
	sum := money.Zero()

	for _, c := range contributions {
		if c.MemberID == "" {
			return nil, validationErrorf("each contribution must include a member id")
		}
		if !memberSet[c.MemberID] {
			return nil, validationErrorf("user %s is not a member of this group", c.MemberID)
		}
		if seen[c.MemberID] {
			return nil, validationErrorf("duplicate contribution for user %s", c.MemberID)
		}
		seen[c.MemberID] = true

		amount, err := money.ParseRounded(c.Amount)
		if err != nil {
			return nil, validationErrorf("invalid contribution amount %q for user %s", c.Amount, c.MemberID)
		}
		if amount.IsNegative() {
			return nil, validationErrorf("contribution amount for user %s cannot be negative", c.MemberID)
		}

		sum = sum.Add(amount)
		obligations = append(obligations, Obligation{MemberID: c.MemberID, Amount: amount})
	}

	// Duplicates are already rejected, so checking that every member was
	// seen is equivalent to exact set equality between contributors and
	// members.
	for _, id := range memberIDs {
		if !seen[id] {
			return nil, validationErrorf("all members must have contributions")
		}
	}

	if diff := sum.Sub(total).Abs(); diff.GreaterThan(tolerance) {
		return nil, validationErrorf("sum of contributions (%s) must equal total amount (%s)", sum, total)
	}

	return obligations, nil
}
