package calculator

import (
	"sort"

	"github.com/grouptab/grouptab/internal/money"
)

// recentExpenseLimit caps the recent-expense list in a balance sheet.
const recentExpenseLimit = 10

// ExpenseForBalance carries the minimal expense information the
// aggregator needs.
type ExpenseForBalance struct {
	ID          string
	Description string
	Amount      money.Money
	PayerID     string
	SplitType   string
	CreatedAt   int64
	Obligations []Obligation
}

// MemberBalance is one member's aggregated position.
type MemberBalance struct {
	MemberID string
	Paid     money.Money // sum of amounts of expenses this member paid
	Owed     money.Money // sum of obligation amounts charged to this member
	Net      money.Money // Paid - Owed; positive = the group owes them
}

// BalanceSheet is the aggregated view of a group's expenses.
type BalanceSheet struct {
	// MemberBalances holds one row per current member, in the order the
	// member IDs were supplied (join order). Members with no activity
	// appear with zero balances.
	MemberBalances []MemberBalance

	// TotalAmount is the sum of all expense amounts.
	TotalAmount money.Money

	// ExpenseCount is the number of expenses aggregated.
	ExpenseCount int

	// RecentExpenses holds up to recentExpenseLimit expenses, most
	// recent first.
	RecentExpenses []ExpenseForBalance
}

// Aggregate computes per-member paid/owed/net totals across a group's
// expenses.
//
// memberIDs is the group's current membership in join order; every member
// gets a row even with zero activity. Amounts paid by or charged to users
// who are no longer members are still counted against their IDs if
// present, but rows are only emitted for current members.
//
// Aggregate sums whatever is stored; it never rewrites malformed data. As
// it walks each expense it cross-checks that the stored obligations sum
// to the expense amount. On a mismatch it still returns the computed
// sheet together with a *ConsistencyError identifying the first corrupt
// expense, so callers can surface the corruption distinctly from a
// validation failure.
//
// Given well-formed data the sheet is zero-sum: the nets of all members
// add up to exactly 0.00.
func Aggregate(memberIDs []string, expenses []ExpenseForBalance) (*BalanceSheet, error) {
	paid := make(map[string]money.Money, len(memberIDs))
	owed := make(map[string]money.Money, len(memberIDs))
	for _, id := range memberIDs {
		paid[id] = money.Zero()
		owed[id] = money.Zero()
	}

	var consistencyErr *ConsistencyError
	total := money.Zero()

	for _, e := range expenses {
		total = total.Add(e.Amount)
		paid[e.PayerID] = paid[e.PayerID].Add(e.Amount)

		obligationSum := money.Zero()
		for _, o := range e.Obligations {
			owed[o.MemberID] = owed[o.MemberID].Add(o.Amount)
			obligationSum = obligationSum.Add(o.Amount)
		}

		if consistencyErr == nil && !obligationSum.Equal(e.Amount) {
			consistencyErr = &ConsistencyError{
				ExpenseID: e.ID,
				Expected:  e.Amount,
				Actual:    obligationSum,
			}
		}
	}

	balances := make([]MemberBalance, len(memberIDs))
	for i, id := range memberIDs {
		balances[i] = MemberBalance{
			MemberID: id,
			Paid:     paid[id],
			Owed:     owed[id],
			Net:      paid[id].Sub(owed[id]),
		}
	}

	sheet := &BalanceSheet{
		MemberBalances: balances,
		TotalAmount:    total,
		ExpenseCount:   len(expenses),
		RecentExpenses: recentExpenses(expenses),
	}
	if consistencyErr != nil {
		return sheet, consistencyErr
	}
	return sheet, nil
}

// recentExpenses returns up to recentExpenseLimit expenses ordered by
// creation time descending. The input slice is not modified.
func recentExpenses(expenses []ExpenseForBalance) []ExpenseForBalance {
	recent := make([]ExpenseForBalance, len(expenses))
	copy(recent, expenses)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt > recent[j].CreatedAt
	})
	if len(recent) > recentExpenseLimit {
		recent = recent[:recentExpenseLimit]
	}
	return recent
}
