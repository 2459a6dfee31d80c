package models

import "github.com/grouptab/grouptab/internal/money"

// Split policies for an expense.
const (
	SplitEqual  = "equal"
	SplitCustom = "custom"
)

// Expense represents a shared cost owned by a group.
//
// An expense and its obligations are written in a single transaction:
// either the expense and every obligation exist and sum to Amount, or
// nothing exists. Obligations are immutable after creation; they capture
// the member set as it was when the expense was added.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the owning group. Deleting the group deletes the
	// expense and its obligations.
	GroupID string

	// Description is the human-readable label ("Dinner", "Rent").
	Description string

	// Amount is the total expense amount. Always positive, 2dp.
	Amount money.Money

	// SplitType is SplitEqual or SplitCustom.
	SplitType string

	// PaidBy is the user ID of the payer. The payer is a group member.
	PaidBy string

	// CreatedAt is the Unix timestamp when the expense was created.
	CreatedAt int64

	// Obligations are the per-member shares, in allocation order. Their
	// amounts sum to Amount exactly.
	Obligations []Obligation
}

// Obligation is the amount one member is charged for one expense.
type Obligation struct {
	ExpenseID string
	UserID    string
	Amount    money.Money
}
