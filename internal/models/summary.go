package models

import "github.com/grouptab/grouptab/internal/money"

// MemberBalance is one member's position within a group: what they paid
// for the group, what they were charged, and the difference. A positive
// net means the group owes them; negative means they owe the group.
type MemberBalance struct {
	UserID string      `json:"user_id"`
	Name   string      `json:"name"`
	Email  string      `json:"email"`
	Paid   money.Money `json:"paid"`
	Owed   money.Money `json:"owed"`
	Net    money.Money `json:"net"`
}

// RecentExpense is the condensed expense view embedded in a summary.
type RecentExpense struct {
	ID          string      `json:"id"`
	Description string      `json:"description"`
	Amount      money.Money `json:"amount"`
	SplitType   string      `json:"split_type"`
	PaidBy      string      `json:"paid_by"`
	CreatedAt   int64       `json:"created_at"`
}

// GroupSummary is the derived balance sheet for a group. It is computed
// from expenses and obligations; a cached copy may be stored per group
// but is never treated as the source of truth.
type GroupSummary struct {
	MemberBalances []MemberBalance `json:"member_balances"`
	TotalAmount    money.Money     `json:"total_amount"`
	ExpenseCount   int             `json:"expense_count"`
	MemberCount    int             `json:"member_count"`
	RecentExpenses []RecentExpense `json:"recent_expenses"`
	UpdatedAt      int64           `json:"updated_at"`
}
