// Package models defines the core domain records for grouptab.
//
// # Models
//
//   - User: registered account, referenced by groups and expenses
//   - Group: a set of members who share expenses
//   - Membership: one (group, user) pair with role and join time
//   - Expense: a shared cost owned by a group, paid by one member
//   - Obligation: one member's share of one expense
//   - GroupSummary: derived balance sheet for a group
//
// # Design Principles
//
//  1. Monetary fields use money.Money (exact fixed-point), never float64.
//  2. Relationships are ID strings, not pointers, to avoid cycles.
//  3. An Expense always carries its full obligation set; the two are
//     created atomically and obligations are immutable afterwards.
//  4. GroupSummary is derived data. It may be cached, but it is always
//     recomputable from expenses and obligations.
package models
