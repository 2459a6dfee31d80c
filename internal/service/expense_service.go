package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/grouptab/grouptab/internal/calculator"
	"github.com/grouptab/grouptab/internal/models"
	"github.com/grouptab/grouptab/internal/money"
	"github.com/grouptab/grouptab/internal/storage"
)

const (
	maxDescriptionLength = 200

	// minExpenseMembers is a policy choice, not a technical limit: a
	// single-member group has nobody to split with.
	minExpenseMembers = 2
)

// CreateExpenseInput is the caller-supplied expense description. Amounts
// arrive as decimal strings; parsing is part of validation.
type CreateExpenseInput struct {
	Description   string
	Amount        string
	SplitType     string
	PaidBy        string // optional, defaults to the acting user
	Contributions []calculator.Contribution
}

// ExpenseService implements expense creation and balance aggregation on
// top of the pure calculator.
type ExpenseService struct {
	store storage.Store
}

// NewExpenseService creates a new ExpenseService with the given storage
// backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// CreateExpense validates the input, runs the split allocator against a
// snapshot of the group's current members, and persists the expense with
// all obligations atomically.
//
// All validation happens before any write: payer membership, the
// two-member policy, amount format and the split itself are checked up
// front rather than as a side effect of storage. The member snapshot
// taken here is authoritative for this expense permanently; later
// membership changes do not touch historical obligations.
func (s *ExpenseService) CreateExpense(ctx context.Context, groupID, actorID string, in CreateExpenseInput) (*models.Expense, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, groupID, actorID); err != nil {
		return nil, err
	}

	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, &calculator.ValidationError{Reason: "description is required"}
	}
	if len(description) > maxDescriptionLength {
		return nil, &calculator.ValidationError{Reason: fmt.Sprintf("description must be at most %d characters", maxDescriptionLength)}
	}

	total, err := money.Parse(in.Amount)
	if err != nil {
		return nil, &calculator.ValidationError{Reason: fmt.Sprintf("invalid amount %q: must be a positive decimal with at most 2 decimal places", in.Amount)}
	}

	members, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if len(members) < minExpenseMembers {
		return nil, &calculator.ValidationError{Reason: fmt.Sprintf("group must have at least %d members to add expenses", minExpenseMembers)}
	}

	memberIDs := make([]string, len(members))
	memberSet := make(map[string]bool, len(members))
	for i, m := range members {
		memberIDs[i] = m.UserID
		memberSet[m.UserID] = true
	}

	payer := in.PaidBy
	if payer == "" {
		payer = actorID
	}
	if !memberSet[payer] {
		return nil, &calculator.ValidationError{Reason: "payer must be a member of the group"}
	}

	obligations, err := calculator.Allocate(total, in.SplitType, memberIDs, in.Contributions)
	if err != nil {
		if calculator.IsValidation(err) {
			allocationRejected.Inc()
			slog.Warn("Expense allocation rejected",
				"group_id", groupID,
				"split_type", in.SplitType,
				"error", err,
			)
		}
		return nil, err
	}

	expense := &models.Expense{
		GroupID:     groupID,
		Description: description,
		Amount:      total,
		SplitType:   in.SplitType,
		PaidBy:      payer,
		Obligations: make([]models.Obligation, len(obligations)),
	}
	for i, o := range obligations {
		expense.Obligations[i] = models.Obligation{UserID: o.MemberID, Amount: o.Amount}
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed", "group_id", groupID, "error", err)
		return nil, err
	}

	expensesCreated.Inc()
	slog.Info("Expense created",
		"expense_id", expense.ID,
		"group_id", groupID,
		"amount", expense.Amount,
		"split_type", expense.SplitType,
	)

	// Best effort: a stale cache is re-derived on the next summary read.
	if _, err := s.refreshSummary(ctx, groupID); err != nil {
		slog.Warn("Summary cache refresh failed", "group_id", groupID, "error", err)
	}

	return expense, nil
}

// ListExpenses retrieves the group's expenses, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, groupID, actorID string) ([]*models.Expense, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, groupID, actorID); err != nil {
		return nil, err
	}

	return s.store.ListExpenses(ctx, groupID)
}

// Summary aggregates the group's expenses into a balance sheet.
//
// The sheet is recomputed from raw expenses and obligations on every
// call and the cached copy is refreshed as a side effect. If the
// aggregator finds stored obligations that do not sum to their expense
// amount, Summary returns the sheet as stored together with the
// ConsistencyError; the corrupt data is logged and never rewritten, and
// the cache is not refreshed from it.
func (s *ExpenseService) Summary(ctx context.Context, groupID, actorID string) (*models.GroupSummary, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, groupID, actorID); err != nil {
		return nil, err
	}

	return s.refreshSummary(ctx, groupID)
}

// CachedSummary returns the stored summary blob without recomputing it.
// Used for cheap list views; the authoritative path is Summary.
func (s *ExpenseService) CachedSummary(ctx context.Context, groupID string) (*models.GroupSummary, error) {
	return s.store.GetSummary(ctx, groupID)
}

// refreshSummary recomputes the balance sheet from stored data and
// upserts the cache when the data is consistent.
func (s *ExpenseService) refreshSummary(ctx context.Context, groupID string) (*models.GroupSummary, error) {
	members, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.store.ListExpenses(ctx, groupID)
	if err != nil {
		return nil, err
	}

	memberIDs := make([]string, len(members))
	for i, m := range members {
		memberIDs[i] = m.UserID
	}

	forBalance := make([]calculator.ExpenseForBalance, len(expenses))
	for i, e := range expenses {
		obligations := make([]calculator.Obligation, len(e.Obligations))
		for j, o := range e.Obligations {
			obligations[j] = calculator.Obligation{MemberID: o.UserID, Amount: o.Amount}
		}
		forBalance[i] = calculator.ExpenseForBalance{
			ID:          e.ID,
			Description: e.Description,
			Amount:      e.Amount,
			PayerID:     e.PaidBy,
			SplitType:   e.SplitType,
			CreatedAt:   e.CreatedAt,
			Obligations: obligations,
		}
	}

	sheet, aggErr := calculator.Aggregate(memberIDs, forBalance)
	if aggErr != nil && !calculator.IsConsistency(aggErr) {
		return nil, aggErr
	}
	if aggErr != nil {
		consistencyErrors.Inc()
		slog.Error("Stored obligations do not sum to their expense amount",
			"group_id", groupID,
			"error", aggErr,
		)
	}

	users, err := s.store.GetUsersByIDs(ctx, memberIDs)
	if err != nil {
		return nil, err
	}

	summary := &models.GroupSummary{
		MemberBalances: make([]models.MemberBalance, len(sheet.MemberBalances)),
		TotalAmount:    sheet.TotalAmount,
		ExpenseCount:   sheet.ExpenseCount,
		MemberCount:    len(members),
		RecentExpenses: make([]models.RecentExpense, len(sheet.RecentExpenses)),
		UpdatedAt:      time.Now().Unix(),
	}
	for i, b := range sheet.MemberBalances {
		mb := models.MemberBalance{
			UserID: b.MemberID,
			Paid:   b.Paid,
			Owed:   b.Owed,
			Net:    b.Net,
		}
		if u, ok := users[b.MemberID]; ok {
			mb.Name = u.Name
			mb.Email = u.Email
		}
		summary.MemberBalances[i] = mb
	}
	for i, e := range sheet.RecentExpenses {
		summary.RecentExpenses[i] = models.RecentExpense{
			ID:          e.ID,
			Description: e.Description,
			Amount:      e.Amount,
			SplitType:   e.SplitType,
			PaidBy:      e.PayerID,
			CreatedAt:   e.CreatedAt,
		}
	}

	if aggErr != nil {
		return summary, aggErr
	}

	if err := s.store.UpsertSummary(ctx, groupID, summary); err != nil {
		slog.Warn("Summary cache upsert failed", "group_id", groupID, "error", err)
	}

	return summary, nil
}

func (s *ExpenseService) requireMember(ctx context.Context, groupID, userID string) error {
	ok, err := s.store.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotMember
	}
	return nil
}
