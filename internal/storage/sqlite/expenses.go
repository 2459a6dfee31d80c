package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/grouptab/grouptab/internal/models"
)

// CreateExpense persists an expense and all of its obligations in a
// single transaction. Either the expense row and every obligation row
// commit together, or none do; a crash mid-write can never leave an
// expense whose obligations don't sum to its amount.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO expenses (id, group_id, description, amount, split_type, paid_by, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		expense.ID, expense.GroupID, expense.Description, expense.Amount,
		expense.SplitType, expense.PaidBy, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i := range expense.Obligations {
		o := &expense.Obligations[i]
		o.ExpenseID = expense.ID
		_, err = tx.ExecContext(ctx,
			"INSERT INTO obligations (expense_id, user_id, amount, position) VALUES (?, ?, ?, ?)",
			o.ExpenseID, o.UserID, o.Amount, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert obligation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListExpenses retrieves a group's expenses with their obligations,
// newest first. Obligations come back in allocation order.
func (s *SQLiteStore) ListExpenses(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, group_id, description, amount, split_type, paid_by, created_at
		FROM expenses
		WHERE group_id = ?
		ORDER BY created_at DESC, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	byID := make(map[string]*models.Expense)
	for rows.Next() {
		e := &models.Expense{}
		if err := rows.Scan(&e.ID, &e.GroupID, &e.Description, &e.Amount,
			&e.SplitType, &e.PaidBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
		byID[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}

	if len(expenses) == 0 {
		return expenses, nil
	}

	obligationRows, err := s.db.QueryContext(ctx, `
		SELECT o.expense_id, o.user_id, o.amount
		FROM obligations o
		JOIN expenses e ON e.id = o.expense_id
		WHERE e.group_id = ?
		ORDER BY o.expense_id, o.position`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list obligations: %w", err)
	}
	defer obligationRows.Close()

	for obligationRows.Next() {
		var o models.Obligation
		if err := obligationRows.Scan(&o.ExpenseID, &o.UserID, &o.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan obligation: %w", err)
		}
		if e, ok := byID[o.ExpenseID]; ok {
			e.Obligations = append(e.Obligations, o)
		}
	}
	if err := obligationRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating obligations: %w", err)
	}

	return expenses, nil
}
