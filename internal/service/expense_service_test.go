package service

import (
	"context"
	"errors"
	"testing"

	"github.com/grouptab/grouptab/internal/calculator"
	"github.com/grouptab/grouptab/internal/models"
	"github.com/grouptab/grouptab/internal/money"
	"github.com/grouptab/grouptab/internal/storage"
)

// twoMemberGroup creates a group with alice (creator) and bob.
func twoMemberGroup(t *testing.T, store storage.Store) (*models.Group, *models.User, *models.User) {
	t.Helper()
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com", "Alice")
	createTestUser(t, store, "bob@example.com", "Bob")

	groups := NewGroupService(store)
	group, err := groups.CreateGroup(ctx, alice.ID, "Roommates")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	_, bob, err := groups.AddMember(ctx, group.ID, alice.ID, "bob@example.com")
	if err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	return group, alice, bob
}

func TestCreateExpenseEqual(t *testing.T) {
	store := newTestStore(t)
	svc := NewExpenseService(store)
	ctx := context.Background()

	group, alice, _ := twoMemberGroup(t, store)

	expense, err := svc.CreateExpense(ctx, group.ID, alice.ID, CreateExpenseInput{
		Description: "Groceries",
		Amount:      "90.00",
		SplitType:   models.SplitEqual,
	})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	if expense.PaidBy != alice.ID {
		t.Errorf("payer defaults to actor; got %s", expense.PaidBy)
	}
	if len(expense.Obligations) != 2 {
		t.Fatalf("got %d obligations, want 2", len(expense.Obligations))
	}
	sum := money.Zero()
	for _, o := range expense.Obligations {
		if !o.Amount.Equal(money.MustParse("45.00")) {
			t.Errorf("obligation for %s is %s, want 45.00", o.UserID, o.Amount)
		}
		sum = sum.Add(o.Amount)
	}
	if !sum.Equal(expense.Amount) {
		t.Errorf("obligations sum to %s, expense amount %s", sum, expense.Amount)
	}

	stored, err := store.ListExpenses(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(stored) != 1 || len(stored[0].Obligations) != 2 {
		t.Fatalf("expense not fully persisted: %+v", stored)
	}

	// Creating an expense refreshes the cached summary.
	cached, err := svc.CachedSummary(ctx, group.ID)
	if err != nil {
		t.Fatalf("CachedSummary failed: %v", err)
	}
	if cached.ExpenseCount != 1 || !cached.TotalAmount.Equal(money.MustParse("90.00")) {
		t.Errorf("cached summary not refreshed: %+v", cached)
	}
}

func TestCreateExpenseCustom(t *testing.T) {
	store := newTestStore(t)
	svc := NewExpenseService(store)
	ctx := context.Background()

	group, alice, bob := twoMemberGroup(t, store)

	expense, err := svc.CreateExpense(ctx, group.ID, alice.ID, CreateExpenseInput{
		Description: "Dinner",
		Amount:      "100.00",
		SplitType:   models.SplitCustom,
		PaidBy:      bob.ID,
		Contributions: []calculator.Contribution{
			{MemberID: alice.ID, Amount: "60"},
			{MemberID: bob.ID, Amount: "40"},
		},
	})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	if expense.PaidBy != bob.ID {
		t.Errorf("got payer %s, want %s", expense.PaidBy, bob.ID)
	}
	want := map[string]string{alice.ID: "60.00", bob.ID: "40.00"}
	for _, o := range expense.Obligations {
		if o.Amount.String() != want[o.UserID] {
			t.Errorf("obligation for %s is %s, want %s", o.UserID, o.Amount, want[o.UserID])
		}
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	store := newTestStore(t)
	svc := NewExpenseService(store)
	ctx := context.Background()

	group, alice, bob := twoMemberGroup(t, store)
	outsider := createTestUser(t, store, "carol@example.com", "Carol")

	tests := []struct {
		name    string
		actorID string
		input   CreateExpenseInput
		wantErr error
	}{
		{
			name:    "non-member actor",
			actorID: outsider.ID,
			input:   CreateExpenseInput{Description: "Dinner", Amount: "10.00", SplitType: models.SplitEqual},
			wantErr: ErrNotMember,
		},
		{
			name:    "empty description",
			actorID: alice.ID,
			input:   CreateExpenseInput{Description: "   ", Amount: "10.00", SplitType: models.SplitEqual},
		},
		{
			name:    "malformed amount",
			actorID: alice.ID,
			input:   CreateExpenseInput{Description: "Dinner", Amount: "10.005", SplitType: models.SplitEqual},
		},
		{
			name:    "negative amount",
			actorID: alice.ID,
			input:   CreateExpenseInput{Description: "Dinner", Amount: "-10.00", SplitType: models.SplitEqual},
		},
		{
			name:    "payer outside group",
			actorID: alice.ID,
			input:   CreateExpenseInput{Description: "Dinner", Amount: "10.00", SplitType: models.SplitEqual, PaidBy: outsider.ID},
		},
		{
			name:    "unknown split type",
			actorID: alice.ID,
			input:   CreateExpenseInput{Description: "Dinner", Amount: "10.00", SplitType: "ratio"},
		},
		{
			name:    "custom sum off by a dollar",
			actorID: alice.ID,
			input: CreateExpenseInput{
				Description: "Dinner",
				Amount:      "100.00",
				SplitType:   models.SplitCustom,
				Contributions: []calculator.Contribution{
					{MemberID: alice.ID, Amount: "60"},
					{MemberID: bob.ID, Amount: "39"},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateExpense(ctx, group.ID, tt.actorID, tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("got %v, want %v", err, tt.wantErr)
				}
				return
			}
			if !calculator.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}

	t.Run("nothing persisted after rejections", func(t *testing.T) {
		expenses, err := store.ListExpenses(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}
		if len(expenses) != 0 {
			t.Errorf("got %d expenses, want 0", len(expenses))
		}
	})
}

func TestCreateExpenseSingleMemberGroup(t *testing.T) {
	store := newTestStore(t)
	svc := NewExpenseService(store)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com", "Alice")
	group, err := NewGroupService(store).CreateGroup(ctx, alice.ID, "Solo")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	_, err = svc.CreateExpense(ctx, group.ID, alice.ID, CreateExpenseInput{
		Description: "Lunch",
		Amount:      "10.00",
		SplitType:   models.SplitEqual,
	})
	if !calculator.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSummary(t *testing.T) {
	store := newTestStore(t)
	svc := NewExpenseService(store)
	ctx := context.Background()

	group, alice, bob := twoMemberGroup(t, store)

	for _, e := range []struct {
		payer  string
		amount string
	}{
		{alice.ID, "100.00"},
		{bob.ID, "50.00"},
	} {
		_, err := svc.CreateExpense(ctx, group.ID, alice.ID, CreateExpenseInput{
			Description: "Shared",
			Amount:      e.amount,
			SplitType:   models.SplitEqual,
			PaidBy:      e.payer,
		})
		if err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
	}

	summary, err := svc.Summary(ctx, group.ID, alice.ID)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}

	if summary.ExpenseCount != 2 || summary.MemberCount != 2 {
		t.Errorf("got expense_count=%d member_count=%d, want 2 and 2", summary.ExpenseCount, summary.MemberCount)
	}
	if !summary.TotalAmount.Equal(money.MustParse("150.00")) {
		t.Errorf("got total %s, want 150.00", summary.TotalAmount)
	}
	if len(summary.RecentExpenses) != 2 {
		t.Errorf("got %d recent expenses, want 2", len(summary.RecentExpenses))
	}

	byID := make(map[string]models.MemberBalance, len(summary.MemberBalances))
	for _, b := range summary.MemberBalances {
		byID[b.UserID] = b
	}
	a := byID[alice.ID]
	if a.Paid.String() != "100.00" || a.Owed.String() != "75.00" || a.Net.String() != "25.00" {
		t.Errorf("alice balance paid=%s owed=%s net=%s", a.Paid, a.Owed, a.Net)
	}
	if a.Name != "Alice" || a.Email != "alice@example.com" {
		t.Errorf("alice identity not joined: %+v", a)
	}
	b := byID[bob.ID]
	if b.Paid.String() != "50.00" || b.Owed.String() != "75.00" || b.Net.String() != "-25.00" {
		t.Errorf("bob balance paid=%s owed=%s net=%s", b.Paid, b.Owed, b.Net)
	}

	t.Run("non-member rejected", func(t *testing.T) {
		outsider := createTestUser(t, store, "carol@example.com", "Carol")
		if _, err := svc.Summary(ctx, group.ID, outsider.ID); !errors.Is(err, ErrNotMember) {
			t.Errorf("expected ErrNotMember, got %v", err)
		}
	})

	t.Run("cache matches recomputation", func(t *testing.T) {
		cached, err := svc.CachedSummary(ctx, group.ID)
		if err != nil {
			t.Fatalf("CachedSummary failed: %v", err)
		}
		if cached.ExpenseCount != summary.ExpenseCount || !cached.TotalAmount.Equal(summary.TotalAmount) {
			t.Errorf("cache diverges: %+v vs %+v", cached, summary)
		}
	})
}

func TestSummaryInconsistentData(t *testing.T) {
	store := newTestStore(t)
	svc := NewExpenseService(store)
	ctx := context.Background()

	group, alice, bob := twoMemberGroup(t, store)

	// Bypass the service to store obligations that do not sum to the
	// expense amount, simulating corruption.
	bad := &models.Expense{
		GroupID:     group.ID,
		Description: "Corrupt",
		Amount:      money.MustParse("100.00"),
		SplitType:   models.SplitEqual,
		PaidBy:      alice.ID,
		Obligations: []models.Obligation{
			{UserID: alice.ID, Amount: money.MustParse("50.00")},
			{UserID: bob.ID, Amount: money.MustParse("40.00")},
		},
	}
	if err := store.CreateExpense(ctx, bad); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	summary, err := svc.Summary(ctx, group.ID, alice.ID)
	if !calculator.IsConsistency(err) {
		t.Fatalf("expected consistency error, got %v", err)
	}
	if summary == nil {
		t.Fatal("summary should still be returned alongside the error")
	}

	// Stored values are reported as they are, never rewritten.
	byID := make(map[string]models.MemberBalance, len(summary.MemberBalances))
	for _, b := range summary.MemberBalances {
		byID[b.UserID] = b
	}
	if byID[bob.ID].Owed.String() != "40.00" {
		t.Errorf("got bob owed %s, want stored 40.00", byID[bob.ID].Owed)
	}

	// The cache must not be refreshed from inconsistent data.
	if _, err := svc.CachedSummary(ctx, group.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected no cached summary, got %v", err)
	}
}
