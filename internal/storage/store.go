// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/grouptab/grouptab/internal/models"
)

// ErrNotFound is returned (wrapped) when a requested record does not
// exist. Callers test with errors.Is.
var ErrNotFound = errors.New("not found")

// Store defines the persistence operations the services need. The
// abstraction allows swapping storage backends (SQLite, PostgreSQL, ...)
// without changing the service layer.
type Store interface {
	// CreateUser persists a new user. Fails if the email is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email address.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs retrieves multiple users keyed by ID. Missing users
	// are omitted from the result.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// CreateGroup persists a group together with its creator membership
	// in one transaction. The group ID and timestamps are populated.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by ID.
	GetGroup(ctx context.Context, id string) (*models.Group, error)

	// ListGroupsForUser retrieves the groups a user belongs to, newest
	// first.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)

	// DeleteGroup removes a group; memberships, expenses, obligations
	// and the cached summary cascade.
	DeleteGroup(ctx context.Context, id string) error

	// AddMember inserts a membership. Fails on a duplicate (group, user)
	// pair.
	AddMember(ctx context.Context, m *models.Membership) error

	// ListMembers retrieves a group's memberships in join order.
	ListMembers(ctx context.Context, groupID string) ([]*models.Membership, error)

	// IsMember reports whether the user belongs to the group.
	IsMember(ctx context.Context, groupID, userID string) (bool, error)

	// CreateExpense persists an expense and all of its obligations in a
	// single transaction: either everything commits or nothing does.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// ListExpenses retrieves a group's expenses with their obligations,
	// newest first. Obligations keep their allocation order.
	ListExpenses(ctx context.Context, groupID string) ([]*models.Expense, error)

	// UpsertSummary stores the cached summary blob for a group.
	UpsertSummary(ctx context.Context, groupID string, summary *models.GroupSummary) error

	// GetSummary retrieves the cached summary blob for a group, if any.
	GetSummary(ctx context.Context, groupID string) (*models.GroupSummary, error)

	// Close releases any resources held by the store.
	Close() error
}
