package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/grouptab/grouptab/internal/calculator"
	"github.com/grouptab/grouptab/internal/models"
	"github.com/grouptab/grouptab/internal/storage"
)

const maxGroupNameLength = 100

// GroupService implements group and membership operations. All callers
// are pre-authenticated; the service still verifies group membership for
// every group-scoped operation.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup creates a group. The creator automatically becomes a
// member with the admin role; group and membership are written in one
// transaction by the store.
func (s *GroupService) CreateGroup(ctx context.Context, creatorID, name string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &calculator.ValidationError{Reason: "group name is required"}
	}
	if len(name) > maxGroupNameLength {
		return nil, &calculator.ValidationError{Reason: fmt.Sprintf("group name must be at most %d characters", maxGroupNameLength)}
	}

	if _, err := s.store.GetUserByID(ctx, creatorID); err != nil {
		return nil, fmt.Errorf("failed to resolve creator: %w", err)
	}

	group := &models.Group{
		Name:      name,
		CreatedBy: creatorID,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "creator_id", creatorID, "error", err)
		return nil, err
	}

	slog.Info("Group created", "group_id", group.ID, "creator_id", creatorID)
	return group, nil
}

// GetGroup retrieves a group the user belongs to.
func (s *GroupService) GetGroup(ctx context.Context, groupID, userID string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	return group, nil
}

// ListGroups retrieves the groups the user belongs to, newest first.
func (s *GroupService) ListGroups(ctx context.Context, userID string) ([]*models.Group, error) {
	return s.store.ListGroupsForUser(ctx, userID)
}

// AddMember adds the user identified by email to the group. The acting
// user must already be a member; the target must exist and not already
// belong to the group.
func (s *GroupService) AddMember(ctx context.Context, groupID, actorID, email string) (*models.Membership, *models.User, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, nil, err
	}
	if err := s.requireMember(ctx, groupID, actorID); err != nil {
		return nil, nil, err
	}

	email = strings.TrimSpace(email)
	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, &calculator.ValidationError{Reason: fmt.Sprintf("no user registered with email %s", email)}
	}
	if err != nil {
		return nil, nil, err
	}

	already, err := s.store.IsMember(ctx, groupID, user.ID)
	if err != nil {
		return nil, nil, err
	}
	if already {
		return nil, nil, &calculator.ValidationError{Reason: fmt.Sprintf("%s is already a member of this group", user.Name)}
	}

	membership := &models.Membership{
		GroupID:  groupID,
		UserID:   user.ID,
		JoinedAt: time.Now().Unix(),
	}
	if err := s.store.AddMember(ctx, membership); err != nil {
		slog.Error("AddMember failed", "group_id", groupID, "user_id", user.ID, "error", err)
		return nil, nil, err
	}

	slog.Info("Member added", "group_id", groupID, "user_id", user.ID)
	return membership, user, nil
}

// ListMembers retrieves the group's memberships in join order together
// with the users behind them.
func (s *GroupService) ListMembers(ctx context.Context, groupID, actorID string) ([]*models.Membership, map[string]*models.User, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, nil, err
	}
	if err := s.requireMember(ctx, groupID, actorID); err != nil {
		return nil, nil, err
	}

	members, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}

	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.UserID
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	return members, users, nil
}

// DeleteGroup removes a group and, by cascade, its memberships,
// expenses, obligations and cached summary. Only the creator may delete.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID, actorID string) error {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.CreatedBy != actorID {
		return ErrNotCreator
	}

	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		slog.Error("DeleteGroup failed", "group_id", groupID, "error", err)
		return err
	}

	slog.Info("Group deleted", "group_id", groupID)
	return nil
}

func (s *GroupService) requireMember(ctx context.Context, groupID, userID string) error {
	ok, err := s.store.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotMember
	}
	return nil
}
