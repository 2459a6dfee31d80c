package models

// Group represents a set of members who share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates").
	Name string

	// CreatedBy is the user ID of the group creator. The creator is
	// always a member with the admin role from the moment the group
	// exists.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Membership is one (group, user) pair. A user appears at most once per
// group; member ordering throughout the application is join order, which
// keeps split allocation and balance output deterministic.
type Membership struct {
	GroupID string
	UserID  string

	// IsAdmin marks elevated members. The creator is admin at creation.
	IsAdmin bool

	// JoinedAt is the Unix timestamp when the user joined the group.
	JoinedAt int64
}
