package service

import "errors"

// Authorization failures belong to the request layer's vocabulary, but
// the checks live here so no handler can forget them. Handlers map both
// to 403.
var (
	// ErrNotMember is returned when the acting user does not belong to
	// the group they are operating on.
	ErrNotMember = errors.New("you are not a member of this group")

	// ErrNotCreator is returned when a non-creator attempts a
	// creator-only operation (group deletion).
	ErrNotCreator = errors.New("only the group creator can delete the group")
)
