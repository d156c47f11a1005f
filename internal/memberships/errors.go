package memberships

import "errors"

var (
	ErrNotFound            = errors.New("invitation not found or already processed")
	ErrForbidden           = errors.New("invitation is addressed to another user")
	ErrInvalidState        = errors.New("membership is not in a state that permits this transition")
	ErrAlreadyActive       = errors.New("membership is already active")
	ErrDuplicateMembership = errors.New("a membership for this vault and user already exists")
	ErrInvariantViolation  = errors.New("invitation has no paired membership row")
	ErrNotAMember          = errors.New("no active membership for this vault")
	ErrUserNotFound        = errors.New("no user with this email")
	ErrInvalidRole         = errors.New("invalid membership role")
)
