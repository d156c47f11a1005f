package memberships

import (
	"context"
	"time"

	"github.com/spendvault/spendvault/internal/models"
	"github.com/spendvault/spendvault/internal/permissions"
)

// Store is the persistence port for membership and invitation rows. Methods
// that touch more than one row are single transactional units: they commit
// everything or nothing.
type Store interface {
	permissions.RoleSource

	// MemberByVaultAndUser returns the membership row for the pair in any
	// status, or (nil, nil) when absent.
	MemberByVaultAndUser(ctx context.Context, vaultID, userID uint) (*models.VaultMember, error)

	// InvitationByID returns the invitation or (nil, nil) when absent.
	InvitationByID(ctx context.Context, id uint) (*models.Invitation, error)

	// CreateInvitationWithMember inserts the invitation and its paired
	// pending membership row atomically. A membership unique-index conflict
	// surfaces as ErrDuplicateMembership.
	CreateInvitationWithMember(ctx context.Context, invitation *models.Invitation, member *models.VaultMember) error

	// PromoteMember activates the membership and marks the invitation
	// accepted in one transaction. The invitation update is conditional on
	// status still being pending; a lost race surfaces as ErrInvalidState.
	// Returns whether the membership became the user's default vault: it is
	// the default iff the user held no other active membership, decided
	// under the same lock every writer of the default flag takes.
	PromoteMember(ctx context.Context, invitationID, memberID, userID uint, joinedAt time.Time, displayName string) (bool, error)

	// DeclineInvitation marks the invitation declined, conditional on the
	// invitee and on status still being pending; otherwise ErrNotFound.
	DeclineInvitation(ctx context.Context, invitationID, inviteeID uint) error

	// SetDefault flips the membership's default flag. When turning it on,
	// the user's previous default is cleared in the same transaction so
	// that at most one default is ever visible.
	SetDefault(ctx context.Context, memberID, userID uint, isDefault bool) error

	// PendingInvitationsFor lists pending invitations addressed to the user.
	PendingInvitationsFor(ctx context.Context, userID uint) ([]models.Invitation, error)

	// SentInvitationsBy lists all invitations the user has issued.
	SentInvitationsBy(ctx context.Context, userID uint) ([]models.Invitation, error)

	// ActiveMembers lists a vault's active memberships.
	ActiveMembers(ctx context.Context, vaultID uint) ([]models.VaultMember, error)
}

// UserDirectory resolves an invitee email to an identifier and a display
// name snapshot.
type UserDirectory interface {
	ResolveEmail(ctx context.Context, email string) (userID uint, displayName string, err error)
}
