package memberships

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spendvault/spendvault/internal/models"
	"github.com/spendvault/spendvault/internal/permissions"
)

// Manager orchestrates the invitation lifecycle and the default-vault
// selector. It is the sole writer of Invitation.status and the sole actor
// allowed to move a membership out of pending.
type Manager struct {
	store     Store
	directory UserDirectory
	gate      *permissions.Gate
	now       func() time.Time
}

func NewManager(store Store, directory UserDirectory) *Manager {
	return &Manager{
		store:     store,
		directory: directory,
		gate:      permissions.NewGate(store),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Gate exposes the authorization gate built over the same store, so CRUD
// handlers check capabilities against the exact data this manager mutates.
func (m *Manager) Gate() *permissions.Gate {
	return m.gate
}

// IssueInvitation invites a user by email to join the vault with the given
// role. It creates the invitation and its paired pending membership row
// atomically.
func (m *Manager) IssueInvitation(ctx context.Context, inviterID, vaultID uint, inviteeEmail string, role permissions.Role) (*models.Invitation, *models.VaultMember, error) {
	if err := m.gate.RequireAuthorization(ctx, inviterID, vaultID, permissions.CanManageMembers); err != nil {
		return nil, nil, err
	}

	if !role.Valid() {
		return nil, nil, ErrInvalidRole
	}

	inviteeEmail = strings.ToLower(strings.TrimSpace(inviteeEmail))

	inviteeID, _, err := m.directory.ResolveEmail(ctx, inviteeEmail)

	if err != nil {
		return nil, nil, err
	}

	existing, err := m.store.MemberByVaultAndUser(ctx, vaultID, inviteeID)

	if err != nil {
		return nil, nil, err
	}

	if existing != nil {
		return nil, nil, ErrDuplicateMembership
	}

	invitation := &models.Invitation{
		VaultID:   vaultID,
		InviterID: inviterID,
		InviteeID: inviteeID,
		Role:      string(role),
		Status:    models.InvitationStatusPending,
		Token:     uuid.NewString(),
	}

	member := &models.VaultMember{
		VaultID:   vaultID,
		UserID:    inviteeID,
		Role:      string(role),
		Status:    models.MemberStatusPending,
		IsDefault: false,
	}

	if err := m.store.CreateInvitationWithMember(ctx, invitation, member); err != nil {
		return nil, nil, err
	}

	return invitation, member, nil
}

// AcceptInvitation promotes the acting user's pending membership to active
// and marks the invitation accepted. The membership becomes the user's
// default vault iff it is their first active one, decided inside the
// promotion transaction so concurrent accepts cannot both claim it.
// displayName is the snapshot stored on the membership row.
func (m *Manager) AcceptInvitation(ctx context.Context, invitationID, actingUserID uint, displayName string) (*models.VaultMember, *models.Invitation, error) {
	invitation, err := m.store.InvitationByID(ctx, invitationID)

	if err != nil {
		return nil, nil, err
	}

	if invitation == nil || invitation.Status != models.InvitationStatusPending {
		return nil, nil, ErrNotFound
	}

	if invitation.InviteeID != actingUserID {
		return nil, nil, ErrForbidden
	}

	member, err := m.store.MemberByVaultAndUser(ctx, invitation.VaultID, actingUserID)

	if err != nil {
		return nil, nil, err
	}

	if member == nil {
		log.Printf("BUG: invitation %d has no membership row for vault %d user %d", invitation.ID, invitation.VaultID, actingUserID)
		return nil, nil, ErrInvariantViolation
	}

	if member.Status == models.MemberStatusActive {
		return nil, nil, ErrAlreadyActive
	}

	if member.Status != models.MemberStatusPending {
		return nil, nil, ErrInvalidState
	}

	joinedAt := m.now()

	isDefault, err := m.store.PromoteMember(ctx, invitation.ID, member.ID, actingUserID, joinedAt, displayName)

	if err != nil {
		return nil, nil, err
	}

	member.Status = models.MemberStatusActive
	member.JoinedAt = &joinedAt
	member.DisplayName = displayName
	member.IsDefault = isDefault
	invitation.Status = models.InvitationStatusAccepted

	return member, invitation, nil
}

// DeclineInvitation marks a pending invitation addressed to the acting user
// as declined. The paired pending membership row stays as-is; it is never
// promoted and never deleted.
func (m *Manager) DeclineInvitation(ctx context.Context, invitationID, actingUserID uint) (*models.Invitation, error) {
	if err := m.store.DeclineInvitation(ctx, invitationID, actingUserID); err != nil {
		return nil, err
	}

	invitation, err := m.store.InvitationByID(ctx, invitationID)

	if err != nil {
		return nil, err
	}

	return invitation, nil
}

// SetDefaultVault toggles the default flag on the user's membership in the
// vault. Turning it on clears the user's previous default in the same
// transaction.
func (m *Manager) SetDefaultVault(ctx context.Context, vaultID, userID uint) (*models.VaultMember, error) {
	member, err := m.store.MemberByVaultAndUser(ctx, vaultID, userID)

	if err != nil {
		return nil, err
	}

	if member == nil || member.Status != models.MemberStatusActive {
		return nil, ErrNotAMember
	}

	newState := !member.IsDefault

	if err := m.store.SetDefault(ctx, member.ID, userID, newState); err != nil {
		return nil, err
	}

	member.IsDefault = newState

	return member, nil
}

// PendingInvitations lists pending invitations addressed to the user.
func (m *Manager) PendingInvitations(ctx context.Context, userID uint) ([]models.Invitation, error) {
	return m.store.PendingInvitationsFor(ctx, userID)
}

// SentInvitations lists invitations the user has issued, in any status.
func (m *Manager) SentInvitations(ctx context.Context, userID uint) ([]models.Invitation, error) {
	return m.store.SentInvitationsBy(ctx, userID)
}

// ActiveMembers lists a vault's active memberships.
func (m *Manager) ActiveMembers(ctx context.Context, vaultID uint) ([]models.VaultMember, error) {
	return m.store.ActiveMembers(ctx, vaultID)
}
