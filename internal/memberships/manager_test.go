package memberships

import (
	"context"
	"testing"
	"time"

	"github.com/spendvault/spendvault/internal/models"
	"github.com/spendvault/spendvault/internal/permissions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore mirrors the transactional behavior of the gorm-backed store
// closely enough to drive the manager through every lifecycle path.
type memoryStore struct {
	members     map[uint]*models.VaultMember
	invitations map[uint]*models.Invitation
	nextID      uint
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		members:     make(map[uint]*models.VaultMember),
		invitations: make(map[uint]*models.Invitation),
		nextID:      1,
	}
}

func (s *memoryStore) id() uint {
	id := s.nextID
	s.nextID++
	return id
}

func (s *memoryStore) addActiveMember(vaultID, userID uint, role permissions.Role, isDefault bool) *models.VaultMember {
	joined := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	member := &models.VaultMember{
		VaultID:     vaultID,
		UserID:      userID,
		Role:        string(role),
		Status:      models.MemberStatusActive,
		IsDefault:   isDefault,
		JoinedAt:    &joined,
		DisplayName: "seeded",
	}
	member.ID = s.id()
	s.members[member.ID] = member
	return member
}

func (s *memoryStore) ActiveRole(ctx context.Context, vaultID, userID uint) (permissions.Role, bool, error) {
	for _, member := range s.members {
		if member.VaultID == vaultID && member.UserID == userID && member.Status == models.MemberStatusActive {
			return permissions.Role(member.Role), true, nil
		}
	}
	return permissions.RoleNone, false, nil
}

func (s *memoryStore) MemberByVaultAndUser(ctx context.Context, vaultID, userID uint) (*models.VaultMember, error) {
	for _, member := range s.members {
		if member.VaultID == vaultID && member.UserID == userID {
			copied := *member
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *memoryStore) InvitationByID(ctx context.Context, id uint) (*models.Invitation, error) {
	invitation, ok := s.invitations[id]
	if !ok {
		return nil, nil
	}
	copied := *invitation
	return &copied, nil
}

func (s *memoryStore) CreateInvitationWithMember(ctx context.Context, invitation *models.Invitation, member *models.VaultMember) error {
	for _, existing := range s.members {
		if existing.VaultID == member.VaultID && existing.UserID == member.UserID {
			return ErrDuplicateMembership
		}
	}

	invitation.ID = s.id()
	member.ID = s.id()

	stored := *invitation
	s.invitations[invitation.ID] = &stored

	storedMember := *member
	s.members[member.ID] = &storedMember

	return nil
}

func (s *memoryStore) PromoteMember(ctx context.Context, invitationID, memberID, userID uint, joinedAt time.Time, displayName string) (bool, error) {
	invitation, ok := s.invitations[invitationID]
	if !ok || invitation.Status != models.InvitationStatusPending {
		return false, ErrInvalidState
	}

	member, ok := s.members[memberID]
	if !ok || member.Status != models.MemberStatusPending {
		return false, ErrInvalidState
	}

	// The first-vault decision is taken here, at the write itself, the way
	// the real store does it under the user-row lock.
	isDefault := true
	for _, other := range s.members {
		if other.UserID == userID && other.Status == models.MemberStatusActive {
			isDefault = false
			break
		}
	}

	invitation.Status = models.InvitationStatusAccepted

	member.Status = models.MemberStatusActive
	member.JoinedAt = &joinedAt
	member.DisplayName = displayName
	member.IsDefault = isDefault

	return isDefault, nil
}

func (s *memoryStore) DeclineInvitation(ctx context.Context, invitationID, inviteeID uint) error {
	invitation, ok := s.invitations[invitationID]
	if !ok || invitation.InviteeID != inviteeID || invitation.Status != models.InvitationStatusPending {
		return ErrNotFound
	}
	invitation.Status = models.InvitationStatusDeclined
	return nil
}

func (s *memoryStore) SetDefault(ctx context.Context, memberID, userID uint, isDefault bool) error {
	if isDefault {
		for _, member := range s.members {
			if member.UserID == userID {
				member.IsDefault = false
			}
		}
	}

	member, ok := s.members[memberID]
	if !ok {
		return ErrNotFound
	}
	member.IsDefault = isDefault
	return nil
}

func (s *memoryStore) PendingInvitationsFor(ctx context.Context, userID uint) ([]models.Invitation, error) {
	var out []models.Invitation
	for _, invitation := range s.invitations {
		if invitation.InviteeID == userID && invitation.Status == models.InvitationStatusPending {
			out = append(out, *invitation)
		}
	}
	return out, nil
}

func (s *memoryStore) SentInvitationsBy(ctx context.Context, userID uint) ([]models.Invitation, error) {
	var out []models.Invitation
	for _, invitation := range s.invitations {
		if invitation.InviterID == userID {
			out = append(out, *invitation)
		}
	}
	return out, nil
}

func (s *memoryStore) ActiveMembers(ctx context.Context, vaultID uint) ([]models.VaultMember, error) {
	var out []models.VaultMember
	for _, member := range s.members {
		if member.VaultID == vaultID && member.Status == models.MemberStatusActive {
			out = append(out, *member)
		}
	}
	return out, nil
}

type memoryDirectory struct {
	users map[string]struct {
		id   uint
		name string
	}
}

func newMemoryDirectory() *memoryDirectory {
	return &memoryDirectory{users: make(map[string]struct {
		id   uint
		name string
	})}
}

func (d *memoryDirectory) add(email string, id uint, name string) {
	d.users[email] = struct {
		id   uint
		name string
	}{id, name}
}

func (d *memoryDirectory) ResolveEmail(ctx context.Context, email string) (uint, string, error) {
	user, ok := d.users[email]
	if !ok {
		return 0, "", ErrUserNotFound
	}
	return user.id, user.name, nil
}

const (
	vaultID   = uint(1)
	ownerID   = uint(10)
	inviteeID = uint(20)
)

func newTestManager() (*Manager, *memoryStore, *memoryDirectory) {
	store := newMemoryStore()
	directory := newMemoryDirectory()
	manager := NewManager(store, directory)
	manager.now = func() time.Time {
		return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	}

	store.addActiveMember(vaultID, ownerID, permissions.RoleOwner, true)
	directory.add("invitee@example.com", inviteeID, "Invitee")

	return manager, store, directory
}

func TestIssueInvitation(t *testing.T) {
	manager, store, _ := newTestManager()

	invitation, member, err := manager.IssueInvitation(context.Background(), ownerID, vaultID, "Invitee@Example.com ", permissions.RoleMember)
	require.NoError(t, err)

	assert.Equal(t, vaultID, invitation.VaultID)
	assert.Equal(t, ownerID, invitation.InviterID)
	assert.Equal(t, inviteeID, invitation.InviteeID)
	assert.Equal(t, models.InvitationStatusPending, invitation.Status)
	assert.NotEmpty(t, invitation.Token)

	assert.Equal(t, models.MemberStatusPending, member.Status)
	assert.Equal(t, string(permissions.RoleMember), member.Role)
	assert.False(t, member.IsDefault)
	assert.Nil(t, member.JoinedAt, "pending members have not joined yet")

	stored, err := store.InvitationByID(context.Background(), invitation.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestIssueInvitationRequiresManageMembers(t *testing.T) {
	manager, store, directory := newTestManager()

	plainMemberID := uint(30)
	store.addActiveMember(vaultID, plainMemberID, permissions.RoleMember, false)
	directory.add("other@example.com", 40, "Other")

	_, _, err := manager.IssueInvitation(context.Background(), plainMemberID, vaultID, "other@example.com", permissions.RoleMember)

	var denied *permissions.DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, permissions.RoleMember, denied.Role)
	assert.Equal(t, permissions.CanManageMembers, denied.Capability)
}

func TestIssueInvitationRejectsInvalidRole(t *testing.T) {
	manager, _, _ := newTestManager()

	_, _, err := manager.IssueInvitation(context.Background(), ownerID, vaultID, "invitee@example.com", permissions.Role("owner-of-everything"))
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, _, err = manager.IssueInvitation(context.Background(), ownerID, vaultID, "invitee@example.com", permissions.RoleNone)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestIssueInvitationUnknownEmail(t *testing.T) {
	manager, _, _ := newTestManager()

	_, _, err := manager.IssueInvitation(context.Background(), ownerID, vaultID, "nobody@example.com", permissions.RoleMember)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestIssueInvitationDuplicateMembership(t *testing.T) {
	manager, _, _ := newTestManager()

	_, _, err := manager.IssueInvitation(context.Background(), ownerID, vaultID, "invitee@example.com", permissions.RoleMember)
	require.NoError(t, err)

	// Second invite while the first membership row is still pending.
	_, _, err = manager.IssueInvitation(context.Background(), ownerID, vaultID, "invitee@example.com", permissions.RoleAdmin)
	assert.ErrorIs(t, err, ErrDuplicateMembership)
}

func TestAcceptInvitationFirstVaultBecomesDefault(t *testing.T) {
	manager, _, _ := newTestManager()

	invitation, _, err := manager.IssueInvitation(context.Background(), ownerID, vaultID, "invitee@example.com", permissions.RoleMember)
	require.NoError(t, err)

	member, accepted, err := manager.AcceptInvitation(context.Background(), invitation.ID, inviteeID, "Invitee")
	require.NoError(t, err)

	assert.Equal(t, models.MemberStatusActive, member.Status)
	assert.True(t, member.IsDefault, "first active membership becomes the default vault")
	assert.Equal(t, "Invitee", member.DisplayName)
	require.NotNil(t, member.JoinedAt)
	assert.Equal(t, time.UTC, member.JoinedAt.Location())
	assert.Equal(t, models.InvitationStatusAccepted, accepted.Status)
}

func TestAcceptInvitationSecondVaultIsNotDefault(t *testing.T) {
	manager, store, _ := newTestManager()

	store.addActiveMember(2, inviteeID, permissions.RoleMember, true)

	invitation, _, err := manager.IssueInvitation(context.Background(), ownerID, vaultID, "invitee@example.com", permissions.RoleMember)
	require.NoError(t, err)

	member, _, err := manager.AcceptInvitation(context.Background(), invitation.ID, inviteeID, "Invitee")
	require.NoError(t, err)

	assert.False(t, member.IsDefault, "joining a further vault must not steal the default")
}

func TestAcceptTwoInvitationsYieldsSingleDefault(t *testing.T) {
	manager, store, directory := newTestManager()

	secondVaultOwner := uint(60)
	store.addActiveMember(5, secondVaultOwner, permissions.RoleOwner, true)
	directory.add("owner2@example.com", secondVaultOwner, "Owner Two")

	first, _, err := manager.IssueInvitation(context.Background(), ownerID, vaultID, "invitee@example.com", permissions.RoleMember)
	require.NoError(t, err)

	second, _, err := manager.IssueInvitation(context.Background(), secondVaultOwner, 5, "invitee@example.com", permissions.RoleMember)
	require.NoError(t, err)

	// Both memberships were pending when both invitations were issued; the
	// default decision must happen at promotion time, not from any earlier
	// read, so the second accept observes the first.
	firstMember, _, err := manager.AcceptInvitation(context.Background(), first.ID, inviteeID, "Invitee")
	require.NoError(t, err)

	secondMember, _, err := manager.AcceptInvitation(context.Background(), second.ID, inviteeID, "Invitee")
	require.NoError(t, err)

	assert.True(t, firstMember.IsDefault)
	assert.False(t, secondMember.IsDefault)

	defaults := 0
	for _, m := range store.members {
		if m.UserID == inviteeID && m.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults, "at most one default per user")
}

func TestAcceptInvitationWrongInvitee(t *testing.T) {
	manager, _, _ := newTestManager()

	invitation, _, err := manager.IssueInvitation(context.Background(), ownerID, vaultID, "invitee@example.com", permissions.RoleMember)
	require.NoError(t, err)

	_, _, err = manager.AcceptInvitation(context.Background(), invitation.ID, 999, "Impostor")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAcceptInvitationUnknownID(t *testing.T) {
	manager, _, _ := newTestManager()

	_, _, err := manager.AcceptInvitation(context.Background(), 424242, inviteeID, "Invitee")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAcceptInvitationTwice(t *testing.T) {
	manager, _, _ := newTestManager()

	invitation, _, err := manager.IssueInvitation(context.Background(), ownerID, vaultID, "invitee@example.com", permissions.RoleMember)
	require.NoError(t, err)

	_, _, err = manager.AcceptInvitation(context.Background(), invitation.ID, inviteeID, "Invitee")
	require.NoError(t, err)

	// The invitation is no longer pending, so the lookup treats it as gone.
	_, _, err = manager.AcceptInvitation(context.Background(), invitation.ID, inviteeID, "Invitee")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAcceptInvitationMissingMemberRow(t *testing.T) {
	manager, store, _ := newTestManager()

	invitation, member, err := manager.IssueInvitation(context.Background(), ownerID, vaultID, "invitee@example.com", permissions.RoleMember)
	require.NoError(t, err)

	// Simulate a corrupted pair: invitation without its membership row.
	delete(store.members, member.ID)

	_, _, err = manager.AcceptInvitation(context.Background(), invitation.ID, inviteeID, "Invitee")
	assert.ErrorIs(t, err, ErrInvariantViolation)
}

func TestAcceptInvitationAlreadyActiveMember(t *testing.T) {
	manager, store, _ := newTestManager()

	invitation, member, err := manager.IssueInvitation(context.Background(), ownerID, vaultID, "invitee@example.com", permissions.RoleMember)
	require.NoError(t, err)

	// The membership got activated out of band while the invitation stayed
	// pending.
	store.members[member.ID].Status = models.MemberStatusActive

	_, _, err = manager.AcceptInvitation(context.Background(), invitation.ID, inviteeID, "Invitee")
	assert.ErrorIs(t, err, ErrAlreadyActive)
}

func TestDeclineInvitation(t *testing.T) {
	manager, store, _ := newTestManager()

	invitation, member, err := manager.IssueInvitation(context.Background(), ownerID, vaultID, "invitee@example.com", permissions.RoleMember)
	require.NoError(t, err)

	declined, err := manager.DeclineInvitation(context.Background(), invitation.ID, inviteeID)
	require.NoError(t, err)
	assert.Equal(t, models.InvitationStatusDeclined, declined.Status)

	// Declining never touches the paired membership row.
	assert.Equal(t, models.MemberStatusPending, store.members[member.ID].Status)

	_, err = manager.DeclineInvitation(context.Background(), invitation.ID, inviteeID)
	assert.ErrorIs(t, err, ErrNotFound, "a declined invitation is terminal")
}

func TestDeclineInvitationWrongInvitee(t *testing.T) {
	manager, _, _ := newTestManager()

	invitation, _, err := manager.IssueInvitation(context.Background(), ownerID, vaultID, "invitee@example.com", permissions.RoleMember)
	require.NoError(t, err)

	_, err = manager.DeclineInvitation(context.Background(), invitation.ID, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetDefaultVaultToggle(t *testing.T) {
	manager, store, _ := newTestManager()

	second := store.addActiveMember(2, ownerID, permissions.RoleOwner, false)

	member, err := manager.SetDefaultVault(context.Background(), 2, ownerID)
	require.NoError(t, err)
	assert.True(t, member.IsDefault)

	defaults := 0
	for _, m := range store.members {
		if m.UserID == ownerID && m.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults, "at most one default per user")
	assert.True(t, store.members[second.ID].IsDefault)

	// Toggling again turns it off, leaving the user with no default.
	member, err = manager.SetDefaultVault(context.Background(), 2, ownerID)
	require.NoError(t, err)
	assert.False(t, member.IsDefault)
}

func TestSetDefaultVaultRequiresActiveMembership(t *testing.T) {
	manager, _, _ := newTestManager()

	_, err := manager.SetDefaultVault(context.Background(), vaultID, inviteeID)
	assert.ErrorIs(t, err, ErrNotAMember)
}

func TestSetDefaultVaultPendingMembership(t *testing.T) {
	manager, _, _ := newTestManager()

	_, _, err := manager.IssueInvitation(context.Background(), ownerID, vaultID, "invitee@example.com", permissions.RoleMember)
	require.NoError(t, err)

	// Pending members cannot claim a default vault.
	_, err = manager.SetDefaultVault(context.Background(), vaultID, inviteeID)
	assert.ErrorIs(t, err, ErrNotAMember)
}

func TestPendingAndSentInvitations(t *testing.T) {
	manager, _, directory := newTestManager()

	directory.add("second@example.com", 50, "Second")

	first, _, err := manager.IssueInvitation(context.Background(), ownerID, vaultID, "invitee@example.com", permissions.RoleMember)
	require.NoError(t, err)

	second, _, err := manager.IssueInvitation(context.Background(), ownerID, vaultID, "second@example.com", permissions.RoleAdmin)
	require.NoError(t, err)

	pending, err := manager.PendingInvitations(context.Background(), inviteeID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, first.ID, pending[0].ID)

	_, err = manager.DeclineInvitation(context.Background(), first.ID, inviteeID)
	require.NoError(t, err)

	pending, err = manager.PendingInvitations(context.Background(), inviteeID)
	require.NoError(t, err)
	assert.Empty(t, pending, "declined invitations leave the pending list")

	sent, err := manager.SentInvitations(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Len(t, sent, 2, "sent list keeps every status")

	ids := []uint{sent[0].ID, sent[1].ID}
	assert.ElementsMatch(t, []uint{first.ID, second.ID}, ids)
}

func TestActiveMembers(t *testing.T) {
	manager, _, _ := newTestManager()

	invitation, _, err := manager.IssueInvitation(context.Background(), ownerID, vaultID, "invitee@example.com", permissions.RoleMember)
	require.NoError(t, err)

	members, err := manager.ActiveMembers(context.Background(), vaultID)
	require.NoError(t, err)
	assert.Len(t, members, 1, "pending members are not listed")

	_, _, err = manager.AcceptInvitation(context.Background(), invitation.ID, inviteeID, "Invitee")
	require.NoError(t, err)

	members, err = manager.ActiveMembers(context.Background(), vaultID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}
