package memberships

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/spendvault/spendvault/internal/models"
	"github.com/spendvault/spendvault/internal/permissions"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const uniqueViolationCode = "23505"

// GormStore implements Store on a postgres-backed gorm connection. All
// multi-row writes run inside db.Transaction so a cancelled request never
// leaves a half-committed pair.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) ActiveRole(ctx context.Context, vaultID, userID uint) (permissions.Role, bool, error) {
	var member models.VaultMember

	err := s.db.WithContext(ctx).
		Where("vault_id = ? AND user_id = ? AND status = ?", vaultID, userID, models.MemberStatusActive).
		First(&member).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return permissions.RoleNone, false, nil
		}
		return permissions.RoleNone, false, err
	}

	return permissions.Role(member.Role), true, nil
}

func (s *GormStore) MemberByVaultAndUser(ctx context.Context, vaultID, userID uint) (*models.VaultMember, error) {
	var member models.VaultMember

	err := s.db.WithContext(ctx).
		Where("vault_id = ? AND user_id = ?", vaultID, userID).
		First(&member).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &member, nil
}

func (s *GormStore) InvitationByID(ctx context.Context, id uint) (*models.Invitation, error) {
	var invitation models.Invitation

	err := s.db.WithContext(ctx).First(&invitation, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &invitation, nil
}

func (s *GormStore) CreateInvitationWithMember(ctx context.Context, invitation *models.Invitation, member *models.VaultMember) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(invitation).Error; err != nil {
			return err
		}
		return tx.Create(member).Error
	})

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return ErrDuplicateMembership
	}

	return err
}

// lockUserRow takes a FOR UPDATE lock on the user row. Every writer of the
// default-vault flag (promote, vault creation, toggle) locks it before
// reading membership rows, so the "at most one default" decision always
// sees the previous writer's commit.
func lockUserRow(tx *gorm.DB, userID uint) error {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&models.User{}, userID).Error
}

func (s *GormStore) PromoteMember(ctx context.Context, invitationID, memberID, userID uint, joinedAt time.Time, displayName string) (bool, error) {
	var isDefault bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Conditional update: of two concurrent accepts, exactly one sees
		// the pending row and wins.
		res := tx.Model(&models.Invitation{}).
			Where("id = ? AND status = ?", invitationID, models.InvitationStatusPending).
			Update("status", models.InvitationStatusAccepted)

		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return ErrInvalidState
		}

		if err := lockUserRow(tx, userID); err != nil {
			return err
		}

		// First active vault becomes the default. Counted under the user
		// lock, after any concurrent promote or creation has committed.
		var activeCount int64
		if err := tx.Model(&models.VaultMember{}).
			Where("user_id = ? AND status = ?", userID, models.MemberStatusActive).
			Count(&activeCount).Error; err != nil {
			return err
		}

		isDefault = activeCount == 0

		res = tx.Model(&models.VaultMember{}).
			Where("id = ? AND status = ?", memberID, models.MemberStatusPending).
			Updates(map[string]interface{}{
				"status":       models.MemberStatusActive,
				"joined_at":    joinedAt,
				"display_name": displayName,
				"is_default":   isDefault,
			})

		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return ErrInvalidState
		}

		return nil
	})

	return isDefault, err
}

func (s *GormStore) DeclineInvitation(ctx context.Context, invitationID, inviteeID uint) error {
	res := s.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("id = ? AND invitee_id = ? AND status = ?", invitationID, inviteeID, models.InvitationStatusPending).
		Update("status", models.InvitationStatusDeclined)

	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *GormStore) SetDefault(ctx context.Context, memberID, userID uint, isDefault bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockUserRow(tx, userID); err != nil {
			return err
		}

		if isDefault {
			if err := tx.Model(&models.VaultMember{}).
				Where("user_id = ? AND is_default = ?", userID, true).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}

		return tx.Model(&models.VaultMember{}).
			Where("id = ?", memberID).
			Update("is_default", isDefault).Error
	})
}

func (s *GormStore) PendingInvitationsFor(ctx context.Context, userID uint) ([]models.Invitation, error) {
	var invitations []models.Invitation

	err := s.db.WithContext(ctx).
		Preload("Vault").
		Preload("Inviter").
		Where("invitee_id = ? AND status = ?", userID, models.InvitationStatusPending).
		Order("id").
		Find(&invitations).Error

	return invitations, err
}

func (s *GormStore) SentInvitationsBy(ctx context.Context, userID uint) ([]models.Invitation, error) {
	var invitations []models.Invitation

	err := s.db.WithContext(ctx).
		Preload("Vault").
		Preload("Invitee").
		Where("inviter_id = ?", userID).
		Order("id").
		Find(&invitations).Error

	return invitations, err
}

func (s *GormStore) ActiveMembers(ctx context.Context, vaultID uint) ([]models.VaultMember, error) {
	var members []models.VaultMember

	err := s.db.WithContext(ctx).
		Where("vault_id = ? AND status = ?", vaultID, models.MemberStatusActive).
		Order("id").
		Find(&members).Error

	return members, err
}
