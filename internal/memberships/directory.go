package memberships

import (
	"context"
	"errors"

	"github.com/spendvault/spendvault/internal/models"
	"gorm.io/gorm"
)

// GormDirectory resolves invitee emails against the users table.
type GormDirectory struct {
	db *gorm.DB
}

func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{db: db}
}

func (d *GormDirectory) ResolveEmail(ctx context.Context, email string) (uint, string, error) {
	var user models.User

	err := d.db.WithContext(ctx).Where("email = ?", email).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, "", ErrUserNotFound
		}
		return 0, "", err
	}

	return user.ID, user.Name, nil
}
