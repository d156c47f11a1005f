package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	MemberStatusPending = "pending"
	MemberStatusActive  = "active"
)

type VaultMember struct {
	gorm.Model

	VaultID uint   `gorm:"not null;uniqueIndex:idx_vault_user"`
	UserID  uint   `gorm:"not null;uniqueIndex:idx_vault_user"`
	Role    string `gorm:"not null"`
	Status  string `gorm:"not null;default:pending"`

	// At most one membership per user carries IsDefault, and only while
	// the membership is active. Enforced by the memberships package.
	IsDefault bool `gorm:"not null;default:false;index"`

	JoinedAt    *time.Time // set once, on the transition into active
	DisplayName string     // snapshot of the user's name, captured at join time

	// Relationships
	User  User  `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Vault Vault `gorm:"foreignKey:VaultID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
