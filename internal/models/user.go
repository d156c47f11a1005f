package models

import "gorm.io/gorm"

type User struct {
	gorm.Model

	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`

	// Relationships
	VaultMemberships    []VaultMember `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	SentInvitations     []Invitation  `gorm:"foreignKey:InviterID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	ReceivedInvitations []Invitation  `gorm:"foreignKey:InviteeID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
