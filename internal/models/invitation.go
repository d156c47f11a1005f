package models

import "gorm.io/gorm"

const (
	InvitationStatusPending  = "pending"
	InvitationStatusAccepted = "accepted"
	InvitationStatusDeclined = "declined"
)

type Invitation struct {
	gorm.Model

	VaultID   uint   `gorm:"not null;index"`
	InviterID uint   `gorm:"not null;index"`
	InviteeID uint   `gorm:"not null;index"`
	Role      string `gorm:"not null"`
	Status    string `gorm:"not null;default:pending"` // pending -> accepted | declined, terminal
	Token     string `gorm:"uniqueIndex;not null"`     // opaque token used in the emailed invite link

	// Relationships
	Vault   Vault `gorm:"foreignKey:VaultID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Inviter User  `gorm:"foreignKey:InviterID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Invitee User  `gorm:"foreignKey:InviteeID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
