package models

import "gorm.io/gorm"

type Vault struct {
	gorm.Model

	Name        string `gorm:"not null"`
	Description string
	Color       string `gorm:"not null;default:#3B82F6"`
	Icon        string `gorm:"default:🏦"`
	IconType    string `gorm:"default:emoji"` // "emoji", "phosphor"

	// Optional owning team/organization references, kept as plain
	// identifiers without FK constraints for cross-service compatibility.
	TeamID         *string
	OrganizationID *string

	CreatedBy uint `gorm:"not null;index"`
	UpdatedBy *uint
	DeletedBy *uint

	// Relationships
	Members          []VaultMember     `gorm:"foreignKey:VaultID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Invitations      []Invitation      `gorm:"foreignKey:VaultID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Expenses         []Expense         `gorm:"foreignKey:VaultID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Budgets          []Budget          `gorm:"foreignKey:VaultID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	ExpenseTemplates []ExpenseTemplate `gorm:"foreignKey:VaultID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
