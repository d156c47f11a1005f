package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Expense struct {
	gorm.Model

	VaultID      uint    `gorm:"not null;index"`
	Note         string
	Amount       float64 `gorm:"not null"`
	CategoryName string  `gorm:"not null"`
	Date         datatypes.Date `gorm:"not null;index"`
	PaymentType  string  `gorm:"not null;default:cash"`

	// PaidBy is nil for vault-level expenses not attributed to a member.
	PaidBy     *uint
	TemplateID *uint

	CreatedBy uint `gorm:"not null;index"`
	UpdatedBy *uint
	DeletedBy *uint

	// Relationships
	Vault    Vault            `gorm:"foreignKey:VaultID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Template *ExpenseTemplate `gorm:"foreignKey:TemplateID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
