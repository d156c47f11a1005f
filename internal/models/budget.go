package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	BudgetPeriodMonthly = "monthly"
	BudgetPeriodYearly  = "yearly"
)

type Budget struct {
	gorm.Model

	VaultID uint    `gorm:"not null;index"`
	Name    string  `gorm:"not null"`
	Amount  float64 `gorm:"not null"`
	Period  string  `gorm:"not null;default:monthly"` // "monthly", "yearly"

	// Category names this budget covers; empty means all categories.
	CategoryNames datatypes.JSON `gorm:"type:jsonb"`

	CreatedBy uint `gorm:"not null;index"`
	UpdatedBy *uint
	DeletedBy *uint

	// Relationships
	Vault Vault `gorm:"foreignKey:VaultID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
