package models

import (
	"time"

	"gorm.io/gorm"
)

type ExpenseTemplate struct {
	gorm.Model

	VaultID     uint   `gorm:"not null;index"`
	Name        string `gorm:"not null"`
	Description string
	Icon        string `gorm:"default:📝"`
	IconType    string `gorm:"default:emoji"`

	DefaultNote         string
	DefaultAmount       *float64
	DefaultCategoryName string `gorm:"not null"`
	DefaultPaymentType  string `gorm:"not null;default:cash"`
	DefaultPaidBy       *uint

	UsageCount int `gorm:"not null;default:0"`
	LastUsedAt *time.Time

	CreatedBy uint `gorm:"not null;index"`
	UpdatedBy *uint
	DeletedBy *uint

	// Relationships
	Vault Vault `gorm:"foreignKey:VaultID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
