package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spendvault/spendvault/db"
	"github.com/spendvault/spendvault/internal/models"
	"github.com/spendvault/spendvault/internal/permissions"
	"github.com/spendvault/spendvault/internal/types"
	"github.com/spendvault/spendvault/internal/utils"
	"gorm.io/gorm"
)

type CreateTemplateRequest struct {
	Name                string   `json:"name" binding:"required"`
	Description         string   `json:"description"`
	Icon                string   `json:"icon"`
	IconType            string   `json:"icon_type" binding:"omitempty,oneof=emoji phosphor"`
	DefaultNote         string   `json:"default_note"`
	DefaultAmount       *float64 `json:"default_amount" binding:"omitempty,gt=0"`
	DefaultCategoryName string   `json:"default_category_name" binding:"required"`
	DefaultPaymentType  string   `json:"default_payment_type"`
	DefaultPaidBy       *uint    `json:"default_paid_by"`
}

type UpdateTemplateRequest struct {
	Name                *string  `json:"name"`
	Description         *string  `json:"description"`
	Icon                *string  `json:"icon"`
	IconType            *string  `json:"icon_type" binding:"omitempty,oneof=emoji phosphor"`
	DefaultNote         *string  `json:"default_note"`
	DefaultAmount       *float64 `json:"default_amount" binding:"omitempty,gt=0"`
	DefaultCategoryName *string  `json:"default_category_name"`
	DefaultPaymentType  *string  `json:"default_payment_type"`
	DefaultPaidBy       *uint    `json:"default_paid_by"`
}

func ListTemplates(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	vaultID, err := utils.GetVaultID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, err := gate().UserRole(ctx.Request.Context(), userID, vaultID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if !role.Valid() {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this vault"})
		return
	}

	var templates []models.ExpenseTemplate

	if err := db.DB.Where("vault_id = ?", vaultID).
		Order("usage_count DESC, name").
		Find(&templates).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve templates"})
		return
	}

	ctx.JSON(http.StatusOK, templates)
}

func CreateTemplate(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	vaultID, err := utils.GetVaultID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req CreateTemplateRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !requireVaultPermission(ctx, userID, vaultID, permissions.CanCreateExpenses) {
		return
	}

	paymentType := req.DefaultPaymentType
	if paymentType == "" {
		paymentType = types.DefaultPaymentType
	}
	if !types.IsValidPaymentType(paymentType) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment type"})
		return
	}

	template := models.ExpenseTemplate{
		VaultID:             vaultID,
		Name:                req.Name,
		Description:         req.Description,
		DefaultNote:         req.DefaultNote,
		DefaultAmount:       req.DefaultAmount,
		DefaultCategoryName: req.DefaultCategoryName,
		DefaultPaymentType:  paymentType,
		DefaultPaidBy:       req.DefaultPaidBy,
		CreatedBy:           userID,
	}

	if req.Icon != "" {
		template.Icon = req.Icon
	}
	if req.IconType != "" {
		template.IconType = req.IconType
	}

	if err := db.DB.Create(&template).Error; err != nil {
		log.Printf("Failed to create template: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create template"})
		return
	}

	ctx.JSON(http.StatusCreated, template)
}

func UpdateTemplate(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	vaultID, err := utils.GetVaultID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	templateID, err := utils.GetTemplateID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req UpdateTemplateRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !requireVaultPermission(ctx, userID, vaultID, permissions.CanEditExpenses) {
		return
	}

	var template models.ExpenseTemplate

	if err := db.DB.Where("vault_id = ?", vaultID).First(&template, templateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve template"})
		}
		return
	}

	updates := map[string]interface{}{"updated_by": userID}

	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Icon != nil {
		updates["icon"] = *req.Icon
	}
	if req.IconType != nil {
		updates["icon_type"] = *req.IconType
	}
	if req.DefaultNote != nil {
		updates["default_note"] = *req.DefaultNote
	}
	if req.DefaultAmount != nil {
		updates["default_amount"] = *req.DefaultAmount
	}
	if req.DefaultCategoryName != nil {
		updates["default_category_name"] = *req.DefaultCategoryName
	}
	if req.DefaultPaymentType != nil {
		if !types.IsValidPaymentType(*req.DefaultPaymentType) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment type"})
			return
		}
		updates["default_payment_type"] = *req.DefaultPaymentType
	}
	if req.DefaultPaidBy != nil {
		updates["default_paid_by"] = *req.DefaultPaidBy
	}

	if err := db.DB.Model(&template).Updates(updates).Error; err != nil {
		log.Printf("Failed to update template %d: %v", templateID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update template"})
		return
	}

	ctx.JSON(http.StatusOK, template)
}

func DeleteTemplate(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	vaultID, err := utils.GetVaultID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	templateID, err := utils.GetTemplateID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !requireVaultPermission(ctx, userID, vaultID, permissions.CanEditExpenses) {
		return
	}

	var template models.ExpenseTemplate

	if err := db.DB.Where("vault_id = ?", vaultID).First(&template, templateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve template"})
		}
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&template).Update("deleted_by", userID).Error; err != nil {
			return err
		}
		return tx.Delete(&template).Error
	})

	if err != nil {
		log.Printf("Failed to delete template %d: %v", templateID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete template"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
