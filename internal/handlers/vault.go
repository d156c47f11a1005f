package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spendvault/spendvault/db"
	"github.com/spendvault/spendvault/internal/models"
	"github.com/spendvault/spendvault/internal/permissions"
	"github.com/spendvault/spendvault/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateVaultRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Color       string  `json:"color"`
	Icon        string  `json:"icon"`
	IconType    string  `json:"icon_type" binding:"omitempty,oneof=emoji phosphor"`
	TeamID      *string `json:"team_id"`
}

type UpdateVaultRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	IconType    string `json:"icon_type" binding:"omitempty,oneof=emoji phosphor"`
}

type VaultResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	IconType    string `json:"icon_type"`
	Role        string `json:"role"`
	IsDefault   bool   `json:"is_default"`
}

func vaultResponse(vault models.Vault, member models.VaultMember) VaultResponse {
	return VaultResponse{
		ID:          vault.ID,
		Name:        vault.Name,
		Description: vault.Description,
		Color:       vault.Color,
		Icon:        vault.Icon,
		IconType:    vault.IconType,
		Role:        member.Role,
		IsDefault:   member.IsDefault,
	}
}

// CreateVault creates the vault and its owner membership in one
// transaction. The creator joins active immediately and the vault becomes
// their default iff it is their first active membership.
func CreateVault(ctx *gin.Context) {
	var req CreateVaultRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	vault := models.Vault{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   currentUser.ID,
		TeamID:      req.TeamID,
	}

	if req.Color != "" {
		vault.Color = req.Color
	}
	if req.Icon != "" {
		vault.Icon = req.Icon
	}
	if req.IconType != "" {
		vault.IconType = req.IconType
	}

	var member models.VaultMember

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&vault).Error; err != nil {
			return err
		}

		// Lock the user row before deciding first-vault status, the same
		// lock the invitation-accept and default-toggle paths take, so
		// concurrent writers of the default flag serialize.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&models.User{}, currentUser.ID).Error; err != nil {
			return err
		}

		var activeCount int64
		if err := tx.Model(&models.VaultMember{}).
			Where("user_id = ? AND status = ?", currentUser.ID, models.MemberStatusActive).
			Count(&activeCount).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		member = models.VaultMember{
			VaultID:     vault.ID,
			UserID:      currentUser.ID,
			Role:        string(permissions.RoleOwner),
			Status:      models.MemberStatusActive,
			IsDefault:   activeCount == 0,
			JoinedAt:    &now,
			DisplayName: currentUser.Name,
		}

		return tx.Create(&member).Error
	})

	if err != nil {
		log.Printf("Failed to create vault: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create vault"})
		return
	}

	ctx.JSON(http.StatusCreated, vaultResponse(vault, member))
}

func ListVaults(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var memberships []models.VaultMember

	if err := db.DB.Preload("Vault").
		Where("user_id = ? AND status = ?", userID, models.MemberStatusActive).
		Order("id").
		Find(&memberships).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve vaults"})
		return
	}

	response := []VaultResponse{}

	for _, membership := range memberships {
		if membership.Vault.ID == 0 {
			// Vault was soft-deleted; the membership row outlives it.
			continue
		}
		response = append(response, vaultResponse(membership.Vault, membership))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetVault(ctx *gin.Context) {
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

	var membership models.VaultMember

	if err := db.DB.Preload("Vault").
		Where("vault_id = ? AND user_id = ? AND status = ?", vaultID, userID, models.MemberStatusActive).
		First(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Vault not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve vault"})
		}
		return
	}

	if membership.Vault.ID == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Vault not found"})
		return
	}

	ctx.JSON(http.StatusOK, vaultResponse(membership.Vault, membership))
}

func UpdateVault(ctx *gin.Context) {
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

	var req UpdateVaultRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !requireVaultPermission(ctx, userID, vaultID, permissions.CanEditVault) {
		return
	}

	var vault models.Vault

	if err := db.DB.First(&vault, vaultID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Vault not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve vault"})
		}
		return
	}

	updates := map[string]interface{}{"updated_by": userID}

	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Color != "" {
		updates["color"] = req.Color
	}
	if req.Icon != "" {
		updates["icon"] = req.Icon
	}
	if req.IconType != "" {
		updates["icon_type"] = req.IconType
	}

	if err := db.DB.Model(&vault).Updates(updates).Error; err != nil {
		log.Printf("Failed to update vault %d: %v", vaultID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update vault"})
		return
	}

	var membership models.VaultMember

	if err := db.DB.Where("vault_id = ? AND user_id = ? AND status = ?", vaultID, userID, models.MemberStatusActive).
		First(&membership).Error; err != nil {
		log.Printf("Failed to fetch membership for vault %d user %d: %v", vaultID, userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve vault"})
		return
	}

	ctx.JSON(http.StatusOK, vaultResponse(vault, membership))
}

// DeleteVault soft-deletes the vault, stamping who deleted it. Vault rows
// are never hard-deleted.
func DeleteVault(ctx *gin.Context) {
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

	if !requireVaultPermission(ctx, userID, vaultID, permissions.CanDeleteVault) {
		return
	}

	var vault models.Vault

	if err := db.DB.First(&vault, vaultID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Vault not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve vault"})
		}
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&vault).Update("deleted_by", userID).Error; err != nil {
			return err
		}
		return tx.Delete(&vault).Error
	})

	if err != nil {
		log.Printf("Failed to delete vault %d: %v", vaultID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete vault"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

// SetDefaultVault toggles the default flag on the caller's membership.
func SetDefaultVault(ctx *gin.Context) {
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

	member, err := manager.SetDefaultVault(ctx.Request.Context(), vaultID, userID)

	if err != nil {
		respondMembershipError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"vault_id":   member.VaultID,
		"is_default": member.IsDefault,
	})
}
