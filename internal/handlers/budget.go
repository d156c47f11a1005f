package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spendvault/spendvault/db"
	"github.com/spendvault/spendvault/internal/models"
	"github.com/spendvault/spendvault/internal/permissions"
	"github.com/spendvault/spendvault/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CreateBudgetRequest struct {
	Name          string   `json:"name" binding:"required"`
	Amount        float64  `json:"amount" binding:"required,gt=0"`
	Period        string   `json:"period" binding:"omitempty,oneof=monthly yearly"`
	CategoryNames []string `json:"category_names"`
}

type UpdateBudgetRequest struct {
	Name          *string   `json:"name"`
	Amount        *float64  `json:"amount" binding:"omitempty,gt=0"`
	Period        *string   `json:"period" binding:"omitempty,oneof=monthly yearly"`
	CategoryNames *[]string `json:"category_names"`
}

func categoryNamesJSON(names []string) (datatypes.JSON, error) {
	if names == nil {
		names = []string{}
	}

	raw, err := json.Marshal(names)

	if err != nil {
		return nil, err
	}

	return datatypes.JSON(raw), nil
}

func ListBudgets(ctx *gin.Context) {
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

	var budgets []models.Budget

	if err := db.DB.Where("vault_id = ?", vaultID).Order("name").Find(&budgets).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve budgets"})
		return
	}

	ctx.JSON(http.StatusOK, budgets)
}

func CreateBudget(ctx *gin.Context) {
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

	var req CreateBudgetRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !requireVaultPermission(ctx, userID, vaultID, permissions.CanEditVault) {
		return
	}

	categories, err := categoryNamesJSON(req.CategoryNames)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category names"})
		return
	}

	budget := models.Budget{
		VaultID:       vaultID,
		Name:          req.Name,
		Amount:        req.Amount,
		CategoryNames: categories,
		CreatedBy:     userID,
	}

	if req.Period != "" {
		budget.Period = req.Period
	}

	if err := db.DB.Create(&budget).Error; err != nil {
		log.Printf("Failed to create budget: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create budget"})
		return
	}

	ctx.JSON(http.StatusCreated, budget)
}

func UpdateBudget(ctx *gin.Context) {
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

	budgetID, err := utils.GetBudgetID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req UpdateBudgetRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !requireVaultPermission(ctx, userID, vaultID, permissions.CanEditVault) {
		return
	}

	var budget models.Budget

	if err := db.DB.Where("vault_id = ?", vaultID).First(&budget, budgetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve budget"})
		}
		return
	}

	updates := map[string]interface{}{"updated_by": userID}

	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Amount != nil {
		updates["amount"] = *req.Amount
	}
	if req.Period != nil {
		updates["period"] = *req.Period
	}
	if req.CategoryNames != nil {
		categories, err := categoryNamesJSON(*req.CategoryNames)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category names"})
			return
		}
		updates["category_names"] = categories
	}

	if err := db.DB.Model(&budget).Updates(updates).Error; err != nil {
		log.Printf("Failed to update budget %d: %v", budgetID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update budget"})
		return
	}

	ctx.JSON(http.StatusOK, budget)
}

func DeleteBudget(ctx *gin.Context) {
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

	budgetID, err := utils.GetBudgetID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !requireVaultPermission(ctx, userID, vaultID, permissions.CanEditVault) {
		return
	}

	var budget models.Budget

	if err := db.DB.Where("vault_id = ?", vaultID).First(&budget, budgetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve budget"})
		}
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&budget).Update("deleted_by", userID).Error; err != nil {
			return err
		}
		return tx.Delete(&budget).Error
	})

	if err != nil {
		log.Printf("Failed to delete budget %d: %v", budgetID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete budget"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
