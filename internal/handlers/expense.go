package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spendvault/spendvault/db"
	"github.com/spendvault/spendvault/internal/models"
	"github.com/spendvault/spendvault/internal/permissions"
	"github.com/spendvault/spendvault/internal/types"
	"github.com/spendvault/spendvault/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CreateExpenseRequest struct {
	Note         string  `json:"note"`
	Amount       float64 `json:"amount" binding:"required,gt=0"`
	CategoryName string  `json:"category_name" binding:"required"`
	Date         string  `json:"date" binding:"required"`
	PaymentType  string  `json:"payment_type"`
	PaidBy       *uint   `json:"paid_by"`
	TemplateID   *uint   `json:"template_id"`
}

type UpdateExpenseRequest struct {
	Note         *string  `json:"note"`
	Amount       *float64 `json:"amount" binding:"omitempty,gt=0"`
	CategoryName *string  `json:"category_name"`
	Date         *string  `json:"date"`
	PaymentType  *string  `json:"payment_type"`
	PaidBy       *uint    `json:"paid_by"`
}

func parseExpenseDate(raw string) (datatypes.Date, error) {
	parsed, err := time.Parse("2006-01-02", raw)

	if err != nil {
		return datatypes.Date{}, err
	}

	return datatypes.Date(parsed), nil
}

// ListPaymentTypes exposes the closed payment method catalog.
func ListPaymentTypes(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, types.PaymentTypes)
}

// ListExpenses returns the vault's expenses, newest first, paginated.
// Supports category_name, date_from and date_to query filters.
func ListExpenses(ctx *gin.Context) {
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

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := db.DB.Model(&models.Expense{}).Where("vault_id = ?", vaultID)

	if category := ctx.Query("category_name"); category != "" {
		query = query.Where("category_name = ?", category)
	}
	if from := ctx.Query("date_from"); from != "" {
		query = query.Where("date >= ?", from)
	}
	if to := ctx.Query("date_to"); to != "" {
		query = query.Where("date <= ?", to)
	}

	var total int64

	if err := query.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve expenses"})
		return
	}

	var expenses []models.Expense

	if err := query.Order("date DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&expenses).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve expenses"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"expenses": expenses,
		"page":     page,
		"limit":    limit,
		"total":    total,
	})
}

func GetExpense(ctx *gin.Context) {
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

	expenseID, err := utils.GetExpenseID(ctx)

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

	var expense models.Expense

	if err := db.DB.Where("vault_id = ?", vaultID).First(&expense, expenseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve expense"})
		}
		return
	}

	ctx.JSON(http.StatusOK, expense)
}

// CreateExpense records an expense. When created from a template, the
// template's usage counter is bumped in the same transaction.
func CreateExpense(ctx *gin.Context) {
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

	var req CreateExpenseRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !requireVaultPermission(ctx, userID, vaultID, permissions.CanCreateExpenses) {
		return
	}

	date, err := parseExpenseDate(req.Date)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}

	paymentType := req.PaymentType
	if paymentType == "" {
		paymentType = types.DefaultPaymentType
	}
	if !types.IsValidPaymentType(paymentType) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment type"})
		return
	}

	expense := models.Expense{
		VaultID:      vaultID,
		Note:         req.Note,
		Amount:       req.Amount,
		CategoryName: req.CategoryName,
		Date:         date,
		PaymentType:  paymentType,
		PaidBy:       req.PaidBy,
		TemplateID:   req.TemplateID,
		CreatedBy:    userID,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if req.TemplateID != nil {
			var template models.ExpenseTemplate

			if err := tx.Where("vault_id = ?", vaultID).First(&template, *req.TemplateID).Error; err != nil {
				return err
			}

			now := time.Now().UTC()
			if err := tx.Model(&template).Updates(map[string]interface{}{
				"usage_count":  gorm.Expr("usage_count + 1"),
				"last_used_at": now,
			}).Error; err != nil {
				return err
			}
		}

		return tx.Create(&expense).Error
	})

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Template not found in this vault"})
			return
		}
		log.Printf("Failed to create expense: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create expense"})
		return
	}

	ctx.JSON(http.StatusCreated, expense)
}

func UpdateExpense(ctx *gin.Context) {
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

	expenseID, err := utils.GetExpenseID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req UpdateExpenseRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !requireVaultPermission(ctx, userID, vaultID, permissions.CanEditExpenses) {
		return
	}

	var expense models.Expense

	if err := db.DB.Where("vault_id = ?", vaultID).First(&expense, expenseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve expense"})
		}
		return
	}

	updates := map[string]interface{}{"updated_by": userID}

	if req.Note != nil {
		updates["note"] = *req.Note
	}
	if req.Amount != nil {
		updates["amount"] = *req.Amount
	}
	if req.CategoryName != nil {
		updates["category_name"] = *req.CategoryName
	}
	if req.Date != nil {
		date, err := parseExpenseDate(*req.Date)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
			return
		}
		updates["date"] = date
	}
	if req.PaymentType != nil {
		if !types.IsValidPaymentType(*req.PaymentType) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment type"})
			return
		}
		updates["payment_type"] = *req.PaymentType
	}
	if req.PaidBy != nil {
		updates["paid_by"] = *req.PaidBy
	}

	if err := db.DB.Model(&expense).Updates(updates).Error; err != nil {
		log.Printf("Failed to update expense %d: %v", expenseID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update expense"})
		return
	}

	ctx.JSON(http.StatusOK, expense)
}

// DeleteExpense soft-deletes the expense and stamps who removed it.
func DeleteExpense(ctx *gin.Context) {
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

	expenseID, err := utils.GetExpenseID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !requireVaultPermission(ctx, userID, vaultID, permissions.CanDeleteExpenses) {
		return
	}

	var expense models.Expense

	if err := db.DB.Where("vault_id = ?", vaultID).First(&expense, expenseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve expense"})
		}
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&expense).Update("deleted_by", userID).Error; err != nil {
			return err
		}
		return tx.Delete(&expense).Error
	})

	if err != nil {
		log.Printf("Failed to delete expense %d: %v", expenseID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete expense"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
