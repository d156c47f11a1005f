package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spendvault/spendvault/db"
	"github.com/spendvault/spendvault/internal/models"
	"github.com/spendvault/spendvault/internal/utils"
)

type CategoryTotal struct {
	CategoryName string  `json:"category_name"`
	Total        float64 `json:"total"`
}

type BudgetProgress struct {
	ID            uint     `json:"id"`
	Name          string   `json:"name"`
	Amount        float64  `json:"amount"`
	Period        string   `json:"period"`
	Spent         float64  `json:"spent"`
	CategoryNames []string `json:"category_names"`
}

type DashboardResponse struct {
	Vault          VaultResponse    `json:"vault"`
	MonthTotal     float64          `json:"month_total"`
	CategoryTotals []CategoryTotal  `json:"category_totals"`
	RecentExpenses []models.Expense `json:"recent_expenses"`
	Budgets        []BudgetProgress `json:"budgets"`
	MemberCount    int64            `json:"member_count"`
}

// periodStart returns the start of the current month or year, the window a
// budget's spending is measured over.
func periodStart(period string, now time.Time) time.Time {
	if period == models.BudgetPeriodYearly {
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// GetVaultDashboard aggregates the vault's current spending: this month's
// total and per-category breakdown, the latest expenses, per-budget progress
// over its own period, and the active member count.
func GetVaultDashboard(ctx *gin.Context) {
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

	var membership models.VaultMember

	if err := db.DB.Preload("Vault").
		Where("vault_id = ? AND user_id = ? AND status = ?", vaultID, userID, models.MemberStatusActive).
		First(&membership).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Vault not found"})
		return
	}

	now := time.Now().UTC()
	monthStart := periodStart(models.BudgetPeriodMonthly, now).Format("2006-01-02")

	response := DashboardResponse{
		Vault:          vaultResponse(membership.Vault, membership),
		CategoryTotals: []CategoryTotal{},
		RecentExpenses: []models.Expense{},
		Budgets:        []BudgetProgress{},
	}

	if err := db.DB.Model(&models.Expense{}).
		Select("category_name, COALESCE(SUM(amount), 0) AS total").
		Where("vault_id = ? AND date >= ?", vaultID, monthStart).
		Group("category_name").
		Order("total DESC").
		Scan(&response.CategoryTotals).Error; err != nil {
		log.Printf("Failed to aggregate categories for vault %d: %v", vaultID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build dashboard"})
		return
	}

	for _, categoryTotal := range response.CategoryTotals {
		response.MonthTotal += categoryTotal.Total
	}

	if err := db.DB.Where("vault_id = ?", vaultID).
		Order("date DESC, id DESC").
		Limit(10).
		Find(&response.RecentExpenses).Error; err != nil {
		log.Printf("Failed to load recent expenses for vault %d: %v", vaultID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build dashboard"})
		return
	}

	var budgets []models.Budget

	if err := db.DB.Where("vault_id = ?", vaultID).Order("name").Find(&budgets).Error; err != nil {
		log.Printf("Failed to load budgets for vault %d: %v", vaultID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build dashboard"})
		return
	}

	for _, budget := range budgets {
		progress := BudgetProgress{
			ID:            budget.ID,
			Name:          budget.Name,
			Amount:        budget.Amount,
			Period:        budget.Period,
			CategoryNames: []string{},
		}

		if len(budget.CategoryNames) > 0 {
			if err := json.Unmarshal(budget.CategoryNames, &progress.CategoryNames); err != nil {
				log.Printf("Bad category list on budget %d: %v", budget.ID, err)
			}
		}

		spentQuery := db.DB.Model(&models.Expense{}).
			Where("vault_id = ? AND date >= ?", vaultID, periodStart(budget.Period, now).Format("2006-01-02"))

		if len(progress.CategoryNames) > 0 {
			spentQuery = spentQuery.Where("category_name IN ?", progress.CategoryNames)
		}

		if err := spentQuery.Select("COALESCE(SUM(amount), 0)").Scan(&progress.Spent).Error; err != nil {
			log.Printf("Failed to compute spending for budget %d: %v", budget.ID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build dashboard"})
			return
		}

		response.Budgets = append(response.Budgets, progress)
	}

	if err := db.DB.Model(&models.VaultMember{}).
		Where("vault_id = ? AND status = ?", vaultID, models.MemberStatusActive).
		Count(&response.MemberCount).Error; err != nil {
		log.Printf("Failed to count members of vault %d: %v", vaultID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build dashboard"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}
