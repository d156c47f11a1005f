package utils

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

func paramID(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)

	if raw == "" {
		return 0, errors.New(name + " not found")
	}

	id, err := strconv.ParseUint(raw, 10, 32)

	if err != nil {
		return 0, errors.New("Invalid " + name)
	}

	return uint(id), nil
}

func GetVaultID(ctx *gin.Context) (uint, error) {
	return paramID(ctx, "vault_id")
}

func GetExpenseID(ctx *gin.Context) (uint, error) {
	return paramID(ctx, "expense_id")
}

func GetBudgetID(ctx *gin.Context) (uint, error) {
	return paramID(ctx, "budget_id")
}

func GetTemplateID(ctx *gin.Context) (uint, error) {
	return paramID(ctx, "template_id")
}

func GetInvitationID(ctx *gin.Context) (uint, error) {
	return paramID(ctx, "invitation_id")
}
